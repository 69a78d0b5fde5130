package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxwellzeha/jonduplastics/controllers"
	"github.com/maxwellzeha/jonduplastics/database"
	applog "github.com/maxwellzeha/jonduplastics/logger"
	"github.com/maxwellzeha/jonduplastics/middleware"
	"github.com/maxwellzeha/jonduplastics/models"
	aws_pkg "github.com/maxwellzeha/jonduplastics/pkg/aws"
	"github.com/maxwellzeha/jonduplastics/providers"
	"github.com/maxwellzeha/jonduplastics/repository"
	"github.com/maxwellzeha/jonduplastics/routes"
	"github.com/maxwellzeha/jonduplastics/services"
	"github.com/maxwellzeha/jonduplastics/storage"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const serviceName = "jondu-api"

func main() {
	logger, err := applog.New(os.Getenv("APP_ENV"), nil)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	cfg, err := LoadConfig(logger)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// AWS clients
	ctx := context.Background()
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)
	if awsErr != nil {
		logger.Warn("AWS config unavailable, S3/SNS/CloudWatch disabled", zap.Error(awsErr))
	}

	if awsErr == nil && cfg.CloudWatchLogsEnabled {
		cwLogs, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, serviceName)
		if err != nil {
			logger.Warn("CloudWatch Logs unavailable, logging to stdout only", zap.Error(err))
		} else {
			defer cwLogs.Close() //nolint:errcheck
			if teed, err := applog.New(cfg.Environment, cwLogs); err == nil {
				logger = teed
			}
		}
	}
	applog.Log = logger
	defer logger.Sync() //nolint:errcheck

	if err := database.Connect(cfg.Database()); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close() //nolint:errcheck

	if cfg.AutoMigrate {
		if err := models.Migrate(database.DB); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	} else {
		logger.Info("AUTO_MIGRATE disabled; expecting the schema from /setup/sql")
	}

	var (
		snsClient aws_pkg.SNSPublisher
		artwork   storage.ArtworkStore
		metrics   *aws_pkg.MetricsClient
	)
	if awsErr == nil {
		snsClient = aws_pkg.NewSNSClient(awsCfg)
		metrics = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)

		publicBase := cfg.ArtworkPublicBaseURL
		if publicBase == "" {
			publicBase = storage.PublicBaseURL(cfg.ArtworkBucket, awsCfg.Region, aws_pkg.CustomEndpoint())
		}
		artwork = storage.NewS3ArtworkStore(aws_pkg.NewS3Client(awsCfg), cfg.ArtworkBucket, publicBase, cfg.ArtworkUploadExpiry)
	}

	// Repositories
	userRepo := repository.NewGormUserRepository(database.DB)
	profileRepo := repository.NewGormProfileRepository(database.DB)
	accounts := repository.NewGormAccountStore(database.DB)
	var orderRepo repository.OrderRepository = repository.NewGormOrderRepository(database.DB)

	if cfg.RedisURL != "" {
		rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, order cache disabled", zap.Error(err))
		} else {
			defer rdb.Close() //nolint:errcheck
			cached := repository.NewCachedOrderRepository(orderRepo, repository.NewRedisCache(rdb), cfg.OrderCacheTTL, logger)
			cached.OnHit = func(ctx context.Context) { _ = metrics.RecordCount(ctx, aws_pkg.MetricCacheHits, nil) }
			cached.OnMiss = func(ctx context.Context) { _ = metrics.RecordCount(ctx, aws_pkg.MetricCacheMisses, nil) }
			orderRepo = cached
		}
	}

	// Services
	tokens, err := services.NewTokenService(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("Failed to init token service", zap.Error(err))
	}
	events := services.NewEventPublisher(snsClient, logger)

	authService := services.NewAuthService(userRepo, accounts, tokens, events, metrics, services.AuthOptions{
		RequireEmailVerification: cfg.RequireEmailVerification,
		UserEventsTopicArn:       cfg.UserEventsTopicARN,
	}, logger)
	profileService := services.NewProfileService(profileRepo, logger)
	orderService := services.NewOrderService(orderRepo, artwork, events, metrics, cfg.OrderEventsTopicARN, logger)
	inquiryService := services.NewInquiryService(
		providers.NewFormSubmitRelay(cfg.InquiryRelayURL, cfg.InquiryRecipient),
		profileRepo, metrics, cfg.SiteURL, logger,
	)

	stop := make(chan struct{})
	limiter := middleware.NewRateLimiter(rate.Every(time.Minute/30), 10, 5*time.Minute)
	go limiter.Run(stop)
	go pruneRefreshTokens(stop, authService, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.MetricsMiddleware(metrics, serviceName))
	r.Use(middleware.Timeout(30 * time.Second))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	})

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:    controllers.NewAuthController(authService, controllers.CookieOptions{Domain: cfg.CookieDomain, Secure: cfg.IsProduction()}),
		Profile: controllers.NewProfileController(profileService),
		Order:   controllers.NewOrderController(orderService),
		Catalog: controllers.NewCatalogController(),
		Inquiry: controllers.NewInquiryController(inquiryService),
		Tokens:  tokens,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Jondu API started", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
	<-quit
	logger.Info("Shutting down Jondu API...")
	close(stop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited cleanly")
}

// pruneRefreshTokens deletes expired refresh tokens once an hour.
func pruneRefreshTokens(stop <-chan struct{}, auth services.AuthService, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := auth.PruneRefreshTokens(ctx)
			cancel()
			if err != nil {
				logger.Warn("Failed to prune refresh tokens", zap.Error(err))
			} else if n > 0 {
				logger.Info("Pruned expired refresh tokens", zap.Int64("count", n))
			}
		}
	}
}
