package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/maxwellzeha/jonduplastics/database"
	aws_pkg "github.com/maxwellzeha/jonduplastics/pkg/aws"
	"go.uber.org/zap"
)

const (
	dbCredentialsSecret = "jondu/DB_CREDENTIALS"
	jwtSecretName       = "jondu/JWT_SECRET"
)

// Config holds all configuration for the API server.
type Config struct {
	Port        string
	Environment string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string
	AutoMigrate      bool

	JWTSecret                string
	RequireEmailVerification bool
	CookieDomain             string
	AllowedOrigins           []string

	RedisURL      string
	OrderCacheTTL time.Duration

	ArtworkBucket        string
	ArtworkPublicBaseURL string
	ArtworkUploadExpiry  time.Duration

	OrderEventsTopicARN string
	UserEventsTopicARN  string

	InquiryRecipient string
	InquiryRelayURL  string
	SiteURL          string

	CloudWatchEnabled     bool
	CloudWatchNamespace   string
	CloudWatchLogsEnabled bool
	CloudWatchLogGroup    string
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Database() database.Settings {
	return database.Settings{
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPassword,
		Name:     c.PostgresDB,
		SSLMode:  c.PostgresSSLMode,
		TimeZone: c.PostgresTimeZone,
		Debug:    !c.IsProduction(),
	}
}

// LoadConfig reads configuration from the environment (and .env when present)
// with an optional Secrets Manager override.
func LoadConfig(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Africa/Lagos"),
		AutoMigrate:      getBool("AUTO_MIGRATE", true),

		JWTSecret:                os.Getenv("JWT_SECRET"),
		RequireEmailVerification: getBool("REQUIRE_EMAIL_VERIFICATION", false),
		CookieDomain:             os.Getenv("COOKIE_DOMAIN"),
		AllowedOrigins:           splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		RedisURL:      os.Getenv("REDIS_URL"),
		OrderCacheTTL: getDuration("ORDER_CACHE_TTL", 5*time.Minute),

		ArtworkBucket:        getEnv("ARTWORK_BUCKET", "artworks"),
		ArtworkPublicBaseURL: os.Getenv("ARTWORK_PUBLIC_BASE_URL"),
		ArtworkUploadExpiry:  getDuration("ARTWORK_UPLOAD_EXPIRY", 15*time.Minute),

		OrderEventsTopicARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		UserEventsTopicARN:  os.Getenv("USER_EVENTS_TOPIC_ARN"),

		InquiryRecipient: os.Getenv("INQUIRY_RECIPIENT"),
		InquiryRelayURL:  os.Getenv("INQUIRY_RELAY_URL"),
		SiteURL:          getEnv("SITE_URL", "http://localhost:3000"),

		CloudWatchEnabled:     getBool("CLOUDWATCH_ENABLED", false),
		CloudWatchNamespace:   getEnv("CLOUDWATCH_NAMESPACE", "Jondu"),
		CloudWatchLogsEnabled: getBool("CLOUDWATCH_LOGS_ENABLED", false),
		CloudWatchLogGroup:    getEnv("CLOUDWATCH_LOG_GROUP", "/jondu/api"),
	}

	// Override credentials from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		ctx := context.Background()
		if awsCfg, err := aws_pkg.LoadAWSConfig(ctx); err != nil {
			logger.Warn("AWS config unavailable, skipping Secrets Manager", zap.Error(err))
		} else {
			applySecrets(ctx, cfg, aws_pkg.NewSecretsClient(awsCfg), logger)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// secretSource is the subset of the Secrets Manager client LoadConfig uses.
type secretSource interface {
	GetSecret(ctx context.Context, name string) (string, error)
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

func applySecrets(ctx context.Context, cfg *Config, sm secretSource, logger *zap.Logger) {
	if m, err := sm.GetSecretMap(ctx, dbCredentialsSecret); err == nil {
		override(&cfg.PostgresUser, m["POSTGRES_USER"])
		override(&cfg.PostgresPassword, m["POSTGRES_PASSWORD"])
		override(&cfg.PostgresDB, m["POSTGRES_DB"])
		override(&cfg.PostgresHost, m["POSTGRES_HOST"])
		override(&cfg.PostgresPort, m["POSTGRES_PORT"])
	} else {
		logger.Warn("Failed to read database credentials secret", zap.String("secret", dbCredentialsSecret), zap.Error(err))
	}
	if v, err := sm.GetSecret(ctx, jwtSecretName); err == nil {
		override(&cfg.JWTSecret, v)
	} else {
		logger.Warn("Failed to read JWT secret", zap.String("secret", jwtSecretName), zap.Error(err))
	}
}

func (c *Config) validate() error {
	if c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresDB == "" || c.PostgresHost == "" {
		return fmt.Errorf("database config incomplete")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if c.InquiryRecipient == "" {
		return fmt.Errorf("INQUIRY_RECIPIENT is not set")
	}
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
