package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/catalog"
	"github.com/maxwellzeha/jonduplastics/database"
	"github.com/maxwellzeha/jonduplastics/models"
	aws_pkg "github.com/maxwellzeha/jonduplastics/pkg/aws"
	"github.com/maxwellzeha/jonduplastics/pricing"
	"github.com/maxwellzeha/jonduplastics/repository"
	"github.com/maxwellzeha/jonduplastics/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// priceTolerance is the relative difference allowed between the submitted and
// recomputed total, absorbing float formatting on the client.
const priceTolerance = 1e-9

type OrderService interface {
	PresignArtwork(ctx context.Context, userID uuid.UUID, req *models.ArtworkUploadRequest) (*models.ArtworkUploadResponse, *ServiceError)
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest) (*models.Order, *ServiceError)
	List(ctx context.Context, userID uuid.UUID, status string) (*models.OrderListResponse, *ServiceError)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, *ServiceError)
}

type orderServiceImpl struct {
	repo          repository.OrderRepository
	artwork       storage.ArtworkStore
	events        *EventPublisher
	metrics       *aws_pkg.MetricsClient
	orderTopicArn string
	logger        *zap.Logger
	now           func() time.Time
}

// NewOrderService wires the order flow. artwork may be nil when object storage
// is not configured; uploads and artwork orders are then refused.
func NewOrderService(
	repo repository.OrderRepository,
	artwork storage.ArtworkStore,
	events *EventPublisher,
	metrics *aws_pkg.MetricsClient,
	orderTopicArn string,
	logger *zap.Logger,
) OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &orderServiceImpl{
		repo:          repo,
		artwork:       artwork,
		events:        events,
		metrics:       metrics,
		orderTopicArn: orderTopicArn,
		logger:        logger,
		now:           time.Now,
	}
}

func storageUnavailable() *ServiceError {
	return &ServiceError{StatusCode: http.StatusServiceUnavailable, Code: CodeStorageUnavailable, Message: "Artwork storage is not configured"}
}

// PresignArtwork issues an upload slot under the caller's own key prefix.
func (s *orderServiceImpl) PresignArtwork(ctx context.Context, userID uuid.UUID, req *models.ArtworkUploadRequest) (*models.ArtworkUploadResponse, *ServiceError) {
	if s.artwork == nil {
		return nil, storageUnavailable()
	}
	if !storage.IsAllowedContentType(req.ContentType) {
		return nil, badRequest(CodeUnsupportedArtwork,
			"Unsupported artwork type. Allowed: "+strings.Join(storage.AllowedContentTypes(), ", "))
	}

	up, err := s.artwork.PresignUpload(ctx, userID, req.Filename, req.ContentType, s.now())
	if err != nil {
		s.logger.Error("Failed to presign artwork upload", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Code: CodeStorageUnavailable, Message: "Failed to prepare artwork upload"}
	}

	_ = s.metrics.RecordCount(ctx, aws_pkg.MetricArtworkUploads, nil)
	return &models.ArtworkUploadResponse{
		Key:       up.Key,
		UploadURL: up.UploadURL,
		Headers:   up.Headers,
		PublicURL: up.PublicURL,
		ExpiresIn: int64(up.Expiry.Seconds()),
	}, nil
}

func (s *orderServiceImpl) PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest) (*models.Order, *ServiceError) {
	if svcErr := validateDraft(req); svcErr != nil {
		return nil, svcErr
	}

	var artworkURL, artworkName *string
	if req.ArtworkURL != nil && strings.TrimSpace(*req.ArtworkURL) != "" {
		if svcErr := s.checkArtwork(ctx, userID, *req.ArtworkURL); svcErr != nil {
			return nil, svcErr
		}
		u := strings.TrimSpace(*req.ArtworkURL)
		artworkURL = &u
		if req.ArtworkName != nil && *req.ArtworkName != "" {
			n := *req.ArtworkName
			artworkName = &n
		}
	}

	sel := req.Selection()
	sel.HasArtwork = artworkURL != nil
	quote := pricing.Calculate(sel)
	if !sameAmount(quote.Total, req.TotalPrice) {
		return nil, badRequest(CodePriceMismatch,
			fmt.Sprintf("Submitted total %v does not match the calculated total %v", req.TotalPrice, quote.Total))
	}

	// the id is assigned by the database on insert
	order := &models.Order{
		UserID:          userID,
		Date:            s.now().UTC(),
		Status:          models.OrderStatusPending,
		BagType:         req.BagType,
		Material:        req.Material,
		Width:           req.Width,
		Height:          req.Height,
		Color:           req.Color,
		HandleType:      req.HandleType,
		Quantity:        req.Quantity,
		ArtworkURL:      artworkURL,
		ArtworkName:     artworkName,
		BusinessAddress: strings.TrimSpace(req.BusinessAddress),
		TotalPrice:      quote.Total,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if database.IsUndefinedTable(err) {
			return nil, NotProvisioned()
		}
		s.logger.Error("Failed to insert order", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, internalError("Could not save the order")
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.TotalPrice),
	)

	dims := map[string]string{"BagType": order.BagType}
	_ = s.metrics.RecordCount(ctx, aws_pkg.MetricOrdersCreated, dims)
	_ = s.metrics.RecordValue(ctx, aws_pkg.MetricOrderValue, order.TotalPrice, dims)

	s.events.Publish(ctx, s.orderTopicArn, EventOrderPlaced, models.OrderPlacedEvent{
		EventType:  EventOrderPlaced,
		OrderID:    order.ID.String(),
		UserID:     userID.String(),
		BagType:    order.BagType,
		Material:   string(order.Material),
		Quantity:   order.Quantity,
		HasArtwork: order.HasArtwork(),
		TotalPrice: order.TotalPrice,
		Timestamp:  order.Date,
	})

	return order, nil
}

// List returns the caller's orders, newest first. status "" or "All" returns
// every order.
func (s *orderServiceImpl) List(ctx context.Context, userID uuid.UUID, status string) (*models.OrderListResponse, *ServiceError) {
	filter := models.OrderStatus(status)
	if status != "" && status != "All" && !filter.Valid() {
		return nil, badRequest(CodeInvalidRequest, "Unknown order status: "+status)
	}

	orders, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if database.IsUndefinedTable(err) {
			return nil, NotProvisioned()
		}
		s.logger.Error("Failed to list orders", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, internalError("Failed to fetch orders")
	}

	if filter.Valid() {
		kept := make([]models.Order, 0, len(orders))
		for _, o := range orders {
			if o.Status == filter {
				kept = append(kept, o)
			}
		}
		orders = kept
	}
	return &models.OrderListResponse{Orders: orders, Total: len(orders)}, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.repo.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Code: CodeOrderNotFound, Message: "Order not found"}
		case database.IsUndefinedTable(err):
			return nil, NotProvisioned()
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internalError("Failed to fetch order")
	}
	return order, nil
}

func (s *orderServiceImpl) checkArtwork(ctx context.Context, userID uuid.UUID, url string) *ServiceError {
	if s.artwork == nil {
		return storageUnavailable()
	}
	key, ok := s.artwork.KeyForOwnerURL(userID, strings.TrimSpace(url))
	if !ok {
		return &ServiceError{StatusCode: http.StatusForbidden, Code: CodeArtworkNotOwned, Message: "Artwork must be uploaded to your own folder"}
	}
	exists, err := s.artwork.Exists(ctx, key)
	if err != nil {
		s.logger.Warn("Could not confirm artwork upload", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !exists {
		return badRequest(CodeInvalidRequest, "Artwork has not been uploaded")
	}
	return nil
}

func validateDraft(req *models.PlaceOrderRequest) *ServiceError {
	switch {
	case !catalog.IsBagType(req.BagType):
		return badRequest(CodeInvalidRequest, "Unknown bag type: "+req.BagType)
	case !catalog.IsHandle(req.HandleType):
		return badRequest(CodeInvalidRequest, "Unknown handle type: "+req.HandleType)
	case req.Width <= 0 || req.Height <= 0:
		return badRequest(CodeInvalidRequest, "Width and height must be positive")
	case !validHexColor(req.Color):
		return badRequest(CodeInvalidRequest, "Color must be a #RRGGBB hex value")
	case strings.TrimSpace(req.BusinessAddress) == "":
		return badRequest(CodeInvalidRequest, "Delivery address is required")
	case req.Quantity < catalog.MinOrderQuantity:
		return badRequest(CodeBelowMinimumQuantity,
			fmt.Sprintf("Minimum order quantity is %d", catalog.MinOrderQuantity))
	}
	if _, ok := pricing.MaterialCost(req.Material); !ok {
		return badRequest(CodeInvalidRequest, "Unknown material: "+string(req.Material))
	}
	return nil
}

func sameAmount(a, b float64) bool {
	return math.Abs(a-b) <= priceTolerance*math.Max(1, math.Abs(a))
}
