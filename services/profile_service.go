package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/database"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, *ServiceError)
	Update(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.Profile, *ServiceError)
}

type profileServiceImpl struct {
	repo   repository.ProfileRepository
	logger *zap.Logger
}

func NewProfileService(repo repository.ProfileRepository, logger *zap.Logger) ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &profileServiceImpl{repo: repo, logger: logger}
}

func (s *profileServiceImpl) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, *ServiceError) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.classify(err)
	}
	return p, nil
}

func (s *profileServiceImpl) Update(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.Profile, *ServiceError) {
	in := &models.UpdateProfileRequest{
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Phone:           strings.TrimSpace(req.Phone),
		BusinessAddress: strings.TrimSpace(req.BusinessAddress),
	}
	if in.FirstName == "" || in.LastName == "" || in.Phone == "" || in.BusinessAddress == "" {
		return nil, badRequest(CodeInvalidRequest, msgFillAllFields)
	}

	p, err := s.repo.Update(ctx, userID, in)
	if err != nil {
		return nil, s.classify(err)
	}
	s.logger.Info("Profile updated", zap.String("user_id", userID.String()))
	return p, nil
}

func (s *profileServiceImpl) classify(err error) *ServiceError {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &ServiceError{StatusCode: http.StatusNotFound, Code: CodeProfileNotFound, Message: "Profile not found"}
	case database.IsUndefinedTable(err):
		s.logger.Error("profiles relation is missing", zap.Error(err))
		return NotProvisioned()
	default:
		s.logger.Error("Profile query failed", zap.Error(err))
		return internalError("Failed to load profile")
	}
}
