package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/database"
	"github.com/maxwellzeha/jonduplastics/models"
	aws_pkg "github.com/maxwellzeha/jonduplastics/pkg/aws"
	"github.com/maxwellzeha/jonduplastics/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength = 6

	msgFillAllFields      = "Please fill in all fields."
	msgInvalidCredentials = "Invalid login credentials"
)

// AuthResult is a freshly issued session.
type AuthResult struct {
	Tokens *TokenPair
	UserID uuid.UUID
	Email  string
}

// AuthService handles accounts and sessions.
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.SignupResponse, *ServiceError)
	VerifyEmail(ctx context.Context, req *models.VerifyEmailRequest) *ServiceError
	Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, *ServiceError)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, *ServiceError)
	Logout(ctx context.Context, userID uuid.UUID) *ServiceError
	Session(ctx context.Context, userID uuid.UUID) (*models.SessionResponse, *ServiceError)
	PruneRefreshTokens(ctx context.Context) (int64, error)
}

type AuthOptions struct {
	RequireEmailVerification bool
	UserEventsTopicArn       string
}

type authServiceImpl struct {
	users    repository.UserRepository
	accounts repository.AccountStore
	tokens   TokenIssuer
	events   *EventPublisher
	metrics  *aws_pkg.MetricsClient
	opts     AuthOptions
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	accounts repository.AccountStore,
	tokens TokenIssuer,
	events *EventPublisher,
	metrics *aws_pkg.MetricsClient,
	opts AuthOptions,
	logger *zap.Logger,
) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authServiceImpl{
		users:    users,
		accounts: accounts,
		tokens:   tokens,
		events:   events,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Signup creates the user and seeds its profile from the signup form in one
// transaction.
func (s *authServiceImpl) Signup(ctx context.Context, req *models.SignupRequest) (*models.SignupResponse, *ServiceError) {
	in := models.SignupRequest{
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Phone:           strings.TrimSpace(req.Phone),
		BusinessAddress: strings.TrimSpace(req.BusinessAddress),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Password:        req.Password,
	}
	if in.FirstName == "" || in.LastName == "" || in.Phone == "" ||
		in.BusinessAddress == "" || in.Email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, badRequest(CodeInvalidRequest, msgFillAllFields)
	}
	if !validEmail(in.Email) {
		return nil, badRequest(CodeInvalidRequest, msgInvalidEmail)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, badRequest(CodeInvalidRequest, "Password should be at least 6 characters.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError("Failed to hash password")
	}

	user := &models.User{
		ID:               uuid.New(),
		Email:            in.Email,
		Password:         string(hashed),
		Role:             "user",
		VerificationCode: GenerateRandomCode(6),
	}
	errEmailTaken := errors.New("email taken")

	err = s.accounts.WithinTransaction(ctx, func(users repository.UserRepository, profiles repository.ProfileRepository) error {
		if _, err := users.FindByEmail(ctx, in.Email); err == nil {
			return errEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return profiles.Create(ctx, &models.Profile{
			ID:              user.ID,
			FirstName:       in.FirstName,
			LastName:        in.LastName,
			Email:           in.Email,
			Phone:           in.Phone,
			BusinessAddress: in.BusinessAddress,
		})
	})
	switch {
	case err == nil:
	case errors.Is(err, errEmailTaken), database.IsUniqueViolation(err):
		return nil, &ServiceError{StatusCode: http.StatusConflict, Code: CodeEmailTaken, Message: "User already registered"}
	case database.IsUndefinedTable(err):
		return nil, NotProvisioned()
	default:
		s.logger.Error("Signup failed", zap.Error(err))
		return nil, internalError("Failed to create account")
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	_ = s.metrics.RecordCount(ctx, aws_pkg.MetricSignups, nil)
	s.events.Publish(ctx, s.opts.UserEventsTopicArn, EventUserRegistered, models.UserRegisteredEvent{
		EventType:        EventUserRegistered,
		UserID:           user.ID.String(),
		Email:            user.Email,
		FirstName:        in.FirstName,
		VerificationCode: user.VerificationCode,
		Timestamp:        s.now(),
	})

	return &models.SignupResponse{
		Email:   user.Email,
		Message: "Check your email to confirm your account.",
	}, nil
}

func (s *authServiceImpl) VerifyEmail(ctx context.Context, req *models.VerifyEmailRequest) *ServiceError {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: http.StatusNotFound, Code: CodeInvalidRequest, Message: "User not found"}
		}
		return s.storeError("VerifyEmail", err)
	}
	if user.EmailVerified {
		return nil
	}
	if user.VerificationCode == "" || user.VerificationCode != req.Code {
		return &ServiceError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "Invalid verification code"}
	}

	user.EmailVerified = true
	user.VerificationCode = ""
	if err := s.users.Update(ctx, user); err != nil {
		return s.storeError("VerifyEmail", err)
	}
	return nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, *ServiceError) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msgInvalidCredentials}
		}
		return nil, s.storeError("Login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msgInvalidCredentials}
	}

	if s.opts.RequireEmailVerification && !user.EmailVerified {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Code: CodeEmailNotVerified, Message: "email not verified"}
	}

	return s.issue(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*AuthResult, *ServiceError) {
	unauthorized := &ServiceError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "Invalid refresh token"}

	claims, err := s.tokens.ValidateToken(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, unauthorized
	}
	userID, err := SubjectID(claims)
	if err != nil {
		return nil, unauthorized
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, unauthorized
	}

	stored, err := s.users.GetRefreshTokenByTokenID(ctx, jti)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorized
		}
		return nil, s.storeError("Refresh", err)
	}
	if stored.Revoked || stored.UserID != userID || s.now().After(stored.ExpiresAt) {
		return nil, unauthorized
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorized
		}
		return nil, s.storeError("Refresh", err)
	}

	revoked, err := s.users.RevokeRefreshTokenByTokenID(ctx, jti)
	if err != nil {
		return nil, s.storeError("Refresh", err)
	}
	if !revoked {
		// a concurrent refresh rotated this token first
		return nil, unauthorized
	}
	return s.issue(ctx, user)
}

// Logout revokes every refresh token of the user. Calling it twice is harmless.
func (s *authServiceImpl) Logout(ctx context.Context, userID uuid.UUID) *ServiceError {
	if err := s.users.RevokeAllUserRefreshTokens(ctx, userID); err != nil {
		return s.storeError("Logout", err)
	}
	return nil
}

func (s *authServiceImpl) Session(ctx context.Context, userID uuid.UUID) (*models.SessionResponse, *ServiceError) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "Session not found"}
		}
		return nil, s.storeError("Session", err)
	}
	return &models.SessionResponse{UserID: user.ID.String(), Email: user.Email}, nil
}

// PruneRefreshTokens deletes refresh tokens that have already expired.
func (s *authServiceImpl) PruneRefreshTokens(ctx context.Context) (int64, error) {
	return s.users.DeleteExpiredRefreshTokens(ctx, s.now())
}

func (s *authServiceImpl) issue(ctx context.Context, user *models.User) (*AuthResult, *ServiceError) {
	pair, err := s.tokens.GenerateTokenPair(user.ID.String(), user.Email, user.Role)
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, internalError("Failed to generate token")
	}

	if err := s.users.CreateRefreshToken(ctx, &models.RefreshToken{
		TokenID:   pair.RefreshTokenID,
		UserID:    user.ID,
		ExpiresAt: pair.RefreshExpiresAt,
	}); err != nil {
		return nil, s.storeError("CreateRefreshToken", err)
	}

	return &AuthResult{Tokens: pair, UserID: user.ID, Email: user.Email}, nil
}

func (s *authServiceImpl) storeError(op string, err error) *ServiceError {
	if database.IsUndefinedTable(err) {
		return NotProvisioned()
	}
	s.logger.Error(op+" failed", zap.Error(err))
	return internalError("Internal server error")
}

// GenerateRandomCode returns a numeric code of the given length.
func GenerateRandomCode(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
