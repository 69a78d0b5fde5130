package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/maxwellzeha/jonduplastics/models"
	aws_pkg "github.com/maxwellzeha/jonduplastics/pkg/aws"
	"github.com/maxwellzeha/jonduplastics/providers"
	"github.com/maxwellzeha/jonduplastics/repository"
	"go.uber.org/zap"
)

const inquirySubjectPrefix = "New Jondu Global Services Inquiry: "

type InquiryService interface {
	// Submit relays a contact-form inquiry. callerID is nil for anonymous visitors.
	Submit(ctx context.Context, callerID *uuid.UUID, req *models.InquiryRequest) (*models.InquiryResponse, *ServiceError)
}

type inquiryServiceImpl struct {
	relay    providers.FormRelay
	profiles repository.ProfileRepository
	metrics  *aws_pkg.MetricsClient
	siteURL  string
	logger   *zap.Logger
}

func NewInquiryService(
	relay providers.FormRelay,
	profiles repository.ProfileRepository,
	metrics *aws_pkg.MetricsClient,
	siteURL string,
	logger *zap.Logger,
) InquiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inquiryServiceImpl{
		relay:    relay,
		profiles: profiles,
		metrics:  metrics,
		siteURL:  strings.TrimRight(siteURL, "/"),
		logger:   logger,
	}
}

// RedirectURL is where the relay sends the visitor after a successful submission.
func (s *inquiryServiceImpl) RedirectURL() string {
	return s.siteURL + "/inquiries?submitted=true"
}

func (s *inquiryServiceImpl) Submit(ctx context.Context, callerID *uuid.UUID, req *models.InquiryRequest) (*models.InquiryResponse, *ServiceError) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if callerID != nil && s.profiles != nil {
		if p, err := s.profiles.FindByID(ctx, *callerID); err == nil {
			if full := strings.TrimSpace(p.FirstName + " " + p.LastName); full != "" {
				name = full
			}
			if p.Email != "" {
				email = p.Email
			}
		} else {
			s.logger.Debug("No profile for inquiry prefill", zap.String("user_id", callerID.String()), zap.Error(err))
		}
	}

	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)
	if name == "" || email == "" || subject == "" || message == "" {
		return nil, badRequest(CodeInvalidRequest, msgFillAllFields)
	}
	if !validEmail(email) {
		return nil, badRequest(CodeInvalidRequest, msgInvalidEmail)
	}

	fields := url.Values{
		"name":     {name},
		"email":    {email},
		"subject":  {subject},
		"message":  {message},
		"_next":    {s.RedirectURL()},
		"_subject": {inquirySubjectPrefix + subject},
		"_captcha": {"false"},
	}
	if err := s.relay.Submit(ctx, fields); err != nil {
		s.logger.Error("Inquiry relay failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Code: CodeRelayFailed, Message: "Failed to send inquiry: " + err.Error()}
	}

	_ = s.metrics.RecordCount(ctx, aws_pkg.MetricInquiriesRelayed, nil)
	return &models.InquiryResponse{Submitted: true, RedirectURL: s.RedirectURL()}, nil
}
