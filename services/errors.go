package services

import "net/http"

// Machine-readable error codes returned alongside the message.
const (
	CodeInvalidRequest        = "invalid_request"
	CodeUnauthorized          = "unauthorized"
	CodeForbidden             = "forbidden"
	CodeEmailTaken            = "email_taken"
	CodeEmailNotVerified      = "email_not_verified"
	CodeProfileNotFound       = "profile_not_found"
	CodeOrderNotFound         = "order_not_found"
	CodeBelowMinimumQuantity  = "below_minimum_quantity"
	CodeArtworkNotOwned       = "artwork_not_owned"
	CodeUnsupportedArtwork    = "unsupported_artwork_type"
	CodePriceMismatch         = "price_mismatch"
	CodeBackendNotProvisioned = "backend_not_provisioned"
	CodeStorageUnavailable    = "storage_unavailable"
	CodeRelayFailed           = "relay_failed"
	CodeInternal              = "internal_error"
)

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string { return e.Message }

func badRequest(code, msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Code: code, Message: msg}
}

func internalError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: msg}
}

// NotProvisioned is returned when the backing tables have not been created.
func NotProvisioned() *ServiceError {
	return &ServiceError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       CodeBackendNotProvisioned,
		Message:    "The database is not set up yet. Run the setup SQL and reload.",
	}
}
