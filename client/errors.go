package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/maxwellzeha/jonduplastics/session"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	// ErrNotSignedIn is returned by calls that need a session when no
	// access token is held.
	ErrNotSignedIn = errors.New("not signed in")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
	// SetupSQL carries the remediation script on backend_not_provisioned.
	SetupSQL string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d (%s)", e.Status, e.Code)
	}
	return e.Message
}

// Unwrap maps well-known codes onto sentinel errors so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.Code == "backend_not_provisioned":
		return session.ErrBackendNotProvisioned
	case e.Code == "unauthorized" || e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}
