package port

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors used across ports.
var (
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrSessionInvalid          = errors.New("session token invalid")
	ErrRefreshFailed           = errors.New("access token refresh failed")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	ErrEmailAlreadyRegistered  = errors.New("email already registered")
	ErrBackendUnavailable      = errors.New("service temporarily unavailable")
	ErrNotFound                = errors.New("not found")
	ErrBadRequest              = errors.New("bad request")
)

// BackendError is a non-2xx answer from the backend API.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error (%d)", e.Status)
	}
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
}

// Is lets errors.Is match a BackendError against the coarse sentinels.
func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrBackendUnavailable:
		return e.Status >= http.StatusInternalServerError
	case ErrBadRequest:
		return e.Status >= 400 && e.Status < 500 && e.Status != http.StatusUnauthorized && e.Status != http.StatusNotFound
	}
	return false
}

// IsClientError reports whether err is a 4xx BackendError.
func IsClientError(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Status >= 400 && be.Status < 500
}

// BackendMessage returns the backend's own message for err, if any.
func BackendMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}
