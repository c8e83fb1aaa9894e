package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
)

// Refresher renews expired access tokens against the backend.
type Refresher struct {
	backend port.AuthBackend
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

// NewRefresher creates a refresher. ttl is the local validity of a fresh
// access token and must be shorter than the backend's stated lifetime.
func NewRefresher(backend port.AuthBackend, ttl, timeout time.Duration) *Refresher {
	return &Refresher{backend: backend, ttl: ttl, timeout: timeout, now: time.Now}
}

// Refresh performs a single refresh attempt and returns the updated session.
// s is never modified. On failure the returned copy carries the terminal
// error marker and the error wraps port.ErrRefreshFailed.
func (r *Refresher) Refresh(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: no session", port.ErrRefreshFailed)
	}
	if s.RefreshToken == "" {
		next := s.Clone()
		next.Error = domain.RefreshAccessTokenError
		return next, fmt.Errorf("%w: no refresh token", port.ErrRefreshFailed)
	}

	// The call outlives a client abort; it is bounded only by the timeout.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	next := s.Clone()
	accessToken, err := r.backend.Refresh(callCtx, s.RefreshToken, s.DeviceID)
	if err == nil && accessToken == "" {
		err = errors.New("empty access token in refresh response")
	}
	if err != nil {
		next.Error = domain.RefreshAccessTokenError
		return next, fmt.Errorf("%w: %w", port.ErrRefreshFailed, err)
	}

	next.AccessToken = accessToken
	next.AccessTokenExpiresAt = r.now().Add(r.ttl)
	next.Error = ""
	return next, nil
}
