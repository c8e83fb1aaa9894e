package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
	"github.com/tiptravel/tip-web/internal/session"
	"github.com/tiptravel/tip-web/pkg/config"
)

// AuthService exchanges credentials with the backend and builds sessions.
type AuthService struct {
	backend    port.AuthBackend
	refresher  *session.Refresher
	accessTTL  time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(backend port.AuthBackend, refresher *session.Refresher, cfg *config.Config) *AuthService {
	return &AuthService{
		backend:    backend,
		refresher:  refresher,
		accessTTL:  cfg.AccessTokenTTL(),
		sessionTTL: cfg.SessionMaxAge,
		now:        time.Now,
	}
}

// Login exchanges credentials for a new session.
// Backend 4xx maps to port.ErrInvalidCredentials; network and 5xx to port.ErrBackendUnavailable.
func (s *AuthService) Login(ctx context.Context, email, password, deviceID string) (*domain.Session, error) {
	tokens, err := s.backend.Login(ctx, email, password, deviceID)
	if err != nil {
		return nil, loginError(err)
	}
	sess, err := s.establish(ctx, tokens, deviceID, loginError)
	if err != nil {
		return nil, err
	}
	slog.Info("user signed in", "user_id", sess.User.ID)
	return sess, nil
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, email, password, deviceID, code string) (*domain.Session, error) {
	tokens, err := s.backend.Register(ctx, email, password, deviceID, code)
	if err != nil {
		return nil, registerError(err)
	}
	sess, err := s.establish(ctx, tokens, deviceID, loginError)
	if err != nil {
		return nil, err
	}
	slog.Info("user registered", "user_id", sess.User.ID)
	return sess, nil
}

// establish fetches the identity snapshot and assembles the session.
func (s *AuthService) establish(ctx context.Context, tokens *domain.TokenPair, deviceID string, mapErr func(error) error) (*domain.Session, error) {
	user, err := s.backend.Me(ctx, tokens.AccessToken)
	if err != nil {
		return nil, mapErr(err)
	}

	now := s.now()
	return &domain.Session{
		AccessToken:          tokens.AccessToken,
		RefreshToken:         tokens.RefreshToken,
		DeviceID:             deviceID,
		AccessTokenExpiresAt: now.Add(s.accessTTL),
		User:                 *user,
		ExpiresAt:            now.Add(s.sessionTTL),
	}, nil
}

// Logout revokes the access token on the backend. Failures are logged and ignored.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) {
	if sess == nil || sess.AccessToken == "" {
		return
	}
	if err := s.backend.Logout(ctx, sess.AccessToken); err != nil {
		slog.Debug("backend logout failed", "user_id", sess.User.ID, "error", err)
	}
}

// CurrentUser asks the backend for the identity behind the session.
func (s *AuthService) CurrentUser(ctx context.Context, sess *domain.Session) (*domain.User, error) {
	if !sess.LoggedIn() {
		return nil, port.ErrUnauthenticated
	}
	user, err := s.backend.Me(ctx, sess.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

// ForceRefresh refreshes the access token regardless of its expiry. On
// failure the returned session carries the terminal error marker.
func (s *AuthService) ForceRefresh(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
	if sess == nil || sess.RefreshToken == "" || sess.DeviceID == "" {
		return sess, port.ErrUnauthenticated
	}
	return s.refresher.Refresh(ctx, sess)
}

// SendVerificationCode emails a one-time code for "register" or "forgot-password".
func (s *AuthService) SendVerificationCode(ctx context.Context, email, codeType string) error {
	if err := s.backend.SendVerificationCode(ctx, email, codeType); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}
	return nil
}

// ResetPassword sets a new password. A rejected code maps to port.ErrInvalidVerificationCode.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, password, deviceID string) error {
	err := s.backend.ResetPassword(ctx, email, code, password, deviceID)
	switch {
	case err == nil:
		return nil
	case port.IsClientError(err):
		return fmt.Errorf("%w: %w", port.ErrInvalidVerificationCode, err)
	default:
		return fmt.Errorf("%w: %w", port.ErrBackendUnavailable, err)
	}
}

func loginError(err error) error {
	if port.IsClientError(err) {
		return fmt.Errorf("%w: %w", port.ErrInvalidCredentials, err)
	}
	if errors.Is(err, port.ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", port.ErrBackendUnavailable, err)
}

// registerError distinguishes a taken email (409 or an "already registered"
// detail) from a rejected verification code (any other 4xx).
func registerError(err error) error {
	var be *port.BackendError
	if errors.As(err, &be) && be.Status >= 400 && be.Status < 500 {
		if be.Status == http.StatusConflict || strings.Contains(strings.ToLower(be.Message), "already") {
			return fmt.Errorf("%w: %w", port.ErrEmailAlreadyRegistered, err)
		}
		return fmt.Errorf("%w: %w", port.ErrInvalidVerificationCode, err)
	}
	if errors.Is(err, port.ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", port.ErrBackendUnavailable, err)
}
