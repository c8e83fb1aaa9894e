package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tiptravel/tip-web/internal/domain"
)

const testSecret = "test-secret"

// fakeAuth implements port.AuthBackend; only Refresh is exercised here.
type fakeAuth struct {
	mu        sync.Mutex
	calls     atomic.Int64
	refreshFn func(refreshToken, deviceID string) (string, error)
	seen      []string
}

func (f *fakeAuth) Refresh(_ context.Context, refreshToken, deviceID string) (string, error) {
	n := f.calls.Add(1)
	f.mu.Lock()
	f.seen = append(f.seen, deviceID)
	f.mu.Unlock()
	if f.refreshFn != nil {
		return f.refreshFn(refreshToken, deviceID)
	}
	return fmt.Sprintf("access-%d", n), nil
}

func (f *fakeAuth) Login(context.Context, string, string, string) (*domain.TokenPair, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuth) Register(context.Context, string, string, string, string) (*domain.TokenPair, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuth) Me(context.Context, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuth) Logout(context.Context, string) error { return nil }

func (f *fakeAuth) SendVerificationCode(context.Context, string, string) error { return nil }

func (f *fakeAuth) ResetPassword(context.Context, string, string, string, string) error { return nil }

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, "tip-web-test")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func makeSession(now time.Time, accessExpiresIn time.Duration) *domain.Session {
	return &domain.Session{
		AccessToken:          "access-0",
		RefreshToken:         "refresh-0",
		DeviceID:             "device-abc",
		AccessTokenExpiresAt: now.Add(accessExpiresIn),
		User:                 domain.User{ID: 7, Email: "guest@example.com", IsVerified: true},
		ExpiresAt:            now.Add(7 * 24 * time.Hour),
	}
}

func encode(t *testing.T, c *Codec, s *domain.Session) string {
	t.Helper()
	tok, err := c.Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return tok
}
