package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
	"github.com/tiptravel/tip-web/pkg/config"
)

var errNotStubbed = errors.New("not stubbed")

// fakeBackend implements every backend port with overridable funcs.
type fakeBackend struct {
	loginFn    func(email, password, deviceID string) (*domain.TokenPair, error)
	registerFn func(email, password, deviceID, code string) (*domain.TokenPair, error)
	meFn       func(token string) (*domain.User, error)
	resetFn    func() error
	hotelsFn   func(q url.Values, lang string) (json.RawMessage, error)
	hotelFn    func(id, lang string) (json.RawMessage, error)
	tripsFn    func(token string, q url.Values) (json.RawMessage, error)
	historyFn  func(sessionID string, page, perPage int) (json.RawMessage, error)
	sendFn     func(msg port.ChatMessageInput) (json.RawMessage, error)

	logouts       atomic.Int64
	catalogCalls  atomic.Int64
	mediaRequests atomic.Int64
}

func (f *fakeBackend) Login(_ context.Context, email, password, deviceID string) (*domain.TokenPair, error) {
	if f.loginFn == nil {
		return nil, errNotStubbed
	}
	return f.loginFn(email, password, deviceID)
}

func (f *fakeBackend) Register(_ context.Context, email, password, deviceID, code string) (*domain.TokenPair, error) {
	if f.registerFn == nil {
		return nil, errNotStubbed
	}
	return f.registerFn(email, password, deviceID, code)
}

func (f *fakeBackend) Refresh(context.Context, string, string) (string, error) {
	return "refreshed", nil
}

func (f *fakeBackend) Me(_ context.Context, token string) (*domain.User, error) {
	if f.meFn == nil {
		return &domain.User{ID: 7, Email: "guest@example.com"}, nil
	}
	return f.meFn(token)
}

func (f *fakeBackend) Logout(context.Context, string) error {
	f.logouts.Add(1)
	return errors.New("backend down")
}

func (f *fakeBackend) SendVerificationCode(context.Context, string, string) error { return nil }

func (f *fakeBackend) ResetPassword(context.Context, string, string, string, string) error {
	if f.resetFn == nil {
		return nil
	}
	return f.resetFn()
}

func (f *fakeBackend) Hotels(_ context.Context, q url.Values, lang string) (json.RawMessage, error) {
	f.catalogCalls.Add(1)
	return f.hotelsFn(q, lang)
}

func (f *fakeBackend) Hotel(_ context.Context, id, lang string) (json.RawMessage, error) {
	f.catalogCalls.Add(1)
	return f.hotelFn(id, lang)
}

func (f *fakeBackend) RecommendedHotels(context.Context, string) (json.RawMessage, error) {
	f.catalogCalls.Add(1)
	return json.RawMessage(`[]`), nil
}

func (f *fakeBackend) Trips(_ context.Context, token string, q url.Values) (json.RawMessage, error) {
	return f.tripsFn(token, q)
}

func (f *fakeBackend) Trip(context.Context, string, string) (json.RawMessage, error) {
	return json.RawMessage(`{"id":1}`), nil
}

func (f *fakeBackend) CreateChatSession(context.Context, string, string) (json.RawMessage, error) {
	return json.RawMessage(`{"session_id":"s-1"}`), nil
}

func (f *fakeBackend) SendChatMessage(_ context.Context, _ string, msg port.ChatMessageInput) (json.RawMessage, error) {
	return f.sendFn(msg)
}

func (f *fakeBackend) ChatHistory(_ context.Context, _ string, sessionID string, page, perPage int) (json.RawMessage, error) {
	return f.historyFn(sessionID, page, perPage)
}

func (f *fakeBackend) TranscribeAudio(context.Context, string, string, port.MediaInput) (json.RawMessage, error) {
	f.mediaRequests.Add(1)
	return json.RawMessage(`{}`), nil
}

func (f *fakeBackend) AnalyzeImage(context.Context, string, string, port.MediaInput) (json.RawMessage, error) {
	f.mediaRequests.Add(1)
	return json.RawMessage(`{}`), nil
}

// memCache is an in-memory port.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, false, errors.New("cache down")
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("cache down")
	}
	c.data[key] = value
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenLifetime: 30 * time.Minute,
		AccessTokenMargin:   time.Minute,
		SessionMaxAge:       7 * 24 * time.Hour,
	}
}

func loggedIn() *domain.Session {
	return &domain.Session{AccessToken: "at", RefreshToken: "rt", DeviceID: "dev"}
}
