package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
	"github.com/tiptravel/tip-web/internal/session"
)

const testCookie = "tip_session"

type stubAuth struct {
	port.AuthBackend
	refresh func() (string, error)
}

func (s stubAuth) Refresh(context.Context, string, string) (string, error) { return s.refresh() }

type chanAudit chan domain.AuditLog

func (a chanAudit) WriteAudit(_ context.Context, e domain.AuditLog) error {
	a <- e
	return nil
}

type fixture struct {
	app     *fiber.App
	codec   *session.Codec
	cookies *Cookies
	audit   chanAudit
}

func newFixture(t *testing.T, refresh func() (string, error)) *fixture {
	t.Helper()
	codec, err := session.NewCodec("middleware-secret", "tip-web-test")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := session.NewGate(codec, session.NewRefresher(stubAuth{refresh: refresh}, 29*time.Minute, time.Second), logger)
	cookies := NewCookies(CookieConfig{SessionName: testCookie, DeviceName: "device_id", DeviceMaxAge: 365 * 24 * time.Hour}, codec)
	audit := make(chanAudit, 16)

	app := fiber.New()
	app.Use(SessionGate(gate, cookies, audit))
	app.Get("/concierge", func(c fiber.Ctx) error {
		return c.SendString("concierge:" + GetSession(c).AccessToken)
	})
	app.Get("/insights", func(c fiber.Ctx) error { return c.SendString("insights") })
	app.Get("/api/private", RequireSession(), func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"refreshed": JustRefreshed(c)})
	})
	return &fixture{app: app, codec: codec, cookies: cookies, audit: audit}
}

func (f *fixture) token(t *testing.T, accessExpiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	tok, err := f.codec.Encode(&domain.Session{
		AccessToken:          "old",
		RefreshToken:         "rt",
		DeviceID:             "dev",
		AccessTokenExpiresAt: now.Add(accessExpiresIn),
		User:                 domain.User{ID: 7},
		ExpiresAt:            now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return tok
}

func (f *fixture) do(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}
	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestGateRefreshRewritesCookie(t *testing.T) {
	f := newFixture(t, func() (string, error) { return "new", nil })

	resp := f.do(t, "/concierge", f.token(t, -time.Minute))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "concierge:new" {
		t.Fatalf("body = %q", body)
	}

	c := findCookie(resp, testCookie)
	if c == nil {
		t.Fatal("refreshed session cookie not written")
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Fatalf("cookie attributes = %+v", c)
	}
	if c.MaxAge <= 0 || c.MaxAge > 24*60*60 {
		t.Fatalf("MaxAge = %d, want remaining session lifetime", c.MaxAge)
	}
	s, err := f.codec.Decode(c.Value)
	if err != nil {
		t.Fatalf("Decode rewritten cookie: %v", err)
	}
	if s.AccessToken != "new" {
		t.Fatalf("AccessToken = %q", s.AccessToken)
	}
}

func TestGateRefreshFailureRedirectsAndAudits(t *testing.T) {
	f := newFixture(t, func() (string, error) { return "", &port.BackendError{Status: 401} })

	resp := f.do(t, "/concierge", f.token(t, -time.Minute))
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/sign-in?redirect=/concierge" {
		t.Fatalf("Location = %q", loc)
	}

	c := findCookie(resp, testCookie)
	if c == nil {
		t.Fatal("error-marked session should be persisted")
	}
	s, err := f.codec.Decode(c.Value)
	if err != nil || s.Error != domain.RefreshAccessTokenError {
		t.Fatalf("persisted session = %+v, %v", s, err)
	}

	select {
	case e := <-f.audit:
		if e.Action != domain.AuditActionRefreshFailed || e.UserID != "7" {
			t.Fatalf("audit entry = %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresh failure was not audited")
	}
}

func TestGateClearsInvalidCookie(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.do(t, "/insights", "tampered")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	c := findCookie(resp, testCookie)
	if c == nil || c.Value != "" {
		t.Fatalf("invalid cookie should be cleared, got %+v", c)
	}
}

func TestRequireSession(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.do(t, "/api/private", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"message":"Unauthorized","success":false}` {
		t.Fatalf("body = %s", body)
	}

	resp = f.do(t, "/api/private", f.token(t, time.Minute))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ = io.ReadAll(resp.Body)
	if string(body) != `{"refreshed":false}` {
		t.Fatalf("body = %s", body)
	}
}

func TestAuditMiddlewareRecordsRequest(t *testing.T) {
	audit := make(chanAudit, 1)
	app := fiber.New()
	app.Use(AuditMiddleware(audit))
	app.Get("/insights", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/insights", nil)
	req.Header.Set("User-Agent", "audit-test")
	if _, err := app.Test(req); err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	select {
	case e := <-audit:
		if e.Action != domain.AuditActionRequest || e.UserID != domain.AnonymousUser || e.ResourceID != "/insights" || e.UserAgent != "audit-test" {
			t.Fatalf("audit entry = %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request was not audited")
	}
}
