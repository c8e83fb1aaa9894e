package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/adapter/backend"
	"github.com/tiptravel/tip-web/internal/adapter/cache"
	"github.com/tiptravel/tip-web/internal/adapter/store"
	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/middleware"
	"github.com/tiptravel/tip-web/internal/service"
	"github.com/tiptravel/tip-web/internal/session"
	"github.com/tiptravel/tip-web/pkg/config"
)

const (
	sessionCookie = "tip_session"
	deviceCookie  = "device_id"
	testUA        = "handler-test/1.0"
)

// fakeAPI stands in for the remote backend.
type fakeAPI struct {
	refreshStatus atomic.Int64
	refreshCalls  atomic.Int64
	logoutCalls   atomic.Int64

	mu        sync.Mutex
	lastLogin map[string]string
}

func (f *fakeAPI) loginBody() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLogin
}

func reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func authorized(r *http.Request) bool {
	a := r.Header.Get("Authorization")
	return a == "Bearer at-1" || a == "Bearer at-2"
}

const tokensBody = `{"success":true,"data":{"access_token":"at-1","refresh_token":"rt-1","token_type":"bearer"}}`

func (f *fakeAPI) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.lastLogin = body
		f.mu.Unlock()
		switch body["password"] {
		case "wrong":
			reply(w, http.StatusUnauthorized, `{"detail":"Incorrect email or password"}`)
		case "down":
			reply(w, http.StatusBadGateway, `bad gateway`)
		default:
			reply(w, http.StatusOK, tokensBody)
		}
	})
	mux.HandleFunc("POST /api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch {
		case body["email"] == "taken@example.com":
			reply(w, http.StatusConflict, `{"detail":"Email already registered"}`)
		case body["verification_code"] == "000000":
			reply(w, http.StatusBadRequest, `{"detail":"Invalid verification code"}`)
		default:
			reply(w, http.StatusOK, tokensBody)
		}
	})
	mux.HandleFunc("GET /api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			reply(w, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
			return
		}
		reply(w, http.StatusOK, `{"code":200,"data":{"id":7,"email":"guest@example.com","first_name":"Ada","last_name":"Lovelace","is_verified":true}}`)
	})
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if s := f.refreshStatus.Load(); s != 0 {
			reply(w, int(s), `{"detail":"refresh token revoked"}`)
			return
		}
		reply(w, http.StatusOK, `{"success":true,"data":{"access_token":"at-2"}}`)
	})
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls.Add(1)
		reply(w, http.StatusOK, `{"success":true}`)
	})
	mux.HandleFunc("POST /api/v1/auth/send-verification", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"success":true,"message":"sent"}`)
	})
	mux.HandleFunc("POST /api/v1/auth/reset-password", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["verification_code"] == "000000" {
			reply(w, http.StatusBadRequest, `{"detail":"Verification code expired"}`)
			return
		}
		reply(w, http.StatusOK, `{"success":true}`)
	})

	mux.HandleFunc("GET /api/v1/hotel", func(w http.ResponseWriter, r *http.Request) {
		out, _ := json.Marshal(map[string]any{
			"success": true,
			"data": map[string]any{
				"items":    []map[string]any{{"id": 1, "name": "Le Bristol"}},
				"total":    1,
				"query":    r.URL.RawQuery,
				"language": r.Header.Get("Language"),
			},
		})
		reply(w, http.StatusOK, string(out))
	})
	mux.HandleFunc("GET /api/v1/hotel/hotels/recommend", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"success":true,"data":[{"id":2,"name":"Aman Tokyo"}]}`)
	})
	mux.HandleFunc("GET /api/v1/hotel/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "404" {
			reply(w, http.StatusNotFound, `{"detail":"Hotel not found"}`)
			return
		}
		reply(w, http.StatusOK, `{"success":true,"data":{"id":1,"name":"Le Bristol","city_id":3,"city":{"id":3,"name":"Paris"},
			"address":"112 Rue du Faubourg Saint-Honoré, 75008 Paris, France","image":["hotels/1.jpg"],"language":"en"}}`)
	})

	mux.HandleFunc("GET /api/v1/trip/list", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			reply(w, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
			return
		}
		reply(w, http.StatusOK, `{"success":true,"data":{"items":[{"id":11,"user_id":7,"adults":2,"kids":0,"purpose":"honeymoon","status":"paid","has_comments":false}],"total":4}}`)
	})
	mux.HandleFunc("GET /api/v1/trip/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			reply(w, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
			return
		}
		reply(w, http.StatusOK, `{"success":true,"data":{"id":`+r.PathValue("id")+`,"status":"in-progress"}}`)
	})

	mux.HandleFunc("POST /api/v1/ai-chat/create-session", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"success":true,"data":{"session_id":"s-1","language":"`+r.Header.Get("Language")+`"}}`)
	})
	mux.HandleFunc("POST /api/v1/ai-chat/message", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		out, _ := json.Marshal(map[string]any{
			"success": true,
			"data":    map[string]any{"reply": "Certainly.", "message_type": body["message_type"]},
		})
		reply(w, http.StatusOK, string(out))
	})
	mux.HandleFunc("GET /api/v1/ai-chat/history/{id}", func(w http.ResponseWriter, r *http.Request) {
		out, _ := json.Marshal(map[string]any{
			"success": true,
			"data": map[string]any{
				"session_id": r.PathValue("id"),
				"page":       r.URL.Query().Get("page"),
				"per_page":   r.URL.Query().Get("per_page"),
			},
		})
		reply(w, http.StatusOK, string(out))
	})
	mux.HandleFunc("POST /api/v1/media/transcribe-audio", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"success":true,"data":{"text":"book a table"}}`)
	})
	mux.HandleFunc("POST /api/v1/media/analyze-image", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"success":true,"data":{"description":"a beach"}}`)
	})
	return mux
}

type testEnv struct {
	app   *fiber.App
	api   *fakeAPI
	codec *session.Codec
	audit *store.LogStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.routes())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AppName:             "TIP Test",
		AccessTokenLifetime: 30 * time.Minute,
		AccessTokenMargin:   time.Minute,
		SessionMaxAge:       24 * time.Hour,
		DeviceIDMaxAge:      365 * 24 * time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client := backend.NewClient(srv.URL+"/api/v1", 2*time.Second)
	codec, err := session.NewCodec("handler-secret", "tip-web-test")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	refresher := session.NewRefresher(client, cfg.AccessTokenTTL(), time.Second)
	gate := session.NewGate(codec, refresher, logger)
	cookies := middleware.NewCookies(middleware.CookieConfig{
		SessionName:  sessionCookie,
		DeviceName:   deviceCookie,
		DeviceMaxAge: cfg.DeviceIDMaxAge,
	}, codec)
	audit := store.NewLogStore(logger, 100)

	authService := service.NewAuthService(client, refresher, cfg)
	tripService := service.NewTripService(client)

	app := fiber.New()
	app.Use(middleware.SessionGate(gate, cookies, audit))

	apiGroup := app.Group("/api")
	NewAuthHandler(authService, cookies, audit).Register(apiGroup)
	NewHotelHandler(service.NewCatalogService(client, cache.Noop{}, time.Minute, "https://cdn.example.com")).Register(apiGroup)
	NewTripHandler(tripService).Register(apiGroup)
	NewChatHandler(service.NewChatService(client)).Register(apiGroup)
	NewMediaHandler(service.NewMediaService(client)).Register(apiGroup)
	NewDashboardHandler(service.NewDashboardService(client, tripService)).Register(apiGroup)
	NewAuditHandler(audit).Register(apiGroup)
	NewPageHandler(cfg.AppName).Register(app)

	return &testEnv{app: app, api: api, codec: codec, audit: audit}
}

// token encodes a logged-in session whose access token expires in accessExpiresIn.
func (e *testEnv) token(t *testing.T, accessExpiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	tok, err := e.codec.Encode(&domain.Session{
		AccessToken:          "at-1",
		RefreshToken:         "rt-1",
		DeviceID:             "dev-1",
		AccessTokenExpiresAt: now.Add(accessExpiresIn),
		User:                 domain.User{ID: 7, Email: "guest@example.com", FirstName: "Ada", LastName: "Lovelace"},
		ExpiresAt:            now.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return tok
}

type request struct {
	method  string
	path    string
	body    string
	cookies []*http.Cookie
	header  map[string]string
}

func (e *testEnv) do(t *testing.T, r request) *http.Response {
	t.Helper()
	if r.method == "" {
		r.method = http.MethodGet
	}
	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	req.Header.Set("User-Agent", testUA)
	if r.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	resp, err := e.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", r.method, r.path, err)
	}
	return resp
}

func withSession(tok string) []*http.Cookie {
	return []*http.Cookie{{Name: sessionCookie, Value: tok}}
}

type apiResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decodeAPI(t *testing.T, resp *http.Response) apiResponse {
	t.Helper()
	defer resp.Body.Close()
	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func cleared(c *http.Cookie) bool {
	return c != nil && c.Value == "" && (c.MaxAge < 0 || c.Expires.Before(time.Unix(1, 0)))
}
