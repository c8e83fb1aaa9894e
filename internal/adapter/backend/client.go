package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tiptravel/tip-web/internal/port"
)

// DefaultLanguage is pinned on auth calls.
const DefaultLanguage = "en"

const maxBodyBytes = 8 << 20

// Client talks to the remote backend API. It implements port.AuthBackend,
// port.CatalogBackend, port.TripBackend, port.ChatBackend and port.MediaBackend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	language   string
}

// NewClient creates a backend client rooted at baseURL (e.g. http://host/api/v1).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		language:   DefaultLanguage,
	}
}

// SetLanguage changes the content language used when a call names none.
// Auth calls stay on DefaultLanguage.
func (cl *Client) SetLanguage(lang string) {
	if lang != "" {
		cl.language = lang
	}
}

type call struct {
	method   string
	path     string
	query    url.Values
	token    string
	language string
	body     any
}

// envelope covers both response shapes the backend emits:
// {"success": bool, "data": ...} and {"code": int, "data": ...}.
type envelope struct {
	Success *bool           `json:"success"`
	Code    *int            `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

// do executes c and returns the normalized data payload.
func (cl *Client) do(ctx context.Context, c call) (json.RawMessage, error) {
	u := cl.baseURL + c.path
	if len(c.query) > 0 {
		u += "?" + c.query.Encode()
	}

	var body io.Reader
	if c.body != nil {
		buf, err := json.Marshal(c.body)
		if err != nil {
			return nil, fmt.Errorf("backend: marshal %s body: %w", c.path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("backend: create %s request: %w", c.path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.language != "" {
		req.Header.Set("Language", c.language)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := cl.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: %s %s: %w: %w", c.method, c.path, port.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("backend: read %s response: %w: %w", c.path, port.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &port.BackendError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	return normalize(raw)
}

// normalize unwraps the data payload. A 2xx body that reports failure
// in-band ({"success": false} or a non-success code) becomes a 422 BackendError.
func normalize(raw []byte) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Not an object; pass the payload through as-is when it is still valid JSON.
		if json.Valid(raw) {
			return json.RawMessage(raw), nil
		}
		return nil, fmt.Errorf("backend: decode response: %w", err)
	}

	if (env.Success != nil && !*env.Success) || (env.Code != nil && !successCode(*env.Code)) {
		return nil, &port.BackendError{Status: http.StatusUnprocessableEntity, Message: errorMessage(raw)}
	}
	if env.Success == nil && env.Code == nil && env.Data == nil {
		return json.RawMessage(raw), nil
	}
	if env.Data == nil {
		return json.RawMessage("null"), nil
	}
	return env.Data, nil
}

func successCode(code int) bool {
	return code == 0 || (code >= 200 && code < 300)
}

// errorMessage extracts "detail" (string or FastAPI-style list) or "message".
func errorMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	if len(env.Detail) > 0 {
		var s string
		if err := json.Unmarshal(env.Detail, &s); err == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(env.Detail, &items); err == nil && len(items) > 0 {
			return items[0].Msg
		}
	}
	return env.Message
}

// decode unmarshals a normalized payload into v.
func decode(data json.RawMessage, v any, what string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("backend: decode %s: %w", what, err)
	}
	return nil
}

// IsUnavailable reports whether err means the backend could not be reached
// or answered with a server error.
func IsUnavailable(err error) bool {
	return errors.Is(err, port.ErrBackendUnavailable)
}
