// Package client is a typed façade over the same-origin /api surface. It
// keeps the session in a cookie jar, decodes the normalized response
// envelope and raises a global unauthorized signal on every 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tiptravel/tip-web/pkg/device"
)

const defaultTimeout = 15 * time.Second

// ErrUnauthorized matches any 401 answer.
var ErrUnauthorized = errors.New("client: unauthorized")

// Error is a failed API call. Fields carries per-field validation messages.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: request failed (%d)", e.Status)
	}
	return fmt.Sprintf("client: %s (%d)", e.Message, e.Status)
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Client calls the web app's /api routes.
type Client struct {
	baseURL  string
	http     *http.Client
	language string

	devices device.Store
	signals device.Signals

	mu        sync.Mutex
	listeners map[uint64]func()
	nextID    uint64
}

type Option func(*Client)

// WithHTTPClient replaces the HTTP client. A cookie jar is added when it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLanguage sets the Language header sent with every call.
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// WithDevice fills in device ids for credential calls that omit one.
func WithDevice(store device.Store, signals device.Signals) Option {
	return func(c *Client) {
		c.devices = store
		c.signals = signals
	}
}

// New creates a client for the app served at baseURL (e.g. https://tip.example.com).
func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("client: cookie jar: %w", err)
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Jar: jar, Timeout: defaultTimeout},
		listeners: make(map[uint64]func()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	return c, nil
}

// OnUnauthorized registers fn to run whenever a call is answered with 401.
// The returned func removes the listener.
func (c *Client) OnUnauthorized(fn func()) (remove func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) fireUnauthorized() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// credentials marks credential exchange calls, whose 401 means
	// "wrong password" rather than "session gone".
	credentials bool
}

// do sends r and decodes the envelope's data into out (when non-nil).
func (c *Client) do(ctx context.Context, r call, out any) error {
	u := c.baseURL + "/api" + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		buf, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("client: marshal %s: %w", r.path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.language != "" {
		req.Header.Set("Language", c.language)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read %s: %w", r.path, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized && !r.credentials {
		c.fireUnauthorized()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		if decodeErr != nil && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return fmt.Errorf("client: decode %s: %w", r.path, decodeErr)
		}
		return &Error{Status: resp.StatusCode, Message: env.Message, Fields: env.Errors}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("client: decode %s data: %w", r.path, err)
	}
	return nil
}

// deviceID returns id, or the cached device id when id is empty.
func (c *Client) deviceID(id string) string {
	if id != "" || c.devices == nil {
		return id
	}
	return device.ID(c.devices, c.signals)
}
