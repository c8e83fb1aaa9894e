package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tiptravel/tip-web/internal/domain"
)

// Result types shared with the server.
type (
	User        = domain.User
	Hotel       = domain.Hotel
	Trip        = domain.Trip
	TripList    = domain.TripList
	TripDetail  = domain.TripDetail
	ChatSession = domain.ChatSession
	ChatReply   = domain.ChatReply
	ChatHistory = domain.ChatHistory
	ChatMessage = domain.ChatMessage
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"device_id,omitempty"`
}

type RegisterRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	VerificationCode string `json:"verification_code"`
	DeviceID         string `json:"device_id,omitempty"`
}

type ResetPasswordRequest struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verification_code"`
	Password         string `json:"password"`
	DeviceID         string `json:"device_id,omitempty"`
}

// MessageRequest is one concierge message. MessageType defaults to text.
type MessageRequest struct {
	SessionID   string `json:"session_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
}

// List is a page of items. It accepts a bare array or an object holding
// the items under "items" or "hotels".
type List[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func (l *List[T]) UnmarshalJSON(b []byte) error {
	var items []T
	if err := json.Unmarshal(b, &items); err == nil {
		l.Items = items
		l.Total = len(items)
		return nil
	}

	var obj struct {
		Items  []T  `json:"items"`
		Hotels []T  `json:"hotels"`
		Total  *int `json:"total"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return errors.New("client: unsupported list payload")
	}
	l.Items = obj.Items
	if l.Items == nil {
		l.Items = obj.Hotels
	}
	l.Total = len(l.Items)
	if obj.Total != nil {
		l.Total = *obj.Total
	}
	return nil
}

type userData struct {
	User User `json:"user"`
}

// Login signs in and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*User, error) {
	req.DeviceID = c.deviceID(req.DeviceID)
	var out userData
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: req, credentials: true}, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	req.DeviceID = c.deviceID(req.DeviceID)
	var out userData
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: req, credentials: true}, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// SendVerificationCode emails a code; codeType is "register" or "forgot-password".
func (c *Client) SendVerificationCode(ctx context.Context, email, codeType string) error {
	return c.do(ctx, call{
		method:      http.MethodPost,
		path:        "/auth/send-verification",
		body:        map[string]string{"email": email, "code_type": codeType},
		credentials: true,
	}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	req.DeviceID = c.deviceID(req.DeviceID)
	return c.do(ctx, call{method: http.MethodPost, path: "/auth/reset-password", body: req, credentials: true}, nil)
}

// Logout ends the session. The server clears the cookies even when the
// backend cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/auth/logout"}, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me"}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Hotels searches the catalog, e.g. url.Values{"city_id": {"3"}}.
func (c *Client) Hotels(ctx context.Context, query url.Values) (*List[Hotel], error) {
	var out List[Hotel]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/hotels", query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecommendedHotels(ctx context.Context) (*List[Hotel], error) {
	var out List[Hotel]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/hotels/recommend"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Hotel(ctx context.Context, id string) (*Hotel, error) {
	var h Hotel
	if err := c.do(ctx, call{method: http.MethodGet, path: "/hotels/" + url.PathEscape(id)}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) Trips(ctx context.Context, query url.Values) (*TripList, error) {
	var out TripList
	if err := c.do(ctx, call{method: http.MethodGet, path: "/trip/list", query: query}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Trip(ctx context.Context, id string) (*TripDetail, error) {
	var t TripDetail
	if err := c.do(ctx, call{method: http.MethodGet, path: "/trip/" + url.PathEscape(id)}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateChatSession opens a concierge conversation. An empty language uses
// the client's language.
func (c *Client) CreateChatSession(ctx context.Context, language string) (*ChatSession, error) {
	var body any
	if language != "" {
		body = map[string]string{"language": language}
	}
	var s ChatSession
	if err := c.do(ctx, call{method: http.MethodPost, path: "/ai-chat/create-session", body: body}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) SendMessage(ctx context.Context, msg MessageRequest) (*ChatReply, error) {
	if msg.MessageType == "" {
		msg.MessageType = domain.MessageTypeText
	}
	var r ChatReply
	if err := c.do(ctx, call{method: http.MethodPost, path: "/ai-chat/message", body: msg}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// History returns a page of a conversation. Non-positive page values use the server defaults.
func (c *Client) History(ctx context.Context, sessionID string, page, perPage int) (*ChatHistory, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}
	var h ChatHistory
	if err := c.do(ctx, call{method: http.MethodGet, path: "/ai-chat/history/" + url.PathEscape(sessionID), query: query}, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
