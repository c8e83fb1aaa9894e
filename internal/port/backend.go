package port

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/tiptravel/tip-web/internal/domain"
)

// AuthBackend is the backend's credential and token API.
type AuthBackend interface {
	// Login exchanges credentials for a token pair.
	Login(ctx context.Context, email, password, deviceID string) (*domain.TokenPair, error)

	// Register creates an account and returns its first token pair.
	Register(ctx context.Context, email, password, deviceID, code string) (*domain.TokenPair, error)

	// Refresh mints a new access token from a refresh token bound to deviceID.
	Refresh(ctx context.Context, refreshToken, deviceID string) (string, error)

	// Me returns the identity behind an access token.
	Me(ctx context.Context, accessToken string) (*domain.User, error)

	// Logout revokes the access token server-side.
	Logout(ctx context.Context, accessToken string) error

	SendVerificationCode(ctx context.Context, email, codeType string) error
	ResetPassword(ctx context.Context, email, code, password, deviceID string) error
}

// CatalogBackend serves the public hotel catalog.
type CatalogBackend interface {
	Hotels(ctx context.Context, query url.Values, language string) (json.RawMessage, error)
	Hotel(ctx context.Context, id, language string) (json.RawMessage, error)
	RecommendedHotels(ctx context.Context, language string) (json.RawMessage, error)
}

// TripBackend serves the signed-in user's trips.
type TripBackend interface {
	Trips(ctx context.Context, accessToken string, query url.Values) (json.RawMessage, error)
	Trip(ctx context.Context, accessToken, id string) (json.RawMessage, error)
}

// ChatBackend is the AI concierge API.
type ChatBackend interface {
	CreateChatSession(ctx context.Context, accessToken, language string) (json.RawMessage, error)
	SendChatMessage(ctx context.Context, accessToken string, msg ChatMessageInput) (json.RawMessage, error)
	ChatHistory(ctx context.Context, accessToken, sessionID string, page, perPage int) (json.RawMessage, error)
}

// MediaBackend runs transcription and image analysis on uploaded media.
type MediaBackend interface {
	TranscribeAudio(ctx context.Context, accessToken, language string, in MediaInput) (json.RawMessage, error)
	AnalyzeImage(ctx context.Context, accessToken, language string, in MediaInput) (json.RawMessage, error)
}

// ChatMessageInput is a concierge message to send.
type ChatMessageInput struct {
	SessionID   string `json:"session_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

// MediaInput references an object already uploaded to storage.
type MediaInput struct {
	SessionID string  `json:"session_id"`
	MediaURL  string  `json:"media_url"`
	Duration  float64 `json:"duration,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	Filename  string  `json:"filename,omitempty"`
}
