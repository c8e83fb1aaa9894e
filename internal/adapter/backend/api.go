package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tiptravel/tip-web/internal/port"
)

// Hotels searches the catalog. The query is forwarded unchanged.
func (cl *Client) Hotels(ctx context.Context, query url.Values, language string) (json.RawMessage, error) {
	return cl.do(ctx, call{
		method:   http.MethodGet,
		path:     "/hotel",
		query:    query,
		language: cl.orDefault(language),
	})
}

// Hotel returns one hotel's detail record.
func (cl *Client) Hotel(ctx context.Context, id, language string) (json.RawMessage, error) {
	return cl.do(ctx, call{
		method:   http.MethodGet,
		path:     "/hotel/" + url.PathEscape(id),
		language: cl.orDefault(language),
	})
}

// RecommendedHotels returns the curated recommendation list.
func (cl *Client) RecommendedHotels(ctx context.Context, language string) (json.RawMessage, error) {
	lang := cl.orDefault(language)
	return cl.do(ctx, call{
		method:   http.MethodGet,
		path:     "/hotel/hotels/recommend",
		query:    url.Values{"language": {lang}},
		language: lang,
	})
}

// Trips lists the caller's trips. The query is forwarded unchanged.
func (cl *Client) Trips(ctx context.Context, accessToken string, query url.Values) (json.RawMessage, error) {
	return cl.do(ctx, call{
		method: http.MethodGet,
		path:   "/trip/list",
		query:  query,
		token:  accessToken,
	})
}

func (cl *Client) Trip(ctx context.Context, accessToken, id string) (json.RawMessage, error) {
	return cl.do(ctx, call{
		method: http.MethodGet,
		path:   "/trip/" + url.PathEscape(id),
		token:  accessToken,
	})
}

// CreateChatSession opens a concierge conversation in language.
func (cl *Client) CreateChatSession(ctx context.Context, accessToken, language string) (json.RawMessage, error) {
	return cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/ai-chat/create-session",
		token:    accessToken,
		language: cl.orDefault(language),
	})
}

func (cl *Client) SendChatMessage(ctx context.Context, accessToken string, msg port.ChatMessageInput) (json.RawMessage, error) {
	return cl.do(ctx, call{
		method: http.MethodPost,
		path:   "/ai-chat/message",
		token:  accessToken,
		body:   msg,
	})
}

// ChatHistory returns one page of a conversation's messages.
func (cl *Client) ChatHistory(ctx context.Context, accessToken, sessionID string, page, perPage int) (json.RawMessage, error) {
	return cl.do(ctx, call{
		method: http.MethodGet,
		path:   "/ai-chat/history/" + url.PathEscape(sessionID),
		query: url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(perPage)},
		},
		token: accessToken,
	})
}

// TranscribeAudio turns an uploaded voice note into a concierge message.
func (cl *Client) TranscribeAudio(ctx context.Context, accessToken, language string, in port.MediaInput) (json.RawMessage, error) {
	return cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/media/transcribe-audio",
		token:    accessToken,
		language: cl.orDefault(language),
		body:     in,
	})
}

// AnalyzeImage runs the concierge's image analysis on an uploaded photo.
func (cl *Client) AnalyzeImage(ctx context.Context, accessToken, language string, in port.MediaInput) (json.RawMessage, error) {
	return cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/media/analyze-image",
		token:    accessToken,
		language: cl.orDefault(language),
		body:     in,
	})
}

func (cl *Client) orDefault(language string) string {
	if language == "" {
		return cl.language
	}
	return language
}

var (
	_ port.AuthBackend    = (*Client)(nil)
	_ port.CatalogBackend = (*Client)(nil)
	_ port.TripBackend    = (*Client)(nil)
	_ port.ChatBackend    = (*Client)(nil)
	_ port.MediaBackend   = (*Client)(nil)
)
