package service

import (
	"context"
	"encoding/json"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
)

// History paging defaults.
const (
	DefaultHistoryPage    = 1
	DefaultHistoryPerPage = 50
	MaxHistoryPerPage     = 100
)

// ChatService talks to the AI concierge.
type ChatService struct {
	backend port.ChatBackend
}

func NewChatService(backend port.ChatBackend) *ChatService {
	return &ChatService{backend: backend}
}

func (s *ChatService) CreateSession(ctx context.Context, sess *domain.Session, language string) (json.RawMessage, error) {
	if !sess.LoggedIn() {
		return nil, port.ErrUnauthenticated
	}
	return s.backend.CreateChatSession(ctx, sess.AccessToken, language)
}

// Send posts a message; an empty message type is sent as text.
func (s *ChatService) Send(ctx context.Context, sess *domain.Session, msg port.ChatMessageInput) (json.RawMessage, error) {
	if !sess.LoggedIn() {
		return nil, port.ErrUnauthenticated
	}
	if msg.MessageType == "" {
		msg.MessageType = domain.MessageTypeText
	}
	return s.backend.SendChatMessage(ctx, sess.AccessToken, msg)
}

// History returns a page of messages. Non-positive values fall back to the defaults.
func (s *ChatService) History(ctx context.Context, sess *domain.Session, sessionID string, page, perPage int) (json.RawMessage, error) {
	if !sess.LoggedIn() {
		return nil, port.ErrUnauthenticated
	}
	if sessionID == "" {
		return nil, port.ErrBadRequest
	}
	if page <= 0 {
		page = DefaultHistoryPage
	}
	if perPage <= 0 {
		perPage = DefaultHistoryPerPage
	}
	if perPage > MaxHistoryPerPage {
		perPage = MaxHistoryPerPage
	}
	return s.backend.ChatHistory(ctx, sess.AccessToken, sessionID, page, perPage)
}

// MediaService forwards uploaded media to the concierge for processing.
type MediaService struct {
	backend port.MediaBackend
}

func NewMediaService(backend port.MediaBackend) *MediaService {
	return &MediaService{backend: backend}
}

func (s *MediaService) TranscribeAudio(ctx context.Context, sess *domain.Session, language string, in port.MediaInput) (json.RawMessage, error) {
	if err := checkMedia(sess, in); err != nil {
		return nil, err
	}
	return s.backend.TranscribeAudio(ctx, sess.AccessToken, language, in)
}

func (s *MediaService) AnalyzeImage(ctx context.Context, sess *domain.Session, language string, in port.MediaInput) (json.RawMessage, error) {
	if err := checkMedia(sess, in); err != nil {
		return nil, err
	}
	return s.backend.AnalyzeImage(ctx, sess.AccessToken, language, in)
}

func checkMedia(sess *domain.Session, in port.MediaInput) error {
	if !sess.LoggedIn() {
		return port.ErrUnauthenticated
	}
	if in.SessionID == "" || in.MediaURL == "" {
		return port.ErrBadRequest
	}
	return nil
}
