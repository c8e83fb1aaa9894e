// Package forms holds the request bodies accepted by the same-origin API and
// their validation rules.
package forms

import (
	"strings"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
)

// LoginForm is the body of POST /api/auth/login.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
	DeviceID string `json:"device_id" validate:"omitempty,max=128"`
}

// RegisterForm is the body of POST /api/auth/register.
type RegisterForm struct {
	Email            string `json:"email" validate:"required,email,max=254"`
	Password         string `json:"password" validate:"required,min=8,max=128"`
	DeviceID         string `json:"device_id" validate:"omitempty,max=128"`
	VerificationCode string `json:"verification_code" validate:"required,len=6"`
}

// SendVerificationForm is the body of POST /api/auth/send-verification.
type SendVerificationForm struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	CodeType string `json:"code_type" validate:"required,oneof=register forgot-password"`
}

// ResetPasswordForm is the body of POST /api/auth/reset-password.
type ResetPasswordForm struct {
	Email            string `json:"email" validate:"required,email,max=254"`
	VerificationCode string `json:"verification_code" validate:"required,len=6"`
	Password         string `json:"password" validate:"required,min=8,max=128"`
	DeviceID         string `json:"device_id" validate:"omitempty,max=128"`
}

// CreateSessionForm is the optional body of POST /api/ai-chat/create-session.
type CreateSessionForm struct {
	Language string `json:"language" validate:"omitempty,bcp47_language_tag"`
}

// MessageForm is the body of POST /api/ai-chat/message.
type MessageForm struct {
	SessionID   string `json:"session_id" validate:"required"`
	Content     string `json:"content" validate:"required,max=4096"`
	MessageType string `json:"message_type" validate:"omitempty,oneof=text audio image"`
}

// MediaForm is the body of the /api/media endpoints.
type MediaForm struct {
	SessionID string  `json:"session_id" validate:"required"`
	MediaURL  string  `json:"media_url" validate:"required,url"`
	Duration  float64 `json:"duration" validate:"gte=0"`
	Width     int     `json:"width" validate:"gte=0"`
	Height    int     `json:"height" validate:"gte=0"`
	Filename  string  `json:"filename" validate:"max=255"`
}

// Normalize trims whitespace and lowercases the email.
func (f *LoginForm) Normalize() {
	f.Email = normalizeEmail(f.Email)
	f.DeviceID = strings.TrimSpace(f.DeviceID)
}

func (f *RegisterForm) Normalize() {
	f.Email = normalizeEmail(f.Email)
	f.DeviceID = strings.TrimSpace(f.DeviceID)
	f.VerificationCode = strings.TrimSpace(f.VerificationCode)
}

func (f *SendVerificationForm) Normalize() {
	f.Email = normalizeEmail(f.Email)
	f.CodeType = strings.TrimSpace(f.CodeType)
}

func (f *ResetPasswordForm) Normalize() {
	f.Email = normalizeEmail(f.Email)
	f.DeviceID = strings.TrimSpace(f.DeviceID)
	f.VerificationCode = strings.TrimSpace(f.VerificationCode)
}

// Normalize applies the default message type.
func (f *MessageForm) Normalize() {
	f.SessionID = strings.TrimSpace(f.SessionID)
	if f.MessageType == "" {
		f.MessageType = domain.MessageTypeText
	}
}

// Input converts the form to the backend message payload.
func (f MessageForm) Input() port.ChatMessageInput {
	return port.ChatMessageInput{SessionID: f.SessionID, Content: f.Content, MessageType: f.MessageType}
}

// Input converts the form to the backend media payload.
func (f MediaForm) Input() port.MediaInput {
	return port.MediaInput{
		SessionID: f.SessionID,
		MediaURL:  f.MediaURL,
		Duration:  f.Duration,
		Width:     f.Width,
		Height:    f.Height,
		Filename:  f.Filename,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
