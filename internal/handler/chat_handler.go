package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/forms"
	"github.com/tiptravel/tip-web/internal/middleware"
	"github.com/tiptravel/tip-web/internal/service"
)

// ChatHandler proxies the AI concierge conversation endpoints.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Register sets up chat routes.
func (h *ChatHandler) Register(router fiber.Router) {
	chat := router.Group("/ai-chat", middleware.RequireSession())
	chat.Post("/create-session", h.CreateSession)
	chat.Post("/message", h.Message)
	chat.Get("/history/:session_id", h.History)
}

// CreateSession opens a conversation. The body is optional; the language
// falls back to ?language= and the Language header.
func (h *ChatHandler) CreateSession(c fiber.Ctx) error {
	var form forms.CreateSessionForm
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&form); err != nil {
			return badBody(c)
		}
		if err := forms.Default.Validate(&form); err != nil {
			return writeError(c, err)
		}
	}
	lang := form.Language
	if lang == "" {
		lang = language(c)
	}

	data, err := h.chat.CreateSession(c.Context(), middleware.GetSession(c), lang)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, data)
}

// Message sends one user message and returns the concierge's reply.
func (h *ChatHandler) Message(c fiber.Ctx) error {
	var form forms.MessageForm
	if err := c.Bind().JSON(&form); err != nil {
		return badBody(c)
	}
	form.Normalize()
	if err := forms.Default.Validate(&form); err != nil {
		return writeError(c, err)
	}

	data, err := h.chat.Send(c.Context(), middleware.GetSession(c), form.Input())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, data)
}

// History returns a page of messages; ?page= and ?per_page= are optional.
func (h *ChatHandler) History(c fiber.Ctx) error {
	page := queryInt(c, "page", 0)
	perPage := queryInt(c, "per_page", 0)

	data, err := h.chat.History(c.Context(), middleware.GetSession(c), c.Params("session_id"), page, perPage)
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, data)
}
