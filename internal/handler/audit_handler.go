package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/middleware"
	"github.com/tiptravel/tip-web/internal/port"
)

const defaultAuditLimit = 50

// AuditHandler handles audit log endpoints.
type AuditHandler struct {
	store port.AuditReader
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(store port.AuditReader) *AuditHandler {
	return &AuditHandler{store: store}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	audit := router.Group("/audit", middleware.RequireSession())
	audit.Get("/mine", h.Mine)
}

// Mine returns the caller's own audit records, newest first.
func (h *AuditHandler) Mine(c fiber.Ctx) error {
	limit := queryInt(c, "limit", defaultAuditLimit)
	uid := middleware.UserID(middleware.GetSession(c))

	logs, err := h.store.ListAuditLogs(c.Context(), uid, limit)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}
