package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/middleware"
	"github.com/tiptravel/tip-web/internal/service"
)

// DashboardHandler serves the dashboard landing data.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Register sets up dashboard routes.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard/summary", middleware.RequireSession(), h.Summary)
}

// Summary returns the user snapshot and the most recent trips.
func (h *DashboardHandler) Summary(c fiber.Ctx) error {
	summary, err := h.dashboard.Summary(c.Context(), middleware.GetSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, summary)
}
