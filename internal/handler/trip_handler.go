package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/middleware"
	"github.com/tiptravel/tip-web/internal/service"
)

// TripHandler serves the signed-in user's trips.
type TripHandler struct {
	trips *service.TripService
}

func NewTripHandler(trips *service.TripService) *TripHandler {
	return &TripHandler{trips: trips}
}

// Register sets up trip routes. All of them need a session.
func (h *TripHandler) Register(router fiber.Router) {
	trip := router.Group("/trip", middleware.RequireSession())
	trip.Get("/list", h.List)
	trip.Get("/:id", h.Get)
}

func (h *TripHandler) List(c fiber.Ctx) error {
	data, err := h.trips.Trips(c.Context(), middleware.GetSession(c), forwardedQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, data)
}

func (h *TripHandler) Get(c fiber.Ctx) error {
	data, err := h.trips.Trip(c.Context(), middleware.GetSession(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, data)
}
