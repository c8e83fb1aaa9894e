package handler

import (
	"net/url"

	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/service"
)

// HotelHandler serves the public hotel catalog.
type HotelHandler struct {
	catalog *service.CatalogService
}

func NewHotelHandler(catalog *service.CatalogService) *HotelHandler {
	return &HotelHandler{catalog: catalog}
}

// Register sets up hotel routes.
func (h *HotelHandler) Register(router fiber.Router) {
	hotels := router.Group("/hotels")
	hotels.Get("/", h.List)
	hotels.Get("/recommend", h.Recommend)
	hotels.Get("/:id", h.Get)
}

// List searches hotels. The query string is forwarded to the backend.
func (h *HotelHandler) List(c fiber.Ctx) error {
	query := forwardedQuery(c)
	query.Del("language")
	data, err := h.catalog.Hotels(c.Context(), query, language(c))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, data)
}

func (h *HotelHandler) Recommend(c fiber.Ctx) error {
	data, err := h.catalog.RecommendedHotels(c.Context(), language(c))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, data)
}

// Get returns one hotel with image paths resolved to absolute URLs.
func (h *HotelHandler) Get(c fiber.Ctx) error {
	hotel, err := h.catalog.Hotel(c.Context(), c.Params("id"), language(c))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, hotel)
}

// language picks the content language: ?language=, then the Language
// header, then the backend default.
func language(c fiber.Ctx) string {
	if l := c.Query("language"); l != "" {
		return l
	}
	return c.Get("Language")
}

// forwardedQuery copies the request's query string.
func forwardedQuery(c fiber.Ctx) url.Values {
	q, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return url.Values{}
	}
	return q
}
