package handler

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/forms"
	"github.com/tiptravel/tip-web/internal/middleware"
	"github.com/tiptravel/tip-web/internal/port"
	"github.com/tiptravel/tip-web/internal/service"
)

// MediaHandler forwards uploaded voice notes and photos to the concierge.
type MediaHandler struct {
	media *service.MediaService
}

func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Register sets up media routes.
func (h *MediaHandler) Register(router fiber.Router) {
	media := router.Group("/media", middleware.RequireSession())
	media.Post("/transcribe-audio", h.TranscribeAudio)
	media.Post("/analyze-image", h.AnalyzeImage)
}

func (h *MediaHandler) TranscribeAudio(c fiber.Ctx) error {
	return h.process(c, h.media.TranscribeAudio)
}

func (h *MediaHandler) AnalyzeImage(c fiber.Ctx) error {
	return h.process(c, h.media.AnalyzeImage)
}

type mediaFunc func(ctx context.Context, sess *domain.Session, language string, in port.MediaInput) (json.RawMessage, error)

func (h *MediaHandler) process(c fiber.Ctx, fn mediaFunc) error {
	var form forms.MediaForm
	if err := c.Bind().JSON(&form); err != nil {
		return badBody(c)
	}
	if err := forms.Default.Validate(&form); err != nil {
		return writeError(c, err)
	}

	data, err := fn(c.Context(), middleware.GetSession(c), language(c), form.Input())
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, data)
}
