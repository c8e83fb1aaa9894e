package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/forms"
	"github.com/tiptravel/tip-web/internal/port"
)

const msgUnavailable = "Service temporarily unavailable, please try again later"

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func fail(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// badBody answers a request whose JSON body could not be parsed.
func badBody(c fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "Invalid request body")
}

// writeError maps service errors onto the API's status codes. The credential
// errors wrap backend 4xx errors, so they are matched before the coarse ones.
func writeError(c fiber.Ctx, err error) error {
	var ve *forms.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  ve.Fields,
		})
	case errors.Is(err, port.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, port.ErrEmailAlreadyRegistered):
		return fail(c, fiber.StatusConflict, "This email is already registered")
	case errors.Is(err, port.ErrInvalidVerificationCode):
		return fail(c, fiber.StatusBadRequest, messageOr(err, "Invalid or expired verification code"))
	case errors.Is(err, port.ErrBackendUnavailable):
		slog.Warn("backend unavailable", "path", c.Path(), "error", err)
		return fail(c, fiber.StatusServiceUnavailable, msgUnavailable)
	case errors.Is(err, port.ErrUnauthenticated):
		return fail(c, fiber.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, port.ErrNotFound):
		return fail(c, fiber.StatusNotFound, messageOr(err, "Not found"))
	case errors.Is(err, port.ErrBadRequest):
		return fail(c, fiber.StatusBadRequest, messageOr(err, "Bad request"))
	}
	slog.Error("request failed", "path", c.Path(), "error", err)
	return fail(c, fiber.StatusInternalServerError, "Internal server error")
}

func messageOr(err error, fallback string) string {
	if m := port.BackendMessage(err); m != "" {
		return m
	}
	return fallback
}

// queryInt reads an integer query param with a default value.
func queryInt(c fiber.Ctx, key string, defaultVal int) int {
	v := c.Query(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
