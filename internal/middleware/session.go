package middleware

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
	"github.com/tiptravel/tip-web/internal/session"
)

const (
	localSession   = "session"
	localRefreshed = "session_refreshed"
)

// SessionGate evaluates the session cookie on every request. It stores the
// resulting session in locals, writes the cookie back when a refresh changed
// it, and answers 302 when the route table says so.
func SessionGate(gate *session.Gate, cookies *Cookies, audit port.AuditWriter) fiber.Handler {
	return func(c fiber.Ctx) error {
		path := c.Path()
		res := gate.Evaluate(c.Context(), path, cookies.SessionToken(c))

		switch {
		case res.Changed && res.Session != nil:
			if err := cookies.WriteSession(c, res.Session); err != nil {
				slog.Warn("failed to persist session", "error", err)
			}
		case errors.Is(res.Reason, port.ErrSessionInvalid):
			cookies.ClearSession(c)
		}

		if res.Refreshed && session.IsRefreshFailure(res) && audit != nil {
			RecordAudit(c, audit, domain.AuditActionRefreshFailed, UserID(res.Session), nil)
		}

		if res.LoggedIn() {
			c.Locals(localSession, res.Session)
		}
		c.Locals(localRefreshed, res.Refreshed)

		if res.Decision.Action == session.Redirect {
			return c.Redirect().Status(fiber.StatusFound).To(res.Decision.Location)
		}
		return c.Next()
	}
}

// RequireSession rejects API requests without a logged-in session.
func RequireSession() fiber.Handler {
	return func(c fiber.Ctx) error {
		if GetSession(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
			})
		}
		return c.Next()
	}
}

// GetSession returns the logged-in session for the request, or nil.
func GetSession(c fiber.Ctx) *domain.Session {
	s, ok := c.Locals(localSession).(*domain.Session)
	if !ok || !s.LoggedIn() {
		return nil
	}
	return s
}

// SetSession replaces the request's session, e.g. after login.
func SetSession(c fiber.Ctx, s *domain.Session) {
	c.Locals(localSession, s)
}

// JustRefreshed reports whether the gate refreshed the token on this request.
func JustRefreshed(c fiber.Ctx) bool {
	v, _ := c.Locals(localRefreshed).(bool)
	return v
}

// UserID is the audit user id for s.
func UserID(s *domain.Session) string {
	if s == nil || s.User.ID == 0 {
		return domain.AnonymousUser
	}
	return strconv.FormatInt(s.User.ID, 10)
}
