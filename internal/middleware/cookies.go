package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/domain"
)

// SessionEncoder signs sessions into cookie values.
type SessionEncoder interface {
	Encode(s *domain.Session) (string, error)
}

// CookieConfig describes the session and device cookies.
type CookieConfig struct {
	SessionName  string
	DeviceName   string
	Secure       bool
	DeviceMaxAge time.Duration
}

// Cookies reads and writes the session and device cookies. Both are
// HttpOnly, SameSite=Lax and scoped to the whole site.
type Cookies struct {
	cfg     CookieConfig
	encoder SessionEncoder
	now     func() time.Time
}

func NewCookies(cfg CookieConfig, encoder SessionEncoder) *Cookies {
	return &Cookies{cfg: cfg, encoder: encoder, now: time.Now}
}

// SessionToken returns the raw session cookie value.
func (k *Cookies) SessionToken(c fiber.Ctx) string {
	return c.Cookies(k.cfg.SessionName)
}

// DeviceID returns the device cookie value.
func (k *Cookies) DeviceID(c fiber.Ctx) string {
	return c.Cookies(k.cfg.DeviceName)
}

// WriteSession signs s and sets it with a lifetime equal to the session's
// remaining validity. An already expired session clears the cookie instead.
func (k *Cookies) WriteSession(c fiber.Ctx, s *domain.Session) error {
	remaining := s.ExpiresAt.Sub(k.now())
	if remaining < time.Second {
		k.ClearSession(c)
		return errors.New("session already expired")
	}
	value, err := k.encoder.Encode(s)
	if err != nil {
		return err
	}
	k.set(c, k.cfg.SessionName, value, remaining)
	return nil
}

func (k *Cookies) ClearSession(c fiber.Ctx) {
	k.clear(c, k.cfg.SessionName)
}

// WriteDevice persists the device id for a year (DeviceMaxAge).
func (k *Cookies) WriteDevice(c fiber.Ctx, id string) {
	k.set(c, k.cfg.DeviceName, id, k.cfg.DeviceMaxAge)
}

func (k *Cookies) ClearDevice(c fiber.Ctx) {
	k.clear(c, k.cfg.DeviceName)
}

func (k *Cookies) set(c fiber.Ctx, name, value string, maxAge time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   k.cfg.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (k *Cookies) clear(c fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   k.cfg.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
