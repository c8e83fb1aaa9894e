package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/forms"
	"github.com/tiptravel/tip-web/internal/middleware"
	"github.com/tiptravel/tip-web/internal/port"
	"github.com/tiptravel/tip-web/internal/service"
	"github.com/tiptravel/tip-web/pkg/device"
)

// AuthHandler handles credential exchange and session lifecycle endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *middleware.Cookies
	audit   port.AuditWriter
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth *service.AuthService, cookies *middleware.Cookies, audit port.AuditWriter) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies, audit: audit}
}

// Register sets up auth routes.
func (h *AuthHandler) Register(router fiber.Router) {
	auth := router.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/register", h.RegisterAccount)
	auth.Post("/logout", h.Logout)
	auth.Post("/send-verification", h.SendVerification)
	auth.Post("/reset-password", h.ResetPassword)
	auth.Post("/refresh", middleware.RequireSession(), h.Refresh)
	auth.Get("/me", middleware.RequireSession(), h.Me)
}

// Login exchanges email and password for a session cookie.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var form forms.LoginForm
	if err := c.Bind().JSON(&form); err != nil {
		return badBody(c)
	}
	form.Normalize()
	if err := forms.Default.Validate(&form); err != nil {
		return writeError(c, err)
	}

	deviceID := h.deviceID(c, form.DeviceID)
	sess, err := h.auth.Login(c.Context(), form.Email, form.Password, deviceID)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.start(c, sess); err != nil {
		return err
	}
	middleware.RecordAudit(c, h.audit, domain.AuditActionLogin, middleware.UserID(sess), nil)
	return ok(c, fiber.Map{"user": sess.User})
}

// RegisterAccount creates an account and signs it in.
func (h *AuthHandler) RegisterAccount(c fiber.Ctx) error {
	var form forms.RegisterForm
	if err := c.Bind().JSON(&form); err != nil {
		return badBody(c)
	}
	form.Normalize()
	if err := forms.Default.Validate(&form); err != nil {
		return writeError(c, err)
	}

	deviceID := h.deviceID(c, form.DeviceID)
	sess, err := h.auth.Register(c.Context(), form.Email, form.Password, deviceID, form.VerificationCode)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.start(c, sess); err != nil {
		return err
	}
	middleware.RecordAudit(c, h.audit, domain.AuditActionRegister, middleware.UserID(sess), nil)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"user": sess.User},
	})
}

// Logout revokes the token on the backend and clears the cookies. It
// succeeds even without a session.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	sess := middleware.GetSession(c)
	h.auth.Logout(c.Context(), sess)
	h.cookies.ClearSession(c)
	h.cookies.ClearDevice(c)
	if sess != nil {
		middleware.RecordAudit(c, h.audit, domain.AuditActionLogout, middleware.UserID(sess), nil)
	}
	middleware.SetSession(c, nil)
	return ok(c, nil)
}

// Refresh renews the access token now. When the gate already refreshed it on
// this request, no second call is made.
func (h *AuthHandler) Refresh(c fiber.Ctx) error {
	sess := middleware.GetSession(c)
	if middleware.JustRefreshed(c) {
		return ok(c, fiber.Map{"expires_at": sess.AccessTokenExpiresAt})
	}

	next, err := h.auth.ForceRefresh(c.Context(), sess)
	if err != nil {
		h.cookies.ClearSession(c)
		middleware.RecordAudit(c, h.audit, domain.AuditActionRefreshFailed, middleware.UserID(sess), nil)
		return fail(c, fiber.StatusUnauthorized, "Session expired, please sign in again")
	}
	if err := h.cookies.WriteSession(c, next); err != nil {
		return err
	}
	middleware.SetSession(c, next)
	return ok(c, fiber.Map{"expires_at": next.AccessTokenExpiresAt})
}

// Me returns the backend's current view of the signed-in user.
func (h *AuthHandler) Me(c fiber.Ctx) error {
	user, err := h.auth.CurrentUser(c.Context(), middleware.GetSession(c))
	if err != nil {
		return writeError(c, err)
	}
	return ok(c, user)
}

// SendVerification emails a register or forgot-password code.
func (h *AuthHandler) SendVerification(c fiber.Ctx) error {
	var form forms.SendVerificationForm
	if err := c.Bind().JSON(&form); err != nil {
		return badBody(c)
	}
	form.Normalize()
	if err := forms.Default.Validate(&form); err != nil {
		return writeError(c, err)
	}
	if err := h.auth.SendVerificationCode(c.Context(), form.Email, form.CodeType); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}

func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var form forms.ResetPasswordForm
	if err := c.Bind().JSON(&form); err != nil {
		return badBody(c)
	}
	form.Normalize()
	if err := forms.Default.Validate(&form); err != nil {
		return writeError(c, err)
	}
	deviceID := h.deviceID(c, form.DeviceID)
	if err := h.auth.ResetPassword(c.Context(), form.Email, form.VerificationCode, form.Password, deviceID); err != nil {
		return writeError(c, err)
	}
	return ok(c, nil)
}

// start persists a freshly established session.
func (h *AuthHandler) start(c fiber.Ctx, sess *domain.Session) error {
	if err := h.cookies.WriteSession(c, sess); err != nil {
		return err
	}
	h.cookies.WriteDevice(c, sess.DeviceID)
	middleware.SetSession(c, sess)
	return nil
}

// deviceID prefers the id the browser computed, then the device cookie,
// then one derived from the request headers.
func (h *AuthHandler) deviceID(c fiber.Ctx, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if id := h.cookies.DeviceID(c); id != "" {
		return id
	}
	return device.Hash(device.SignalsFromHeaders(deviceHeaders(c)))
}

func deviceHeaders(c fiber.Ctx) http.Header {
	h := http.Header{}
	for _, name := range []string{
		"User-Agent",
		"Accept-Language",
		device.HeaderColorDepth,
		device.HeaderScreen,
		device.HeaderTimezoneOffset,
		device.HeaderStorage,
	} {
		if v := c.Get(name); v != "" {
			h.Set(name, v)
		}
	}
	return h
}
