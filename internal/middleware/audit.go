package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
)

const auditWriteTimeout = 5 * time.Second

// AuditMiddleware records every request.
func AuditMiddleware(writer port.AuditWriter) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// Copy before c.Next(); fiber reuses the request buffers.
		method := strings.Clone(c.Method())
		path := strings.Clone(c.Path())
		ip := strings.Clone(c.IP())
		userAgent := strings.Clone(c.Get("User-Agent"))

		err := c.Next()

		uid := UserID(GetSession(c))
		details, _ := json.Marshal(map[string]any{
			"method":      method,
			"path":        path,
			"status":      c.Response().StatusCode(),
			"duration_ms": time.Since(start).Milliseconds(),
		})

		writeAsync(writer, domain.AuditLog{
			UserID:     uid,
			Action:     domain.AuditActionRequest,
			Resource:   "http",
			ResourceID: path,
			Details:    string(details),
			IP:         ip,
			UserAgent:  userAgent,
		})
		return err
	}
}

// RecordAudit writes a session event for the current request asynchronously.
func RecordAudit(c fiber.Ctx, writer port.AuditWriter, action, uid string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	raw, _ := json.Marshal(details)
	writeAsync(writer, domain.AuditLog{
		UserID:    uid,
		Action:    action,
		Resource:  "session",
		Details:   string(raw),
		IP:        strings.Clone(c.IP()),
		UserAgent: strings.Clone(c.Get("User-Agent")),
	})
}

func writeAsync(writer port.AuditWriter, entry domain.AuditLog) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()
		if err := writer.WriteAudit(ctx, entry); err != nil {
			slog.Error("failed to write audit log", "action", entry.Action, "error", err)
		}
	}()
}
