package port

import (
	"context"
	"time"

	"github.com/tiptravel/tip-web/internal/domain"
)

// Cache stores serialized backend responses.
type Cache interface {
	// Get returns the cached value; a miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// AuditWriter persists audit records.
type AuditWriter interface {
	WriteAudit(ctx context.Context, entry domain.AuditLog) error
}

// AuditReader lists a user's audit records, newest first.
type AuditReader interface {
	ListAuditLogs(ctx context.Context, userID string, limit int) ([]domain.AuditLog, error)
}
