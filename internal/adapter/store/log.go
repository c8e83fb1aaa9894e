package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tiptravel/tip-web/internal/domain"
)

// LogStore writes audit records to a slog.Logger and keeps the most recent
// ones in memory. It is used when no database is configured.
type LogStore struct {
	logger   *slog.Logger
	capacity int
	now      func() time.Time

	mu      sync.Mutex
	entries []domain.AuditLog
}

// NewLogStore creates a LogStore retaining up to capacity records.
func NewLogStore(logger *slog.Logger, capacity int) *LogStore {
	if logger == nil {
		logger = slog.Default()
	}
	if capacity <= 0 {
		capacity = 1000
	}
	return &LogStore{logger: logger, capacity: capacity, now: time.Now}
}

func (s *LogStore) WriteAudit(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("id", entry.ID),
		slog.String("user_id", entry.UserID),
		slog.String("action", entry.Action),
		slog.String("resource", entry.Resource),
		slog.String("resource_id", entry.ResourceID),
		slog.String("details", entry.Details),
		slog.String("ip", entry.IP),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = append(s.entries[:0:0], s.entries[over:]...)
	}
	return nil
}

// ListAuditLogs returns a user's retained records, newest first.
func (s *LogStore) ListAuditLogs(_ context.Context, userID string, limit int) ([]domain.AuditLog, error) {
	limit = clampLimit(limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.AuditLog
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].UserID == userID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}
