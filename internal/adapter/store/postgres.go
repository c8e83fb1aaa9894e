package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/tiptravel/tip-web/internal/domain"
)

// PostgresStore persists audit records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDB wraps an existing handle.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_logs (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id     TEXT NOT NULL,
	action      TEXT NOT NULL,
	resource    TEXT NOT NULL DEFAULT '',
	resource_id TEXT NOT NULL DEFAULT '',
	details     JSONB NOT NULL DEFAULT '{}',
	ip          TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS audit_logs_user_created_idx ON audit_logs (user_id, created_at DESC);`

// EnsureSchema creates the audit table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// WriteAudit inserts one audit record. Details must be a JSON object or empty.
func (s *PostgresStore) WriteAudit(ctx context.Context, entry domain.AuditLog) error {
	details := entry.Details
	if details == "" {
		details = "{}"
	}

	query := `INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`
	_, err := s.db.ExecContext(ctx, query,
		entry.UserID, entry.Action, entry.Resource, entry.ResourceID, details, entry.IP, entry.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// ListAuditLogs returns a user's most recent audit records, newest first.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, userID string, limit int) ([]domain.AuditLog, error) {
	query := `SELECT id, user_id, action, resource, resource_id, details::text, ip, user_agent, created_at
	          FROM audit_logs
	          WHERE user_id = $1
	          ORDER BY created_at DESC
	          LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Action, &l.Resource, &l.ResourceID,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return logs, nil
}

// MaxListLimit caps ListAuditLogs page sizes.
const MaxListLimit = 200

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
