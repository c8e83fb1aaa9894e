package domain

import "time"

// AuditLog records significant requests and session events.
type AuditLog struct {
	ID         string    `json:"id"          db:"id"`
	UserID     string    `json:"user_id"     db:"user_id"`
	Action     string    `json:"action"      db:"action"`
	Resource   string    `json:"resource"    db:"resource"`
	ResourceID string    `json:"resource_id" db:"resource_id"`
	Details    string    `json:"details"     db:"details"` // JSON blob
	IP         string    `json:"ip"          db:"ip"`
	UserAgent  string    `json:"user_agent"  db:"user_agent"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// Audit action constants.
const (
	AuditActionRequest       = "http_request"
	AuditActionLogin         = "login"
	AuditActionRegister      = "register"
	AuditActionLogout        = "logout"
	AuditActionRefreshFailed = "refresh_failed"
)

// AnonymousUser is recorded for requests without a logged-in session.
const AnonymousUser = "anonymous"
