package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tiptravel/tip-web/internal/domain"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStoreFromDB(db), mock
}

func TestWriteAudit(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WithArgs("7", domain.AuditActionLogin, "auth", "", "{}", "10.0.0.1", "curl/8").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.WriteAudit(context.Background(), domain.AuditLog{
		UserID:    "7",
		Action:    domain.AuditActionLogin,
		Resource:  "auth",
		IP:        "10.0.0.1",
		UserAgent: "curl/8",
	})
	if err != nil {
		t.Fatalf("WriteAudit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWriteAuditWrapsError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(boom)

	err := s.WriteAudit(context.Background(), domain.AuditLog{UserID: "7", Action: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped %v", err, boom)
	}
}

var auditColumns = []string{"id", "user_id", "action", "resource", "resource_id", "details", "ip", "user_agent", "created_at"}

func TestListAuditLogs(t *testing.T) {
	now := time.Now().UTC()
	boom := errors.New("connection reset")

	tests := []struct {
		name      string
		limit     int
		wantLimit int
		setup     func(q *sqlmock.ExpectedQuery)
		wantIDs   []string
		wantErr   error
	}{
		{
			name:      "newest first with clamped limit",
			limit:     10_000,
			wantLimit: MaxListLimit,
			setup: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnRows(sqlmock.NewRows(auditColumns).
					AddRow("b", "7", "logout", "auth", "", "{}", "10.0.0.1", "ua", now).
					AddRow("a", "7", "login", "auth", "", "{}", "10.0.0.1", "ua", now.Add(-time.Hour)))
			},
			wantIDs: []string{"b", "a"},
		},
		{
			name:      "default limit and no rows",
			limit:     0,
			wantLimit: 50,
			setup: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnRows(sqlmock.NewRows(auditColumns))
			},
		},
		{
			name:      "query error",
			limit:     20,
			wantLimit: 20,
			setup: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnError(boom)
			},
			wantErr: boom,
		},
		{
			name:      "row error",
			limit:     20,
			wantLimit: 20,
			setup: func(q *sqlmock.ExpectedQuery) {
				q.WillReturnRows(sqlmock.NewRows(auditColumns).
					AddRow("a", "7", "login", "auth", "", "{}", "10.0.0.1", "ua", now).
					RowError(0, boom))
			},
			wantErr: boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.setup(mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs")).WithArgs("7", tt.wantLimit))

			logs, err := s.ListAuditLogs(context.Background(), "7", tt.limit)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want wrapped %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("ListAuditLogs: %v", err)
			}

			if len(logs) != len(tt.wantIDs) {
				t.Fatalf("got %d logs, want %d", len(logs), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if logs[i].ID != id || logs[i].UserID != "7" {
					t.Errorf("logs[%d] = %+v, want id %q", i, logs[i], id)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations: %v", err)
			}
		})
	}
}

func TestEnsureSchema(t *testing.T) {
	boom := errors.New("permission denied")

	tests := []struct {
		name    string
		execErr error
	}{
		{"creates table and index", nil},
		{"exec error", boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			exp := mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS audit_logs"))
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 0))
			}

			err := s.EnsureSchema(context.Background())
			if !errors.Is(err, tt.execErr) {
				t.Fatalf("EnsureSchema error = %v, want %v", err, tt.execErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations: %v", err)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	tests := map[int]int{0: 50, -1: 50, 20: 20, MaxListLimit + 1: MaxListLimit}
	for in, want := range tests {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
