// internal/adapters/out/db/audit_log_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	auditdom "clubhouse/internal/domain/audit"
)

// AuditLogRepositoryPG は audit.Recorder の PostgreSQL 実装です。
// invitation_sent / bulk_invitations_sent などの監査イベントを 1 行ずつ
// 追記します。読み戻しはしません（一方向の通知）。
type AuditLogRepositoryPG struct {
	DB *sql.DB
}

func NewAuditLogRepositoryPG(db *sql.DB) *AuditLogRepositoryPG {
	return &AuditLogRepositoryPG{DB: db}
}

// Compile-time check
var _ auditdom.Recorder = (*AuditLogRepositoryPG)(nil)

func (r *AuditLogRepositoryPG) Record(ctx context.Context, e auditdom.Event) error {
	if r.DB == nil {
		return errors.New("audit: db is nil")
	}

	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("audit: marshal payload: %w", err)
	}

	const q = `
INSERT INTO audit_events (name, actor, payload, created_at)
VALUES ($1, $2, $3, $4)
`
	if _, err := r.DB.ExecContext(ctx, q, e.Name, e.Actor, payload, e.CreatedAt); err != nil {
		return fmt.Errorf("audit: insert event: %w", err)
	}
	return nil
}

// DDL reference (for schema alignment with migrations)
const AuditEventsTableDDL = `
CREATE TABLE audit_events (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  actor TEXT,
  payload JSONB,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
