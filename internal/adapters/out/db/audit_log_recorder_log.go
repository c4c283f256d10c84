// internal/adapters/out/db/audit_log_recorder_log.go
package db

import (
	"context"
	"log"

	auditdom "clubhouse/internal/domain/audit"
)

// AuditLogRecorderLog is the fallback Recorder used when no Postgres
// connection is configured: events go to the process log instead of being
// dropped.
type AuditLogRecorderLog struct{}

var _ auditdom.Recorder = AuditLogRecorderLog{}

func (AuditLogRecorderLog) Record(_ context.Context, e auditdom.Event) error {
	log.Printf("[audit] %s actor=%s payload=%v", e.Name, e.Actor, e.Payload)
	return nil
}
