// internal/domain/audit/event.go
package audit

import (
	"context"
	"time"
)

// Event names emitted by the invitation subsystem. These are one-way
// notifications for external observability; nothing in the subsystem reads
// them back.
const (
	EventInvitationSent      = "invitation_sent"
	EventBulkInvitationsSent = "bulk_invitations_sent"
)

// Event is one structured audit record.
type Event struct {
	Name      string         `json:"name"`
	Actor     string         `json:"actor,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Recorder is the outbound port for audit events. Recording is best effort:
// callers log a failed Record and move on, they never fail the operation
// that produced the event.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}
