// internal/application/usecase/bulk_invite_usecase.go
package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	auditdom "clubhouse/internal/domain/audit"
)

// DefaultSendDelay is the mandatory pause between consecutive sends. It is a
// deliberate serialization point against the mail transport's throughput
// ceiling, not a performance knob: do not parallelize the batch without
// re-deriving a new rate budget from the transport's limits.
const DefaultSendDelay = time.Second

// Inviter is what the bulk engine needs from the lifecycle manager.
type Inviter interface {
	Invite(ctx context.Context, rawEmail, invitedBy string) (InviteOutcome, error)
}

// ProgressFunc fires synchronously after each address, before the engine
// proceeds, so a caller can render live progress without polling.
type ProgressFunc func(current, total int, email string, outcome InviteOutcome)

// BatchItem is the per-address record in a batch result.
type BatchItem struct {
	Email   string        `json:"email"`
	Outcome InviteOutcome `json:"outcome"`
	Error   string        `json:"error,omitempty"`
}

// BatchResult aggregates a completed batch for audit logging.
type BatchResult struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Items      []BatchItem `json:"items"`
}

// BulkInviteUsecase fans a list of addresses out through the invitation
// lifecycle, strictly sequentially, under a fixed inter-send delay. One
// address failing (validation, store conflict, transport) is recorded and
// never halts the batch: every remaining address is attempted exactly once.
type BulkInviteUsecase struct {
	inviter Inviter
	audit   auditdom.Recorder
	delay   time.Duration

	sleep func(time.Duration)
	now   func() time.Time
}

func NewBulkInviteUsecase(inviter Inviter, recorder auditdom.Recorder, delay time.Duration) *BulkInviteUsecase {
	if delay <= 0 {
		delay = DefaultSendDelay
	}
	return &BulkInviteUsecase{
		inviter: inviter,
		audit:   recorder,
		delay:   delay,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// SendBatch processes every address through Invite with the configured delay
// between sends. Input is deduplicated case-insensitively first; an invalid
// entry (empty string, malformed address) becomes a per-address failure and
// processing continues. There is no mid-batch cancellation: a caller that
// stops consuming onProgress does not stop in-flight dispatch.
func (u *BulkInviteUsecase) SendBatch(
	ctx context.Context,
	emails []string,
	invitedBy string,
	onProgress ProgressFunc,
) BatchResult {
	deduped := dedupeEmails(emails)
	total := len(deduped)

	result := BatchResult{
		Total: total,
		Items: make([]BatchItem, 0, total),
	}

	for i, email := range deduped {
		outcome, err := u.inviter.Invite(ctx, email, invitedBy)

		item := BatchItem{Email: email, Outcome: outcome}
		if err != nil {
			item.Error = err.Error()
			result.Failed++
			log.Printf("[bulk] invite failed (%d/%d) email=%q: %v", i+1, total, email, err)
		} else {
			result.Successful++
		}
		result.Items = append(result.Items, item)

		if onProgress != nil {
			onProgress(i+1, total, email, outcome)
		}

		if i < total-1 {
			u.sleep(u.delay)
		}
	}

	u.recordBatch(ctx, invitedBy, result)
	return result
}

// dedupeEmails lower-cases and trims each entry and keeps the first
// occurrence, preserving input order. Invalid entries survive dedupe so the
// batch result still accounts for them.
func dedupeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		key := strings.ToLower(strings.TrimSpace(e))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func (u *BulkInviteUsecase) recordBatch(ctx context.Context, invitedBy string, result BatchResult) {
	if u.audit == nil {
		return
	}
	e := auditdom.Event{
		Name:  auditdom.EventBulkInvitationsSent,
		Actor: invitedBy,
		Payload: map[string]any{
			"total":      result.Total,
			"successful": result.Successful,
			"failed":     result.Failed,
		},
		CreatedAt: u.now(),
	}
	if err := u.audit.Record(ctx, e); err != nil {
		log.Printf("[audit] WARN: record %s failed: %v", e.Name, err)
	}
}
