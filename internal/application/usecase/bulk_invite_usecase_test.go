package usecase

import (
	"context"
	"testing"
	"time"

	auditdom "clubhouse/internal/domain/audit"
)

func newBulkFixture(delay time.Duration) (*fixture, *BulkInviteUsecase, *[]time.Duration) {
	f := newFixture()
	bulk := NewBulkInviteUsecase(f.uc, f.audit, delay)
	bulk.now = fixedNow

	sleeps := &[]time.Duration{}
	bulk.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return f, bulk, sleeps
}

func TestSendBatchThreeFreshAddresses(t *testing.T) {
	f, bulk, sleeps := newBulkFixture(time.Second)

	var progress []int
	result := bulk.SendBatch(
		context.Background(),
		[]string{"a@example.com", "b@example.com", "c@example.com"},
		"admin",
		func(current, total int, email string, outcome InviteOutcome) {
			progress = append(progress, current)
			if total != 3 {
				t.Fatalf("total = %d, want 3", total)
			}
		},
	)

	if result.Total != 3 || result.Successful != 3 || result.Failed != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(progress) != 3 {
		t.Fatalf("onProgress fired %d times, want 3", len(progress))
	}
	for i, c := range progress {
		if c != i+1 {
			t.Fatalf("progress sequence %v, want strictly increasing from 1", progress)
		}
	}
	if len(f.mailer.invitations) != 3 {
		t.Fatalf("dispatched %d mails, want 3", len(f.mailer.invitations))
	}

	// Serialization honored: a delay between every pair of sends, none after
	// the last.
	if len(*sleeps) != 2 {
		t.Fatalf("slept %d times, want 2", len(*sleeps))
	}
	for _, d := range *sleeps {
		if d != time.Second {
			t.Fatalf("slept %v, want 1s", d)
		}
	}
}

func TestSendBatchDeduplicatesAndIsolatesFailures(t *testing.T) {
	_, bulk, _ := newBulkFixture(time.Millisecond)

	result := bulk.SendBatch(
		context.Background(),
		[]string{"Dup@Example.com", "", "other@example.com", "dup@example.com "},
		"admin",
		nil,
	)

	// Case-different duplicate collapses; the empty entry stays and fails
	// validation without aborting the rest.
	if result.Total != 3 {
		t.Fatalf("total = %d, want 3 (dedup kept dup once plus empty)", result.Total)
	}
	if result.Successful != 2 {
		t.Fatalf("successful = %d, want 2", result.Successful)
	}
	if result.Failed != 1 {
		t.Fatalf("failed = %d, want 1", result.Failed)
	}

	var dupCount int
	for _, item := range result.Items {
		if item.Email == "dup@example.com" {
			dupCount++
		}
		if item.Email == "" && item.Error == "" {
			t.Fatal("empty address must carry a validation error")
		}
	}
	if dupCount != 1 {
		t.Fatalf("duplicate processed %d times, want once", dupCount)
	}
}

func TestSendBatchContinuesPastMidBatchFailure(t *testing.T) {
	f, bulk, _ := newBulkFixture(time.Millisecond)
	f.mailer.sendErrFor = map[string]error{
		"bad@example.com": context.DeadlineExceeded,
	}

	result := bulk.SendBatch(
		context.Background(),
		[]string{"a@example.com", "bad@example.com", "c@example.com"},
		"admin",
		nil,
	)

	if result.Successful != 2 || result.Failed != 1 {
		t.Fatalf("result = %+v, want 2 ok / 1 failed", result)
	}
	if len(result.Items) != 3 {
		t.Fatalf("items = %d, want every address attempted exactly once", len(result.Items))
	}
	// The failed address still has its row, retryable later.
	if _, ok := f.invitations.pending["bad@example.com"]; !ok {
		t.Fatal("failed address should keep its pending row for retry")
	}
}

func TestSendBatchEmitsBulkAuditEvent(t *testing.T) {
	f, bulk, _ := newBulkFixture(time.Millisecond)

	bulk.SendBatch(context.Background(), []string{"a@example.com"}, "admin", nil)

	var found bool
	for _, e := range f.audit.events {
		if e.Name == auditdom.EventBulkInvitationsSent {
			found = true
			if e.Payload["total"] != 1 || e.Payload["successful"] != 1 {
				t.Fatalf("bulk event payload = %v", e.Payload)
			}
		}
	}
	if !found {
		t.Fatal("bulk_invitations_sent event not recorded")
	}
}

func TestNewBulkInviteUsecaseDefaultsDelay(t *testing.T) {
	bulk := NewBulkInviteUsecase(nil, nil, 0)
	if bulk.delay != DefaultSendDelay {
		t.Fatalf("delay = %v, want %v", bulk.delay, DefaultSendDelay)
	}
}
