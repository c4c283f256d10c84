package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	auditdom "clubhouse/internal/domain/audit"
	invdom "clubhouse/internal/domain/invitation"
	memdom "clubhouse/internal/domain/member"
)

func TestInviteUnknownAddressCreatesAndSends(t *testing.T) {
	f := newFixture()

	outcome, err := f.uc.Invite(context.Background(), "  Runner@Example.COM ", "admin-1")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if !outcome.Success || outcome.Action != ActionInvited {
		t.Fatalf("outcome = %+v, want success/invited", outcome)
	}
	if outcome.Email != "runner@example.com" {
		t.Fatalf("email not normalized: %q", outcome.Email)
	}

	stored := f.invitations.byID[outcome.InvitationID]
	if stored.Status != invdom.StatusPending {
		t.Fatalf("status = %q, want pending", stored.Status)
	}
	if !stored.Sent || stored.SentAt == nil {
		t.Fatal("sent flag not stamped after successful dispatch")
	}
	if stored.InvitedBy != "admin-1" {
		t.Fatalf("invitedBy = %q", stored.InvitedBy)
	}
	if want := fixedNow().Add(invdom.DefaultTTL); !stored.ExpiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", stored.ExpiresAt, want)
	}

	if len(f.mailer.invitations) != 1 {
		t.Fatalf("sent %d invitation mails, want 1", len(f.mailer.invitations))
	}
	if f.mailer.invitations[0].token != stored.Token {
		t.Fatal("mail carried a different token than the stored row")
	}

	if len(f.audit.events) != 1 || f.audit.events[0].Name != auditdom.EventInvitationSent {
		t.Fatalf("audit events = %+v, want one invitation_sent", f.audit.events)
	}
}

func TestInviteTwiceReusesOriginalToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.uc.Invite(ctx, "runner@example.com", "admin")
	if err != nil {
		t.Fatalf("first Invite: %v", err)
	}
	second, err := f.uc.Invite(ctx, "runner@example.com", "admin")
	if err != nil {
		t.Fatalf("second Invite: %v", err)
	}

	if second.Action != ActionResent {
		t.Fatalf("second action = %q, want resent", second.Action)
	}
	if second.InvitationID != first.InvitationID {
		t.Fatal("resend touched a different invitation row")
	}

	if len(f.mailer.invitations) != 2 {
		t.Fatalf("sent %d mails, want 2", len(f.mailer.invitations))
	}
	if f.mailer.invitations[0].token != f.mailer.invitations[1].token {
		t.Fatal("resend minted a new token; links already shared would break")
	}

	// Still exactly one pending row for the address.
	if len(f.invitations.pending) != 1 {
		t.Fatalf("pending slots = %d, want 1", len(f.invitations.pending))
	}
}

func TestInviteFullMemberTriggersPasswordResetOnly(t *testing.T) {
	f := newFixture()
	f.members.add(memdom.Member{
		ID:     "m-9",
		Email:  "captain@example.com",
		Status: memdom.StatusActive,
	})

	outcome, err := f.uc.Invite(context.Background(), "captain@example.com", "admin")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if outcome.Action != ActionPasswordReset {
		t.Fatalf("action = %q, want password_reset", outcome.Action)
	}
	if outcome.InvitationID != "" {
		t.Fatal("full-member path must not create an invitation row")
	}
	if len(f.invitations.byID) != 0 {
		t.Fatalf("invitation rows = %d, want 0", len(f.invitations.byID))
	}
	if len(f.directory.resetLinks) != 1 {
		t.Fatalf("reset links built = %d, want exactly 1", len(f.directory.resetLinks))
	}
	if len(f.mailer.resets) != 1 {
		t.Fatalf("reset mails = %d, want 1", len(f.mailer.resets))
	}
}

func TestInviteAwaitingVerificationResendsVerification(t *testing.T) {
	f := newFixture()
	f.directory.accounts["slow@example.com"] = DirectoryAccount{
		UID:           "u-3",
		Email:         "slow@example.com",
		EmailVerified: false,
	}

	outcome, err := f.uc.Invite(context.Background(), "slow@example.com", "admin")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if outcome.Action != ActionVerificationResent {
		t.Fatalf("action = %q, want verification_resent", outcome.Action)
	}
	if len(f.invitations.byID) != 0 {
		t.Fatal("awaiting-verification path must not create an invitation row")
	}
	if len(f.mailer.verifies) != 1 {
		t.Fatalf("verification mails = %d, want 1", len(f.mailer.verifies))
	}
}

func TestInviteTransportFailureLeavesRowRetryable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.mailer.sendErr = errors.New("smtp 550")
	f.mailer.sentThenClear = true

	if _, err := f.uc.Invite(ctx, "flaky@example.com", "admin"); err == nil {
		t.Fatal("expected transport failure to surface")
	}

	// Row was created, stays pending, sent=false.
	if len(f.invitations.byID) != 1 {
		t.Fatalf("invitation rows = %d, want 1", len(f.invitations.byID))
	}
	var firstToken string
	for _, inv := range f.invitations.byID {
		if inv.Status != invdom.StatusPending || inv.Sent {
			t.Fatalf("row after failed send = %+v, want pending/sent=false", inv)
		}
		firstToken = inv.Token
	}

	// Retry resolves to OpenInvitation and resends the SAME token.
	outcome, err := f.uc.Invite(ctx, "flaky@example.com", "admin")
	if err != nil {
		t.Fatalf("retry Invite: %v", err)
	}
	if outcome.Action != ActionResent {
		t.Fatalf("retry action = %q, want resent", outcome.Action)
	}
	if len(f.mailer.invitations) != 1 || f.mailer.invitations[0].token != firstToken {
		t.Fatal("retry did not dispatch the original token")
	}
}

func TestInviteConflictSurfacesAsFailure(t *testing.T) {
	f := newFixture()
	f.invitations.createErr = invdom.ErrConflict

	_, err := f.uc.Invite(context.Background(), "raced@example.com", "admin")
	if !errors.Is(err, invdom.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestInviteRejectsMalformedEmailBeforeSideEffects(t *testing.T) {
	f := newFixture()

	for _, raw := range []string{"", "   ", "not-an-email", "a@b"} {
		if _, err := f.uc.Invite(context.Background(), raw, "admin"); !errors.Is(err, invdom.ErrInvalidEmail) {
			t.Fatalf("Invite(%q) err = %v, want ErrInvalidEmail", raw, err)
		}
	}
	if len(f.invitations.byID) != 0 || len(f.mailer.invitations) != 0 {
		t.Fatal("validation failure must not touch store or transport")
	}
}

func TestValidateTokenHappyPath(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	outcome, err := f.uc.Invite(ctx, "runner@example.com", "admin")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	token := f.invitations.byID[outcome.InvitationID].Token

	v, err := f.uc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if !v.Valid || v.Email != "runner@example.com" || v.InvitationID != outcome.InvitationID {
		t.Fatalf("validation = %+v", v)
	}
}

func TestValidateTokenExpiryIsLazyAndPersisted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inv := invdom.New("old@example.com", "tok-old", "admin", fixedNow().Add(-40*24*time.Hour))
	created, err := f.invitations.CreatePending(ctx, inv)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	v, err := f.uc.ValidateToken(ctx, "tok-old")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if v.Valid {
		t.Fatal("expired token validated")
	}
	if v.Message != msgLinkExpired {
		t.Fatalf("message = %q, want the expiry-specific message", v.Message)
	}

	// Direct store read: the transition must have been persisted.
	if got := f.invitations.byID[created.ID].Status; got != invdom.StatusExpired {
		t.Fatalf("stored status = %q, want expired", got)
	}
}

func TestValidateTokenUnknownIsDistinctFromExpired(t *testing.T) {
	f := newFixture()

	v, err := f.uc.ValidateToken(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if v.Valid {
		t.Fatal("unknown token validated")
	}
	if v.Message != msgLinkInvalid {
		t.Fatalf("message = %q, want the not-found message", v.Message)
	}
	if v.Message == msgLinkExpired {
		t.Fatal("forged and stale links must stay distinguishable")
	}
}

func TestMarkRegisteredIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	outcome, err := f.uc.Invite(ctx, "runner@example.com", "admin")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	token := f.invitations.byID[outcome.InvitationID].Token

	if err := f.uc.MarkRegistered(ctx, token); err != nil {
		t.Fatalf("first MarkRegistered: %v", err)
	}
	first := f.invitations.byID[outcome.InvitationID]
	if first.Status != invdom.StatusRegistered || first.RegisteredAt == nil {
		t.Fatalf("row after first mark = %+v", first)
	}

	// Shift the clock; the second call must not move RegisteredAt.
	f.uc.now = func() time.Time { return fixedNow().Add(time.Hour) }
	if err := f.uc.MarkRegistered(ctx, token); err != nil {
		t.Fatalf("second MarkRegistered: %v", err)
	}
	second := f.invitations.byID[outcome.InvitationID]
	if !second.RegisteredAt.Equal(*first.RegisteredAt) {
		t.Fatal("second MarkRegistered moved RegisteredAt; first write must win")
	}

	// The pending slot is released; the address is invitable again.
	if _, ok := f.invitations.pending["runner@example.com"]; ok {
		t.Fatal("pending slot still occupied after registration")
	}
}
