// internal/application/usecase/invitation_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	auditdom "clubhouse/internal/domain/audit"
	invdom "clubhouse/internal/domain/invitation"
)

// ==============================
// Outbound Ports
// ==============================

// InvitationMailerPort は「招待・再設定メールを送るためのアウトバウンドポート」です。
// adapters/out/mail.InvitationMailer がこれを実装する想定です。
type InvitationMailerPort interface {
	// SendInvitationEmail dispatches the invitation (or reminder) carrying
	// the registration link for token.
	SendInvitationEmail(ctx context.Context, toEmail, token string) error

	// SendPasswordResetEmail dispatches the credential-reset link to an
	// address that already belongs to a full member.
	SendPasswordResetEmail(ctx context.Context, toEmail, resetLink string) error

	// SendVerificationEmail dispatches the re-verification link to an
	// address whose account never finished verifying itself.
	SendVerificationEmail(ctx context.Context, toEmail, verifyLink string) error
}

// ==============================
// Inbound Port
// ==============================

// Action names what the lifecycle decided to do for one address.
type Action string

const (
	ActionInvited            Action = "invited"
	ActionResent             Action = "resent"
	ActionPasswordReset      Action = "password_reset"
	ActionVerificationResent Action = "verification_resent"
)

// InviteOutcome is the per-address result of an Invite call.
type InviteOutcome struct {
	Success      bool   `json:"success"`
	Action       Action `json:"action,omitempty"`
	Message      string `json:"message"`
	Email        string `json:"email"`
	InvitationID string `json:"invitationId,omitempty"`
}

// TokenValidation is the result of checking an invitation link token.
// The two invalid cases carry distinct user-facing messages so support staff
// can tell a stale link from a forged one.
type TokenValidation struct {
	Valid        bool   `json:"valid"`
	Email        string `json:"email,omitempty"`
	InvitationID string `json:"invitationId,omitempty"`
	Message      string `json:"message,omitempty"`
}

// User-facing validation messages.
const (
	msgLinkInvalid = "This invitation link is not valid."
	msgLinkExpired = "This invitation has expired. Please contact the club for a new one."
)

// InvitationPort is the inbound port for the invitation lifecycle.
// The HTTP handlers and the bulk engine both drive it.
type InvitationPort interface {
	Invite(ctx context.Context, rawEmail, invitedBy string) (InviteOutcome, error)
	ValidateToken(ctx context.Context, token string) (TokenValidation, error)
	MarkRegistered(ctx context.Context, token string) error
}

// ==============================
// Usecase
// ==============================

// InvitationUsecase owns the per-address decision logic: it reconciles the
// resolver's disposition into exactly one action and the matching state
// transition.
//
//	FullMember           → credential-reset flow, no invitation row touched
//	OpenInvitation       → re-dispatch with the ORIGINAL token (links already
//	                       shared must stay valid)
//	AwaitingVerification → re-verification flow, no invitation row touched
//	Unknown              → mint token, create pending row, dispatch, mark sent
type InvitationUsecase struct {
	resolver    *AccountResolver
	invitations invdom.Repository
	directory   AccountDirectory
	mailer      InvitationMailerPort
	audit       auditdom.Recorder

	newToken func() string
	now      func() time.Time
}

func NewInvitationUsecase(
	resolver *AccountResolver,
	invitations invdom.Repository,
	directory AccountDirectory,
	mailer InvitationMailerPort,
	recorder auditdom.Recorder,
) *InvitationUsecase {
	return &InvitationUsecase{
		resolver:    resolver,
		invitations: invitations,
		directory:   directory,
		mailer:      mailer,
		audit:       recorder,
		newToken:    invdom.NewToken,
		now:         time.Now,
	}
}

var _ InvitationPort = (*InvitationUsecase)(nil)

// Invite runs the full lifecycle for one address. It is idempotent per
// current disposition: calling it again re-resolves and re-applies the table
// above, it never creates a second pending row for the same address (the
// store's uniqueness backstop catches the check-then-act race).
func (u *InvitationUsecase) Invite(ctx context.Context, rawEmail, invitedBy string) (InviteOutcome, error) {
	email, err := invdom.NormalizeEmail(rawEmail)
	if err != nil {
		return InviteOutcome{}, err
	}

	res, err := u.resolver.Resolve(ctx, email)
	if err != nil {
		return InviteOutcome{}, fmt.Errorf("resolve %s: %w", email, err)
	}

	switch res.Disposition {
	case DispositionFullMember:
		return u.sendPasswordReset(ctx, email)
	case DispositionAwaitingVerification:
		return u.sendVerification(ctx, email)
	case DispositionOpenInvitation:
		return u.resend(ctx, *res.Invitation)
	default:
		return u.inviteNew(ctx, email, invitedBy)
	}
}

// sendPasswordReset handles an address that already belongs to a full
// member. No invitation row is created or changed.
func (u *InvitationUsecase) sendPasswordReset(ctx context.Context, email string) (InviteOutcome, error) {
	link, err := u.directory.PasswordResetLink(ctx, email)
	if err != nil {
		return InviteOutcome{}, fmt.Errorf("password reset link for %s: %w", email, err)
	}
	if err := u.mailer.SendPasswordResetEmail(ctx, email, link); err != nil {
		return InviteOutcome{}, fmt.Errorf("send password reset to %s: %w", email, err)
	}
	return InviteOutcome{
		Success: true,
		Action:  ActionPasswordReset,
		Message: "Already a member; sent a password reset email instead.",
		Email:   email,
	}, nil
}

// sendVerification handles an address whose account exists but never
// completed its own email verification.
func (u *InvitationUsecase) sendVerification(ctx context.Context, email string) (InviteOutcome, error) {
	link, err := u.directory.EmailVerificationLink(ctx, email)
	if err != nil {
		return InviteOutcome{}, fmt.Errorf("verification link for %s: %w", email, err)
	}
	if err := u.mailer.SendVerificationEmail(ctx, email, link); err != nil {
		return InviteOutcome{}, fmt.Errorf("send verification to %s: %w", email, err)
	}
	return InviteOutcome{
		Success: true,
		Action:  ActionVerificationResent,
		Message: "Account awaiting verification; re-sent the verification email.",
		Email:   email,
	}, nil
}

// resend re-dispatches an open invitation using its ORIGINAL token. Minting
// a fresh token here would invalidate links already shared through other
// channels (printed flyer, an email still sitting in an inbox).
func (u *InvitationUsecase) resend(ctx context.Context, inv invdom.Invitation) (InviteOutcome, error) {
	if err := u.mailer.SendInvitationEmail(ctx, inv.Email, inv.Token); err != nil {
		return InviteOutcome{}, fmt.Errorf("resend invitation to %s: %w", inv.Email, err)
	}

	inv.MarkSent(u.now())
	if _, err := u.invitations.Update(ctx, inv); err != nil {
		// The mail went out; losing the sent stamp is bookkeeping, not a
		// failure of the invite.
		log.Printf("[invite] WARN: sent-flag update failed id=%s: %v", inv.ID, err)
	}

	u.record(ctx, auditdom.Event{
		Name:  auditdom.EventInvitationSent,
		Actor: inv.InvitedBy,
		Payload: map[string]any{
			"invitationId": inv.ID,
			"email":        inv.Email,
			"resend":       true,
		},
		CreatedAt: u.now(),
	})

	return InviteOutcome{
		Success:      true,
		Action:       ActionResent,
		Message:      "Invitation re-sent using the existing link.",
		Email:        inv.Email,
		InvitationID: inv.ID,
	}, nil
}

// inviteNew covers a never-seen address: mint token, create the pending row,
// dispatch, then mark sent. Row creation and dispatch are deliberately
// decoupled: if the send fails the row stays pending with sent=false and a
// later Invite resolves to OpenInvitation and retries with the same token.
func (u *InvitationUsecase) inviteNew(ctx context.Context, email, invitedBy string) (InviteOutcome, error) {
	inv := invdom.New(email, u.newToken(), invitedBy, u.now())

	created, err := u.invitations.CreatePending(ctx, inv)
	if err != nil {
		// ErrConflict here means a concurrent inviter won the race; the
		// caller can simply re-invoke Invite and will see OpenInvitation.
		return InviteOutcome{}, fmt.Errorf("create invitation for %s: %w", email, err)
	}

	if err := u.mailer.SendInvitationEmail(ctx, created.Email, created.Token); err != nil {
		return InviteOutcome{}, fmt.Errorf("send invitation to %s: %w", email, err)
	}

	created.MarkSent(u.now())
	if _, err := u.invitations.Update(ctx, created); err != nil {
		log.Printf("[invite] WARN: sent-flag update failed id=%s: %v", created.ID, err)
	}

	u.record(ctx, auditdom.Event{
		Name:  auditdom.EventInvitationSent,
		Actor: invitedBy,
		Payload: map[string]any{
			"invitationId": created.ID,
			"email":        created.Email,
		},
		CreatedAt: u.now(),
	})

	return InviteOutcome{
		Success:      true,
		Action:       ActionInvited,
		Message:      "Invitation sent.",
		Email:        created.Email,
		InvitationID: created.ID,
	}, nil
}

// ValidateToken looks an invitation up by its link token. Expiry is decided
// here, lazily: a pending row past ExpiresAt is transitioned to expired and
// the transition is persisted before reporting invalid.
func (u *InvitationUsecase) ValidateToken(ctx context.Context, token string) (TokenValidation, error) {
	if token == "" {
		return TokenValidation{Valid: false, Message: msgLinkInvalid}, nil
	}

	inv, err := u.invitations.GetByToken(ctx, token)
	if errors.Is(err, invdom.ErrNotFound) {
		return TokenValidation{Valid: false, Message: msgLinkInvalid}, nil
	}
	if err != nil {
		return TokenValidation{}, err
	}

	if inv.Status != invdom.StatusPending {
		return TokenValidation{Valid: false, Message: msgLinkInvalid}, nil
	}

	if inv.IsExpired(u.now()) {
		inv.Expire(u.now())
		if _, err := u.invitations.Update(ctx, inv); err != nil {
			// The read-time predicate already decided the answer; losing the
			// persisted transition only means the next read repeats it.
			log.Printf("[invite] WARN: expire persist failed id=%s: %v", inv.ID, err)
		}
		return TokenValidation{Valid: false, Message: msgLinkExpired}, nil
	}

	return TokenValidation{
		Valid:        true,
		Email:        inv.Email,
		InvitationID: inv.ID,
	}, nil
}

// MarkRegistered transitions pending → registered after the external account
// creation has durably succeeded. It is best-effort bookkeeping: callers log
// a returned error, they never roll back the created account or surface the
// failure to the end user. Calling it twice is safe (first write wins).
func (u *InvitationUsecase) MarkRegistered(ctx context.Context, token string) error {
	inv, err := u.invitations.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("mark registered: %w", err)
	}

	if !inv.Register(u.now()) {
		// Already registered or expired; nothing to write.
		return nil
	}

	if _, err := u.invitations.Update(ctx, inv); err != nil {
		return fmt.Errorf("mark registered id=%s: %w", inv.ID, err)
	}
	return nil
}

func (u *InvitationUsecase) record(ctx context.Context, e auditdom.Event) {
	if u.audit == nil {
		return
	}
	if err := u.audit.Record(ctx, e); err != nil {
		log.Printf("[audit] WARN: record %s failed: %v", e.Name, err)
	}
}
