// internal/domain/invitation/entity.go
package invitation

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// DefaultTTL is how long an invitation stays redeemable after it is created.
// ExpiresAt = InvitedAt + DefaultTTL is the sole authority for expiry; there is
// no background sweep, the transition to expired happens lazily on read.
const DefaultTTL = 30 * 24 * time.Hour

type Status string

const (
	StatusPending    Status = "pending"
	StatusRegistered Status = "registered"
	StatusExpired    Status = "expired"
)

// Invitation is the domain entity for one outstanding or resolved offer to
// join the club. Rows are never deleted; expired/registered rows remain as an
// audit trail.
type Invitation struct {
	ID     string `json:"id" firestore:"id"`
	Email  string `json:"email" firestore:"email"` // normalized (lower-cased, trimmed)
	Token  string `json:"-" firestore:"token"`     // immutable once created
	Status Status `json:"status" firestore:"status"`

	InvitedBy string `json:"invitedBy,omitempty" firestore:"invitedBy,omitempty"`

	InvitedAt    time.Time  `json:"invitedAt" firestore:"invitedAt"`
	ExpiresAt    time.Time  `json:"expiresAt" firestore:"expiresAt"`
	RegisteredAt *time.Time `json:"registeredAt,omitempty" firestore:"registeredAt,omitempty"`

	// Sent tracks whether the notification actually dispatched; it is
	// decoupled from row creation so the store write can succeed even if the
	// send later fails.
	Sent   bool       `json:"sent" firestore:"sent"`
	SentAt *time.Time `json:"sentAt,omitempty" firestore:"sentAt,omitempty"`

	LinkedGuestMemberID string `json:"linkedGuestMemberId,omitempty" firestore:"linkedGuestMemberId,omitempty"`
}

var (
	ErrInvalidEmail = errors.New("invitation: invalid email")
	ErrNotFound     = errors.New("invitation: not found")
	ErrConflict     = errors.New("invitation: pending invitation already exists")
)

// NormalizeEmail trims and lower-cases an address and validates its shape.
// Every email entering the subsystem passes through here first.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailRe.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// New constructs a pending Invitation for an already-normalized email.
// The ID is left empty; the repository assigns it on create.
func New(email, token, invitedBy string, now time.Time) Invitation {
	return Invitation{
		Email:     email,
		Token:     token,
		Status:    StatusPending,
		InvitedBy: invitedBy,
		InvitedAt: now,
		ExpiresAt: now.Add(DefaultTTL),
	}
}

// IsExpired reports whether the invitation is past its expiry instant.
// This is a read-time predicate; callers persist the expired transition.
func (inv Invitation) IsExpired(now time.Time) bool {
	return now.After(inv.ExpiresAt)
}

// MarkSent records a successful dispatch. Safe to call again on resend; the
// timestamp moves to the latest send.
func (inv *Invitation) MarkSent(now time.Time) {
	t := now
	inv.Sent = true
	inv.SentAt = &t
}

// Expire transitions pending → expired. Transitions are monotonic: a
// registered or already-expired row is left untouched.
func (inv *Invitation) Expire(now time.Time) bool {
	if inv.Status != StatusPending {
		return false
	}
	inv.Status = StatusExpired
	return true
}

// Register transitions pending → registered and stamps RegisteredAt.
// Calling it again is a no-op (first write wins); it never errors so the
// registration flow can treat it as best-effort bookkeeping.
func (inv *Invitation) Register(now time.Time) bool {
	if inv.Status != StatusPending {
		return false
	}
	t := now
	inv.Status = StatusRegistered
	inv.RegisteredAt = &t
	return true
}
