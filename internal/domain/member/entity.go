// internal/domain/member/entity.go
package member

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// GuestDomain is the sentinel domain for placeholder addresses. A guest row
// created for attendance tracking must NEVER carry a real email; it gets a
// synthetic temp-<timestamp>@GuestDomain address instead, and the real
// address (if any) travels only on the invitation.
const GuestDomain = "guest.clubhouse.local"

type Status string

const (
	StatusGuest               Status = "guest"
	StatusPendingVerification Status = "pending_verification"
	StatusActive              Status = "active"
)

// Member is the directory entry for a club runner. This subsystem consults
// the directory, it does not own it: only the fields and operations the
// invitation flow needs are modeled here.
type Member struct {
	ID        string `json:"id" firestore:"id"`
	FirstName string `json:"firstName,omitempty" firestore:"firstName"`
	LastName  string `json:"lastName,omitempty" firestore:"lastName"`
	Email     string `json:"email,omitempty" firestore:"email"`
	Status    Status `json:"status,omitempty" firestore:"status"`

	// Firebase user mapping（optional）
	FirebaseUID string `json:"firebaseUid,omitempty" firestore:"firebaseUid,omitempty"`

	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt"`
	CreatedBy string     `json:"createdBy,omitempty" firestore:"createdBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

var (
	ErrNotFound      = errors.New("member: not found")
	ErrInvalidStatus = errors.New("member: invalid status")
)

// GuestPlaceholderEmail builds the synthetic address a guest row is created
// with. The timestamp keeps placeholders unique without leaking anything.
func GuestPlaceholderEmail(now time.Time) string {
	return fmt.Sprintf("temp-%d@%s", now.UnixNano(), GuestDomain)
}

// NewGuest constructs a guest member carrying only the placeholder address.
func NewGuest(firstName, lastName, createdBy string, now time.Time) Member {
	return Member{
		FirstName: firstName,
		LastName:  lastName,
		Email:     GuestPlaceholderEmail(now),
		Status:    StatusGuest,
		CreatedAt: now,
		CreatedBy: createdBy,
	}
}

// IsGuest reports whether this row is a guest/placeholder record. Both the
// status flag and the synthetic-domain address count, so a half-migrated row
// can never block a real invitation.
func (m Member) IsGuest() bool {
	if m.Status == StatusGuest {
		return true
	}
	return strings.HasSuffix(strings.ToLower(m.Email), "@"+GuestDomain)
}

// IsActive reports whether this is a real, fully verified account.
func (m Member) IsActive() bool {
	return m.Status == StatusActive && !m.IsGuest()
}
