// internal/application/usecase/guest_invite_usecase.go
package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	invdom "clubhouse/internal/domain/invitation"
	memdom "clubhouse/internal/domain/member"
)

// GuestCreateRequest asks for a guest attendance row, optionally paired with
// a real-email invitation.
type GuestCreateRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	// Email is the runner's REAL address. It is relayed to the invitation
	// only; the guest row itself always gets a synthetic placeholder.
	Email          string `json:"email,omitempty"`
	SendInvitation bool   `json:"sendInvitation"`
	CreatedBy      string `json:"createdBy,omitempty"`
}

// GuestCreateResult reports the created guest row and, when an invitation
// was requested, its outcome.
type GuestCreateResult struct {
	Member     memdom.Member  `json:"member"`
	Invitation *InviteOutcome `json:"invitation,omitempty"`
}

// GuestInviteUsecase creates guest rows for attendance tracking and links
// them to invitations. The hard invariant it protects: a real email address
// is NEVER written to the guest member record, no matter what the caller
// supplies — the guest row carries the temp-<timestamp>@sentinel placeholder
// and the real address lives only on the invitation.
type GuestInviteUsecase struct {
	members     memdom.Repository
	invitations invdom.Repository
	inviter     Inviter

	now func() time.Time
}

func NewGuestInviteUsecase(
	members memdom.Repository,
	invitations invdom.Repository,
	inviter Inviter,
) *GuestInviteUsecase {
	return &GuestInviteUsecase{
		members:     members,
		invitations: invitations,
		inviter:     inviter,
		now:         time.Now,
	}
}

// CreateGuestWithInvite creates the placeholder guest row first, then — only
// when asked and given a real address — runs the normal invitation lifecycle
// for that address and cross-references the invitation to the guest row.
// An invitation failure does not undo the guest row; the guest can be
// re-invited later through the ordinary Invite path.
func (u *GuestInviteUsecase) CreateGuestWithInvite(
	ctx context.Context,
	req GuestCreateRequest,
) (GuestCreateResult, error) {
	guest := memdom.NewGuest(
		strings.TrimSpace(req.FirstName),
		strings.TrimSpace(req.LastName),
		req.CreatedBy,
		u.now(),
	)

	created, err := u.members.CreateGuest(ctx, guest)
	if err != nil {
		return GuestCreateResult{}, fmt.Errorf("create guest: %w", err)
	}

	result := GuestCreateResult{Member: created}

	if !req.SendInvitation || strings.TrimSpace(req.Email) == "" {
		return result, nil
	}

	outcome, err := u.inviter.Invite(ctx, req.Email, req.CreatedBy)
	if err != nil {
		log.Printf("[guest] WARN: invite for guest %s failed: %v", created.ID, err)
		return result, nil
	}
	result.Invitation = &outcome

	if err := u.LinkIfSent(ctx, outcome, created.ID); err != nil {
		log.Printf("[guest] WARN: link invitation %s to guest %s failed: %v",
			outcome.InvitationID, created.ID, err)
	}

	return result, nil
}

// LinkIfSent writes the guest back-reference on the invitation row after a
// successful invite. It touches only the invitation; the member record's
// address is out of its reach entirely.
func (u *GuestInviteUsecase) LinkIfSent(ctx context.Context, outcome InviteOutcome, guestMemberID string) error {
	if !outcome.Success || outcome.InvitationID == "" || guestMemberID == "" {
		return nil
	}

	inv, err := u.invitations.GetByID(ctx, outcome.InvitationID)
	if err != nil {
		return err
	}

	inv.LinkedGuestMemberID = guestMemberID
	_, err = u.invitations.Update(ctx, inv)
	return err
}
