// internal/application/usecase/resolver.go
package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	invdom "clubhouse/internal/domain/invitation"
	memdom "clubhouse/internal/domain/member"
)

// ==============================
// Outbound Ports
// ==============================

// DirectoryAccount is the slice of an auth-provider account the resolver
// cares about.
type DirectoryAccount struct {
	UID           string
	Email         string
	EmailVerified bool
}

// ErrAccountNotFound is returned by AccountDirectory lookups when no auth
// account exists for the address.
var ErrAccountNotFound = errors.New("usecase: auth account not found")

// AccountDirectory は認証プロバイダ（Firebase Auth）へのアウトバウンドポート。
// adapters/out/auth.FirebaseDirectory がこれを実装する想定です。
type AccountDirectory interface {
	// LookupByEmail returns the auth account for an address, or
	// ErrAccountNotFound when none exists.
	LookupByEmail(ctx context.Context, email string) (DirectoryAccount, error)

	// PasswordResetLink builds the external credential-reset link for an
	// existing account.
	PasswordResetLink(ctx context.Context, email string) (string, error)

	// EmailVerificationLink builds the re-verification link for an account
	// that has not completed its own email verification.
	EmailVerificationLink(ctx context.Context, email string) (string, error)
}

// ==============================
// Disposition
// ==============================

// Disposition classifies a normalized email against the three overlapping
// notions of "already known": full member, awaiting-verification account,
// open invitation.
type Disposition string

const (
	DispositionUnknown              Disposition = "unknown"
	DispositionFullMember           Disposition = "full_member"
	DispositionAwaitingVerification Disposition = "awaiting_verification"
	DispositionOpenInvitation       Disposition = "open_invitation"
)

// Resolution carries the disposition plus whichever records drove it.
type Resolution struct {
	Disposition Disposition
	Member      *memdom.Member
	Invitation  *invdom.Invitation
	Account     *DirectoryAccount
}

// ==============================
// Resolver
// ==============================

// AccountResolver answers "what do we already know about this address?".
// The three source reads are independent — none of them orders before
// another — and classification applies the fixed precedence
//
//	FullMember > OpenInvitation > AwaitingVerification > Unknown.
//
// A guest/placeholder member row never classifies as FullMember: a runner
// added as a guest for attendance tracking must still be invitable by their
// real email later. That exclusion is the central policy of this subsystem.
type AccountResolver struct {
	members     memdom.Repository
	invitations invdom.Repository
	directory   AccountDirectory

	now func() time.Time
}

func NewAccountResolver(
	members memdom.Repository,
	invitations invdom.Repository,
	directory AccountDirectory,
) *AccountResolver {
	return &AccountResolver{
		members:     members,
		invitations: invitations,
		directory:   directory,
		now:         time.Now,
	}
}

// Resolve classifies a normalized email. Reads go straight to the sources on
// every call; invitation state is never cached across calls because
// concurrent inviters must always see the latest status.
func (r *AccountResolver) Resolve(ctx context.Context, email string) (Resolution, error) {
	var res Resolution
	res.Disposition = DispositionUnknown

	// Member directory.
	m, err := r.members.GetByEmail(ctx, email)
	switch {
	case err == nil:
		res.Member = &m
	case errors.Is(err, memdom.ErrNotFound):
		// no member row
	default:
		return Resolution{}, err
	}

	// Invitation store. A pending row past its expiry is transitioned to
	// expired here (lazy expiry), which also frees the per-email pending
	// slot for a fresh invitation.
	inv, err := r.invitations.GetPendingByEmail(ctx, email)
	switch {
	case err == nil:
		if inv.IsExpired(r.now()) {
			inv.Expire(r.now())
			if _, uerr := r.invitations.Update(ctx, inv); uerr != nil {
				return Resolution{}, uerr
			}
			log.Printf("[resolver] expired stale invitation id=%s email=%s", inv.ID, inv.Email)
		} else {
			res.Invitation = &inv
		}
	case errors.Is(err, invdom.ErrNotFound):
		// no open invitation
	default:
		return Resolution{}, err
	}

	// Auth directory (not-yet-verified accounts live here).
	acct, err := r.directory.LookupByEmail(ctx, email)
	switch {
	case err == nil:
		res.Account = &acct
	case errors.Is(err, ErrAccountNotFound):
		// no auth account
	default:
		return Resolution{}, err
	}

	res.Disposition = classify(res)
	return res, nil
}

func classify(res Resolution) Disposition {
	memberFull := res.Member != nil && !res.Member.IsGuest() &&
		res.Member.Status != memdom.StatusPendingVerification
	accountFull := res.Account != nil && res.Account.EmailVerified

	awaiting := (res.Member != nil && !res.Member.IsGuest() &&
		res.Member.Status == memdom.StatusPendingVerification) ||
		(res.Account != nil && !res.Account.EmailVerified)

	switch {
	case memberFull || accountFull:
		return DispositionFullMember
	case res.Invitation != nil:
		return DispositionOpenInvitation
	case awaiting:
		return DispositionAwaitingVerification
	default:
		return DispositionUnknown
	}
}
