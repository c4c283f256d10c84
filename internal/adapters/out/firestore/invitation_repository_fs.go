// internal/adapters/out/firestore/invitation_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	invdom "clubhouse/internal/domain/invitation"
)

// InvitationRepositoryFS is a Firestore-based implementation of
// invdom.Repository.
//
// ドキュメント構造：
//   - コレクション "invitations"
//     ドキュメントID: 招待ID（自動採番）。token とは独立。
//   - コレクション "pendingInvitationEmails"
//     ドキュメントID: 正規化済みメールアドレス。
//     pending 招待の一意性制約のバックストップ。同時 Invite が競合した場合、
//     負けた側の tx.Create が AlreadyExists で落ち、ErrConflict になる。
type InvitationRepositoryFS struct {
	Client *firestore.Client
}

func NewInvitationRepositoryFS(client *firestore.Client) *InvitationRepositoryFS {
	return &InvitationRepositoryFS{Client: client}
}

// Compile-time check
var _ invdom.Repository = (*InvitationRepositoryFS)(nil)

func (r *InvitationRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("invitations")
}

func (r *InvitationRepositoryFS) pendingIdx() *firestore.CollectionRef {
	return r.Client.Collection("pendingInvitationEmails")
}

// pendingIndexDoc is the per-email slot that makes "at most one pending
// invitation per address" a store-level guarantee.
type pendingIndexDoc struct {
	InvitationID string    `firestore:"invitationId"`
	Email        string    `firestore:"email"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

// ========================
// Writes
// ========================

// CreatePending assigns a fresh document ID and creates the invitation and
// its pending-email slot in one transaction. A concurrent create for the
// same address loses on the slot's Create and surfaces as ErrConflict.
func (r *InvitationRepositoryFS) CreatePending(
	ctx context.Context,
	inv invdom.Invitation,
) (invdom.Invitation, error) {
	if r.Client == nil {
		return invdom.Invitation{}, errors.New("firestore client is nil")
	}
	if inv.Status != invdom.StatusPending {
		return invdom.Invitation{}, errors.New("invitation: CreatePending requires status=pending")
	}

	ref := r.col().NewDoc()
	inv.ID = ref.ID

	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		idx := pendingIndexDoc{
			InvitationID: inv.ID,
			Email:        inv.Email,
			CreatedAt:    inv.InvitedAt,
		}
		if err := tx.Create(r.pendingIdx().Doc(inv.Email), idx); err != nil {
			return err
		}
		return tx.Create(ref, inv)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return invdom.Invitation{}, invdom.ErrConflict
		}
		return invdom.Invitation{}, err
	}
	return inv, nil
}

// Update overwrites the invitation document. When the status has left
// pending, the per-email slot is released in the same transaction so a later
// invitation for the address can be created.
func (r *InvitationRepositoryFS) Update(
	ctx context.Context,
	inv invdom.Invitation,
) (invdom.Invitation, error) {
	if r.Client == nil {
		return invdom.Invitation{}, errors.New("firestore client is nil")
	}
	id := strings.TrimSpace(inv.ID)
	if id == "" {
		return invdom.Invitation{}, invdom.ErrNotFound
	}

	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(r.col().Doc(id), inv); err != nil {
			return err
		}
		if inv.Status != invdom.StatusPending {
			return tx.Delete(r.pendingIdx().Doc(inv.Email))
		}
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return invdom.Invitation{}, invdom.ErrNotFound
		}
		return invdom.Invitation{}, err
	}
	return inv, nil
}

// ========================
// Queries
// ========================

func (r *InvitationRepositoryFS) GetByID(ctx context.Context, id string) (invdom.Invitation, error) {
	if r.Client == nil {
		return invdom.Invitation{}, errors.New("firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return invdom.Invitation{}, invdom.ErrNotFound
	}

	doc, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return invdom.Invitation{}, invdom.ErrNotFound
		}
		return invdom.Invitation{}, err
	}
	return readInvitationSnapshot(doc)
}

// GetByToken queries by the token field. The token is deliberately NOT the
// document ID, so the opaque invitation ID leaks nothing about it.
func (r *InvitationRepositoryFS) GetByToken(ctx context.Context, token string) (invdom.Invitation, error) {
	if r.Client == nil {
		return invdom.Invitation{}, errors.New("firestore client is nil")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return invdom.Invitation{}, invdom.ErrNotFound
	}

	q := r.col().Where("token", "==", token).Limit(1)
	it := q.Documents(ctx)
	defer it.Stop()

	doc, err := it.Next()
	if err == iterator.Done {
		return invdom.Invitation{}, invdom.ErrNotFound
	}
	if err != nil {
		return invdom.Invitation{}, err
	}
	return readInvitationSnapshot(doc)
}

// GetPendingByEmail goes through the pending-email slot, which is
// authoritative for "is there an open invitation for this address".
func (r *InvitationRepositoryFS) GetPendingByEmail(ctx context.Context, email string) (invdom.Invitation, error) {
	if r.Client == nil {
		return invdom.Invitation{}, errors.New("firestore client is nil")
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return invdom.Invitation{}, invdom.ErrNotFound
	}

	idxDoc, err := r.pendingIdx().Doc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return invdom.Invitation{}, invdom.ErrNotFound
		}
		return invdom.Invitation{}, err
	}

	var idx pendingIndexDoc
	if err := idxDoc.DataTo(&idx); err != nil {
		return invdom.Invitation{}, err
	}

	inv, err := r.GetByID(ctx, idx.InvitationID)
	if err != nil {
		return invdom.Invitation{}, err
	}
	if inv.Status != invdom.StatusPending {
		// Slot pointing at a settled row should not happen (Update releases
		// it transactionally); treat as no open invitation.
		return invdom.Invitation{}, invdom.ErrNotFound
	}
	return inv, nil
}

// ========================
// Helper: decode snapshot
// ========================

func readInvitationSnapshot(doc *firestore.DocumentSnapshot) (invdom.Invitation, error) {
	var inv invdom.Invitation
	if err := doc.DataTo(&inv); err != nil {
		return invdom.Invitation{}, err
	}
	if strings.TrimSpace(inv.ID) == "" {
		inv.ID = doc.Ref.ID
	}
	return inv, nil
}
