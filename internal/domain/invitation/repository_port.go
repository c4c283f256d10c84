// internal/domain/invitation/repository_port.go
package invitation

import "context"

// Repository はヘキサゴナルの out ポート。Firestore 実装は
// adapters/out/firestore/invitation_repository_fs.go にあります。
//
// 招待ストアは本サブシステム唯一の真実の源であり、呼び出しをまたいだ
// インメモリキャッシュは許可されません（並行アクター間で常に最新の
// status を見る必要があるため）。
type Repository interface {
	// CreatePending persists a new pending invitation and assigns its ID.
	// At most one pending invitation may exist per normalized email; a
	// losing concurrent create returns ErrConflict (store-level uniqueness
	// is the backstop against check-then-act races).
	CreatePending(ctx context.Context, inv Invitation) (Invitation, error)

	// GetByID returns an invitation by its opaque ID.
	// Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (Invitation, error)

	// GetByToken returns an invitation by its token string.
	// Returns ErrNotFound if absent.
	GetByToken(ctx context.Context, token string) (Invitation, error)

	// GetPendingByEmail returns the pending invitation for a normalized
	// email, or ErrNotFound when none is open.
	GetPendingByEmail(ctx context.Context, email string) (Invitation, error)

	// Update persists a mutated invitation (sent flag, status transition,
	// guest link). Implementations release the per-email pending slot in the
	// same write when the status leaves pending.
	Update(ctx context.Context, inv Invitation) (Invitation, error)
}
