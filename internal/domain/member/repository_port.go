// internal/domain/member/repository_port.go
package member

import "context"

// Repository is the outbound port onto the member directory. The invitation
// subsystem only ever looks members up by email or ID and creates guest
// placeholder rows; everything else about members belongs to other parts of
// the application.
type Repository interface {
	// GetByEmail returns the member whose directory address equals email
	// (already normalized). Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (Member, error)

	// GetByID returns a member by directory ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (Member, error)

	// CreateGuest persists a guest placeholder row and assigns its ID.
	CreateGuest(ctx context.Context, m Member) (Member, error)
}
