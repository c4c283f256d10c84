// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"clubhouse/internal/adapters/in/http/handler"
	"clubhouse/internal/application/usecase"
)

// RouterDeps is everything the invitation routes need. The DI container
// fills it; tests can fill it with fakes.
type RouterDeps struct {
	InvitationUC *usecase.InvitationUsecase
	BulkUC       *usecase.BulkInviteUsecase
	GuestUC      *usecase.GuestInviteUsecase
}

// NewRouter mounts the invitation subsystem's routes.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	inv := handler.NewInvitationHandler(deps.InvitationUC, deps.BulkUC, deps.GuestUC)
	reg := handler.NewRegisterHandler(deps.InvitationUC)

	mux.HandleFunc("/api/invitations", inv.Invite)
	mux.HandleFunc("/api/invitations/bulk", inv.BulkInvite)
	mux.HandleFunc("/api/guests", inv.CreateGuest)
	mux.HandleFunc("/api/register/validate", reg.Validate)
	mux.HandleFunc("/api/register/complete", reg.Complete)

	return mux
}
