// internal/adapters/in/http/handler/invitation_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clubhouse/internal/application/usecase"
	invdom "clubhouse/internal/domain/invitation"
)

/*
InvitationHandler
- POST /api/invitations        単発招待（クイック招待サイドバー / 管理画面の再送）
- POST /api/invitations/bulk   一括招待（配送エンジン経由、送信間隔つき逐次処理）
- POST /api/guests             ゲスト行の作成（任意で実メール宛の招待を同時送信）
*/

type InvitationHandler struct {
	Invitations usecase.InvitationPort
	Bulk        *usecase.BulkInviteUsecase
	Guests      *usecase.GuestInviteUsecase
}

func NewInvitationHandler(
	invitations usecase.InvitationPort,
	bulk *usecase.BulkInviteUsecase,
	guests *usecase.GuestInviteUsecase,
) *InvitationHandler {
	return &InvitationHandler{
		Invitations: invitations,
		Bulk:        bulk,
		Guests:      guests,
	}
}

// --------------------------------------------------
// Single invite
// --------------------------------------------------

type inviteRequest struct {
	Email     string `json:"email"`
	InvitedBy string `json:"invitedBy,omitempty"`
}

func (h *InvitationHandler) Invite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	outcome, err := h.Invitations.Invite(r.Context(), req.Email, req.InvitedBy)
	if err != nil {
		switch {
		case errors.Is(err, invdom.ErrInvalidEmail):
			writeError(w, http.StatusBadRequest, "invalid_email")
		case errors.Is(err, invdom.ErrConflict):
			// A concurrent inviter won; the client can simply retry and will
			// resolve to the open invitation.
			writeError(w, http.StatusConflict, "invitation_conflict")
		default:
			writeError(w, http.StatusBadGateway, "invite_failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// --------------------------------------------------
// Bulk invite
// --------------------------------------------------

type bulkInviteRequest struct {
	Emails    []string `json:"emails"`
	InvitedBy string   `json:"invitedBy,omitempty"`
}

func (h *InvitationHandler) BulkInvite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req bulkInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if len(req.Emails) == 0 {
		writeError(w, http.StatusBadRequest, "emails_empty")
		return
	}

	// The batch runs to completion within the request; per-address failures
	// are inside the result, not HTTP errors.
	result := h.Bulk.SendBatch(r.Context(), req.Emails, req.InvitedBy, nil)
	writeJSON(w, http.StatusOK, result)
}

// --------------------------------------------------
// Guest creation (+ optional invitation)
// --------------------------------------------------

func (h *InvitationHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req usecase.GuestCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	result, err := h.Guests.CreateGuestWithInvite(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, "guest_create_failed")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
