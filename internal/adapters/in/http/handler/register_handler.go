// internal/adapters/in/http/handler/register_handler.go
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"clubhouse/internal/application/usecase"
)

/*
RegisterHandler — the registration completion hook.

  - GET  /api/register/validate?token=...
    登録フォーム表示前に必ず呼ぶ。token からメールアドレスを解決して
    フォームにプリフィル（リンク自体に email は載せない）。
  - POST /api/register/complete
    外部のアカウント作成が durable に成功した後に呼ぶ。帳簿付けに失敗しても
    登録自体は完了扱い（ログのみ）。
*/

type RegisterHandler struct {
	Invitations usecase.InvitationPort
}

func NewRegisterHandler(invitations usecase.InvitationPort) *RegisterHandler {
	return &RegisterHandler{Invitations: invitations}
}

func (h *RegisterHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	token := strings.TrimSpace(r.URL.Query().Get("token"))

	result, err := h.Invitations.ValidateToken(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusBadGateway, "validate_failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type registerCompleteRequest struct {
	Token string `json:"token"`
}

func (h *RegisterHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req registerCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	// Bookkeeping only: the account already exists durably by the time this
	// is called, so a failure here is logged and the client still gets 200.
	if err := h.Invitations.MarkRegistered(r.Context(), strings.TrimSpace(req.Token)); err != nil {
		log.Printf("[register] WARN: mark registered failed: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
