package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/handler"
	"github.com/meowrun/platform/internal/service"
)

// WithdrawalAdminHandler handles the settlement queue.
type WithdrawalAdminHandler struct {
	withdrawals *service.WithdrawalService
}

// NewWithdrawalAdminHandler creates a new WithdrawalAdminHandler.
func NewWithdrawalAdminHandler(withdrawals *service.WithdrawalService) *WithdrawalAdminHandler {
	return &WithdrawalAdminHandler{withdrawals: withdrawals}
}

// Queue handles GET /admin/withdrawals.
func (h *WithdrawalAdminHandler) Queue(w http.ResponseWriter, r *http.Request) {
	items, err := h.withdrawals.ListQueue(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

type settleRequest struct {
	AdminNote string `json:"admin_note"`
}

// MarkPaid handles POST /admin/withdrawals/{id}/paid.
func (h *WithdrawalAdminHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.withdrawals.MarkPaid)
}

// Reject handles POST /admin/withdrawals/{id}/reject.
func (h *WithdrawalAdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, h.withdrawals.Reject)
}

func (h *WithdrawalAdminHandler) settle(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, string) error) {
	id, err := withdrawalID(r)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	var req settleRequest
	if err := handler.DecodeJSON(r, &req); err != nil && r.ContentLength > 0 {
		handler.RespondBadBody(w)
		return
	}

	if err := op(r.Context(), id, req.AdminNote); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// withdrawalID parses the {id} route parameter.
func withdrawalID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.ErrValidation("invalid withdrawal id")
	}
	return id, nil
}
