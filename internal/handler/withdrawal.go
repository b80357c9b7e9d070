package handler

import (
	"net/http"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/service"
)

// WithdrawalHandler handles the player-facing withdrawal endpoints.
type WithdrawalHandler struct {
	withdrawals *service.WithdrawalService
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawals *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// List handles GET /withdrawals.
func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	items, err := h.withdrawals.ListMine(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

type submitRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
	Destination string `json:"destination"`
}

// Submit handles POST /withdrawals.
func (h *WithdrawalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req submitRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	withdrawal, err := h.withdrawals.Submit(r.Context(), service.SubmitInput{
		AccountID:   accountID,
		AmountCents: req.AmountCents,
		Method:      domain.WithdrawalMethod(req.Method),
		Destination: req.Destination,
		IP:          ClientIP(r),
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, withdrawal)
}
