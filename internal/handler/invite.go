package handler

import (
	"net/http"

	"github.com/meowrun/platform/internal/service"
)

// InviteHandler handles the referral endpoints.
type InviteHandler struct {
	referrals *service.ReferralService
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(referrals *service.ReferralService) *InviteHandler {
	return &InviteHandler{referrals: referrals}
}

// MyCode handles GET /invite/me.
func (h *InviteHandler) MyCode(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	overview, err := h.referrals.Overview(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"code":  overview.Code,
		"bound": overview.Bound,
	})
}

type bindRequest struct {
	Code string `json:"code"`
}

// Bind handles POST /invite/bind.
func (h *InviteHandler) Bind(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req bindRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	inviter, err := h.referrals.Bind(r.Context(), accountID, req.Code)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"inviter": inviter.DisplayName,
	})
}

// Status handles GET /invite/status.
func (h *InviteHandler) Status(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	overview, err := h.referrals.Overview(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, overview)
}
