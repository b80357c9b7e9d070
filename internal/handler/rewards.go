package handler

import (
	"net/http"

	"github.com/meowrun/platform/internal/service"
)

// RewardsHandler handles recurring rewards and activity milestones.
type RewardsHandler struct {
	rewards *service.RewardsService
	claims  *service.ClaimsService
}

// NewRewardsHandler creates a new RewardsHandler.
func NewRewardsHandler(rewards *service.RewardsService, claims *service.ClaimsService) *RewardsHandler {
	return &RewardsHandler{rewards: rewards, claims: claims}
}

// Cooldowns handles GET /rewards/cooldowns.
func (h *RewardsHandler) Cooldowns(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	status, err := h.rewards.Status(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, status)
}

// ClaimDaily handles POST /rewards/daily.
func (h *RewardsHandler) ClaimDaily(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.rewards.ClaimDaily(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"added": map[string]int64{
			"gems":     result.Entry.DeltaGems,
			"activity": result.Entry.DeltaActivity,
		},
		"balances": result.Account.Balances,
	})
}

// ClaimAd handles POST /rewards/ad.
func (h *RewardsHandler) ClaimAd(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.rewards.ClaimAd(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"coin_added": result.Result.Entry.DeltaCoins,
		"remaining":  result.Remaining,
		"balances":   result.Result.Account.Balances,
	})
}

// ActivityOverview handles GET /rewards/activity.
func (h *RewardsHandler) ActivityOverview(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	items, err := h.claims.MilestoneOverview(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

type milestoneClaimRequest struct {
	Threshold int64 `json:"threshold"`
}

// ClaimMilestone handles POST /rewards/activity/claim.
func (h *RewardsHandler) ClaimMilestone(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req milestoneClaimRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.claims.ClaimMilestone(r.Context(), accountID, req.Threshold)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"gems_added": result.Entry.DeltaGems,
		"balances":   result.Account.Balances,
	})
}
