package handler

import (
	"net/http"

	"github.com/meowrun/platform/internal/service"
)

// GameHandler handles the gameplay earn endpoints.
type GameHandler struct {
	game *service.GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(game *service.GameService) *GameHandler {
	return &GameHandler{game: game}
}

type runRequest struct {
	Taps int `json:"taps"`
}

// CompleteRun handles POST /game/run.
func (h *GameHandler) CompleteRun(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req runRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.game.CompleteRun(r.Context(), accountID, req.Taps)
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

// Upgrade handles POST /game/upgrade.
func (h *GameHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	result, err := h.game.Upgrade(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"new_level": result.NewLevel,
		"gem_cost":  result.GemCost,
		"balances":  result.Result.Account.Balances,
	})
}

type convertRequest struct {
	Gems int64 `json:"gems"`
}

// Convert handles POST /bank/convert.
func (h *GameHandler) Convert(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req convertRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.game.ConvertGems(r.Context(), accountID, req.Gems)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"coins_added": result.CoinsAdded,
		"gems_spent":  result.GemsSpent,
		"balances":    result.Result.Account.Balances,
	})
}
