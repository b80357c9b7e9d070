package handler

import (
	"net/http"

	"github.com/meowrun/platform/internal/service"
)

// PlayerHandler handles the player's own profile endpoints.
type PlayerHandler struct {
	players *service.PlayerService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(players *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{players: players}
}

// Me handles GET /players/me.
func (h *PlayerHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	profile, err := h.players.Me(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
}

// UpdateProfile handles POST /players/me/profile.
func (h *PlayerHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var req profileRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	if err := h.players.UpdateDisplayName(r.Context(), accountID, req.DisplayName); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
