package handler

import (
	"net/http"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/service"
)

// WalletHandler handles the ledger view endpoints.
type WalletHandler struct {
	players *service.PlayerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(players *service.PlayerService) *WalletHandler {
	return &WalletHandler{players: players}
}

type ledgerResponse struct {
	Items []domain.LedgerEntry `json:"items"`
}

// GetLedger handles GET /wallet/ledger.
func (h *WalletHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	entries, err := h.players.Ledger(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, ledgerResponse{Items: entries})
}
