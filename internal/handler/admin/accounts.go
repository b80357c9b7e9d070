package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meowrun/platform/internal/domain"
	"github.com/meowrun/platform/internal/handler"
	"github.com/meowrun/platform/internal/service"
)

// AccountAdminHandler handles admin account management.
type AccountAdminHandler struct {
	admin *service.AdminService
}

// NewAccountAdminHandler creates a new AccountAdminHandler.
func NewAccountAdminHandler(admin *service.AdminService) *AccountAdminHandler {
	return &AccountAdminHandler{admin: admin}
}

// ResetDevice handles POST /admin/accounts/{id}/reset-device.
func (h *AccountAdminHandler) ResetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid account id"))
		return
	}

	if err := h.admin.ResetDevice(r.Context(), id, handler.ClientIP(r), r.UserAgent()); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Reconcile handles GET /admin/accounts/{id}/reconcile.
func (h *AccountAdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid account id"))
		return
	}

	consistent, err := h.admin.ReconcileAccount(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": id,
		"consistent": consistent,
	})
}
