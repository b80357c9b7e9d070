package admin

import (
	"net/http"

	"github.com/meowrun/platform/internal/handler"
	"github.com/meowrun/platform/internal/service"
)

// ReportsHandler serves the analytics dashboard.
type ReportsHandler struct {
	admin *service.AdminService
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(admin *service.AdminService) *ReportsHandler {
	return &ReportsHandler{admin: admin}
}

// Analytics handles GET /admin/analytics.
func (h *ReportsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	data, err := h.admin.Dashboard(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, data)
}
