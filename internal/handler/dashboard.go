package handler

import (
	"log/slog"
	"net/http"

	"github.com/visulab/backend/internal/analytics"
	"github.com/visulab/backend/internal/service"
)

// DashboardHandler serves the aggregate dashboard view
type DashboardHandler struct {
	dashboards *service.DashboardService
	logger     *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboards *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{dashboards: dashboards, logger: logger}
}

// criteriaFromRequest builds filter criteria from query params, scoped
// to the caller's company unless the caller is an admin.
func criteriaFromRequest(r *http.Request) (analytics.Criteria, bool) {
	companyID, ok := callerCompany(r)
	if !ok {
		return analytics.Criteria{}, false
	}
	q := r.URL.Query()
	return analytics.Criteria{
		DateFrom:  q.Get("date_from"),
		DateTo:    q.Get("date_to"),
		LensIndex: q.Get("lens_index"),
		Treatment: q.Get("treatment"),
		TenantID:  companyID,
	}, true
}

// Get handles GET /api/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	criteria, ok := criteriaFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	data, err := h.dashboards.GetDashboard(r.Context(), criteria)
	if err != nil {
		h.logger.Error("failed to build dashboard", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to build dashboard"})
		return
	}
	writeJSON(w, http.StatusOK, data)
}
