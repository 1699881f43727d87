package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/visulab/backend/internal/security/audit"
	"github.com/visulab/backend/internal/security/middleware"
	"github.com/visulab/backend/internal/service"
)

// ReportHandler serves downloadable shortage reports
type ReportHandler struct {
	reports  *service.ReportService
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *service.ReportService, auditLog *audit.Logger, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{reports: reports, auditLog: auditLog, logger: logger}
}

// Download handles GET /api/reports/shortages and streams the text
// report as an attachment.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	criteria, ok := criteriaFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	report, err := h.reports.Generate(criteria)
	if err != nil {
		if errors.Is(err, service.ErrNoData) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("failed to generate report", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to generate report"})
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.auditLog.LogReportGenerated(r.Context(), criteria.TenantID, claims.UserID, report.Filename)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report.Content))
}
