package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/repository"
	"github.com/visulab/backend/internal/security/audit"
	"github.com/visulab/backend/internal/security/middleware"
	"github.com/visulab/backend/internal/service"
)

// ShortagesHandler handles shortage record endpoints
type ShortagesHandler struct {
	shortages  *service.ShortageService
	dashboards *service.DashboardService
	auditLog   *audit.Logger
	logger     *slog.Logger
}

// NewShortagesHandler creates a new shortages handler
func NewShortagesHandler(
	shortages *service.ShortageService,
	dashboards *service.DashboardService,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *ShortagesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShortagesHandler{
		shortages:  shortages,
		dashboards: dashboards,
		auditLog:   auditLog,
		logger:     logger,
	}
}

// callerCompany resolves the tenant a request operates on. Admins may
// target any company via the company_id query param; an empty value
// means all companies. Regular users are pinned to their own.
func callerCompany(r *http.Request) (string, bool) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return "", false
	}
	if claims.Role == domain.RoleAdmin {
		return r.URL.Query().Get("company_id"), true
	}
	return claims.TenantID, true
}

// Create handles POST /api/shortages
func (h *ShortagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var input service.RecordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	tenantID := claims.TenantID
	if claims.Role == domain.RoleAdmin {
		if override := r.URL.Query().Get("company_id"); override != "" {
			tenantID = override
		}
	}

	record, err := h.shortages.CreateRecord(tenantID, input)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.dashboards.InvalidateTenant(r.Context(), tenantID)
	h.auditLog.LogRecordCreated(r.Context(), tenantID, claims.UserID, record.ID)
	writeJSON(w, http.StatusCreated, record)
}

// List handles GET /api/shortages
func (h *ShortagesHandler) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := callerCompany(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	records, err := h.shortages.ListRecords(companyID)
	if err != nil {
		h.logger.Error("failed to list records", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list records"})
		return
	}
	if records == nil {
		records = []domain.ShortageRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

// Update handles PUT /api/shortages/{id}. Admin only.
func (h *ShortagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing record id"})
		return
	}

	var input service.RecordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	record, err := h.shortages.UpdateRecord(id, input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "record not found"})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.dashboards.InvalidateTenant(r.Context(), record.TenantID)
	writeJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/shortages/{id}. Admin only.
func (h *ShortagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing record id"})
		return
	}

	record, err := h.shortages.GetRecord(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "record not found"})
		return
	}

	if err := h.shortages.DeleteRecord(id); err != nil {
		h.logger.Error("failed to delete record",
			slog.String("record_id", id),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to delete record"})
		return
	}

	h.dashboards.InvalidateTenant(r.Context(), record.TenantID)
	if claims != nil {
		h.auditLog.LogRecordDeleted(r.Context(), record.TenantID, claims.UserID, id)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "record deleted"})
}
