package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/repository"
	"github.com/visulab/backend/internal/service"
)

// AdminCompaniesHandler handles admin company (tenant) management
type AdminCompaniesHandler struct {
	companies  domain.CompanyRepository
	dashboards *service.DashboardService
	logger     *slog.Logger
}

// NewAdminCompaniesHandler creates a new admin companies handler
func NewAdminCompaniesHandler(
	companies domain.CompanyRepository,
	dashboards *service.DashboardService,
	logger *slog.Logger,
) *AdminCompaniesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminCompaniesHandler{companies: companies, dashboards: dashboards, logger: logger}
}

// CompanyRequest represents a create/update company payload
type CompanyRequest struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
	Active  *bool  `json:"active"`
}

// List handles GET /api/admin/companies
func (h *AdminCompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.List()
	if err != nil {
		h.logger.Error("failed to list companies", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list companies"})
		return
	}
	if companies == nil {
		companies = []domain.Company{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"companies": companies})
}

// Create handles POST /api/admin/companies
func (h *AdminCompaniesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	company := &domain.Company{
		ID:      uuid.NewString(),
		Name:    req.Name,
		LogoURL: req.LogoURL,
		Active:  true,
	}
	if req.Active != nil {
		company.Active = *req.Active
	}

	if err := h.companies.Create(company); err != nil {
		h.logger.Error("failed to create company", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to create company"})
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

// Update handles PUT /api/admin/companies/{id}
func (h *AdminCompaniesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing company id"})
		return
	}

	company, err := h.companies.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "company not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to load company"})
		return
	}

	var req CompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.Name != "" {
		company.Name = req.Name
	}
	if req.LogoURL != "" {
		company.LogoURL = req.LogoURL
	}
	if req.Active != nil {
		company.Active = *req.Active
	}

	if err := h.companies.Update(company); err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to update company"})
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// Delete handles DELETE /api/admin/companies/{id}
func (h *AdminCompaniesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing company id"})
		return
	}

	if err := h.companies.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "company not found"})
			return
		}
		h.logger.Error("failed to delete company",
			slog.String("company_id", id),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to delete company"})
		return
	}

	h.dashboards.InvalidateTenant(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "company deleted"})
}
