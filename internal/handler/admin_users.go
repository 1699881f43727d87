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

// AdminUsersHandler handles admin user account management
type AdminUsersHandler struct {
	authService *service.AuthService
	auditLog    *audit.Logger
	logger      *slog.Logger
}

// NewAdminUsersHandler creates a new admin users handler
func NewAdminUsersHandler(authService *service.AuthService, auditLog *audit.Logger, logger *slog.Logger) *AdminUsersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminUsersHandler{authService: authService, auditLog: auditLog, logger: logger}
}

// List handles GET /api/admin/users
func (h *AdminUsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.URL.Query().Get("company_id"))
	if err != nil {
		h.logger.Error("failed to list users", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list users"})
		return
	}
	if users == nil {
		users = []domain.UserAccount{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// Create handles POST /api/admin/users
func (h *AdminUsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	user, err := h.authService.CreateUser(input)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.auditLog.LogUserManaged(r.Context(), user.CompanyID, claims.UserID, "create", user.ID)
	}
	writeJSON(w, http.StatusCreated, user)
}

// Update handles PUT /api/admin/users/{id}
func (h *AdminUsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing user id"})
		return
	}

	var input service.UpdateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	user, err := h.authService.UpdateUser(id, input)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		h.auditLog.LogUserManaged(r.Context(), user.CompanyID, claims.UserID, "update", user.ID)
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/admin/users/{id}
func (h *AdminUsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing user id"})
		return
	}

	if err := h.authService.DeleteUser(claims.UserID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.auditLog.LogUserManaged(r.Context(), claims.TenantID, claims.UserID, "delete", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
