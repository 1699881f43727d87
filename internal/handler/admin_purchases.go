package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/repository"
	"github.com/visulab/backend/internal/security/middleware"
)

// AdminPurchasesHandler handles the purchase history kept per company
type AdminPurchasesHandler struct {
	purchases domain.PurchaseRepository
	logger    *slog.Logger
}

// NewAdminPurchasesHandler creates a new admin purchases handler
func NewAdminPurchasesHandler(purchases domain.PurchaseRepository, logger *slog.Logger) *AdminPurchasesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminPurchasesHandler{purchases: purchases, logger: logger}
}

// PurchaseRequest represents a create purchase payload
type PurchaseRequest struct {
	CompanyID    string `json:"company_id"`
	Supplier     string `json:"supplier"`
	PurchaseDate string `json:"purchase_date"` // YYYY-MM-DD
}

// List handles GET /api/admin/purchases
func (h *AdminPurchasesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.PurchaseFilter{CompanyID: q.Get("company_id")}

	if from := q.Get("date_from"); from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid date_from"})
			return
		}
		filter.From = t
	}
	if to := q.Get("date_to"); to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid date_to"})
			return
		}
		filter.To = t
	}

	purchases, err := h.purchases.List(filter)
	if err != nil {
		h.logger.Error("failed to list purchases", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to list purchases"})
		return
	}
	if purchases == nil {
		purchases = []domain.PurchaseRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"purchases": purchases})
}

// Create handles POST /api/admin/purchases
func (h *AdminPurchasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.CompanyID == "" || req.Supplier == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "company_id and supplier are required"})
		return
	}

	purchaseDate := time.Now()
	if req.PurchaseDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.PurchaseDate, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid purchase_date"})
			return
		}
		purchaseDate = t
	}

	purchase := &domain.PurchaseRecord{
		ID:           uuid.NewString(),
		CompanyID:    req.CompanyID,
		Supplier:     req.Supplier,
		PurchaseDate: purchaseDate,
		CreatedBy:    claims.UserID,
	}

	if err := h.purchases.Create(purchase); err != nil {
		h.logger.Error("failed to create purchase", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to create purchase"})
		return
	}
	writeJSON(w, http.StatusCreated, purchase)
}

// Delete handles DELETE /api/admin/purchases/{id}
func (h *AdminPurchasesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing purchase id"})
		return
	}

	if err := h.purchases.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "purchase not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to delete purchase"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "purchase deleted"})
}
