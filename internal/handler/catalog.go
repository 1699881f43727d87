package handler

import (
	"log/slog"
	"net/http"

	"github.com/visulab/backend/internal/lens"
)

// CatalogHandler returns the lens option sets the registration form
// renders from, including the per-index restriction rules.
type CatalogHandler struct {
	log *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{log: log}
}

// ServeHTTP handles GET /api/catalog
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type RuleResponse struct {
		Types      []string `json:"types"`
		Treatments []string `json:"treatments"`
	}

	rules := make(map[string]RuleResponse)
	for _, index := range lens.IndexOptions {
		rule := lens.RuleFor(index)
		rules[index] = RuleResponse{
			Types:      rule.Types,
			Treatments: rule.Treatments,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"indexes":    lens.IndexOptions,
		"types":      lens.StandardTypes,
		"treatments": lens.StandardTreatments,
		"rules":      rules,
	})
}
