package repository

import (
	"fmt"
	"log/slog"

	"database/sql"

	"github.com/visulab/backend/internal/domain"
)

// PostgresPurchaseRepository implements domain.PurchaseRepository using PostgreSQL
type PostgresPurchaseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPurchaseRepository creates a new purchase repository
func NewPostgresPurchaseRepository(db *sql.DB, logger *slog.Logger) *PostgresPurchaseRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPurchaseRepository{db: db, logger: logger}
}

// Create creates a new purchase record
func (r *PostgresPurchaseRepository) Create(purchase *domain.PurchaseRecord) error {
	query := `
		INSERT INTO purchases (id, company_id, supplier, purchase_date, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(
		query,
		purchase.ID, purchase.CompanyID, purchase.Supplier, purchase.PurchaseDate, purchase.CreatedBy,
	).Scan(&purchase.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create purchase",
			slog.String("company_id", purchase.CompanyID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

// Delete removes a purchase record
func (r *PostgresPurchaseRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns purchase records matching the filter, newest purchase first.
// The date bounds are inclusive calendar days.
func (r *PostgresPurchaseRepository) List(filter domain.PurchaseFilter) ([]domain.PurchaseRecord, error) {
	query := `
		SELECT id, company_id, supplier, purchase_date, created_by, created_at
		FROM purchases
		WHERE ($1 = '' OR company_id = $1::uuid)
		  AND ($2::timestamptz IS NULL OR purchase_date >= $2)
		  AND ($3::timestamptz IS NULL OR purchase_date < $3)
		ORDER BY purchase_date DESC
	`
	var from, to interface{}
	if !filter.From.IsZero() {
		from = filter.From
	}
	if !filter.To.IsZero() {
		// exclusive upper bound one day past the requested end date
		to = filter.To.AddDate(0, 0, 1)
	}

	rows, err := r.db.Query(query, filter.CompanyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var out []domain.PurchaseRecord
	for rows.Next() {
		var p domain.PurchaseRecord
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Supplier, &p.PurchaseDate, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
