package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/visulab/backend/internal/domain"
)

// PostgresCompanyRepository implements domain.CompanyRepository using PostgreSQL
type PostgresCompanyRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCompanyRepository creates a new company repository
func NewPostgresCompanyRepository(db *sql.DB, logger *slog.Logger) *PostgresCompanyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCompanyRepository{db: db, logger: logger}
}

// Create creates a new company
func (r *PostgresCompanyRepository) Create(company *domain.Company) error {
	query := `
		INSERT INTO companies (id, name, logo_url, active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(query, company.ID, company.Name, company.LogoURL, company.Active).Scan(
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create company",
			slog.String("name", company.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// GetByID retrieves a company by ID
func (r *PostgresCompanyRepository) GetByID(id string) (*domain.Company, error) {
	c := &domain.Company{}
	query := `
		SELECT id, name, logo_url, active, created_at, updated_at
		FROM companies
		WHERE id = $1
	`
	err := r.db.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.LogoURL, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// Update updates an existing company
func (r *PostgresCompanyRepository) Update(company *domain.Company) error {
	query := `
		UPDATE companies
		SET name = $1, logo_url = $2, active = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRow(query, company.Name, company.LogoURL, company.Active, company.ID).Scan(&company.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}

// Delete removes a company. Hard delete: shortage and purchase rows keep
// their tenant id and resolve to an unknown company afterwards.
func (r *PostgresCompanyRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
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

// List returns all companies ordered by name
func (r *PostgresCompanyRepository) List() ([]domain.Company, error) {
	query := `
		SELECT id, name, logo_url, active, created_at, updated_at
		FROM companies
		ORDER BY name
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var out []domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.LogoURL, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
