package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/visulab/backend/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// PostgresShortageRepository implements domain.ShortageRepository using PostgreSQL
type PostgresShortageRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresShortageRepository creates a new shortage record repository
func NewPostgresShortageRepository(db *sql.DB, logger *slog.Logger) *PostgresShortageRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresShortageRepository{db: db, logger: logger}
}

const shortageColumns = `id, lens_index, lens_type, treatment, sphere, cylinder, quantity, registered_at, tenant_id`

// Create inserts a new shortage record. registered_at is server-assigned.
func (r *PostgresShortageRepository) Create(record *domain.ShortageRecord) error {
	query := `
		INSERT INTO shortage_records (id, lens_index, lens_type, treatment, sphere, cylinder, quantity, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING registered_at
	`
	err := r.db.QueryRow(
		query,
		record.ID,
		record.LensIndex,
		record.LensType,
		record.Treatment,
		record.Sphere,
		record.Cylinder,
		record.Quantity,
		record.TenantID,
	).Scan(&record.RegisteredAt)
	if err != nil {
		r.logger.Error("failed to create shortage record",
			slog.String("tenant_id", record.TenantID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create shortage record: %w", err)
	}
	return nil
}

// GetByID retrieves a shortage record by ID
func (r *PostgresShortageRepository) GetByID(id string) (*domain.ShortageRecord, error) {
	record := &domain.ShortageRecord{}
	query := `SELECT ` + shortageColumns + ` FROM shortage_records WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&record.ID, &record.LensIndex, &record.LensType, &record.Treatment,
		&record.Sphere, &record.Cylinder, &record.Quantity, &record.RegisteredAt, &record.TenantID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shortage record: %w", err)
	}
	return record, nil
}

// Update rewrites a record's lens attributes. Only the admin correction
// path reaches this; registered_at and tenant_id stay immutable.
func (r *PostgresShortageRepository) Update(record *domain.ShortageRecord) error {
	query := `
		UPDATE shortage_records
		SET lens_index = $1, lens_type = $2, treatment = $3, sphere = $4, cylinder = $5, quantity = $6
		WHERE id = $7
	`
	res, err := r.db.Exec(
		query,
		record.LensIndex, record.LensType, record.Treatment,
		record.Sphere, record.Cylinder, record.Quantity, record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shortage record: %w", err)
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

// Delete removes a shortage record
func (r *PostgresShortageRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM shortage_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shortage record: %w", err)
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

// List returns all shortage records, newest first
func (r *PostgresShortageRepository) List() ([]domain.ShortageRecord, error) {
	query := `SELECT ` + shortageColumns + ` FROM shortage_records ORDER BY registered_at DESC`
	return r.queryRecords(query)
}

// ListByTenant returns one tenant's shortage records, newest first
func (r *PostgresShortageRepository) ListByTenant(tenantID string) ([]domain.ShortageRecord, error) {
	query := `SELECT ` + shortageColumns + ` FROM shortage_records WHERE tenant_id = $1 ORDER BY registered_at DESC`
	return r.queryRecords(query, tenantID)
}

func (r *PostgresShortageRepository) queryRecords(query string, args ...interface{}) ([]domain.ShortageRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shortage records: %w", err)
	}
	defer rows.Close()

	var out []domain.ShortageRecord
	for rows.Next() {
		var record domain.ShortageRecord
		if err := rows.Scan(
			&record.ID, &record.LensIndex, &record.LensType, &record.Treatment,
			&record.Sphere, &record.Cylinder, &record.Quantity, &record.RegisteredAt, &record.TenantID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shortage record: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
