package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/visulab/backend/internal/domain"
)

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserRepository{db: db, logger: logger}
}

const userColumns = `id, email, full_name, role, company_id, active, password_hash, created_at, updated_at`

// Create creates a new user account
func (r *PostgresUserRepository) Create(user *domain.UserAccount) error {
	query := `
		INSERT INTO users (id, email, full_name, role, company_id, active, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(
		query,
		user.ID, user.Email, user.FullName, user.Role, user.CompanyID, user.Active, user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create user",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(id string) (*domain.UserAccount, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by login email
func (r *PostgresUserRepository) GetByEmail(email string) (*domain.UserAccount, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepository) getOne(query string, arg interface{}) (*domain.UserAccount, error) {
	u := &domain.UserAccount{}
	err := r.db.QueryRow(query, arg).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.CompanyID, &u.Active,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Update updates an existing user account
func (r *PostgresUserRepository) Update(user *domain.UserAccount) error {
	query := `
		UPDATE users
		SET email = $1, full_name = $2, role = $3, company_id = $4, active = $5, password_hash = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRow(
		query,
		user.Email, user.FullName, user.Role, user.CompanyID, user.Active, user.PasswordHash, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes a user account
func (r *PostgresUserRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
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

// List returns all user accounts ordered by display name
func (r *PostgresUserRepository) List() ([]domain.UserAccount, error) {
	return r.queryUsers(`SELECT ` + userColumns + ` FROM users ORDER BY full_name`)
}

// ListByCompany returns one tenant's user accounts
func (r *PostgresUserRepository) ListByCompany(companyID string) ([]domain.UserAccount, error) {
	return r.queryUsers(`SELECT `+userColumns+` FROM users WHERE company_id = $1 ORDER BY full_name`, companyID)
}

func (r *PostgresUserRepository) queryUsers(query string, args ...interface{}) ([]domain.UserAccount, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []domain.UserAccount
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(
			&u.ID, &u.Email, &u.FullName, &u.Role, &u.CompanyID, &u.Active,
			&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
