package domain

import "time"

// Roles recognized by the authorization layer.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserAccount represents a dashboard user. Non-admin visibility is scoped
// to the user's own company; admins see every tenant.
type UserAccount struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	CompanyID    string    `json:"companyId"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the account has cross-tenant visibility.
func (u *UserAccount) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRepository defines data access for user accounts
type UserRepository interface {
	Create(user *UserAccount) error
	GetByID(id string) (*UserAccount, error)
	GetByEmail(email string) (*UserAccount, error)
	Update(user *UserAccount) error
	Delete(id string) error
	List() ([]UserAccount, error)
	ListByCompany(companyID string) ([]UserAccount, error)
}
