package domain

import "time"

// Company is a lab/tenant account, the unit of data isolation.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logoUrl,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CompanyRepository defines data access for companies.
// Delete is a hard delete; shortage records referencing the company keep
// their tenant id and render as an unknown company in reports.
type CompanyRepository interface {
	Create(company *Company) error
	GetByID(id string) (*Company, error)
	Update(company *Company) error
	Delete(id string) error
	List() ([]Company, error)
}
