package domain

import "time"

// PurchaseRecord logs a stock purchase from a supplier. Independent of
// shortage records; the admin view filters by company and date range.
type PurchaseRecord struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"companyId"`
	Supplier     string    `json:"supplier"`
	PurchaseDate time.Time `json:"purchaseDate"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PurchaseFilter narrows purchase listings. Zero values mean "no bound".
type PurchaseFilter struct {
	CompanyID string
	From      time.Time
	To        time.Time
}

// PurchaseRepository defines data access for purchase records
type PurchaseRepository interface {
	Create(purchase *PurchaseRecord) error
	Delete(id string) error
	List(filter PurchaseFilter) ([]PurchaseRecord, error)
}
