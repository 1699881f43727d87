package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShortageRecord is one logged missing-lens event. Records are immutable
// once created; the admin correction endpoints are the only write path
// after creation.
type ShortageRecord struct {
	ID           string          `json:"id"`
	LensIndex    string          `json:"lensIndex"`
	LensType     string          `json:"lensType"`
	Treatment    string          `json:"treatment"`
	Sphere       decimal.Decimal `json:"sphere"`
	Cylinder     decimal.Decimal `json:"cylinder"`
	Quantity     int             `json:"quantity"`
	RegisteredAt time.Time       `json:"registeredAt"`
	TenantID     string          `json:"tenantId"`
}

// ShortageRepository defines data access for shortage records
type ShortageRepository interface {
	Create(record *ShortageRecord) error
	GetByID(id string) (*ShortageRecord, error)
	Update(record *ShortageRecord) error
	Delete(id string) error
	List() ([]ShortageRecord, error)
	ListByTenant(tenantID string) ([]ShortageRecord, error)
}
