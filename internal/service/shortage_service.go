package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/lens"
	"github.com/visulab/backend/internal/observability/metrics"
)

// FeedEvent is broadcast to live feed subscribers when records change.
type FeedEvent struct {
	Type      string                 `json:"type"`
	CompanyID string                 `json:"company_id"`
	Record    *domain.ShortageRecord `json:"record,omitempty"`
	At        time.Time              `json:"at"`
}

// FeedPublisher pushes events to connected dashboard clients.
type FeedPublisher interface {
	Publish(event FeedEvent)
}

// noopFeed is used when the live feed flag is off.
type noopFeed struct{}

func (noopFeed) Publish(FeedEvent) {}

// ShortageService handles shortage record registration and listing
type ShortageService struct {
	records domain.ShortageRepository
	feed    FeedPublisher
	logger  *slog.Logger
}

// NewShortageService creates a new shortage service. feed may be nil.
func NewShortageService(records domain.ShortageRepository, feed FeedPublisher, logger *slog.Logger) *ShortageService {
	if logger == nil {
		logger = slog.Default()
	}
	if feed == nil {
		feed = noopFeed{}
	}
	return &ShortageService{records: records, feed: feed, logger: logger}
}

// RecordInput captures a shortage registration request. Sphere and
// cylinder arrive as text so both comma and dot decimals are accepted.
type RecordInput struct {
	LensIndex string `json:"lens_index"`
	LensType  string `json:"lens_type"`
	Treatment string `json:"treatment"`
	Sphere    string `json:"sphere"`
	Cylinder  string `json:"cylinder"`
	Quantity  int    `json:"quantity"`
}

// CreateRecord validates and stores a new shortage record for a tenant
func (s *ShortageService) CreateRecord(tenantID string, input RecordInput) (*domain.ShortageRecord, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("company is required")
	}
	if err := lens.Validate(input.LensIndex, input.LensType, input.Treatment); err != nil {
		return nil, err
	}

	sphere, ok := lens.ParseDiopter(input.Sphere)
	if !ok {
		return nil, fmt.Errorf("invalid sphere value: %q", input.Sphere)
	}
	cylinder, ok := lens.ParseDiopter(input.Cylinder)
	if !ok {
		return nil, fmt.Errorf("invalid cylinder value: %q", input.Cylinder)
	}

	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}

	record := &domain.ShortageRecord{
		ID:        uuid.NewString(),
		LensIndex: input.LensIndex,
		LensType:  input.LensType,
		Treatment: input.Treatment,
		Sphere:    sphere,
		Cylinder:  lens.NormalizeCylinder(cylinder),
		Quantity:  quantity,
		TenantID:  tenantID,
	}

	if err := s.records.Create(record); err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	metrics.ObserveRecordCreated(record.LensIndex)
	s.feed.Publish(FeedEvent{
		Type:      "record_created",
		CompanyID: tenantID,
		Record:    record,
		At:        time.Now(),
	})

	s.logger.Info("shortage record created",
		slog.String("record_id", record.ID),
		slog.String("company_id", tenantID),
		slog.String("lens_index", record.LensIndex),
		slog.Int("quantity", record.Quantity),
	)
	return record, nil
}

// ListRecords returns records visible to the caller. Admins with an
// empty companyID see every tenant.
func (s *ShortageService) ListRecords(companyID string) ([]domain.ShortageRecord, error) {
	if companyID == "" {
		return s.records.List()
	}
	return s.records.ListByTenant(companyID)
}

// GetRecord retrieves a single record
func (s *ShortageService) GetRecord(id string) (*domain.ShortageRecord, error) {
	return s.records.GetByID(id)
}

// UpdateRecord rewrites a record's lens attributes. Admin correction path.
func (s *ShortageService) UpdateRecord(id string, input RecordInput) (*domain.ShortageRecord, error) {
	record, err := s.records.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("record not found: %w", err)
	}

	if err := lens.Validate(input.LensIndex, input.LensType, input.Treatment); err != nil {
		return nil, err
	}
	sphere, ok := lens.ParseDiopter(input.Sphere)
	if !ok {
		return nil, fmt.Errorf("invalid sphere value: %q", input.Sphere)
	}
	cylinder, ok := lens.ParseDiopter(input.Cylinder)
	if !ok {
		return nil, fmt.Errorf("invalid cylinder value: %q", input.Cylinder)
	}

	record.LensIndex = input.LensIndex
	record.LensType = input.LensType
	record.Treatment = input.Treatment
	record.Sphere = sphere
	record.Cylinder = lens.NormalizeCylinder(cylinder)
	if input.Quantity >= 1 {
		record.Quantity = input.Quantity
	}

	if err := s.records.Update(record); err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}
	return record, nil
}

// DeleteRecord removes a record. Admin only.
func (s *ShortageService) DeleteRecord(id string) error {
	record, err := s.records.GetByID(id)
	if err != nil {
		return fmt.Errorf("record not found: %w", err)
	}
	if err := s.records.Delete(id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	s.feed.Publish(FeedEvent{
		Type:      "record_deleted",
		CompanyID: record.TenantID,
		Record:    record,
		At:        time.Now(),
	})

	s.logger.Info("shortage record deleted",
		slog.String("record_id", id),
		slog.String("company_id", record.TenantID),
	)
	return nil
}
