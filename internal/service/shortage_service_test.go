package service

import (
	"errors"
	"testing"
	"time"

	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/lens"
)

type memShortageRepo struct {
	records []domain.ShortageRecord
}

func (m *memShortageRepo) Create(r *domain.ShortageRecord) error {
	r.RegisteredAt = time.Now()
	m.records = append(m.records, *r)
	return nil
}
func (m *memShortageRepo) GetByID(id string) (*domain.ShortageRecord, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, errors.New("not found")
}
func (m *memShortageRepo) Update(r *domain.ShortageRecord) error {
	for i := range m.records {
		if m.records[i].ID == r.ID {
			m.records[i] = *r
			return nil
		}
	}
	return errors.New("not found")
}
func (m *memShortageRepo) Delete(id string) error {
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}
func (m *memShortageRepo) List() ([]domain.ShortageRecord, error) {
	return append([]domain.ShortageRecord{}, m.records...), nil
}
func (m *memShortageRepo) ListByTenant(tenantID string) ([]domain.ShortageRecord, error) {
	out := []domain.ShortageRecord{}
	for _, r := range m.records {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

type captureFeed struct {
	events []FeedEvent
}

func (c *captureFeed) Publish(e FeedEvent) { c.events = append(c.events, e) }

func TestCreateRecordNormalizesInput(t *testing.T) {
	repo := &memShortageRepo{}
	feed := &captureFeed{}
	s := NewShortageService(repo, feed, nil)

	record, err := s.CreateRecord("company-1", RecordInput{
		LensIndex: "1.56",
		LensType:  lens.TypeColorless,
		Treatment: lens.TreatmentAR,
		Sphere:    "2,25",
		Cylinder:  "0.50",
		Quantity:  0,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if record.ID == "" {
		t.Fatalf("expected generated id")
	}
	if got := lens.FormatSigned(record.Sphere); got != "+2.25" {
		t.Fatalf("expected sphere +2.25, got %s", got)
	}
	// Cylinder is always stored negative regardless of input sign.
	if got := lens.FormatSigned(record.Cylinder); got != "-0.50" {
		t.Fatalf("expected cylinder -0.50, got %s", got)
	}
	if record.Quantity != 1 {
		t.Fatalf("expected zero quantity to default to 1, got %d", record.Quantity)
	}
	if len(feed.events) != 1 || feed.events[0].Type != "record_created" {
		t.Fatalf("expected one record_created event, got %+v", feed.events)
	}
	if feed.events[0].CompanyID != "company-1" {
		t.Fatalf("expected event scoped to company-1")
	}
}

func TestCreateRecordRejectsBadInput(t *testing.T) {
	s := NewShortageService(&memShortageRepo{}, nil, nil)

	cases := []struct {
		name  string
		input RecordInput
	}{
		{"unknown index", RecordInput{LensIndex: "2.00", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR, Sphere: "1", Cylinder: "0"}},
		{"1.49 with coating", RecordInput{LensIndex: "1.49", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR, Sphere: "1", Cylinder: "0"}},
		{"1.49 photo", RecordInput{LensIndex: "1.49", LensType: lens.TypePhoto, Treatment: lens.TreatmentColorless, Sphere: "1", Cylinder: "0"}},
		{"garbage sphere", RecordInput{LensIndex: "1.56", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR, Sphere: "abc", Cylinder: "0"}},
		{"bare sign cylinder", RecordInput{LensIndex: "1.56", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR, Sphere: "1", Cylinder: "-"}},
	}
	for _, tc := range cases {
		if _, err := s.CreateRecord("company-1", tc.input); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	if _, err := s.CreateRecord("", RecordInput{
		LensIndex: "1.56", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR, Sphere: "1", Cylinder: "0",
	}); err == nil {
		t.Errorf("expected missing company error")
	}
}

func TestListRecordsScoping(t *testing.T) {
	repo := &memShortageRepo{}
	s := NewShortageService(repo, nil, nil)

	mustCreate := func(company string) {
		t.Helper()
		if _, err := s.CreateRecord(company, RecordInput{
			LensIndex: "1.56", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR, Sphere: "1", Cylinder: "0", Quantity: 1,
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	mustCreate("company-1")
	mustCreate("company-1")
	mustCreate("company-2")

	scoped, err := s.ListRecords("company-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("expected 2 records for company-1, got %d", len(scoped))
	}

	all, err := s.ListRecords("")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records total, got %d", len(all))
	}
}

func TestDeleteRecordPublishesEvent(t *testing.T) {
	repo := &memShortageRepo{}
	feed := &captureFeed{}
	s := NewShortageService(repo, feed, nil)

	record, err := s.CreateRecord("company-1", RecordInput{
		LensIndex: "1.56", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR, Sphere: "1", Cylinder: "0", Quantity: 2,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.DeleteRecord(record.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(feed.events) != 2 || feed.events[1].Type != "record_deleted" {
		t.Fatalf("expected record_deleted event, got %+v", feed.events)
	}
	if err := s.DeleteRecord(record.ID); err == nil {
		t.Fatalf("expected second delete to fail")
	}
}

func TestUpdateRecordRevalidates(t *testing.T) {
	repo := &memShortageRepo{}
	s := NewShortageService(repo, nil, nil)

	record, err := s.CreateRecord("company-1", RecordInput{
		LensIndex: "1.56", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR, Sphere: "1", Cylinder: "0", Quantity: 2,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := s.UpdateRecord(record.ID, RecordInput{
		LensIndex: "1.49", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR, Sphere: "1", Cylinder: "0",
	}); err == nil {
		t.Fatalf("expected rule violation on update")
	}

	updated, err := s.UpdateRecord(record.ID, RecordInput{
		LensIndex: "1.67", LensType: lens.TypePhoto, Treatment: lens.TreatmentBlueCut, Sphere: "-1,75", Cylinder: "1.25", Quantity: 4,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.LensIndex != "1.67" || updated.Quantity != 4 {
		t.Fatalf("unexpected updated record: %+v", updated)
	}
	if got := lens.FormatSigned(updated.Cylinder); got != "-1.25" {
		t.Fatalf("expected cylinder -1.25, got %s", got)
	}
}
