package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/visulab/backend/internal/analytics"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/lens"
)

type memCompanyRepo struct {
	byID map[string]*domain.Company
}

func (m *memCompanyRepo) Create(c *domain.Company) error {
	if m.byID == nil {
		m.byID = map[string]*domain.Company{}
	}
	m.byID[c.ID] = c
	return nil
}
func (m *memCompanyRepo) GetByID(id string) (*domain.Company, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, errors.New("not found")
}
func (m *memCompanyRepo) Update(c *domain.Company) error { m.byID[c.ID] = c; return nil }
func (m *memCompanyRepo) Delete(id string) error         { delete(m.byID, id); return nil }
func (m *memCompanyRepo) List() ([]domain.Company, error) {
	out := []domain.Company{}
	for _, c := range m.byID {
		out = append(out, *c)
	}
	return out, nil
}

func TestGenerateReport(t *testing.T) {
	records := &memShortageRepo{}
	companies := &memCompanyRepo{}
	_ = companies.Create(&domain.Company{ID: "company-1", Name: "Lab Alpha"})

	shortages := NewShortageService(records, nil, nil)
	if _, err := shortages.CreateRecord("company-1", RecordInput{
		LensIndex: "1.56", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR,
		Sphere: "2", Cylinder: "1", Quantity: 3,
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	s := NewReportService(records, companies, nil)
	report, err := s.Generate(analytics.Criteria{TenantID: "company-1"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.HasPrefix(report.Filename, "shortage_report_") || !strings.HasSuffix(report.Filename, ".txt") {
		t.Fatalf("unexpected filename: %s", report.Filename)
	}
	if !strings.Contains(report.Content, "COMPANY: Lab Alpha") {
		t.Fatalf("expected company name in report:\n%s", report.Content)
	}
	if !strings.Contains(report.Content, "+2.00 -1.00   (Qty: 3)") {
		t.Fatalf("expected diopter line in report:\n%s", report.Content)
	}
}

func TestGenerateReportNoData(t *testing.T) {
	s := NewReportService(&memShortageRepo{}, &memCompanyRepo{}, nil)

	if _, err := s.Generate(analytics.Criteria{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	// A filter that matches nothing also yields the sentinel.
	records := &memShortageRepo{}
	shortages := NewShortageService(records, nil, nil)
	if _, err := shortages.CreateRecord("company-1", RecordInput{
		LensIndex: "1.56", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR, Sphere: "1", Cylinder: "0",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	s = NewReportService(records, &memCompanyRepo{}, nil)
	if _, err := s.Generate(analytics.Criteria{TenantID: "company-2"}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for unmatched tenant, got %v", err)
	}
}

func TestDashboardComputesWithoutCache(t *testing.T) {
	records := &memShortageRepo{}
	shortages := NewShortageService(records, nil, nil)
	for i := 0; i < 3; i++ {
		if _, err := shortages.CreateRecord("company-1", RecordInput{
			LensIndex: "1.56", LensType: lens.TypeColorless, Treatment: lens.TreatmentAR,
			Sphere: "2", Cylinder: "1", Quantity: 2,
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	s := NewDashboardService(records, nil, nil, 0, nil)
	data, err := s.GetDashboard(t.Context(), analytics.Criteria{TenantID: "company-1"})
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if data.Stats == nil || data.Stats.TotalRecords != 3 || data.Stats.TotalPieces != 6 {
		t.Fatalf("unexpected stats: %+v", data.Stats)
	}
	if len(data.Ranking) != 1 || data.Ranking[0].Quantity != 6 {
		t.Fatalf("unexpected ranking: %+v", data.Ranking)
	}
	if len(data.ByIndex) != 1 || data.ByIndex[0].Name != "1.56" {
		t.Fatalf("unexpected index grouping: %+v", data.ByIndex)
	}

	empty, err := s.GetDashboard(t.Context(), analytics.Criteria{TenantID: "company-9"})
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if empty.Stats != nil {
		t.Fatalf("expected nil stats for empty tenant, got %+v", empty.Stats)
	}
}
