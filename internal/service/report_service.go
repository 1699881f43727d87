package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/visulab/backend/internal/analytics"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/observability/metrics"
	"github.com/visulab/backend/internal/report"
	"github.com/visulab/backend/pkg/cache"
)

// ErrNoData signals that no records matched the report filter.
var ErrNoData = errors.New("no records match the selected filters")

const companyNameTTL = 10 * time.Minute

// ReportService generates plain-text shortage reports
type ReportService struct {
	records   domain.ShortageRepository
	companies domain.CompanyRepository
	names     *cache.Cache[string]
	formatter *report.Formatter
	logger    *slog.Logger
}

// NewReportService creates a new report service
func NewReportService(
	records domain.ShortageRepository,
	companies domain.CompanyRepository,
	logger *slog.Logger,
) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ReportService{
		records:   records,
		companies: companies,
		names:     cache.New[string](),
		logger:    logger,
	}
	s.formatter = report.NewFormatter(s.companyName)
	return s
}

// Report is a generated document ready to download
type Report struct {
	Filename string
	Content  string
}

// Generate builds the text report for records matching criteria
func (s *ReportService) Generate(criteria analytics.Criteria) (*Report, error) {
	start := time.Now()

	var (
		records []domain.ShortageRecord
		err     error
	)
	if criteria.TenantID != "" {
		records, err = s.records.ListByTenant(criteria.TenantID)
	} else {
		records, err = s.records.List()
	}
	if err != nil {
		metrics.ObserveReport("error", time.Since(start))
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	filtered := criteria.Filter(records)
	if len(filtered) == 0 {
		metrics.ObserveReport("empty", time.Since(start))
		return nil, ErrNoData
	}

	content := s.formatter.FormatText(filtered, criteria.DateFrom, criteria.DateTo)
	filename := fmt.Sprintf("shortage_report_%s.txt", time.Now().Format("2006-01-02"))

	metrics.ObserveReport("success", time.Since(start))
	s.logger.Info("report generated",
		slog.String("filename", filename),
		slog.Int("records", len(filtered)),
		slog.String("company_id", criteria.TenantID),
	)
	return &Report{Filename: filename, Content: content}, nil
}

// companyName resolves a tenant id to its display name, memoized
// briefly so one report does not hammer the companies table.
func (s *ReportService) companyName(id string) string {
	if name, ok := s.names.Get("company:" + id); ok {
		return name
	}
	company, err := s.companies.GetByID(id)
	if err != nil {
		return ""
	}
	s.names.Set("company:"+id, company.Name, companyNameTTL)
	return company.Name
}
