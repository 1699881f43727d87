// Package analytics implements the pure, in-memory filtering and
// aggregation behind the dashboard and the report exporter. Every function
// here is side-effect free and operates on already-materialized record
// slices; all I/O stays in the repository and service layers.
package analytics

import (
	"time"

	"github.com/visulab/backend/internal/domain"
)

// Criteria narrows a record set. All fields are optional and combined with
// logical AND. Dates are YYYY-MM-DD strings interpreted as local calendar
// days; TenantID is only honored for callers with cross-tenant visibility
// (non-admin listings are pre-scoped at the repository).
type Criteria struct {
	DateFrom  string
	DateTo    string
	LensIndex string
	Treatment string
	TenantID  string
}

// ParseLocalDay parses a YYYY-MM-DD string as local-timezone midnight.
// Parsing in local time avoids the off-by-one-day drift a UTC parse would
// introduce for users west of Greenwich.
func ParseLocalDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Filter returns the subset of records matching the criteria. Relative
// order of the input is preserved.
func (c Criteria) Filter(records []domain.ShortageRecord) []domain.ShortageRecord {
	from, hasFrom := ParseLocalDay(c.DateFrom)
	to, hasTo := ParseLocalDay(c.DateTo)
	if hasTo {
		// upper bound is inclusive: 23:59:59.999 of that day
		to = to.Add(24*time.Hour - time.Millisecond)
	}

	out := make([]domain.ShortageRecord, 0, len(records))
	for _, r := range records {
		if hasFrom && r.RegisteredAt.Before(from) {
			continue
		}
		if hasTo && r.RegisteredAt.After(to) {
			continue
		}
		if c.LensIndex != "" && r.LensIndex != c.LensIndex {
			continue
		}
		if c.Treatment != "" && r.Treatment != c.Treatment {
			continue
		}
		if c.TenantID != "" && r.TenantID != c.TenantID {
			continue
		}
		out = append(out, r)
	}
	return out
}
