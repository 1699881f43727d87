// Package report renders shortage record sets into the plain-text report
// delivered to labs. The formatter is a pure transformation: it never does
// I/O and never fails, degrading malformed attributes to neutral sort keys
// instead of erroring.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/visulab/backend/internal/analytics"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/lens"
)

const (
	reportTitle  = "SHORTAGE REPORT - VISULAB"
	sectionRule  = "================================================="
	tenantRule   = "-------------------------------------------------"
	statColWidth = 17
	topStatRows  = 3
	maxDiopters  = 10
)

// Formatter builds text reports. Now is injectable so the generated-at
// header line is deterministic under test; CompanyName resolves tenant ids
// to display names.
type Formatter struct {
	Now         func() time.Time
	CompanyName func(id string) string
}

// NewFormatter returns a formatter with the given name resolver and the
// wall clock.
func NewFormatter(companyName func(id string) string) *Formatter {
	return &Formatter{Now: time.Now, CompanyName: companyName}
}

// FormatText renders the full report: one section per tenant in input
// encounter order, each with quick statistics followed by configuration
// groups in catalog order. periodStart/periodEnd are optional YYYY-MM-DD
// strings describing the filter that produced the records.
func (f *Formatter) FormatText(records []domain.ShortageRecord, periodStart, periodEnd string) string {
	var b strings.Builder

	b.WriteString(reportTitle + "\n")
	b.WriteString("Generated at: " + f.now().Format("02/01/2006 15:04") + "\n")
	b.WriteString(sectionRule + "\n\n")

	period := PeriodDescription(periodStart, periodEnd)

	for _, group := range partitionByTenant(records) {
		f.writeTenantSection(&b, group, period)
	}

	return b.String()
}

func (f *Formatter) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *Formatter) companyName(id string) string {
	if f.CompanyName != nil {
		if name := f.CompanyName(id); name != "" {
			return name
		}
	}
	return "Unknown company"
}

// PeriodDescription renders the filter bounds for the report header.
// Dates arrive as YYYY-MM-DD and render as DD/MM/YYYY.
func PeriodDescription(start, end string) string {
	switch {
	case start != "" && end != "":
		return fmt.Sprintf("from %s to %s", dayToDisplay(start), dayToDisplay(end))
	case start != "":
		return fmt.Sprintf("from %s", dayToDisplay(start))
	case end != "":
		return fmt.Sprintf("until %s", dayToDisplay(end))
	default:
		return "full history"
	}
}

// dayToDisplay reverses YYYY-MM-DD into DD/MM/YYYY without a timezone
// round-trip. Unexpected shapes pass through untouched.
func dayToDisplay(day string) string {
	parts := strings.Split(day, "-")
	if len(parts) != 3 {
		return day
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

type tenantGroup struct {
	tenantID string
	records  []domain.ShortageRecord
}

// partitionByTenant splits records per tenant, preserving the order
// tenants are first encountered.
func partitionByTenant(records []domain.ShortageRecord) []tenantGroup {
	var order []string
	byTenant := make(map[string][]domain.ShortageRecord)
	for _, r := range records {
		if _, ok := byTenant[r.TenantID]; !ok {
			order = append(order, r.TenantID)
		}
		byTenant[r.TenantID] = append(byTenant[r.TenantID], r)
	}
	groups := make([]tenantGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, tenantGroup{tenantID: id, records: byTenant[id]})
	}
	return groups
}

func (f *Formatter) writeTenantSection(b *strings.Builder, group tenantGroup, period string) {
	fmt.Fprintf(b, "COMPANY: %s\n", f.companyName(group.tenantID))
	fmt.Fprintf(b, "PERIOD: %s\n", period)
	b.WriteString(tenantRule + "\n")

	writeQuickStats(b, group.records)
	b.WriteString("\n" + tenantRule + "\n")

	for _, cfg := range buildConfigGroups(group.records) {
		fmt.Fprintf(b, "\n%s\n\n", cfg.key)
		for _, line := range topDiopterLines(cfg.records) {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n\n")
}

// writeQuickStats emits the two-column top-3 block. Exactly three rows are
// printed; missing entries render as "-".
func writeQuickStats(b *strings.Builder, records []domain.ShortageRecord) {
	topIndexes := analytics.TopByQuantity(records, analytics.FieldLensIndex, topStatRows)
	topTreatments := analytics.TopByQuantity(records, analytics.FieldTreatment, topStatRows)

	b.WriteString("\nQUICK STATISTICS:\n")
	b.WriteString(padStatColumn("Top Index") + "Top Treatment\n")

	for i := 0; i < topStatRows; i++ {
		col1 := "-"
		if i < len(topIndexes) {
			col1 = fmt.Sprintf("%d- %s", i+1, topIndexes[i].Name)
		}
		col2 := "-"
		if i < len(topTreatments) {
			col2 = topTreatments[i].Name
		}
		b.WriteString(padStatColumn(col1) + col2 + "\n")
	}
}

// padStatColumn left-aligns the first statistics column to a fixed width
// before the second column starts.
func padStatColumn(s string) string {
	if pad := statColWidth - len(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

type configGroup struct {
	key           string
	records       []domain.ShortageRecord
	indexValue    float64
	typeWeight    int
	treatmentRank int
}

// buildConfigGroups groups a tenant's records by display key and sorts the
// groups by the 3-level catalog ordering: numeric index ascending, then
// colorless before photochromic, then treatment rank. This is the lab's
// catalog order, deliberately not alphabetical.
func buildConfigGroups(records []domain.ShortageRecord) []configGroup {
	var order []string
	groups := make(map[string]*configGroup)

	for _, r := range records {
		key := lens.DisplayKey(r.LensIndex, r.LensType, r.Treatment)
		g, ok := groups[key]
		if !ok {
			g = &configGroup{
				key:           key,
				indexValue:    lens.IndexValue(r.LensIndex),
				typeWeight:    lens.TypeWeight(r.LensType),
				treatmentRank: lens.TreatmentRank(r.Treatment),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.records = append(g.records, r)
	}

	sorted := make([]configGroup, 0, len(order))
	for _, key := range order {
		sorted = append(sorted, *groups[key])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.indexValue != b.indexValue {
			return a.indexValue < b.indexValue
		}
		if a.typeWeight != b.typeWeight {
			return a.typeWeight < b.typeWeight
		}
		return a.treatmentRank < b.treatmentRank
	})
	return sorted
}

// topDiopterLines aggregates quantity per signed (sphere, cylinder) pair
// across all dates within one configuration group and renders the top 10
// pairs by summed quantity, ties in first-encountered order.
func topDiopterLines(records []domain.ShortageRecord) []string {
	type pair struct {
		display string
		qty     int
	}
	var order []string
	sums := make(map[string]*pair)

	for _, r := range records {
		display := lens.FormatSigned(r.Sphere) + " " + lens.FormatSigned(r.Cylinder)
		p, ok := sums[display]
		if !ok {
			p = &pair{display: display}
			sums[display] = p
			order = append(order, display)
		}
		qty := r.Quantity
		if qty < 1 {
			qty = 1
		}
		p.qty += qty
	}

	pairs := make([]pair, 0, len(order))
	for _, key := range order {
		pairs = append(pairs, *sums[key])
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].qty > pairs[j].qty })
	if len(pairs) > maxDiopters {
		pairs = pairs[:maxDiopters]
	}

	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("%s   (Qty: %d)", p.display, p.qty))
	}
	return lines
}
