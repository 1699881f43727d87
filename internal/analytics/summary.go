package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/lens"
)

// Stats summarizes a record subset for the dashboard KPI cards. Top values
// are modes weighted by quantity, not by record count.
type Stats struct {
	TotalRecords int    `json:"totalRecords"`
	TotalPieces  int    `json:"totalPieces"`
	TopIndex     string `json:"topIndex"`
	TopTreatment string `json:"topTreatment"`
	TopSphere    string `json:"topSphere"`
	TopCylinder  string `json:"topCylinder"`
}

// RankRow is one entry of the recurring-shortage ranking: all records
// sharing the identical (index, treatment, sphere, cylinder) tuple.
type RankRow struct {
	LensIndex string          `json:"lensIndex"`
	Treatment string          `json:"treatment"`
	Sphere    decimal.Decimal `json:"sphere"`
	Cylinder  decimal.Decimal `json:"cylinder"`
	TenantID  string          `json:"tenantId"`
	Quantity  int             `json:"quantity"`
}

// NameValue is a chart datapoint.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Field selects the grouping attribute for GroupSumByField.
type Field int

const (
	FieldLensIndex Field = iota
	FieldTreatment
)

// tally accumulates quantity sums per key while remembering the order keys
// were first seen. Ties on summed quantity resolve to the earliest key, so
// results are deterministic for a given input order.
type tally struct {
	order []string
	sums  map[string]int
}

func newTally() *tally {
	return &tally{sums: make(map[string]int)}
}

func (t *tally) add(key string, qty int) {
	if _, ok := t.sums[key]; !ok {
		t.order = append(t.order, key)
	}
	t.sums[key] += qty
}

// top returns the key with the greatest sum, first-encountered wins ties.
func (t *tally) top() string {
	best := ""
	bestSum := -1
	for _, k := range t.order {
		if t.sums[k] > bestSum {
			best, bestSum = k, t.sums[k]
		}
	}
	return best
}

// recordQty guards against historical rows that predate the quantity
// column; they count as one piece.
func recordQty(r domain.ShortageRecord) int {
	if r.Quantity < 1 {
		return 1
	}
	return r.Quantity
}

// Summarize computes dashboard statistics over a record subset in a single
// left-to-right scan. Returns nil for an empty input, which callers must
// treat as "no data for the current filter" rather than an error.
func Summarize(records []domain.ShortageRecord) *Stats {
	if len(records) == 0 {
		return nil
	}

	indexes := newTally()
	treatments := newTally()
	spheres := newTally()
	cylinders := newTally()
	totalPieces := 0

	for _, r := range records {
		qty := recordQty(r)
		totalPieces += qty
		indexes.add(r.LensIndex, qty)
		treatments.add(r.Treatment, qty)
		spheres.add(lens.FormatSigned(r.Sphere), qty)
		cylinders.add(lens.FormatSigned(r.Cylinder), qty)
	}

	return &Stats{
		TotalRecords: len(records),
		TotalPieces:  totalPieces,
		TopIndex:     indexes.top(),
		TopTreatment: treatments.top(),
		TopSphere:    spheres.top(),
		TopCylinder:  cylinders.top(),
	}
}

const rankLimit = 5

// Rank returns the top recurring shortage combinations by summed quantity,
// at most 5 rows. Groups keep the order they were first encountered, so
// equal sums rank deterministically.
func Rank(records []domain.ShortageRecord) []RankRow {
	var order []string
	groups := make(map[string]*RankRow)

	for _, r := range records {
		key := r.LensIndex + "|" + r.Treatment + "|" +
			lens.FormatSigned(r.Sphere) + "|" + lens.FormatSigned(r.Cylinder)
		row, ok := groups[key]
		if !ok {
			row = &RankRow{
				LensIndex: r.LensIndex,
				Treatment: r.Treatment,
				Sphere:    r.Sphere,
				Cylinder:  r.Cylinder,
				TenantID:  r.TenantID,
			}
			groups[key] = row
			order = append(order, key)
		}
		row.Quantity += recordQty(r)
	}

	rows := make([]RankRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *groups[key])
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Quantity > rows[j].Quantity })
	if len(rows) > rankLimit {
		rows = rows[:rankLimit]
	}
	return rows
}

// GroupSumByField sums quantity per distinct value of the selected field,
// in first-encountered order. Feeds chart rendering directly.
func GroupSumByField(records []domain.ShortageRecord, field Field) []NameValue {
	t := newTally()
	for _, r := range records {
		switch field {
		case FieldTreatment:
			t.add(r.Treatment, recordQty(r))
		default:
			t.add(r.LensIndex, recordQty(r))
		}
	}
	out := make([]NameValue, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, NameValue{Name: k, Value: t.sums[k]})
	}
	return out
}

// TopByQuantity returns the n heaviest values of a field by summed
// quantity, descending; equal sums keep first-encountered order. Used for
// the per-tenant quick statistics in text reports.
func TopByQuantity(records []domain.ShortageRecord, field Field, n int) []NameValue {
	out := GroupSumByField(records, field)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
