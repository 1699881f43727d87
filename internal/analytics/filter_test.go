package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/lens"
)

func rec(index, treatment string, esf, cil float64, qty int, tenant string, at time.Time) domain.ShortageRecord {
	return domain.ShortageRecord{
		LensIndex:    index,
		LensType:     lens.TypeColorless,
		Treatment:    treatment,
		Sphere:       decimal.NewFromFloat(esf),
		Cylinder:     decimal.NewFromFloat(cil),
		Quantity:     qty,
		TenantID:     tenant,
		RegisteredAt: at,
	}
}

func TestFilterDateToIsInclusiveOfWholeDay(t *testing.T) {
	lateEvening := time.Date(2024, 3, 10, 23, 59, 0, 0, time.Local)
	records := []domain.ShortageRecord{
		rec("1.56", lens.TreatmentAR, 2, -1, 1, "A", lateEvening),
	}

	included := Criteria{DateTo: "2024-03-10"}.Filter(records)
	assert.Len(t, included, 1)

	excluded := Criteria{DateTo: "2024-03-09"}.Filter(records)
	assert.Empty(t, excluded)
}

func TestFilterDateFromIsLocalMidnight(t *testing.T) {
	earlyMorning := time.Date(2024, 3, 10, 0, 0, 1, 0, time.Local)
	records := []domain.ShortageRecord{
		rec("1.56", lens.TreatmentAR, 2, -1, 1, "A", earlyMorning),
	}

	assert.Len(t, Criteria{DateFrom: "2024-03-10"}.Filter(records), 1)
	assert.Empty(t, Criteria{DateFrom: "2024-03-11"}.Filter(records))
}

func TestFilterCombinesCriteriaWithAND(t *testing.T) {
	now := time.Now()
	records := []domain.ShortageRecord{
		rec("1.56", lens.TreatmentAR, 2, -1, 1, "A", now),
		rec("1.56", lens.TreatmentBlueCut, 2, -1, 1, "A", now),
		rec("1.60", lens.TreatmentAR, 2, -1, 1, "B", now),
	}

	got := Criteria{LensIndex: "1.56", Treatment: lens.TreatmentAR}.Filter(records)
	assert.Len(t, got, 1)
	assert.Equal(t, "A", got[0].TenantID)

	got = Criteria{TenantID: "B"}.Filter(records)
	assert.Len(t, got, 1)
	assert.Equal(t, "1.60", got[0].LensIndex)
}

func TestFilterInvalidDatesAreIgnored(t *testing.T) {
	records := []domain.ShortageRecord{
		rec("1.56", lens.TreatmentAR, 2, -1, 1, "A", time.Now()),
	}
	got := Criteria{DateFrom: "not-a-date", DateTo: "also-bad"}.Filter(records)
	assert.Len(t, got, 1)
}

func TestFilterPreservesRelativeOrder(t *testing.T) {
	now := time.Now()
	records := []domain.ShortageRecord{
		rec("1.56", lens.TreatmentAR, 1, 0, 1, "A", now),
		rec("1.60", lens.TreatmentAR, 2, 0, 1, "A", now),
		rec("1.56", lens.TreatmentAR, 3, 0, 1, "A", now),
	}
	got := Criteria{LensIndex: "1.56"}.Filter(records)
	assert.Len(t, got, 2)
	assert.Equal(t, "+1.00", lens.FormatSigned(got[0].Sphere))
	assert.Equal(t, "+3.00", lens.FormatSigned(got[1].Sphere))
}
