package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visulab/backend/internal/domain"
	"github.com/visulab/backend/internal/lens"
)

func TestSummarizeEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, Summarize(nil))
	assert.Nil(t, Summarize([]domain.ShortageRecord{}))
}

func TestSummarizeTotals(t *testing.T) {
	now := time.Now()
	records := []domain.ShortageRecord{
		rec("1.56", lens.TreatmentAR, 2, -1, 3, "A", now),
		rec("1.60", lens.TreatmentBlueCut, -0.5, -0.25, 2, "A", now),
	}
	stats := Summarize(records)
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.TotalRecords)
	assert.Equal(t, 5, stats.TotalPieces)
	assert.GreaterOrEqual(t, stats.TotalPieces, stats.TotalRecords)
	assert.Equal(t, "1.56", stats.TopIndex)
	assert.Equal(t, lens.TreatmentAR, stats.TopTreatment)
	assert.Equal(t, "+2.00", stats.TopSphere)
	assert.Equal(t, "-1.00", stats.TopCylinder)
}

func TestSummarizeTieBreakFirstEncounteredWins(t *testing.T) {
	now := time.Now()
	records := []domain.ShortageRecord{
		rec("1.56", lens.TreatmentAR, 0, 0, 1, "A", now),
		rec("1.60", lens.TreatmentAR, 0, 0, 1, "A", now),
	}
	stats := Summarize(records)
	require.NotNil(t, stats)
	assert.Equal(t, "1.56", stats.TopIndex)

	// Reversed input flips the winner.
	stats = Summarize([]domain.ShortageRecord{records[1], records[0]})
	require.NotNil(t, stats)
	assert.Equal(t, "1.60", stats.TopIndex)
}

func TestSummarizeModeWeightedByQuantity(t *testing.T) {
	now := time.Now()
	records := []domain.ShortageRecord{
		rec("1.56", lens.TreatmentAR, 0, 0, 1, "A", now),
		rec("1.56", lens.TreatmentAR, 0, 0, 1, "A", now),
		rec("1.74", lens.TreatmentBlueCut, 0, 0, 5, "A", now),
	}
	stats := Summarize(records)
	require.NotNil(t, stats)
	// 1.74 has fewer records but more pieces.
	assert.Equal(t, "1.74", stats.TopIndex)
}

func TestRankTopFiveNonIncreasing(t *testing.T) {
	now := time.Now()
	var records []domain.ShortageRecord
	indexes := []string{"1.49", "1.56", "1.60", "1.61", "1.67", "1.74"}
	for i, idx := range indexes {
		records = append(records, rec(idx, lens.TreatmentAR, float64(i), -1, i+1, "A", now))
	}

	rows := Rank(records)
	require.Len(t, rows, 5)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Quantity, rows[i].Quantity)
	}
	// The qty=1 group dropped off the bottom.
	assert.Equal(t, "1.74", rows[0].LensIndex)
	assert.Equal(t, 6, rows[0].Quantity)
}

func TestRankGroupsIdenticalTuples(t *testing.T) {
	now := time.Now()
	records := []domain.ShortageRecord{
		rec("1.56", lens.TreatmentAR, 2, -1, 3, "A", now),
		rec("1.56", lens.TreatmentAR, 2, -1, 2, "A", now.Add(time.Hour)),
		rec("1.56", lens.TreatmentAR, 2, -0.5, 1, "A", now),
	}
	rows := Rank(records)
	require.Len(t, rows, 2)
	assert.Equal(t, 5, rows[0].Quantity)
	assert.Equal(t, "-1.00", lens.FormatSigned(rows[0].Cylinder))
}

func TestRankTiesRetainFirstEncounteredOrder(t *testing.T) {
	now := time.Now()
	records := []domain.ShortageRecord{
		rec("1.60", lens.TreatmentAR, 1, 0, 2, "A", now),
		rec("1.56", lens.TreatmentAR, 1, 0, 2, "A", now),
	}
	rows := Rank(records)
	require.Len(t, rows, 2)
	assert.Equal(t, "1.60", rows[0].LensIndex)
	assert.Equal(t, "1.56", rows[1].LensIndex)
}

func TestGroupSumByField(t *testing.T) {
	now := time.Now()
	records := []domain.ShortageRecord{
		rec("1.56", lens.TreatmentAR, 0, 0, 2, "A", now),
		rec("1.60", lens.TreatmentBlueCut, 0, 0, 1, "A", now),
		rec("1.56", lens.TreatmentBlueCut, 0, 0, 4, "A", now),
	}

	byIndex := GroupSumByField(records, FieldLensIndex)
	assert.Equal(t, []NameValue{{Name: "1.56", Value: 6}, {Name: "1.60", Value: 1}}, byIndex)

	byTreatment := GroupSumByField(records, FieldTreatment)
	assert.Equal(t, []NameValue{
		{Name: lens.TreatmentAR, Value: 2},
		{Name: lens.TreatmentBlueCut, Value: 5},
	}, byTreatment)
}
