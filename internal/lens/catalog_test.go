package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleFor149RestrictsOptions(t *testing.T) {
	rule := RuleFor("1.49")
	assert.Equal(t, []string{TypeColorless}, rule.Types)
	assert.Equal(t, []string{TreatmentColorless}, rule.Treatments)

	standard := RuleFor("1.56")
	assert.Equal(t, StandardTypes, standard.Types)
	assert.Equal(t, StandardTreatments, standard.Treatments)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		index     string
		lensType  string
		treatment string
		wantErr   bool
	}{
		{"standard combination", "1.56", TypeColorless, TreatmentAR, false},
		{"photo with bluecut", "1.67", TypePhoto, TreatmentBlueCut, false},
		{"149 colorless only", "1.49", TypeColorless, TreatmentColorless, false},
		{"149 rejects AR", "1.49", TypeColorless, TreatmentAR, true},
		{"149 rejects photo", "1.49", TypePhoto, TreatmentColorless, true},
		{"colorless treatment only for 149", "1.60", TypeColorless, TreatmentColorless, true},
		{"unknown index", "2.00", TypeColorless, TreatmentAR, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.index, tt.lensType, tt.treatment)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIndexValue(t *testing.T) {
	assert.Equal(t, 1.56, IndexValue("1.56"))
	assert.Equal(t, 1.53, IndexValue("1.53 - Trivex"))
	assert.Equal(t, 1.59, IndexValue("1.59 - Poly"))
	assert.Equal(t, 0.0, IndexValue("Trivex"))
	assert.Equal(t, 0.0, IndexValue(""))
}

func TestTreatmentRank(t *testing.T) {
	assert.Equal(t, 0, TreatmentRank(TreatmentColorless))
	assert.Equal(t, 1, TreatmentRank(TreatmentAR))
	assert.Equal(t, 2, TreatmentRank(TreatmentBlueFilter))
	assert.Equal(t, 3, TreatmentRank(TreatmentBlueCut))
	assert.Equal(t, 99, TreatmentRank("Mirror"))
}

func TestDisplayKey(t *testing.T) {
	assert.Equal(t, "1.56 AR", DisplayKey("1.56", TypeColorless, TreatmentAR))
	assert.Equal(t, "1.67 Photo BlueCut (blue)", DisplayKey("1.67", TypePhoto, TreatmentBlueCut))
}
