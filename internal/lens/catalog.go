// Package lens holds the lens catalog: the categorical option sets, the
// cross-field rule table (index 1.49 restricts type and treatment), and the
// domain-specific sort weights used by report grouping.
package lens

import (
	"fmt"
	"strconv"
	"strings"
)

// Lens type labels.
const (
	TypeColorless = "Colorless"
	TypePhoto     = "Photo"
)

// Treatment labels.
const (
	TreatmentColorless  = "Colorless"
	TreatmentAR         = "AR"
	TreatmentBlueFilter = "Blue Filter (green)"
	TreatmentBlueCut    = "BlueCut (blue)"
)

// IndexOptions is the fixed refractive-index option set. Labels with a
// suffix ("1.53 - Trivex") still sort by their leading numeric value.
var IndexOptions = []string{
	"1.49",
	"1.53 - Trivex",
	"1.56",
	"1.59 - Poly",
	"1.60",
	"1.61",
	"1.67",
	"1.74",
}

// StandardTypes and StandardTreatments apply to every index except those
// with an entry in the rule table below.
var (
	StandardTypes      = []string{TypeColorless, TypePhoto}
	StandardTreatments = []string{TreatmentAR, TreatmentBlueFilter, TreatmentBlueCut}
)

// Rule constrains the type and treatment option sets for one lens index.
type Rule struct {
	Types      []string
	Treatments []string
}

// rules maps indexes with restricted option sets. 1.49 material only
// exists colorless with no coating.
var rules = map[string]Rule{
	"1.49": {
		Types:      []string{TypeColorless},
		Treatments: []string{TreatmentColorless},
	},
}

// RuleFor returns the option rule for a lens index.
func RuleFor(index string) Rule {
	if r, ok := rules[index]; ok {
		return r
	}
	return Rule{Types: StandardTypes, Treatments: StandardTreatments}
}

// ValidIndex reports whether the index label is part of the catalog.
func ValidIndex(index string) bool {
	for _, opt := range IndexOptions {
		if opt == index {
			return true
		}
	}
	return false
}

// Validate checks a (index, type, treatment) combination against the rule
// table. Evaluated once at record construction time.
func Validate(index, lensType, treatment string) error {
	if !ValidIndex(index) {
		return fmt.Errorf("unknown lens index %q", index)
	}
	rule := RuleFor(index)
	if !contains(rule.Types, lensType) {
		return fmt.Errorf("lens type %q not allowed for index %s", lensType, index)
	}
	if !contains(rule.Treatments, treatment) {
		return fmt.Errorf("treatment %q not allowed for index %s", treatment, index)
	}
	return nil
}

func contains(opts []string, v string) bool {
	for _, opt := range opts {
		if opt == v {
			return true
		}
	}
	return false
}

// IndexValue parses the leading numeric portion of an index label for
// sorting ("1.53 - Trivex" -> 1.53). Unparsable labels degrade to 0 so
// report generation stays total over arbitrary input.
func IndexValue(index string) float64 {
	s := strings.TrimSpace(index)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

// TypeWeight orders lens types in reports: colorless before photochromic.
func TypeWeight(lensType string) int {
	if lensType == TypePhoto {
		return 2
	}
	return 1
}

// treatmentRanks is the catalog ordering for treatments. Checked in fixed
// priority by substring match so labels with qualifiers ("BlueCut (blue)")
// keep their canonical rank.
var treatmentRanks = []struct {
	marker string
	rank   int
}{
	{TreatmentColorless, 0},
	{"AR", 1},
	{"Blue Filter", 2},
	{"BlueCut", 3},
}

// TreatmentRank maps a treatment label to its catalog rank. Unknown
// treatments sort last.
func TreatmentRank(treatment string) int {
	for _, tr := range treatmentRanks {
		if strings.Contains(treatment, tr.marker) {
			return tr.rank
		}
	}
	return 99
}

// DisplayKey composes the configuration group label used in reports:
// index, a "Photo " prefix for photochromic lenses, then treatment.
func DisplayKey(index, lensType, treatment string) string {
	prefix := ""
	if lensType == TypePhoto {
		prefix = "Photo "
	}
	return fmt.Sprintf("%s %s%s", index, prefix, treatment)
}
