package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDiopter(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2", "2", true},
		{"2.5", "2.5", true},
		{"2,5", "2.5", true},
		{"-1.00", "-1", true},
		{"0", "0", true},
		{"+0.25", "0.25", true},
		{"", "", false},
		{"-", "", false},
		{"+", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
	}
	for _, tt := range tests {
		d, ok := ParseDiopter(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		if tt.ok {
			assert.Equal(t, tt.want, d.String(), "input %q", tt.input)
		}
	}
}

func TestNormalizeCylinderAlwaysNegative(t *testing.T) {
	d, ok := ParseDiopter("1.00")
	assert.True(t, ok)
	assert.Equal(t, "-1.00", FormatSigned(NormalizeCylinder(d)))

	d, ok = ParseDiopter("-0.75")
	assert.True(t, ok)
	assert.Equal(t, "-0.75", FormatSigned(NormalizeCylinder(d)))
}

func TestFormatSigned(t *testing.T) {
	zero, _ := ParseDiopter("0")
	assert.Equal(t, "+0.00", FormatSigned(zero))

	pos, _ := ParseDiopter("2")
	assert.Equal(t, "+2.00", FormatSigned(pos))

	neg, _ := ParseDiopter("-1.5")
	assert.Equal(t, "-1.50", FormatSigned(neg))
}
