package lens

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// diopterPattern accepts an optional sign, digits, and one ',' or '.'
// separator. Matches what the entry form lets through while typing.
var diopterPattern = regexp.MustCompile(`^[-+]?[0-9]*[.,]?[0-9]*$`)

// ParseDiopter parses user input into a diopter value rounded to two
// fraction digits. ',' and '.' are both accepted as decimal separators.
// Incomplete input (empty, bare sign, garbage) reports ok=false and is
// treated as absent rather than zero.
func ParseDiopter(input string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(input)
	if s == "" || s == "-" || s == "+" {
		return decimal.Zero, false
	}
	if !diopterPattern.MatchString(s) {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

// NormalizeCylinder forces the domain convention that cylinder power is
// never positive: the stored value is -abs(entered).
func NormalizeCylinder(d decimal.Decimal) decimal.Decimal {
	return d.Abs().Neg()
}

// FormatSigned renders a diopter with exactly two fraction digits and an
// explicit sign, '+' covering zero: +0.00, +2.00, -1.25.
func FormatSigned(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if d.Sign() >= 0 {
		return "+" + s
	}
	return s
}
