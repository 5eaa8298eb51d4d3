package records

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a European-format amount string into integer minor
// units. Dots are thousands separators and the comma is the decimal mark,
// so "1.234,56" becomes 123456. Fractions beyond two places round half
// away from zero.
func ParseAmount(s string) (int64, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0, fmt.Errorf("parsing amount: empty value")
	}
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}
