package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a monetary string cannot be parsed.
var ErrInvalidAmount = errors.New("invalid monetary amount")

// ParseAmount parses amounts typed by staff. Both "1.234,56" (pt-BR) and
// "1234.56" are accepted, as is an optional "R$" prefix. Empty input is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(v, "R$")
	v = strings.ReplaceAll(strings.TrimSpace(v), " ", "")
	if v == "" {
		return decimal.Zero, nil
	}

	if strings.Contains(v, ",") {
		// Comma is the decimal separator, dots are thousands separators.
		v = strings.ReplaceAll(v, ".", "")
		v = strings.Replace(v, ",", ".", 1)
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d.Round(2), nil
}

// ParseOptionalAmount returns nil for nil or blank input.
func ParseOptionalAmount(s *string) (*decimal.Decimal, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := ParseAmount(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FormatAmount renders an amount the way the front desk reads it: "120,00".
func FormatAmount(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}
