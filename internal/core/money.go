// Package core holds the domain model: expense records, calendar dates,
// signed money amounts and the balance projection over them.
//
// This file contains amount parsing and formatting. Amounts are kept as
// signed integer cents; positive values are income, negative are expenses.
package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a signed amount in cents. Keeping cents as an int64 makes the
// running-balance accumulation exact; two-decimal rounding happens once,
// at parse time.
type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to signed cents. Both dot (12.34)
// and comma (12,34) decimal separators are accepted; the value is rounded
// half away from zero on the third decimal place.
//
// Examples:
//
//	ParseAmount("12,50") -> 1250, nil
//	ParseAmount("-3.345") -> -335, nil
//	ParseAmount("abc")   -> 0, ErrMalformedAmount
func ParseAmount(s string) (Money, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Money{}, fmt.Errorf("%w: empty string", ErrMalformedAmount)
	}
	normalized := strings.ReplaceAll(trimmed, ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	return Money{Cents: d.Round(2).Shift(2).IntPart()}, nil
}

// MoneyFromFloat converts a floating-point amount to cents, rounding half
// away from zero on the third decimal place. Going through decimal here
// absorbs binary representation error (e.g. 0.615 stored as 0.61499...),
// which plain multiply-and-round would mishandle.
func MoneyFromFloat(v float64) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}, fmt.Errorf("%w: %v", ErrMalformedAmount, v)
	}
	return Money{Cents: decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()}, nil
}

// Decimal returns the amount as an exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount in currency units for display purposes.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a plain JSON number (12.5, -40).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts both a JSON number and a string with a comma or
// period decimal separator, matching the import file format.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
