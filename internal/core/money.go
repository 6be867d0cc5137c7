// Package core provides money handling utilities.
//
// Amounts are exact decimals so that sums over expense categories never
// drift. They encode to JSON as bare numbers, matching the persisted
// format of income and expense amounts.
package core

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount in the budget currency.
// Negative values are representable; validation is left to callers.
type Money struct {
	d decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney builds an amount from an integer number of currency units.
func NewMoney(units int64) Money {
	return Money{d: decimal.NewFromInt(units)}
}

// NewMoneyFromFloat builds an amount from a float, used for values coming
// from loosely typed inputs.
func NewMoneyFromFloat(f float64) Money {
	return Money{d: decimal.NewFromFloat(f)}
}

const (
	maxIntegerDigits  = 15
	maxFractionDigits = 6

	// Totals persisted in the history are sums of bounded amounts.
	maxStoredIntegerDigits = 24
)

// Plain decimal notation: optional minus, digits with optional comma
// grouping by thousands, optional dot fraction. No exponents.
var amountPattern = regexp.MustCompile(`^-?(\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d+))?$`)

// ParseMoney parses a plain decimal string such as "150000", "150,000" or
// "12.5". Commas only group thousands. An empty string is zero.
func ParseMoney(s string) (Money, error) {
	return parseAmount(s, maxIntegerDigits)
}

func parseAmount(s string, maxInt int) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, nil
	}
	match := amountPattern.FindStringSubmatch(s)
	if match == nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	intDigits := len(strings.ReplaceAll(match[1], ",", ""))
	fracDigits := len(match[2])
	if intDigits > maxInt || fracDigits > maxFractionDigits {
		return Zero, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{d: d}, nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.d.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// IsNegative reports whether the amount is strictly below zero.
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Equal compares two amounts by value, so 1.50 equals 1.5.
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// Float64 returns the amount as a float for display purposes only.
func (m Money) Float64() float64 { return m.d.InexactFloat64() }

// String returns the shortest exact decimal representation.
func (m Money) String() string { return m.d.String() }

// MarshalJSON writes the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.String()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Zero
		return nil
	}
	parsed, err := parseAmount(string(bytes.Trim(data, `"`)), maxStoredIntegerDigits)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
