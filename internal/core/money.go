// Package core holds the pure aggregation layer: transaction normalization,
// time buckets, category rollups and summaries.
//
// This file contains the Money type and the helpers for parsing and
// rounding amounts.
package core

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in the smallest currency unit (grosz). Transaction
// amounts are never negative; derived balances such as remaining pool
// funds can be.
type Money struct {
	Cents int64
}

var (
	hundred = decimal.NewFromInt(100)
	// MinInt64 is left out so that Abs never overflows.
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(-math.MaxInt64)
)

// NewMoney builds Money from whole units and cents, e.g. NewMoney(12, 34) is 12.34.
func NewMoney(units, cents int64) Money {
	return Money{Cents: units*100 + cents}
}

// MoneyFromDecimal rounds d half away from zero to the nearest cent.
// Amounts beyond the int64 cent range saturate.
func MoneyFromDecimal(d decimal.Decimal) Money {
	c := d.Mul(hundred).Round(0)
	switch {
	case c.GreaterThan(maxCents):
		return Money{Cents: math.MaxInt64}
	case c.LessThan(minCents):
		return Money{Cents: -math.MaxInt64}
	}
	return Money{Cents: c.IntPart()}
}

func inCentRange(d decimal.Decimal) bool {
	c := d.Mul(hundred).Round(0)
	return !c.GreaterThan(maxCents) && !c.LessThan(minCents)
}

// ParseMoney parses a decimal amount as written in bank exports and
// spreadsheets. It accepts a decimal comma, spaces or non-breaking spaces
// as thousands separators and a leading sign.
//
// Examples:
//
//	ParseMoney("12.34")      -> 1234
//	ParseMoney("-1 234,50")  -> -123450
//	ParseMoney("1.005")      -> 101 (half away from zero)
func ParseMoney(s string) (Money, error) {
	s = strings.NewReplacer("\u00a0", "", " ", "", "'", "", ",", ".").Replace(strings.TrimSpace(s))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !inCentRange(d) {
		return Money{}, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return MoneyFromDecimal(d), nil
}

// Decimal returns the amount in whole units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Abs returns the magnitude of m.
func (m Money) Abs() Money {
	if m.Cents == math.MinInt64 {
		return Money{Cents: math.MaxInt64}
	}
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }
func (m Money) IsPositive() bool { return m.Cents > 0 }

// DivRound divides m by n and rounds to the nearest cent. Dividing by a
// non-positive n yields zero.
func (m Money) DivRound(n int) Money {
	if n <= 0 {
		return Money{}
	}
	q := decimal.NewFromInt(m.Cents).Div(decimal.NewFromInt(int64(n)))
	return Money{Cents: q.Round(0).IntPart()}
}

// String formats the amount with two decimals, e.g. "4200.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a bare JSON number in whole units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	parsed, err := ParseMoney(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText lets Money appear as a string in TOML seed files.
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalText(text []byte) error {
	parsed, err := ParseMoney(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// SumMoney adds up a list of amounts.
func SumMoney(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
