// Package core holds the ledger domain model.
//
// Amounts travel as decimal.Decimal and are persisted as integer cents,
// so sums and extremes computed by storage stay exact.
package core

import (
	"math"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

var maxAmount = decimal.New(math.MaxInt64, -2)

// NewMoney rounds d half-up to cents. Amounts that round to zero or below,
// or that do not fit in int64 cents, are rejected with ErrInvalidAmount.
func NewMoney(d decimal.Decimal) (Money, error) {
	rounded := d.Round(2)
	if !rounded.IsPositive() || rounded.GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: CentsOf(rounded)}, nil
}

// CentsOf rounds d half-up to cents without validating its sign.
func CentsOf(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// MoneyFromCents wraps a stored cent value.
func MoneyFromCents(cents int64) Money {
	return Money{Cents: cents}
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// String formats m with exactly two decimal places.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
