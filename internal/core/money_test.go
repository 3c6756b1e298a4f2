package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"100.50", 10050, true},
		{"1.004", 100, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := NewMoney(decimal.RequireFromString(tc.in))
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyDecimal(t *testing.T) {
	m := MoneyFromCents(10050)
	if !m.Decimal().Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("got %s", m.Decimal())
	}
	if m.String() != "100.50" {
		t.Fatalf("got %s", m.String())
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}
