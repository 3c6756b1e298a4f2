package core

import (
	"github.com/shopspring/decimal"
)

// Entry is the minimal shape the aggregation works on.
type Entry struct {
	Amount decimal.Decimal
	Date   Date
}

// Aggregate holds raw statistics as computed by storage, in cents.
type Aggregate struct {
	Count     int64
	SumCents  int64
	MinCents  int64
	MaxCents  int64
	FirstDate *Date
	LastDate  *Date
}

// Summary is the display shape of an Aggregate. An empty set reports zeros
// for every amount and nil date bounds.
type Summary struct {
	Count     int64           `json:"transaction_count"`
	Total     decimal.Decimal `json:"total_amount"`
	// Mean is a display value, rounded half-up to cents.
	Mean      decimal.Decimal `json:"average_amount"`
	Min       decimal.Decimal `json:"min_amount"`
	Max       decimal.Decimal `json:"max_amount"`
	FirstDate *Date           `json:"first_transaction_date"`
	LastDate  *Date           `json:"last_transaction_date"`
}

type CategorySummary struct {
	Category Category `json:"category"`
	Summary  Summary  `json:"summary"`
}

type GoalSummary struct {
	Goal     SavingsGoal     `json:"goal"`
	Progress decimal.Decimal `json:"progress_percent"`
	Summary  Summary         `json:"summary"`
}

// NewSummary applies the empty-set policy and derives the mean,
// rounded half-up to cents.
func NewSummary(a Aggregate) Summary {
	if a.Count <= 0 {
		return Summary{
			Total: decimal.Zero,
			Mean:  decimal.Zero,
			Min:   decimal.Zero,
			Max:   decimal.Zero,
		}
	}
	total := MoneyFromCents(a.SumCents).Decimal()
	return Summary{
		Count:     a.Count,
		Total:     total,
		Mean:      total.Div(decimal.NewFromInt(a.Count)).Round(2),
		Min:       MoneyFromCents(a.MinCents).Decimal(),
		Max:       MoneyFromCents(a.MaxCents).Decimal(),
		FirstDate: a.FirstDate,
		LastDate:  a.LastDate,
	}
}

// Summarize aggregates entries in memory with the same policy as NewSummary.
func Summarize(entries []Entry) Summary {
	var a Aggregate
	for _, e := range entries {
		cents := CentsOf(e.Amount)
		if a.Count == 0 || cents < a.MinCents {
			a.MinCents = cents
		}
		if a.Count == 0 || cents > a.MaxCents {
			a.MaxCents = cents
		}
		a.SumCents += cents
		a.Count++

		d := e.Date
		if a.FirstDate == nil || d.Before(a.FirstDate.Time) {
			a.FirstDate = &d
		}
		if a.LastDate == nil || d.After(a.LastDate.Time) {
			a.LastDate = &d
		}
	}
	return NewSummary(a)
}

// Overview is the dashboard read model.
type Overview struct {
	TotalBalance       decimal.Decimal   `json:"totalBalance"`
	MonthlyIncome      decimal.Decimal   `json:"monthlyIncome"`
	MonthlyExpenses    decimal.Decimal   `json:"monthlyExpenses"`
	TotalSavings       decimal.Decimal   `json:"totalSavings"`
	RecentTransactions []TransactionView `json:"recentTransactions"`
	SavingsGoals       []SavingsGoal     `json:"savingsGoals"`
}
