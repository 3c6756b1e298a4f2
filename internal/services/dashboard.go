package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
)

const recentTransactions = 5

// DashboardStore is the storage surface of the overview.
type DashboardStore interface {
	TotalsByKind(ctx context.Context, r core.DateRange) (map[core.Kind]core.Money, error)
	TotalSavings(ctx context.Context) (core.Money, error)
	ListTransactions(ctx context.Context, f core.TransactionFilter, p core.Page) ([]core.TransactionView, error)
	ListGoals(ctx context.Context) ([]core.SavingsGoal, error)
}

type DashboardService struct {
	store DashboardStore
}

func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store}
}

// Overview builds the dashboard for the calendar month containing now.
func (s *DashboardService) Overview(ctx context.Context, now time.Time) (core.Overview, error) {
	var (
		allTime  map[core.Kind]core.Money
		month    map[core.Kind]core.Money
		savings  core.Money
		recent   []core.TransactionView
		goals    []core.SavingsGoal
		monthRng = core.MonthOf(core.DateOf(now))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		allTime, err = s.store.TotalsByKind(ctx, core.DateRange{})
		return err
	})
	g.Go(func() (err error) {
		month, err = s.store.TotalsByKind(ctx, monthRng)
		return err
	})
	g.Go(func() (err error) {
		savings, err = s.store.TotalSavings(ctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.store.ListTransactions(ctx, core.TransactionFilter{}, core.Page{Limit: recentTransactions})
		return err
	})
	g.Go(func() (err error) {
		goals, err = s.store.ListGoals(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Overview{}, err
	}

	if recent == nil {
		recent = []core.TransactionView{}
	}
	if goals == nil {
		goals = []core.SavingsGoal{}
	}

	balance := allTime[core.KindIncome].Cents - allTime[core.KindExpense].Cents
	return core.Overview{
		TotalBalance:       core.MoneyFromCents(balance).Decimal(),
		MonthlyIncome:      month[core.KindIncome].Decimal(),
		MonthlyExpenses:    month[core.KindExpense].Decimal(),
		TotalSavings:       savings.Decimal(),
		RecentTransactions: recent,
		SavingsGoals:       goals,
	}, nil
}
