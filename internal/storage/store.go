package storage

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Store exposes domain-typed reads and writes over a Queries handle, which
// may be bound to the database or to an open transaction.
type Store struct {
	q *Queries
}

func (s *Store) ListCategories(ctx context.Context, kind core.Kind) ([]core.Category, error) {
	rows, err := s.q.ListCategories(ctx, string(kind))
	if err != nil {
		return nil, mapError("list categories", err, nil)
	}
	out := make([]core.Category, 0, len(rows))
	for _, r := range rows {
		c, err := toCategory(r)
		if err != nil {
			return nil, mapError("decode category", err, nil)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row, err := s.q.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, notFound("get category", "category", id, err)
	}
	c, err := toCategory(row)
	if err != nil {
		return core.Category{}, mapError("decode category", err, nil)
	}
	return c, nil
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) error {
	amount, err := core.NewMoney(t.Amount)
	if err != nil {
		return core.NewValidationError(core.FieldAmount, err)
	}
	err = s.q.CreateTransaction(ctx, CreateTransactionParams{
		ID:          t.ID,
		AmountCents: amount.Cents,
		Description: t.Description,
		CategoryID:  t.CategoryID,
		Type:        string(t.Kind),
		Date:        t.Date.String(),
		CreatedAt:   formatTimestamp(t.CreatedAt),
		UpdatedAt:   formatTimestamp(t.UpdatedAt),
	})
	return mapError("insert transaction", err, &core.ReferenceError{Entity: "category", ID: t.CategoryID})
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.TransactionView, error) {
	row, err := s.q.GetTransaction(ctx, id)
	if err != nil {
		return core.TransactionView{}, notFound("get transaction", "transaction", id, err)
	}
	v, err := toTransactionView(row)
	if err != nil {
		return core.TransactionView{}, mapError("decode transaction", err, nil)
	}
	return v, nil
}

func (s *Store) ListTransactions(ctx context.Context, f core.TransactionFilter, p core.Page) ([]core.TransactionView, error) {
	p = p.Normalize()
	rows, err := s.q.ListTransactions(ctx, ListTransactionsParams{
		CategoryID: f.CategoryID,
		Type:       string(f.Kind),
		DateFrom:   dateFilter(f.Range.From),
		DateTo:     dateFilter(f.Range.To),
		Limit:      int64(p.Limit),
		Offset:     int64(p.Offset),
	})
	if err != nil {
		return nil, mapError("list transactions", err, nil)
	}
	out := make([]core.TransactionView, 0, len(rows))
	for _, r := range rows {
		v, err := toTransactionView(r)
		if err != nil {
			return nil, mapError("decode transaction", err, nil)
		}
		out = append(out, v)
	}
	return out, nil
}

// UpdateTransaction applies validated patch fields and stamps updated_at.
func (s *Store) UpdateTransaction(ctx context.Context, id string, ups []core.FieldUpdate, at time.Time) error {
	sets, err := assignments(transactionColumns, ups)
	if err != nil {
		return mapError("update transaction", err, nil)
	}
	sets = append(sets, Assignment{Column: "updated_at", Value: formatTimestamp(at)})

	var ref *core.ReferenceError
	for _, u := range ups {
		if u.Field == core.FieldCategoryID {
			ref = &core.ReferenceError{Entity: "category", ID: u.Value.(string)}
		}
	}
	n, err := s.q.UpdateByID(ctx, "transactions", id, sets)
	if err != nil {
		return mapError("update transaction", err, ref)
	}
	if n == 0 {
		return &core.NotFoundError{Entity: "transaction", ID: id}
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	n, err := s.q.DeleteTransaction(ctx, id)
	if err != nil {
		return mapError("delete transaction", err, nil)
	}
	if n == 0 {
		return &core.NotFoundError{Entity: "transaction", ID: id}
	}
	return nil
}

func (s *Store) AggregateTransactions(ctx context.Context, categoryID string, r core.DateRange) (core.Aggregate, error) {
	row, err := s.q.AggregateTransactions(ctx, AggregateParams{
		OwnerID:  categoryID,
		DateFrom: dateFilter(r.From),
		DateTo:   dateFilter(r.To),
	})
	if err != nil {
		return core.Aggregate{}, mapError("aggregate transactions", err, nil)
	}
	a, err := toAggregate(row)
	if err != nil {
		return core.Aggregate{}, mapError("decode aggregate", err, nil)
	}
	return a, nil
}

// TotalsByKind sums transaction amounts per kind inside r.
func (s *Store) TotalsByKind(ctx context.Context, r core.DateRange) (map[core.Kind]core.Money, error) {
	rows, err := s.q.SumTransactionsByType(ctx, dateFilter(r.From), dateFilter(r.To))
	if err != nil {
		return nil, mapError("sum transactions", err, nil)
	}
	out := map[core.Kind]core.Money{
		core.KindIncome:  {},
		core.KindExpense: {},
	}
	for _, row := range rows {
		out[core.Kind(row.Type)] = core.MoneyFromCents(row.TotalCents)
	}
	return out, nil
}

func (s *Store) CreateGoal(ctx context.Context, g core.SavingsGoal) error {
	target, err := core.NewMoney(g.TargetAmount)
	if err != nil {
		return core.NewValidationError(core.FieldTargetAmount, err)
	}
	err = s.q.CreateGoal(ctx, CreateGoalParams{
		ID:                g.ID,
		Name:              g.Name,
		TargetAmountCents: target.Cents,
		TargetDate:        nullDate(g.TargetDate),
		Description:       nullString(g.Description),
		CreatedAt:         formatTimestamp(g.CreatedAt),
		UpdatedAt:         formatTimestamp(g.UpdatedAt),
	})
	return mapError("insert goal", err, nil)
}

func (s *Store) GetGoal(ctx context.Context, id string) (core.SavingsGoal, error) {
	row, err := s.q.GetGoal(ctx, id)
	if err != nil {
		return core.SavingsGoal{}, notFound("get goal", "goal", id, err)
	}
	g, err := toGoal(row)
	if err != nil {
		return core.SavingsGoal{}, mapError("decode goal", err, nil)
	}
	return g, nil
}

func (s *Store) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := s.q.ListGoals(ctx)
	if err != nil {
		return nil, mapError("list goals", err, nil)
	}
	out := make([]core.SavingsGoal, 0, len(rows))
	for _, r := range rows {
		g, err := toGoal(r)
		if err != nil {
			return nil, mapError("decode goal", err, nil)
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Store) UpdateGoal(ctx context.Context, id string, ups []core.FieldUpdate, at time.Time) error {
	sets, err := assignments(goalColumns, ups)
	if err != nil {
		return mapError("update goal", err, nil)
	}
	sets = append(sets, Assignment{Column: "updated_at", Value: formatTimestamp(at)})
	n, err := s.q.UpdateByID(ctx, "savings_goals", id, sets)
	if err != nil {
		return mapError("update goal", err, nil)
	}
	if n == 0 {
		return &core.NotFoundError{Entity: "goal", ID: id}
	}
	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	n, err := s.q.DeleteGoal(ctx, id)
	if err != nil {
		return mapError("delete goal", err, nil)
	}
	if n == 0 {
		return &core.NotFoundError{Entity: "goal", ID: id}
	}
	return nil
}

// IncrementGoalBalance adds delta to the cached balance in a single statement.
func (s *Store) IncrementGoalBalance(ctx context.Context, id string, delta core.Money, at time.Time) error {
	n, err := s.q.IncrementGoalBalance(ctx, id, delta.Cents, formatTimestamp(at))
	if err != nil {
		return mapError("increment goal balance", err, nil)
	}
	if n == 0 {
		return &core.NotFoundError{Entity: "goal", ID: id}
	}
	return nil
}

// SetGoalBalance overwrites the cached balance.
func (s *Store) SetGoalBalance(ctx context.Context, id string, balance core.Money, at time.Time) error {
	n, err := s.q.SetGoalBalance(ctx, id, balance.Cents, formatTimestamp(at))
	if err != nil {
		return mapError("set goal balance", err, nil)
	}
	if n == 0 {
		return &core.NotFoundError{Entity: "goal", ID: id}
	}
	return nil
}

func (s *Store) TotalSavings(ctx context.Context) (core.Money, error) {
	cents, err := s.q.SumGoalBalances(ctx)
	if err != nil {
		return core.Money{}, mapError("sum goal balances", err, nil)
	}
	return core.MoneyFromCents(cents), nil
}

func (s *Store) CreateContribution(ctx context.Context, c core.GoalContribution) error {
	amount, err := core.NewMoney(c.Amount)
	if err != nil {
		return core.NewValidationError(core.FieldAmount, err)
	}
	err = s.q.CreateContribution(ctx, CreateContributionParams{
		ID:          c.ID,
		GoalID:      c.GoalID,
		AmountCents: amount.Cents,
		Date:        c.Date.String(),
		Description: nullString(c.Description),
		CreatedAt:   formatTimestamp(c.CreatedAt),
	})
	return mapError("insert contribution", err, &core.ReferenceError{Entity: "goal", ID: c.GoalID})
}

func (s *Store) GetContribution(ctx context.Context, goalID, id string) (core.GoalContribution, error) {
	row, err := s.q.GetContribution(ctx, goalID, id)
	if err != nil {
		return core.GoalContribution{}, notFound("get contribution", "contribution", id, err)
	}
	c, err := toContribution(row)
	if err != nil {
		return core.GoalContribution{}, mapError("decode contribution", err, nil)
	}
	return c, nil
}

func (s *Store) ListContributions(ctx context.Context, goalID string, p core.Page) ([]core.GoalContribution, error) {
	p = p.Normalize()
	rows, err := s.q.ListContributions(ctx, goalID, int64(p.Limit), int64(p.Offset))
	if err != nil {
		return nil, mapError("list contributions", err, nil)
	}
	out := make([]core.GoalContribution, 0, len(rows))
	for _, r := range rows {
		c, err := toContribution(r)
		if err != nil {
			return nil, mapError("decode contribution", err, nil)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) DeleteContribution(ctx context.Context, goalID, id string) error {
	n, err := s.q.DeleteContribution(ctx, goalID, id)
	if err != nil {
		return mapError("delete contribution", err, nil)
	}
	if n == 0 {
		return &core.NotFoundError{Entity: "contribution", ID: id}
	}
	return nil
}

// DeleteContributionsByGoal removes every contribution of a goal and
// reports how many were removed.
func (s *Store) DeleteContributionsByGoal(ctx context.Context, goalID string) (int64, error) {
	n, err := s.q.DeleteContributionsByGoal(ctx, goalID)
	if err != nil {
		return 0, mapError("delete goal contributions", err, nil)
	}
	return n, nil
}

func (s *Store) AggregateContributions(ctx context.Context, goalID string, r core.DateRange) (core.Aggregate, error) {
	row, err := s.q.AggregateContributions(ctx, AggregateParams{
		OwnerID:  goalID,
		DateFrom: dateFilter(r.From),
		DateTo:   dateFilter(r.To),
	})
	if err != nil {
		return core.Aggregate{}, mapError("aggregate contributions", err, nil)
	}
	a, err := toAggregate(row)
	if err != nil {
		return core.Aggregate{}, mapError("decode aggregate", err, nil)
	}
	return a, nil
}
