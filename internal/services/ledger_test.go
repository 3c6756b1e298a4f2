package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func foodExpense(amount string, date core.Date) core.NewTransaction {
	return core.NewTransaction{
		Amount:      dec(amount),
		Description: "groceries",
		CategoryID:  "expense-food",
		Kind:        core.KindExpense,
		Date:        date,
	}
}

func TestLedgerCreateAndSummarize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.ledger.Create(ctx, foodExpense("100.50", core.NewDate(2024, 1, 1)))
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "Food & Dining", view.Category.Name)
	assert.Equal(t, "#ef4444", view.Category.Color)
	assert.Equal(t, core.KindExpense, view.Category.Kind)

	summary, err := f.ledger.Summarize(ctx, "expense-food", core.DateRange{})
	require.NoError(t, err)
	s := summary.Summary
	assert.EqualValues(t, 1, s.Count)
	assert.Equal(t, "100.5", s.Total.String())
	assert.Equal(t, "100.5", s.Mean.String())
	assert.Equal(t, "100.5", s.Min.String())
	assert.Equal(t, "100.5", s.Max.String())
	assert.Equal(t, "2024-01-01", s.FirstDate.String())
	assert.Equal(t, "2024-01-01", s.LastDate.String())
	assert.Equal(t, "expense-food", summary.Category.ID)

	assert.Equal(t, []amqp.EventType{amqp.EventTransactionCreated}, f.events.types())
}

func TestLedgerSummarizeEmptyCategory(t *testing.T) {
	f := newFixture(t)

	summary, err := f.ledger.Summarize(context.Background(), "income-freelance", core.DateRange{})
	require.NoError(t, err)
	s := summary.Summary
	assert.Zero(t, s.Count)
	assert.True(t, s.Total.IsZero())
	assert.True(t, s.Mean.IsZero())
	assert.True(t, s.Min.IsZero())
	assert.True(t, s.Max.IsZero())
	assert.Nil(t, s.FirstDate)
	assert.Nil(t, s.LastDate)
}

func TestLedgerSummarizeMeanRounding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, a := range []string{"10", "10", "13.33"} {
		_, err := f.ledger.Create(ctx, foodExpense(a, core.NewDate(2024, 1, 1)))
		require.NoError(t, err)
	}

	summary, err := f.ledger.Summarize(ctx, "expense-food", core.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, "33.33", summary.Summary.Total.String())
	assert.Equal(t, "11.11", summary.Summary.Mean.String())
}

func TestLedgerSummarizeErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Summarize(ctx, "nonexistent", core.DateRange{})
	assert.Equal(t, core.ErrorKindNotFound, core.KindOf(err))

	from, to := core.NewDate(2024, 2, 1), core.NewDate(2024, 1, 1)
	_, err = f.ledger.Summarize(ctx, "expense-food", core.DateRange{From: &from, To: &to})
	assert.ErrorIs(t, err, core.ErrInvalidRange)
}

func TestLedgerCreateValidation(t *testing.T) {
	f := newFixture(t)
	date := core.NewDate(2024, 1, 1)

	tests := []struct {
		name   string
		mutate func(*core.NewTransaction)
		want   error
	}{
		{"zero amount", func(n *core.NewTransaction) { n.Amount = decimal.Zero }, core.ErrInvalidAmount},
		{"negative amount", func(n *core.NewTransaction) { n.Amount = dec("-5") }, core.ErrInvalidAmount},
		{"rounds to zero", func(n *core.NewTransaction) { n.Amount = dec("0.004") }, core.ErrInvalidAmount},
		{"blank description", func(n *core.NewTransaction) { n.Description = "  " }, core.ErrEmptyDescription},
		{"bad kind", func(n *core.NewTransaction) { n.Kind = "transfer" }, core.ErrInvalidKind},
		{"missing date", func(n *core.NewTransaction) { n.Date = core.Date{} }, core.ErrMissingDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := foodExpense("10", date)
			tt.mutate(&in)
			_, err := f.ledger.Create(context.Background(), in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, core.ErrorKindValidation, core.KindOf(err))
		})
	}

	list, err := f.ledger.List(context.Background(), core.TransactionFilter{}, core.Page{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLedgerCreateUnknownCategory(t *testing.T) {
	f := newFixture(t)

	in := foodExpense("10", core.NewDate(2024, 1, 1))
	in.CategoryID = "nonexistent"
	_, err := f.ledger.Create(context.Background(), in)

	var ref *core.ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "nonexistent", ref.ID)
	assert.Empty(t, f.events.types())
}

func TestLedgerAllowsKindMismatch(t *testing.T) {
	f := newFixture(t)

	in := foodExpense("10", core.NewDate(2024, 1, 1))
	in.CategoryID = "income-salary"
	view, err := f.ledger.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, core.KindExpense, view.Kind)
	assert.Equal(t, core.KindIncome, view.Category.Kind)
}

func TestLedgerUpdateUnknownCategoryLeavesRowUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, foodExpense("42", core.NewDate(2024, 1, 1)))
	require.NoError(t, err)

	_, err = f.ledger.Update(ctx, created.ID, core.TransactionPatch{
		CategoryID:  core.Some("nonexistent"),
		Description: core.Some("changed"),
	})
	var ref *core.ReferenceError
	require.ErrorAs(t, err, &ref)

	stored, err := f.ledger.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestLedgerUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, foodExpense("42", core.NewDate(2024, 1, 1)))
	require.NoError(t, err)

	updated, err := f.ledger.Update(ctx, created.ID, core.TransactionPatch{
		CategoryID: core.Some("expense-transport"),
		Amount:     core.Some(dec("12.345")),
	})
	require.NoError(t, err)
	assert.Equal(t, "Transportation", updated.Category.Name)
	assert.Equal(t, "12.35", updated.Amount.StringFixed(2))
	assert.Equal(t, created.Description, updated.Description)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	assert.Equal(t, []amqp.EventType{amqp.EventTransactionCreated, amqp.EventTransactionUpdated}, f.events.types())
}

func TestLedgerUpdateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, foodExpense("42", core.NewDate(2024, 1, 1)))
	require.NoError(t, err)

	_, err = f.ledger.Update(ctx, created.ID, core.TransactionPatch{})
	assert.ErrorIs(t, err, core.ErrNoFields)

	_, err = f.ledger.Update(ctx, created.ID, core.TransactionPatch{Kind: core.Some(core.Kind("gift"))})
	assert.ErrorIs(t, err, core.ErrInvalidKind)

	_, err = f.ledger.Update(ctx, "missing", core.TransactionPatch{Description: core.Some("x")})
	assert.True(t, core.IsNotFound(err))
}

func TestLedgerUpdateMissingBeforeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		patch core.TransactionPatch
	}{
		{"empty patch", core.TransactionPatch{}},
		{"invalid amount", core.TransactionPatch{Amount: core.Some(dec("-5"))}},
		{"unknown category", core.TransactionPatch{CategoryID: core.Some("nope")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Update(ctx, "missing", tt.patch)
			assert.True(t, core.IsNotFound(err), "got %v", err)
		})
	}
	assert.Empty(t, f.events.types())
}

func TestLedgerDeleteTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, foodExpense("42", core.NewDate(2024, 1, 1)))
	require.NoError(t, err)

	require.NoError(t, f.ledger.Delete(ctx, created.ID))
	err = f.ledger.Delete(ctx, created.ID)
	assert.True(t, core.IsNotFound(err))

	_, err = f.ledger.Get(ctx, created.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestLedgerListOrderingAndCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older, err := f.ledger.Create(ctx, foodExpense("1", core.NewDate(2024, 1, 1)))
	require.NoError(t, err)
	first, err := f.ledger.Create(ctx, foodExpense("2", core.NewDate(2024, 1, 5)))
	require.NoError(t, err)
	second, err := f.ledger.Create(ctx, foodExpense("3", core.NewDate(2024, 1, 5)))
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, core.NewTransaction{
		Amount: dec("500"), Description: "pay", CategoryID: "income-salary",
		Kind: core.KindIncome, Date: core.NewDate(2024, 1, 3),
	})
	require.NoError(t, err)

	food, err := f.ledger.ListByCategory(ctx, "expense-food", core.DateRange{}, core.Page{})
	require.NoError(t, err)
	require.Len(t, food, 3)
	assert.Equal(t, second.ID, food[0].ID)
	assert.Equal(t, first.ID, food[1].ID)
	assert.Equal(t, older.ID, food[2].ID)

	_, err = f.ledger.ListByCategory(ctx, "nonexistent", core.DateRange{}, core.Page{})
	assert.True(t, core.IsNotFound(err))

	_, err = f.ledger.List(ctx, core.TransactionFilter{Kind: "bogus"}, core.Page{})
	assert.ErrorIs(t, err, core.ErrInvalidKind)
}

func TestLedgerPublishFailureDoesNotFailCommit(t *testing.T) {
	f := newFixture(t)
	f.events.fail = true
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, foodExpense("9.99", core.NewDate(2024, 1, 1)))
	require.NoError(t, err)

	_, err = f.ledger.Get(ctx, created.ID)
	require.NoError(t, err)
}

func TestLedgerWithoutPublisher(t *testing.T) {
	f := newFixture(t)
	ledger := NewLedgerService(f.repo, f.categories, nil, nil)

	_, err := ledger.Create(context.Background(), foodExpense("1", core.NewDate(2024, 1, 1)))
	require.NoError(t, err)
}

func TestLedgerStorageErrorsPropagate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.Close())

	_, err := f.ledger.List(context.Background(), core.TransactionFilter{}, core.Page{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrInvalidKind))
	assert.Equal(t, core.ErrorKindStorage, core.KindOf(err))
}
