package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func tx(id, amount string) core.TransactionView {
	return core.TransactionView{Transaction: core.Transaction{
		ID:     id,
		Amount: decimal.RequireFromString(amount),
		Kind:   core.KindExpense,
		Date:   core.NewDate(2024, 1, 1),
	}}
}

func TestStore_UpsertKeepsOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, tx("a", "1")))
	require.NoError(t, s.Upsert(ctx, tx("b", "2")))
	require.NoError(t, s.Upsert(ctx, tx("a", "3")))

	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].ID)
	assert.Equal(t, "3", rows[0].Amount.String())
	assert.Equal(t, "b", rows[1].ID)
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, tx("a", "1")))
	require.NoError(t, s.Upsert(ctx, tx("b", "2")))
	require.NoError(t, s.Remove(ctx, "a"))
	require.NoError(t, s.Remove(ctx, "a"))

	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)
	v, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, "2", v.Amount.String())
}
