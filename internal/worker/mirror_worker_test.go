package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets/memory"
)

type fakeSource struct {
	mu      sync.Mutex
	rows    map[string]core.TransactionView
	listErr error
}

func newFakeSource(views ...core.TransactionView) *fakeSource {
	s := &fakeSource{rows: map[string]core.TransactionView{}}
	for _, v := range views {
		s.rows[v.ID] = v
	}
	return s
}

func (s *fakeSource) GetTransaction(_ context.Context, id string) (core.TransactionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rows[id]
	if !ok {
		return core.TransactionView{}, &core.NotFoundError{Entity: "transaction", ID: id}
	}
	return v, nil
}

func (s *fakeSource) ListTransactions(_ context.Context, _ core.TransactionFilter, p core.Page) ([]core.TransactionView, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.TransactionView, 0, len(s.rows))
	for _, v := range s.rows {
		out = append(out, v)
	}
	return out, nil
}

type failingMirror struct {
	failOn string
	*memory.Store
}

func (m *failingMirror) Upsert(ctx context.Context, v core.TransactionView) error {
	if v.ID == m.failOn {
		return errors.New("quota exceeded")
	}
	return m.Store.Upsert(ctx, v)
}

// eventSource replays a fixed list of events through the handler.
type eventSource struct {
	events  []*amqp.LedgerEvent
	handled chan error
}

func (s *eventSource) Consume(ctx context.Context, handler amqp.Handler) error {
	for _, e := range s.events {
		s.handled <- handler(ctx, e)
	}
	<-ctx.Done()
	return ctx.Err()
}

func txView(id, amount string) core.TransactionView {
	return core.TransactionView{
		Transaction: core.Transaction{
			ID:          id,
			Amount:      decimal.RequireFromString(amount),
			Description: "entry",
			CategoryID:  "expense-food",
			Kind:        core.KindExpense,
			Date:        core.NewDate(2024, 3, 1),
		},
		Category: core.CategoryRef{ID: "expense-food", Name: "Food & Dining", Kind: core.KindExpense},
	}
}

func TestMirrorWorker_HandleEvent(t *testing.T) {
	src := newFakeSource(txView("tx-1", "10"))
	mirror := memory.New()
	w := NewMirrorWorker(src, mirror, log.Discard())
	ctx := context.Background()

	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionCreated, "tx-1")))
	v, ok := mirror.Get("tx-1")
	require.True(t, ok)
	assert.Equal(t, "10", v.Amount.String())

	src.rows["tx-1"] = txView("tx-1", "25.5")
	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionUpdated, "tx-1")))
	v, _ = mirror.Get("tx-1")
	assert.Equal(t, "25.5", v.Amount.String())
	assert.Equal(t, 1, mirror.Len())

	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EventTransactionDeleted, "tx-1")))
	assert.Zero(t, mirror.Len())
}

func TestMirrorWorker_UpdateForVanishedTransactionRemovesRow(t *testing.T) {
	mirror := memory.New()
	require.NoError(t, mirror.Upsert(context.Background(), txView("gone", "1")))
	w := NewMirrorWorker(newFakeSource(), mirror, log.Discard())

	require.NoError(t, w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventTransactionUpdated, "gone")))
	assert.Zero(t, mirror.Len())
}

func TestMirrorWorker_IgnoresGoalEvents(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(newFakeSource(), mirror, log.Discard())

	for _, typ := range []amqp.EventType{amqp.EventGoalCreated, amqp.EventContributionAdded, amqp.EventGoalBalanceClamped} {
		require.NoError(t, w.HandleEvent(context.Background(), amqp.NewLedgerEvent(typ, "goal-1")))
	}
	assert.Zero(t, mirror.Len())
}

func TestMirrorWorker_MirrorFailureIsReturned(t *testing.T) {
	mirror := &failingMirror{failOn: "tx-1", Store: memory.New()}
	w := NewMirrorWorker(newFakeSource(txView("tx-1", "1")), mirror, log.Discard())

	err := w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventTransactionCreated, "tx-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestMirrorWorker_Backfill(t *testing.T) {
	src := newFakeSource(txView("a", "1"), txView("b", "2"), txView("c", "3"))
	mirror := &failingMirror{failOn: "b", Store: memory.New()}
	w := NewMirrorWorker(src, mirror, log.Discard())

	res, err := w.Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BackfillResult{Total: 3, Synced: 2, Errors: 1}, res)
	assert.Equal(t, 2, mirror.Len())

	src.listErr = errors.New("disk I/O error")
	_, err = w.Backfill(context.Background())
	assert.Error(t, err)
}

func TestMirrorWorker_Run(t *testing.T) {
	src := newFakeSource(txView("a", "1"))
	mirror := memory.New()
	w := NewMirrorWorker(src, mirror, log.Discard())

	events := &eventSource{
		events:  []*amqp.LedgerEvent{amqp.NewLedgerEvent(amqp.EventTransactionDeleted, "a")},
		handled: make(chan error, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, events) }()

	select {
	case err := <-events.handled:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("event not handled")
	}
	assert.Zero(t, mirror.Len())
	cancel()
	assert.NoError(t, <-done)
}
