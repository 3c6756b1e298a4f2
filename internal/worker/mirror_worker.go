package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// TransactionSource is the read side the worker re-reads transactions from.
type TransactionSource interface {
	GetTransaction(ctx context.Context, id string) (core.TransactionView, error)
	ListTransactions(ctx context.Context, f core.TransactionFilter, p core.Page) ([]core.TransactionView, error)
}

// EventSource delivers ledger events to a handler until ctx ends.
type EventSource interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

// MirrorWorker applies transaction events to a TransactionMirror. Events
// carry only ids; the row content always comes from storage.
type MirrorWorker struct {
	source TransactionSource
	mirror sheets.TransactionMirror
	logger *log.Logger
}

func NewMirrorWorker(source TransactionSource, mirror sheets.TransactionMirror, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &MirrorWorker{source: source, mirror: mirror, logger: logger}
}

// HandleEvent is an amqp.Handler. Non-transaction events are acknowledged
// without work.
func (w *MirrorWorker) HandleEvent(ctx context.Context, e *amqp.LedgerEvent) error {
	if !e.Type.IsTransaction() {
		w.logger.DebugContext(ctx, "Skipping non-transaction event",
			log.FieldEventType, e.Type,
			"entity_id", e.EntityID)
		return nil
	}

	switch e.Type {
	case amqp.EventTransactionDeleted:
		return w.remove(ctx, e.EntityID)
	default:
		return w.sync(ctx, e.EntityID)
	}
}

func (w *MirrorWorker) sync(ctx context.Context, id string) error {
	v, err := w.source.GetTransaction(ctx, id)
	if err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			// Deleted after the event was published.
			return w.remove(ctx, id)
		}
		return fmt.Errorf("get transaction %s: %w", id, err)
	}

	if err := w.mirror.Upsert(ctx, v); err != nil {
		return fmt.Errorf("mirror upsert %s: %w", id, err)
	}

	w.logger.InfoContext(ctx, "Mirrored transaction",
		log.FieldOperation, log.OpMirror,
		log.FieldTransactionID, id,
		log.FieldAmount, v.Amount.StringFixed(2))
	return nil
}

func (w *MirrorWorker) remove(ctx context.Context, id string) error {
	if err := w.mirror.Remove(ctx, id); err != nil {
		return fmt.Errorf("mirror remove %s: %w", id, err)
	}
	w.logger.InfoContext(ctx, "Removed mirrored transaction",
		log.FieldOperation, log.OpDelete,
		log.FieldTransactionID, id)
	return nil
}

// BackfillResult reports a startup pass over the whole ledger.
type BackfillResult struct {
	Total  int
	Synced int
	Errors int
}

// Backfill upserts every stored transaction. It recovers rows missed while
// the worker or broker was down; per-row failures are counted, not fatal.
func (w *MirrorWorker) Backfill(ctx context.Context) (BackfillResult, error) {
	all, err := w.source.ListTransactions(ctx, core.TransactionFilter{}, core.Page{Limit: -1})
	if err != nil {
		return BackfillResult{}, fmt.Errorf("list transactions for backfill: %w", err)
	}

	res := BackfillResult{Total: len(all)}
	for _, v := range all {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := w.mirror.Upsert(ctx, v); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror transaction during backfill",
				log.FieldTransactionID, v.ID,
				log.FieldError, err)
			res.Errors++
			continue
		}
		res.Synced++
	}

	w.logger.InfoContext(ctx, "Backfill completed",
		"total", res.Total,
		"synced", res.Synced,
		"errors", res.Errors)
	return res, nil
}

// Run backfills the mirror and then consumes events until ctx ends.
func (w *MirrorWorker) Run(ctx context.Context, events EventSource) error {
	if _, err := w.Backfill(ctx); err != nil {
		w.logger.WarnContext(ctx, "Backfill failed, continuing with live events", log.FieldError, err)
	}
	err := events.Consume(ctx, w.HandleEvent)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
