package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// CategoryLookup resolves category references.
type CategoryLookup interface {
	Get(ctx context.Context, id string) (core.Category, error)
}

// LedgerStore is the storage surface of the ledger.
type LedgerStore interface {
	GetTransaction(ctx context.Context, id string) (core.TransactionView, error)
	ListTransactions(ctx context.Context, f core.TransactionFilter, p core.Page) ([]core.TransactionView, error)
	AggregateTransactions(ctx context.Context, categoryID string, r core.DateRange) (core.Aggregate, error)
	InTx(ctx context.Context, fn func(*storage.Store) error) error
}

// LedgerService records income and expense transactions.
type LedgerService struct {
	store      LedgerStore
	categories CategoryLookup
	events     EventPublisher
	logger     *log.Logger
	now        func() time.Time
}

func NewLedgerService(store LedgerStore, categories CategoryLookup, events EventPublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Default(log.ComponentLedger)
	}
	return &LedgerService{
		store:      store,
		categories: categories,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the timestamp source.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// resolveCategory turns a missing category into a ReferenceError.
func (s *LedgerService) resolveCategory(ctx context.Context, id string) (core.Category, error) {
	c, err := s.categories.Get(ctx, id)
	if core.IsNotFound(err) {
		return core.Category{}, &core.ReferenceError{Entity: "category", ID: id}
	}
	return c, err
}

func (s *LedgerService) Create(ctx context.Context, in core.NewTransaction) (core.TransactionView, error) {
	if err := in.Validate(); err != nil {
		return core.TransactionView{}, err
	}
	amount, _ := core.NewMoney(in.Amount)

	if _, err := s.resolveCategory(ctx, in.CategoryID); err != nil {
		return core.TransactionView{}, err
	}

	now := s.now().UTC()
	tx := core.Transaction{
		ID:          uuid.NewString(),
		Amount:      amount.Decimal(),
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Kind:        in.Kind,
		Date:        in.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var view core.TransactionView
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		if err := st.CreateTransaction(ctx, tx); err != nil {
			return err
		}
		v, err := st.GetTransaction(ctx, tx.ID)
		view = v
		return err
	})
	if err != nil {
		return core.TransactionView{}, err
	}

	s.logger.InfoContext(ctx, "Transaction created", log.NewFields().
		WithTransaction(tx.ID, tx.CategoryID, string(tx.Kind), amount.String()).
		WithOperation(log.OpCreate).ToSlice()...)
	emit(ctx, s.events, s.logger, amqp.NewLedgerEvent(amqp.EventTransactionCreated, tx.ID).WithAmount(view.Amount))
	return view, nil
}

func (s *LedgerService) Get(ctx context.Context, id string) (core.TransactionView, error) {
	return s.store.GetTransaction(ctx, id)
}

// Update merges the supplied fields. A missing transaction is reported
// before any field problem; nothing is written unless every field validates.
func (s *LedgerService) Update(ctx context.Context, id string, patch core.TransactionPatch) (core.TransactionView, error) {
	var (
		view core.TransactionView
		ups  []core.FieldUpdate
	)
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		if _, err := st.GetTransaction(ctx, id); err != nil {
			return err
		}
		var err error
		if ups, err = patch.Updates(); err != nil {
			return err
		}
		if patch.CategoryID.Set {
			if _, err := s.resolveCategory(ctx, patch.CategoryID.Value); err != nil {
				return err
			}
		}
		if err := st.UpdateTransaction(ctx, id, ups, s.now().UTC()); err != nil {
			return err
		}
		v, err := st.GetTransaction(ctx, id)
		view = v
		return err
	})
	if err != nil {
		return core.TransactionView{}, err
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldTransactionID, id,
		"fields", len(ups),
		log.FieldOperation, log.OpUpdate)
	emit(ctx, s.events, s.logger, amqp.NewLedgerEvent(amqp.EventTransactionUpdated, id).WithAmount(view.Amount))
	return view, nil
}

// Delete removes a transaction permanently.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	var removed core.TransactionView
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		v, err := st.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		removed = v
		return st.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpDelete)
	emit(ctx, s.events, s.logger, amqp.NewLedgerEvent(amqp.EventTransactionDeleted, id).WithAmount(removed.Amount))
	return nil
}

func (s *LedgerService) List(ctx context.Context, f core.TransactionFilter, p core.Page) ([]core.TransactionView, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, f, p)
}

// ListByCategory lists one category's transactions; the category must exist.
func (s *LedgerService) ListByCategory(ctx context.Context, categoryID string, r core.DateRange, p core.Page) ([]core.TransactionView, error) {
	if _, err := s.categories.Get(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.List(ctx, core.TransactionFilter{CategoryID: categoryID, Range: r}, p)
}

// Summarize computes count, total, mean, extremes and date bounds of a
// category's transactions inside r.
func (s *LedgerService) Summarize(ctx context.Context, categoryID string, r core.DateRange) (core.CategorySummary, error) {
	if err := r.Validate(); err != nil {
		return core.CategorySummary{}, err
	}
	cat, err := s.categories.Get(ctx, categoryID)
	if err != nil {
		return core.CategorySummary{}, err
	}
	agg, err := s.store.AggregateTransactions(ctx, categoryID, r)
	if err != nil {
		return core.CategorySummary{}, err
	}
	return core.CategorySummary{Category: cat, Summary: core.NewSummary(agg)}, nil
}
