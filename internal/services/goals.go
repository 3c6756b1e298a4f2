package services

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// GoalStore is the storage surface of the goal engine.
type GoalStore interface {
	GetGoal(ctx context.Context, id string) (core.SavingsGoal, error)
	ListGoals(ctx context.Context) ([]core.SavingsGoal, error)
	InTx(ctx context.Context, fn func(*storage.Store) error) error
}

// ReconcileReport compares a goal's cached balance with the sum of its
// contributions.
type ReconcileReport struct {
	GoalID     string          `json:"goal_id"`
	Cached     decimal.Decimal `json:"cached_amount"`
	Computed   decimal.Decimal `json:"computed_amount"`
	Drift      decimal.Decimal `json:"drift"`
	Consistent bool            `json:"consistent"`
}

// GoalService maintains savings goals and their contributions. Every
// mutation of a goal's balance runs in one storage transaction together
// with the contribution write it derives from.
type GoalService struct {
	store  GoalStore
	events EventPublisher
	logger *log.Logger
	now    func() time.Time
	clamps atomic.Int64
}

func NewGoalService(store GoalStore, events EventPublisher, logger *log.Logger) *GoalService {
	if logger == nil {
		logger = log.Default(log.ComponentGoals)
	}
	return &GoalService{
		store:  store,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the timestamp source.
func (s *GoalService) WithClock(now func() time.Time) *GoalService {
	s.now = now
	return s
}

// ClampCount reports how many contribution removals hit the zero floor.
func (s *GoalService) ClampCount() int64 {
	return s.clamps.Load()
}

func (s *GoalService) CreateGoal(ctx context.Context, in core.NewGoal) (core.SavingsGoal, error) {
	if err := in.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	target, _ := core.NewMoney(in.TargetAmount)

	now := s.now().UTC()
	g := core.SavingsGoal{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		TargetAmount:  target.Decimal(),
		CurrentAmount: decimal.Zero,
		TargetDate:    in.TargetDate,
		Description:   in.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var created core.SavingsGoal
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		if err := st.CreateGoal(ctx, g); err != nil {
			return err
		}
		v, err := st.GetGoal(ctx, g.ID)
		created = v
		return err
	})
	if err != nil {
		return core.SavingsGoal{}, err
	}

	s.logger.InfoContext(ctx, "Savings goal created",
		log.FieldGoalID, g.ID,
		"target_amount", target.String(),
		log.FieldOperation, log.OpCreate)
	emit(ctx, s.events, s.logger, amqp.NewLedgerEvent(amqp.EventGoalCreated, g.ID).WithGoal(g.ID).WithAmount(created.TargetAmount))
	return created, nil
}

func (s *GoalService) GetGoal(ctx context.Context, id string) (core.SavingsGoal, error) {
	return s.store.GetGoal(ctx, id)
}

// ListGoals returns goals newest first.
func (s *GoalService) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	return s.store.ListGoals(ctx)
}

// UpdateGoal changes descriptive fields and the target. The balance is
// rejected as a patch field. A missing goal is reported before any field
// problem.
func (s *GoalService) UpdateGoal(ctx context.Context, id string, patch core.GoalPatch) (core.SavingsGoal, error) {
	var (
		updated core.SavingsGoal
		ups     []core.FieldUpdate
	)
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		if _, err := st.GetGoal(ctx, id); err != nil {
			return err
		}
		var err error
		if ups, err = patch.Updates(); err != nil {
			return err
		}
		if err := st.UpdateGoal(ctx, id, ups, s.now().UTC()); err != nil {
			return err
		}
		v, err := st.GetGoal(ctx, id)
		updated = v
		return err
	})
	if err != nil {
		return core.SavingsGoal{}, err
	}

	s.logger.InfoContext(ctx, "Savings goal updated",
		log.FieldGoalID, id,
		"fields", len(ups),
		log.FieldOperation, log.OpUpdate)
	emit(ctx, s.events, s.logger, amqp.NewLedgerEvent(amqp.EventGoalUpdated, id).WithGoal(id))
	return updated, nil
}

// DeleteGoal removes the goal together with all of its contributions.
func (s *GoalService) DeleteGoal(ctx context.Context, id string) error {
	var removed int64
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		if _, err := st.GetGoal(ctx, id); err != nil {
			return err
		}
		n, err := st.DeleteContributionsByGoal(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return st.DeleteGoal(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Savings goal deleted",
		log.FieldGoalID, id,
		"contributions_removed", removed,
		log.FieldOperation, log.OpDelete)
	emit(ctx, s.events, s.logger, amqp.NewLedgerEvent(amqp.EventGoalDeleted, id).WithGoal(id))
	return nil
}

// AddContribution records a contribution and raises the goal balance by
// its amount.
func (s *GoalService) AddContribution(ctx context.Context, goalID string, in core.NewContribution) (core.GoalContribution, error) {
	if err := in.Validate(); err != nil {
		return core.GoalContribution{}, err
	}
	amount, _ := core.NewMoney(in.Amount)

	now := s.now().UTC()
	c := core.GoalContribution{
		ID:          uuid.NewString(),
		GoalID:      goalID,
		Amount:      amount.Decimal(),
		Date:        in.Date,
		Description: in.Description,
		CreatedAt:   now,
	}

	var created core.GoalContribution
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		if _, err := st.GetGoal(ctx, goalID); err != nil {
			return err
		}
		if err := st.CreateContribution(ctx, c); err != nil {
			return err
		}
		if err := st.IncrementGoalBalance(ctx, goalID, amount, now); err != nil {
			return err
		}
		v, err := st.GetContribution(ctx, goalID, c.ID)
		created = v
		return err
	})
	if err != nil {
		return core.GoalContribution{}, err
	}

	s.logger.InfoContext(ctx, "Contribution added", log.NewFields().
		WithGoal(goalID, amount.String()).
		WithOperation(log.OpContribute).ToSlice()...)
	emit(ctx, s.events, s.logger, amqp.NewLedgerEvent(amqp.EventContributionAdded, c.ID).WithGoal(goalID).WithAmount(created.Amount))
	return created, nil
}

// RemoveContribution deletes a contribution and lowers the goal balance by
// its amount, never below zero. Hitting the floor means the cached balance
// had drifted from its contributions; it is logged, counted and announced.
func (s *GoalService) RemoveContribution(ctx context.Context, goalID, contributionID string) error {
	var (
		removed core.GoalContribution
		before  int64
		clamped bool
	)
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		g, err := st.GetGoal(ctx, goalID)
		if err != nil {
			return err
		}
		c, err := st.GetContribution(ctx, goalID, contributionID)
		if err != nil {
			return err
		}
		if err := st.DeleteContribution(ctx, goalID, contributionID); err != nil {
			return err
		}

		before = core.CentsOf(g.CurrentAmount)
		balance := before - core.CentsOf(c.Amount)
		clamped = balance < 0
		if clamped {
			balance = 0
		}
		removed = c
		return st.SetGoalBalance(ctx, goalID, core.MoneyFromCents(balance), s.now().UTC())
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Contribution removed", log.NewFields().
		WithGoal(goalID, removed.Amount.StringFixed(2)).
		WithOperation(log.OpReverse).ToSlice()...)
	emit(ctx, s.events, s.logger, amqp.NewLedgerEvent(amqp.EventContributionRemoved, contributionID).WithGoal(goalID).WithAmount(removed.Amount))

	if clamped {
		s.clamps.Add(1)
		s.logger.WarnContext(ctx, "Goal balance clamped at zero",
			log.FieldGoalID, goalID,
			log.FieldContribution, contributionID,
			"balance_before", core.MoneyFromCents(before).String(),
			log.FieldAmount, removed.Amount.StringFixed(2))
		emit(ctx, s.events, s.logger, amqp.NewLedgerEvent(amqp.EventGoalBalanceClamped, goalID).WithGoal(goalID).WithAmount(removed.Amount))
	}
	return nil
}

// ListContributions lists a goal's contributions, newest date first.
func (s *GoalService) ListContributions(ctx context.Context, goalID string, p core.Page) ([]core.GoalContribution, error) {
	var out []core.GoalContribution
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		if _, err := st.GetGoal(ctx, goalID); err != nil {
			return err
		}
		list, err := st.ListContributions(ctx, goalID, p)
		out = list
		return err
	})
	return out, err
}

// SummarizeContributions aggregates a goal's contributions inside r.
func (s *GoalService) SummarizeContributions(ctx context.Context, goalID string, r core.DateRange) (core.GoalSummary, error) {
	if err := r.Validate(); err != nil {
		return core.GoalSummary{}, err
	}
	var out core.GoalSummary
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		g, err := st.GetGoal(ctx, goalID)
		if err != nil {
			return err
		}
		agg, err := st.AggregateContributions(ctx, goalID, r)
		if err != nil {
			return err
		}
		out = core.GoalSummary{Goal: g, Progress: g.Progress(), Summary: core.NewSummary(agg)}
		return nil
	})
	return out, err
}

// Reconcile recomputes the balance from contributions and compares it
// with the cached one. It never writes.
func (s *GoalService) Reconcile(ctx context.Context, goalID string) (ReconcileReport, error) {
	var report ReconcileReport
	err := s.store.InTx(ctx, func(st *storage.Store) error {
		g, err := st.GetGoal(ctx, goalID)
		if err != nil {
			return err
		}
		agg, err := st.AggregateContributions(ctx, goalID, core.DateRange{})
		if err != nil {
			return err
		}
		computed := max(agg.SumCents, 0)
		cached := core.CentsOf(g.CurrentAmount)
		report = ReconcileReport{
			GoalID:     goalID,
			Cached:     core.MoneyFromCents(cached).Decimal(),
			Computed:   core.MoneyFromCents(computed).Decimal(),
			Drift:      core.MoneyFromCents(cached - computed).Decimal(),
			Consistent: cached == computed,
		}
		return nil
	})
	if err != nil {
		return ReconcileReport{}, err
	}

	if !report.Consistent {
		s.logger.WarnContext(ctx, "Goal balance drift detected",
			log.FieldGoalID, goalID,
			"cached", report.Cached.StringFixed(2),
			"computed", report.Computed.StringFixed(2),
			log.FieldOperation, log.OpReconcile)
	}
	return report, nil
}
