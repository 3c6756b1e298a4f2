package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.LedgerEvent
	fail   bool
}

func (p *recordingPublisher) Publish(_ context.Context, e *amqp.LedgerEvent) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return nil
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	repo       *storage.SQLiteRepository
	events     *recordingPublisher
	categories *CategoryService
	ledger     *LedgerService
	goals      *GoalService
	dashboard  *DashboardService
	clock      *stepClock
}

// stepClock advances one second per call so created_at values are distinct.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := log.Discard()
	events := &recordingPublisher{}
	clock := &stepClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	categories := NewCategoryService(repo, time.Minute, logger)

	return &fixture{
		repo:       repo,
		events:     events,
		categories: categories,
		ledger:     NewLedgerService(repo, categories, events, logger).WithClock(clock.Now),
		goals:      NewGoalService(repo, events, logger).WithClock(clock.Now),
		dashboard:  NewDashboardService(repo),
		clock:      clock,
	}
}
