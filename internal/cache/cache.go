package cache

import (
	"context"
	"time"

	"fintrack/internal/log"
)

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically evicts expired entries from registered caches.
type Manager struct {
	caches []Cleaner
	logger *log.Logger
	done   chan struct{}
	cancel context.CancelFunc
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default(log.ComponentCache)
	}
	return &Manager{logger: logger}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// Sweep runs one cleanup pass over every registered cache.
func (m *Manager) Sweep() int {
	total := 0
	for _, c := range m.caches {
		total += c.CleanExpired()
	}
	return total
}

// Start sweeps every interval until ctx ends or Stop is called.
func (m *Manager) Start(ctx context.Context, interval time.Duration) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					m.logger.Debug("Evicted expired cache entries", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the sweep loop and waits for it to exit.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}
