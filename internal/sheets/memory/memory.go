package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

var _ ports.TransactionMirror = (*Store)(nil)

// Store is an in-process mirror that keeps rows in insertion order.
type Store struct {
	mu    sync.Mutex
	order []string
	rows  map[string]core.TransactionView
}

func New() *Store {
	return &Store{rows: make(map[string]core.TransactionView)}
}

func (s *Store) Upsert(_ context.Context, v core.TransactionView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[v.ID]; !ok {
		s.order = append(s.order, v.ID)
	}
	s.rows[v.ID] = v
	return nil
}

func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return nil
	}
	delete(s.rows, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rows returns a copy of the mirrored rows in insertion order.
func (s *Store) Rows() []core.TransactionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.TransactionView, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out
}

func (s *Store) Get(id string) (core.TransactionView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rows[id]
	return v, ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
