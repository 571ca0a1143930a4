package storage

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"expenses/internal/core"
)

// MemoryRepository keeps the expense set in memory. It backs the "memory"
// backend and the service tests; contents vanish when the process exits.
type MemoryRepository struct {
	mu      sync.Mutex
	items   []core.Expense
	lastID  int64
	budgets map[int]int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{budgets: make(map[int]int64)}
}

func (s *MemoryRepository) Append(_ context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	e.ID = s.lastID
	s.items = append(s.items, e)
	return e.ID, nil
}

func (s *MemoryRepository) Get(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, errors.Wrapf(ErrNotFound, "id %d", id)
}

func (s *MemoryRepository) Update(_ context.Context, id int64, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			e.ID = id
			s.items[i] = e
			return nil
		}
	}
	return errors.Wrapf(ErrNotFound, "id %d", id)
}

func (s *MemoryRepository) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return errors.Wrapf(ErrNotFound, "id %d", id)
}

func (s *MemoryRepository) List(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemoryRepository) SetBudget(_ context.Context, month int, amount core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[month] = amount.Cents
	return nil
}

func (s *MemoryRepository) Budget(_ context.Context, month int) (core.Money, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cents, ok := s.budgets[month]
	return core.Money{Cents: cents}, ok, nil
}
