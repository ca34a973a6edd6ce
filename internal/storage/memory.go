package storage

import (
	"context"
	"sort"
	"sync"

	"reisekosten/internal/core"
)

// MemoryStore keeps trips and expenses in process memory. It is the
// default backend and backs the service tests.
type MemoryStore struct {
	mu       sync.RWMutex
	trips    map[string]core.Trip
	expenses map[string]core.Expense
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trips:    make(map[string]core.Trip),
		expenses: make(map[string]core.Expense),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateTrip(ctx context.Context, t core.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips[t.ID] = cloneTrip(t)
	return nil
}

func (s *MemoryStore) UpdateTrip(ctx context.Context, t core.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[t.ID]; !ok {
		return ErrNotFound
	}
	s.trips[t.ID] = cloneTrip(t)
	return nil
}

func (s *MemoryStore) GetTrip(ctx context.Context, id string) (core.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trips[id]
	if !ok {
		return core.Trip{}, ErrNotFound
	}
	return cloneTrip(t), nil
}

func (s *MemoryStore) ListTrips(ctx context.Context) ([]core.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trips := make([]core.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		trips = append(trips, cloneTrip(t))
	}
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].StartDateTime.After(trips[j].StartDateTime)
	})
	return trips, nil
}

func (s *MemoryStore) DeleteTrip(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[id]; !ok {
		return ErrNotFound
	}
	delete(s.trips, id)
	for eid, e := range s.expenses {
		if e.TripID == id {
			delete(s.expenses, eid)
		}
	}
	return nil
}

func (s *MemoryStore) CreateExpense(ctx context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[e.ID] = e
	return nil
}

func (s *MemoryStore) UpdateExpense(ctx context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; !ok {
		return ErrNotFound
	}
	s.expenses[e.ID] = e
	return nil
}

func (s *MemoryStore) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expenses := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		expenses = append(expenses, e)
	}
	sortExpenses(expenses)
	return expenses, nil
}

func (s *MemoryStore) ListExpensesByTrip(ctx context.Context, tripID string) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expenses []core.Expense
	for _, e := range s.expenses {
		if e.TripID == tripID {
			expenses = append(expenses, e)
		}
	}
	sortExpenses(expenses)
	return expenses, nil
}

func (s *MemoryStore) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func sortExpenses(expenses []core.Expense) {
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Date.Before(expenses[j].Date)
	})
}

func cloneTrip(t core.Trip) core.Trip {
	if t.MealAllowances != nil {
		summary := *t.MealAllowances
		summary.Breakdown = append([]core.AllowanceDay(nil), t.MealAllowances.Breakdown...)
		t.MealAllowances = &summary
	}
	return t
}
