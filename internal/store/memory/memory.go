// Package memory is an in-memory document store used by tests and by the
// "memory" data backend for local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"saldo/internal/core"
	"saldo/internal/store"
)

type Store struct {
	mu       sync.Mutex
	expenses map[string]core.Expense
	users    map[string]store.User // keyed by email
	editors  map[string]bool       // keyed by user id
}

func New() *Store {
	return &Store{
		expenses: make(map[string]core.Expense),
		users:    make(map[string]store.User),
		editors:  make(map[string]bool),
	}
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	// Same snapshot ordering contract as the SQLite store.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredOn.Equal(out[j].OccurredOn) {
			return out[i].OccurredOn.Before(out[j].OccurredOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	s.expenses[e.ID] = e
	return e.ID, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; !ok {
		return store.ErrNotFound
	}
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) CreateUser(_ context.Context, u store.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.Email] = u
	return u.ID, nil
}

func (s *Store) CanEdit(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editors[userID], nil
}

func (s *Store) SetEditor(_ context.Context, userID string, canEdit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editors[userID] = canEdit
	return nil
}
