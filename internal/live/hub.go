// Package live delivers full-collection snapshots to subscribers on every
// change, mirroring a push-based document store subscription. Consumers
// receive complete snapshots, never deltas, and must unsubscribe on
// teardown.
package live

import (
	"context"
	"log/slog"
	"sync"

	"saldo/internal/core"
	"saldo/internal/store"
)

// Hub owns the fan-out of expense snapshots. Every subscriber has a
// buffered channel of capacity one: a snapshot that has not been consumed
// yet is superseded by the next one, so slow consumers always see the
// latest state rather than a backlog.
type Hub struct {
	mu     sync.Mutex
	store  store.ExpenseStore
	subs   map[uint64]chan []core.Expense
	nextID uint64
}

type Subscription struct {
	// C delivers the current snapshot on subscribe and a fresh snapshot
	// after every mutation.
	C <-chan []core.Expense

	once   sync.Once
	cancel func()
}

// Unsubscribe detaches the subscription. It must be called when the
// consuming view goes away; an abandoned subscription would otherwise
// hold its channel forever. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

func NewHub(s store.ExpenseStore) *Hub {
	return &Hub{
		store: s,
		subs:  make(map[uint64]chan []core.Expense),
	}
}

// Subscribe registers a new consumer and primes it with the current
// snapshot so it does not have to wait for the next mutation.
func (h *Hub) Subscribe(ctx context.Context) (*Subscription, error) {
	snapshot, err := h.store.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan []core.Expense, 1)
	ch <- snapshot
	h.subs[id] = ch

	return &Subscription{
		C: ch,
		cancel: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
		},
	}, nil
}

// Broadcast re-reads the full collection and pushes it to every
// subscriber. Called by the service layer after each successful mutation.
func (h *Hub) Broadcast(ctx context.Context) {
	snapshot, err := h.store.ListExpenses(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read snapshot for broadcast", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		// Drop the stale pending snapshot, if any, then deliver.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// SubscriberCount reports the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
