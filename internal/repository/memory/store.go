// Package memory is an in-process implementation of the domain repositories.
// A single mutex serializes every unit of work, which makes each WithinTx call
// behave like a serializable transaction.
package memory

import (
	"context"
	"slices"
	"sync"

	"eventhub/internal/domain"
)

type pairKey struct {
	eventID string
	userID  string
}

type txKey struct{}

// Store holds all records. Use the New*Repository constructors to obtain views over it.
type Store struct {
	mu       sync.Mutex
	events   map[string]*domain.Event
	tickets  map[pairKey]*domain.Ticket
	checkins map[pairKey]*domain.Checkin
	feedback map[pairKey]*domain.Feedback

	// undo journals the prior state of every key written by the running transaction.
	undo []func()
}

func NewStore() *Store {
	return &Store{
		events:   make(map[string]*domain.Event),
		tickets:  make(map[pairKey]*domain.Ticket),
		checkins: make(map[pairKey]*domain.Checkin),
		feedback: make(map[pairKey]*domain.Feedback),
	}
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock acquires the store mutex unless ctx already runs inside one of this store's transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// remember records how to undo the next write to m[key] when ctx runs inside a transaction.
// Writes outside a transaction commit immediately and are not journaled.
func remember[K comparable, V any](ctx context.Context, s *Store, m map[K]*V, key K, clone func(*V) *V) {
	if !s.inTx(ctx) {
		return
	}
	prev, ok := m[key]
	if !ok {
		s.undo = append(s.undo, func() { delete(m, key) })
		return
	}
	saved := clone(prev)
	s.undo = append(s.undo, func() { m[key] = saved })
}

func clonePtr[V any](v *V) *V {
	c := *v
	return &c
}

// WithinTx implements domain.Transactor. Writes made by fn are undone in reverse order if it
// returns an error or panics.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	committed := false
	defer func() {
		if !committed {
			for i := len(s.undo) - 1; i >= 0; i-- {
				s.undo[i]()
			}
		}
		s.undo = nil
	}()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		return err
	}
	committed = true
	return nil
}

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	c.Tags = slices.Clone(e.Tags)
	if e.DeletedAt != nil {
		at := *e.DeletedAt
		c.DeletedAt = &at
	}
	return &c
}

func page[T any](items []T, params domain.PaginationParams) []T {
	offset := params.Offset()
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if params.PageSize > 0 && offset+params.PageSize < end {
		end = offset + params.PageSize
	}
	return items[offset:end]
}
