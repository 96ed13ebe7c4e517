package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

type eventRepository struct {
	s *Store
}

func NewEventRepository(s *Store) domain.EventRepository {
	return &eventRepository{s: s}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	defer r.s.lock(ctx)()
	e.ID = uuid.NewString()
	remember(ctx, r.s, r.s.events, e.ID, copyEvent)
	r.s.events[e.ID] = copyEvent(e)
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	defer r.s.lock(ctx)()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEvent(e), nil
}

// GetByIDForUpdate is GetByID; holding the store lock already excludes concurrent writers.
func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *eventRepository) UpdateCapacity(ctx context.Context, id string, capacity int) (bool, error) {
	if capacity < 1 {
		return false, fmt.Errorf("capacity %d: %w", capacity, domain.ErrInvalidInput)
	}
	defer r.s.lock(ctx)()
	e, ok := r.s.events[id]
	if !ok || e.IsDeleted() || e.Counters.Registrations > capacity {
		return false, nil
	}
	remember(ctx, r.s, r.s.events, id, copyEvent)
	e.Capacity = capacity
	e.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *eventRepository) SetStatus(ctx context.Context, id string, status domain.EventStatus) error {
	defer r.s.lock(ctx)()
	e, ok := r.s.events[id]
	if !ok || e.IsDeleted() {
		return domain.ErrNotFound
	}
	remember(ctx, r.s, r.s.events, id, copyEvent)
	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *eventRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	defer r.s.lock(ctx)()
	e, ok := r.s.events[id]
	if !ok || e.IsDeleted() {
		return domain.ErrNotFound
	}
	remember(ctx, r.s, r.s.events, id, copyEvent)
	e.DeletedAt = &at
	e.Status = domain.EventStatusClosed
	e.UpdatedAt = at
	return nil
}

func (r *eventRepository) TryAdjustCounter(ctx context.Context, id string, field domain.CounterField, delta int, guard domain.CounterGuard) (bool, error) {
	if _, ok := counterNames[field]; !ok {
		return false, fmt.Errorf("unknown counter %q", field)
	}
	defer r.s.lock(ctx)()
	e, ok := r.s.events[id]
	if !ok || !guard.Matches(e, field, delta) {
		return false, nil
	}
	remember(ctx, r.s, r.s.events, id, copyEvent)
	e.Counters.Add(field, delta)
	return true, nil
}

func (r *eventRepository) SetCounter(ctx context.Context, id string, field domain.CounterField, value int) error {
	if _, ok := counterNames[field]; !ok {
		return fmt.Errorf("unknown counter %q", field)
	}
	defer r.s.lock(ctx)()
	e, ok := r.s.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	remember(ctx, r.s, r.s.events, id, copyEvent)
	e.Counters.Add(field, value-e.Counters.Get(field))
	return nil
}

var counterNames = map[domain.CounterField]struct{}{
	domain.CounterViews:         {},
	domain.CounterRegistrations: {},
	domain.CounterCheckins:      {},
}
