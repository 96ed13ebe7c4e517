package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

type ticketRepository struct {
	s *Store
}

func NewTicketRepository(s *Store) domain.TicketRepository {
	return &ticketRepository{s: s}
}

func (r *ticketRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.tickets[pairKey{eventID, userID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (r *ticketRepository) Upsert(ctx context.Context, t *domain.Ticket) (domain.UpsertResult, error) {
	defer r.s.lock(ctx)()
	key := pairKey{t.EventID, t.UserID}
	existing, ok := r.s.tickets[key]
	remember(ctx, r.s, r.s.tickets, key, clonePtr)
	if !ok {
		t.ID = uuid.NewString()
		stored := *t
		r.s.tickets[key] = &stored
		return domain.UpsertCreated, nil
	}
	if existing.Status == t.Status {
		*t = *existing
		return domain.UpsertUnchanged, nil
	}
	existing.Status = t.Status
	existing.UpdatedAt = t.UpdatedAt
	*t = *existing
	return domain.UpsertUpdated, nil
}

func (r *ticketRepository) TransitionStatus(ctx context.Context, eventID, userID string, from, to domain.TicketStatus, at time.Time) (*domain.Ticket, bool, error) {
	defer r.s.lock(ctx)()
	key := pairKey{eventID, userID}
	t, ok := r.s.tickets[key]
	if !ok || t.Status != from {
		return nil, false, nil
	}
	remember(ctx, r.s, r.s.tickets, key, clonePtr)
	t.Status = to
	t.UpdatedAt = at
	out := *t
	return &out, true, nil
}

func (r *ticketRepository) CountActiveByEventID(ctx context.Context, eventID string) (int, error) {
	defer r.s.lock(ctx)()
	n := 0
	for key, t := range r.s.tickets {
		if key.eventID == eventID && t.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r *ticketRepository) ListByUserID(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Ticket, int, error) {
	defer r.s.lock(ctx)()
	all := make([]*domain.Ticket, 0)
	for key, t := range r.s.tickets {
		if key.userID != userID {
			continue
		}
		if e, ok := r.s.events[key.eventID]; ok && !e.IsDeleted() {
			out := *t
			all = append(all, &out)
		}
	}
	slices.SortFunc(all, func(a, b *domain.Ticket) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return page(all, params), len(all), nil
}
