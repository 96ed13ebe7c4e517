package memory

import (
	"context"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

type checkinRepository struct {
	s *Store
}

func NewCheckinRepository(s *Store) domain.CheckinRepository {
	return &checkinRepository{s: s}
}

func (r *checkinRepository) Insert(ctx context.Context, c *domain.Checkin) (bool, error) {
	defer r.s.lock(ctx)()
	key := pairKey{c.EventID, c.UserID}
	if existing, ok := r.s.checkins[key]; ok {
		*c = *existing
		return false, nil
	}
	c.ID = uuid.NewString()
	remember(ctx, r.s, r.s.checkins, key, clonePtr)
	stored := *c
	r.s.checkins[key] = &stored
	return true, nil
}

func (r *checkinRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	defer r.s.lock(ctx)()
	n := 0
	for key := range r.s.checkins {
		if key.eventID == eventID {
			n++
		}
	}
	return n, nil
}
