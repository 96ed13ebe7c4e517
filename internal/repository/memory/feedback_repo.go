package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

type feedbackRepository struct {
	s *Store
}

func NewFeedbackRepository(s *Store) domain.FeedbackRepository {
	return &feedbackRepository{s: s}
}

func (r *feedbackRepository) Upsert(ctx context.Context, f *domain.Feedback) (domain.UpsertResult, error) {
	if f.Rating < domain.MinRating || f.Rating > domain.MaxRating {
		return 0, fmt.Errorf("rating %d: %w", f.Rating, domain.ErrInvalidInput)
	}
	defer r.s.lock(ctx)()
	key := pairKey{f.EventID, f.UserID}
	remember(ctx, r.s, r.s.feedback, key, clonePtr)
	if existing, ok := r.s.feedback[key]; ok {
		existing.Rating = f.Rating
		existing.Text = f.Text
		existing.UpdatedAt = f.UpdatedAt
		*f = *existing
		return domain.UpsertUpdated, nil
	}
	f.ID = uuid.NewString()
	stored := *f
	r.s.feedback[key] = &stored
	return domain.UpsertCreated, nil
}

func (r *feedbackRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Feedback, int, error) {
	defer r.s.lock(ctx)()
	all := make([]*domain.Feedback, 0)
	for key, f := range r.s.feedback {
		if key.eventID == eventID {
			out := *f
			all = append(all, &out)
		}
	}
	slices.SortFunc(all, func(a, b *domain.Feedback) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return page(all, params), len(all), nil
}

func (r *feedbackRepository) StarCounts(ctx context.Context, eventID string) ([domain.MaxRating + 1]int, error) {
	defer r.s.lock(ctx)()
	var stars [domain.MaxRating + 1]int
	for key, f := range r.s.feedback {
		if key.eventID == eventID {
			stars[f.Rating]++
		}
	}
	return stars, nil
}
