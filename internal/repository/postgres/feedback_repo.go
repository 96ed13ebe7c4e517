package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"eventhub/internal/domain"
)

type feedbackRepository struct {
	DB *sql.DB
}

func NewFeedbackRepository(db *sql.DB) domain.FeedbackRepository {
	return &feedbackRepository{DB: db}
}

func (r *feedbackRepository) conn(ctx context.Context) dbtx {
	return connFromContext(ctx, r.DB)
}

func (r *feedbackRepository) Upsert(ctx context.Context, f *domain.Feedback) (domain.UpsertResult, error) {
	query := `
		INSERT INTO feedback (event_id, user_id, rating, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, user_id) DO UPDATE
			SET rating = EXCLUDED.rating, text = EXCLUDED.text, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS inserted
	`
	var inserted bool
	err := r.conn(ctx).QueryRowContext(ctx, query, f.EventID, f.UserID, f.Rating, f.Text, f.CreatedAt, f.UpdatedAt).
		Scan(&f.ID, &f.CreatedAt, &inserted)
	if err != nil {
		return 0, err
	}
	if inserted {
		return domain.UpsertCreated, nil
	}
	return domain.UpsertUpdated, nil
}

func (r *feedbackRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Feedback, int, error) {
	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT id, event_id, user_id, rating, text, created_at, updated_at
		FROM feedback
		WHERE event_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.conn(ctx).QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.Feedback, 0)
	for rows.Next() {
		f := &domain.Feedback{}
		if err := rows.Scan(&f.ID, &f.EventID, &f.UserID, &f.Rating, &f.Text, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, rows.Err()
}

func (r *feedbackRepository) StarCounts(ctx context.Context, eventID string) ([domain.MaxRating + 1]int, error) {
	var stars [domain.MaxRating + 1]int
	rows, err := r.conn(ctx).QueryContext(ctx,
		`SELECT rating, COUNT(*) FROM feedback WHERE event_id = $1 GROUP BY rating`, eventID)
	if err != nil {
		return stars, err
	}
	defer rows.Close()
	for rows.Next() {
		var rating, n int
		if err := rows.Scan(&rating, &n); err != nil {
			return stars, err
		}
		if rating < domain.MinRating || rating > domain.MaxRating {
			return stars, fmt.Errorf("rating %d out of range", rating)
		}
		stars[rating] = n
	}
	return stars, rows.Err()
}
