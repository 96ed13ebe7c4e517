package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"
)

type checkinRepository struct {
	DB *sql.DB
}

func NewCheckinRepository(db *sql.DB) domain.CheckinRepository {
	return &checkinRepository{DB: db}
}

func (r *checkinRepository) conn(ctx context.Context) dbtx {
	return connFromContext(ctx, r.DB)
}

func (r *checkinRepository) Insert(ctx context.Context, c *domain.Checkin) (bool, error) {
	query := `
		INSERT INTO checkins (event_id, user_id, checked_in_by, checked_in_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING id
	`
	err := r.conn(ctx).QueryRowContext(ctx, query, c.EventID, c.UserID, c.CheckedInBy, c.CheckedInAt).Scan(&c.ID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	existing := `
		SELECT id, checked_in_by, checked_in_at
		FROM checkins
		WHERE event_id = $1 AND user_id = $2
	`
	if err := r.conn(ctx).QueryRowContext(ctx, existing, c.EventID, c.UserID).
		Scan(&c.ID, &c.CheckedInBy, &c.CheckedInAt); err != nil {
		return false, err
	}
	return false, nil
}

func (r *checkinRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM checkins WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}
