package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventhub/internal/domain"
)

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{
		DB: db,
	}
}

func (r *ticketRepository) conn(ctx context.Context) dbtx {
	return connFromContext(ctx, r.DB)
}

func scanTicket(s rowScanner) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	var status string
	if err := s.Scan(&t.ID, &t.EventID, &t.UserID, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TicketStatus(status)
	return t, nil
}

func (r *ticketRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	query := `
		SELECT id, event_id, user_id, status, created_at, updated_at
		FROM tickets
		WHERE event_id = $1 AND user_id = $2
	`
	t, err := scanTicket(r.conn(ctx).QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Upsert inserts the ticket or moves an existing one to t.Status. The DO UPDATE branch only fires
// when the status actually changes, so an already-matching row returns nothing and is reported
// as UpsertUnchanged.
func (r *ticketRepository) Upsert(ctx context.Context, t *domain.Ticket) (domain.UpsertResult, error) {
	query := `
		INSERT INTO tickets (event_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, user_id) DO UPDATE
			SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
			WHERE tickets.status <> EXCLUDED.status
		RETURNING id, created_at, (xmax = 0) AS inserted
	`
	var inserted bool
	err := r.conn(ctx).QueryRowContext(ctx, query, t.EventID, t.UserID, string(t.Status), t.CreatedAt, t.UpdatedAt).
		Scan(&t.ID, &t.CreatedAt, &inserted)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		existing, err := r.GetByEventAndUser(ctx, t.EventID, t.UserID)
		if err != nil {
			return 0, err
		}
		*t = *existing
		return domain.UpsertUnchanged, nil
	}
	if inserted {
		return domain.UpsertCreated, nil
	}
	return domain.UpsertUpdated, nil
}

func (r *ticketRepository) TransitionStatus(ctx context.Context, eventID, userID string, from, to domain.TicketStatus, at time.Time) (*domain.Ticket, bool, error) {
	query := `
		UPDATE tickets SET status = $4, updated_at = $5
		WHERE event_id = $1 AND user_id = $2 AND status = $3
		RETURNING id, event_id, user_id, status, created_at, updated_at
	`
	t, err := scanTicket(r.conn(ctx).QueryRowContext(ctx, query, eventID, userID, string(from), string(to), at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return t, true, nil
}

func (r *ticketRepository) CountActiveByEventID(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE event_id = $1 AND status = 'active'`, eventID).Scan(&n)
	return n, err
}

// ListByUserID pages the user's tickets, leaving out tickets of soft-deleted events in both the
// page and the total.
func (r *ticketRepository) ListByUserID(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Ticket, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM tickets t
		JOIN events e ON e.id = t.event_id AND e.deleted_at IS NULL
		WHERE t.user_id = $1
	`
	var total int
	if err := r.conn(ctx).QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT t.id, t.event_id, t.user_id, t.status, t.created_at, t.updated_at
		FROM tickets t
		JOIN events e ON e.id = t.event_id AND e.deleted_at IS NULL
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC, t.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.conn(ctx).QueryContext(ctx, query, userID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}
