package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

// counterColumns maps counter fields to their columns. Only these names are ever interpolated into SQL.
var counterColumns = map[domain.CounterField]string{
	domain.CounterViews:         "views_count",
	domain.CounterRegistrations: "registration_count",
	domain.CounterCheckins:      "checkin_count",
}

const eventColumns = `id, owner_id, title, description, city, place, start_at, end_at, capacity, tags, status,
		views_count, registration_count, checkin_count, deleted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) conn(ctx context.Context) dbtx {
	return connFromContext(ctx, r.DB)
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var status string
	var deletedAt sql.NullTime
	err := s.Scan(
		&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.City, &e.Place, &e.StartAt, &e.EndAt,
		&e.Capacity, pq.Array(&e.Tags), &status,
		&e.Counters.Views, &e.Counters.Registrations, &e.Counters.Checkins,
		&deletedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	if deletedAt.Valid {
		e.DeletedAt = &deletedAt.Time
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (owner_id, title, description, city, place, start_at, end_at, capacity, tags, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return r.conn(ctx).QueryRowContext(ctx, query,
		e.OwnerID, e.Title, e.Description, e.City, e.Place, e.StartAt, e.EndAt,
		e.Capacity, pq.Array(e.Tags), string(e.Status), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.get(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *eventRepository) get(ctx context.Context, query, id string) (*domain.Event, error) {
	e, err := scanEvent(r.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) UpdateCapacity(ctx context.Context, id string, capacity int) (bool, error) {
	query := `
		UPDATE events SET capacity = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL AND registration_count <= $2
	`
	result, err := r.conn(ctx).ExecContext(ctx, query, id, capacity)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23514" {
			return false, fmt.Errorf("capacity %d: %w", capacity, domain.ErrInvalidInput)
		}
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

func (r *eventRepository) SetStatus(ctx context.Context, id string, status domain.EventStatus) error {
	query := `UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.conn(ctx).ExecContext(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE events SET deleted_at = $2, status = 'closed', updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.conn(ctx).ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TryAdjustCounter runs a single guarded UPDATE, so the check and the write cannot interleave
// with a concurrent adjustment of the same row.
func (r *eventRepository) TryAdjustCounter(ctx context.Context, id string, field domain.CounterField, delta int, guard domain.CounterGuard) (bool, error) {
	col, ok := counterColumns[field]
	if !ok {
		return false, fmt.Errorf("unknown counter %q", field)
	}
	where := []string{"id = $1"}
	if guard.RequireOpen {
		where = append(where, "status = 'published'", "deleted_at IS NULL")
	}
	if guard.BelowCapacity {
		where = append(where, col+" < capacity")
	}
	if guard.KeepNonNegative {
		where = append(where, col+" + $2 >= 0")
	}
	query := fmt.Sprintf(`UPDATE events SET %s = %s + $2 WHERE %s`, col, col, strings.Join(where, " AND "))
	result, err := r.conn(ctx).ExecContext(ctx, query, id, delta)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23514" {
			// The capacity check constraint rejected the row; same outcome as a failed guard.
			return false, nil
		}
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *eventRepository) SetCounter(ctx context.Context, id string, field domain.CounterField, value int) error {
	col, ok := counterColumns[field]
	if !ok {
		return fmt.Errorf("unknown counter %q", field)
	}
	query := fmt.Sprintf(`UPDATE events SET %s = $2 WHERE id = $1`, col)
	result, err := r.conn(ctx).ExecContext(ctx, query, id, value)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23514" {
			return fmt.Errorf("set %s to %d: %w", col, value, domain.ErrInvalidInput)
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
