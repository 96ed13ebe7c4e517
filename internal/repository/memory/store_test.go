package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(t *testing.T, s *Store, capacity int, status domain.EventStatus) *domain.Event {
	t.Helper()
	now := time.Now().UTC()
	e := domain.NewEvent("owner-1", "Meetup", "", "Almaty", "", now, now.Add(time.Hour), capacity, nil, now, now)
	e.Status = status
	require.NoError(t, NewEventRepository(s).Create(context.Background(), e))
	return e
}

func TestStore_WithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s, 5, domain.EventStatusPublished)
	events := NewEventRepository(s)
	tickets := NewTicketRepository(s)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := events.TryAdjustCounter(ctx, e.ID, domain.CounterRegistrations, 1, domain.CounterGuard{RequireOpen: true, BelowCapacity: true})
		require.NoError(t, err)
		require.True(t, ok)
		_, err = tickets.Upsert(ctx, domain.NewTicket(e.ID, "user-1", domain.TicketStatusActive, time.Now(), time.Now()))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Counters.Registrations)
	_, err = tickets.GetByEventAndUser(ctx, e.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_WithinTx_RollbackRestoresPriorValues(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s, 5, domain.EventStatusPublished)
	events := NewEventRepository(s)
	tickets := NewTicketRepository(s)
	feedback := NewFeedbackRepository(s)
	now := time.Now().UTC()

	existing := domain.NewTicket(e.ID, "user-1", domain.TicketStatusActive, now, now)
	_, err := tickets.Upsert(ctx, existing)
	require.NoError(t, err)
	require.NoError(t, events.SetCounter(ctx, e.ID, domain.CounterRegistrations, 1))
	_, err = feedback.Upsert(ctx, &domain.Feedback{EventID: e.ID, UserID: "user-1", Rating: 4, Text: "good", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(ctx context.Context) error {
		_, applied, err := tickets.TransitionStatus(ctx, e.ID, "user-1", domain.TicketStatusActive, domain.TicketStatusCancelled, now)
		require.NoError(t, err)
		require.True(t, applied)
		_, err = tickets.Upsert(ctx, domain.NewTicket(e.ID, "user-2", domain.TicketStatusActive, now, now))
		require.NoError(t, err)
		ok, err := events.TryAdjustCounter(ctx, e.ID, domain.CounterRegistrations, 1, domain.CounterGuard{})
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, events.SoftDelete(ctx, e.ID, now))
		_, err = feedback.Upsert(ctx, &domain.Feedback{EventID: e.ID, UserID: "user-1", Rating: 1, Text: "bad", CreatedAt: now, UpdatedAt: now})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Counters.Registrations)
	assert.Equal(t, domain.EventStatusPublished, got.Status)
	assert.Nil(t, got.DeletedAt)

	ticket, err := tickets.GetByEventAndUser(ctx, e.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusActive, ticket.Status)
	assert.Equal(t, existing.ID, ticket.ID)
	_, err = tickets.GetByEventAndUser(ctx, e.ID, "user-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stars, err := feedback.StarCounts(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stars[4])
	assert.Equal(t, 0, stars[1])

	// The journal is cleared, so a later commit keeps its writes.
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context) error {
		_, err := events.TryAdjustCounter(ctx, e.ID, domain.CounterViews, 1, domain.CounterGuard{})
		return err
	}))
	got, err = events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Counters.Views)
}

func TestStore_WithinTx_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s, 5, domain.EventStatusPublished)
	events := NewEventRepository(s)

	assert.Panics(t, func() {
		_ = s.WithinTx(ctx, func(ctx context.Context) error {
			_, _ = events.TryAdjustCounter(ctx, e.ID, domain.CounterCheckins, 1, domain.CounterGuard{})
			panic("boom")
		})
	})

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Counters.Checkins)
}

func TestStore_WithinTx_NestedJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s, 5, domain.EventStatusPublished)
	events := NewEventRepository(s)

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			_, err := events.TryAdjustCounter(ctx, e.ID, domain.CounterViews, 1, domain.CounterGuard{})
			return err
		})
	})
	require.NoError(t, err)

	got, err := events.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Counters.Views)
}

func TestEventRepository_TryAdjustCounter(t *testing.T) {
	ctx := context.Background()
	open := domain.CounterGuard{RequireOpen: true, BelowCapacity: true}

	tests := []struct {
		name     string
		capacity int
		status   domain.EventStatus
		deleted  bool
		preset   int
		field    domain.CounterField
		delta    int
		guard    domain.CounterGuard
		want     bool
		wantVal  int
	}{
		{name: "increment below capacity", capacity: 2, status: domain.EventStatusPublished, preset: 1, field: domain.CounterRegistrations, delta: 1, guard: open, want: true, wantVal: 2},
		{name: "at capacity", capacity: 2, status: domain.EventStatusPublished, preset: 2, field: domain.CounterRegistrations, delta: 1, guard: open, want: false, wantVal: 2},
		{name: "draft event", capacity: 2, status: domain.EventStatusDraft, field: domain.CounterRegistrations, delta: 1, guard: open, want: false, wantVal: 0},
		{name: "deleted event", capacity: 2, status: domain.EventStatusPublished, deleted: true, field: domain.CounterRegistrations, delta: 1, guard: open, want: false, wantVal: 0},
		{name: "decrement at zero", capacity: 2, status: domain.EventStatusPublished, field: domain.CounterRegistrations, delta: -1, guard: domain.CounterGuard{KeepNonNegative: true}, want: false, wantVal: 0},
		{name: "decrement on deleted event", capacity: 2, status: domain.EventStatusPublished, deleted: true, preset: 1, field: domain.CounterRegistrations, delta: -1, guard: domain.CounterGuard{KeepNonNegative: true}, want: true, wantVal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			e := seedEvent(t, s, tt.capacity, tt.status)
			repo := NewEventRepository(s)
			if tt.preset > 0 {
				require.NoError(t, repo.SetCounter(ctx, e.ID, tt.field, tt.preset))
			}
			if tt.deleted {
				require.NoError(t, repo.SoftDelete(ctx, e.ID, time.Now().UTC()))
			}

			got, err := repo.TryAdjustCounter(ctx, e.ID, tt.field, tt.delta, tt.guard)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			stored, err := repo.GetByID(ctx, e.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVal, stored.Counters.Get(tt.field))
		})
	}

	t.Run("missing event never matches", func(t *testing.T) {
		ok, err := NewEventRepository(NewStore()).TryAdjustCounter(ctx, "nope", domain.CounterViews, 1, domain.CounterGuard{})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEventRepository_UpdateCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	e := seedEvent(t, s, 5, domain.EventStatusPublished)
	repo := NewEventRepository(s)
	require.NoError(t, repo.SetCounter(ctx, e.ID, domain.CounterRegistrations, 3))

	ok, err := repo.UpdateCapacity(ctx, e.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.UpdateCapacity(ctx, e.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.UpdateCapacity(ctx, e.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTicketRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(NewStore())
	now := time.Now().UTC()

	first := domain.NewTicket("ev-1", "user-1", domain.TicketStatusActive, now, now)
	res, err := repo.Upsert(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertCreated, res)
	require.NotEmpty(t, first.ID)

	again := domain.NewTicket("ev-1", "user-1", domain.TicketStatusActive, now, now)
	res, err = repo.Upsert(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertUnchanged, res)
	assert.Equal(t, first.ID, again.ID)

	_, applied, err := repo.TransitionStatus(ctx, "ev-1", "user-1", domain.TicketStatusActive, domain.TicketStatusCancelled, now)
	require.NoError(t, err)
	require.True(t, applied)

	back := domain.NewTicket("ev-1", "user-1", domain.TicketStatusActive, now, now)
	res, err = repo.Upsert(ctx, back)
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertUpdated, res)
	assert.Equal(t, first.ID, back.ID)

	n, err := repo.CountActiveByEventID(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTicketRepository_ListByUserID(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := NewTicketRepository(s)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	evs := make([]*domain.Event, 0, 4)
	for range 4 {
		evs = append(evs, seedEvent(t, s, 5, domain.EventStatusPublished))
	}
	for i, ev := range evs {
		at := base.Add(time.Duration(i) * time.Hour)
		_, err := repo.Upsert(ctx, domain.NewTicket(ev.ID, "user-1", domain.TicketStatusActive, at, at))
		require.NoError(t, err)
	}
	_, err := repo.Upsert(ctx, domain.NewTicket(evs[0].ID, "user-2", domain.TicketStatusActive, base, base))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, domain.NewTicket("ev-gone", "user-1", domain.TicketStatusActive, base, base))
	require.NoError(t, err)
	require.NoError(t, NewEventRepository(s).SoftDelete(ctx, evs[3].ID, time.Now().UTC()))

	got, total, err := repo.ListByUserID(ctx, "user-1", domain.PaginationParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, evs[2].ID, got[0].EventID)
	assert.Equal(t, evs[1].ID, got[1].EventID)

	got, _, err = repo.ListByUserID(ctx, "user-1", domain.PaginationParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, evs[0].ID, got[0].EventID)

	got, _, err = repo.ListByUserID(ctx, "user-1", domain.PaginationParams{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCheckinRepository_Insert(t *testing.T) {
	ctx := context.Background()
	repo := NewCheckinRepository(NewStore())
	now := time.Now().UTC()

	created, err := repo.Insert(ctx, &domain.Checkin{EventID: "ev-1", UserID: "user-1", CheckedInBy: "org-1", CheckedInAt: now})
	require.NoError(t, err)
	assert.True(t, created)

	dup := &domain.Checkin{EventID: "ev-1", UserID: "user-1", CheckedInBy: "org-2", CheckedInAt: now.Add(time.Minute)}
	created, err = repo.Insert(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "org-1", dup.CheckedInBy)

	n, err := repo.CountByEventID(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFeedbackRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFeedbackRepository(NewStore())
	now := time.Now().UTC()

	res, err := repo.Upsert(ctx, &domain.Feedback{EventID: "ev-1", UserID: "user-1", Rating: 2, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertCreated, res)

	res, err = repo.Upsert(ctx, &domain.Feedback{EventID: "ev-1", UserID: "user-1", Rating: 5, Text: "better", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertUpdated, res)

	_, err = repo.Upsert(ctx, &domain.Feedback{EventID: "ev-1", UserID: "user-2", Rating: 3, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	stars, err := repo.StarCounts(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, [domain.MaxRating + 1]int{0, 0, 0, 1, 0, 1}, stars)

	_, total, err := repo.ListByEventID(ctx, "ev-1", domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, err = repo.Upsert(ctx, &domain.Feedback{EventID: "ev-1", UserID: "user-3", Rating: 6})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
