package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"eventhub/internal/domain"
	"eventhub/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// ledgerFixture wires the ledger over a fresh in-memory store.
type ledgerFixture struct {
	store    *memory.Store
	events   domain.EventRepository
	tickets  domain.TicketRepository
	checkins domain.CheckinRepository
	feedback domain.FeedbackRepository
	ledger   domain.RegistrationLedger
}

func newLedgerFixture() *ledgerFixture {
	s := memory.NewStore()
	f := &ledgerFixture{
		store:    s,
		events:   memory.NewEventRepository(s),
		tickets:  memory.NewTicketRepository(s),
		checkins: memory.NewCheckinRepository(s),
		feedback: memory.NewFeedbackRepository(s),
	}
	f.ledger = NewRegistrationLedger(s, f.events, f.tickets, f.checkins, f.feedback, testLogger)
	return f
}

func (f *ledgerFixture) seedEvent(t *testing.T, capacity int, status domain.EventStatus) *domain.Event {
	t.Helper()
	now := time.Now().UTC()
	e := domain.NewEvent("owner-1", "Go Meetup", "", "Almaty", "Hub", now.Add(24*time.Hour), now.Add(26*time.Hour), capacity, nil, now, now)
	e.Status = status
	require.NoError(t, f.events.Create(context.Background(), e))
	return e
}

func (f *ledgerFixture) counters(t *testing.T, eventID string) domain.EventCounters {
	t.Helper()
	e, err := f.events.GetByID(context.Background(), eventID)
	require.NoError(t, err)
	return e.Counters
}

func (f *ledgerFixture) activeTickets(t *testing.T, eventID string) int {
	t.Helper()
	n, err := f.tickets.CountActiveByEventID(context.Background(), eventID)
	require.NoError(t, err)
	return n
}
