package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

// errAlreadyActive aborts the registration unit after the counter was reserved for a user
// who already holds an active ticket, so the reservation is rolled back.
var errAlreadyActive = errors.New("ticket already active")

// errSlotRejected marks a registration whose guarded increment did not match.
var errSlotRejected = errors.New("registration slot rejected")

var (
	admitGuard   = domain.CounterGuard{RequireOpen: true, BelowCapacity: true}
	releaseGuard = domain.CounterGuard{KeepNonNegative: true}
)

type registrationLedger struct {
	tx           domain.Transactor
	eventRepo    domain.EventRepository
	ticketRepo   domain.TicketRepository
	checkinRepo  domain.CheckinRepository
	feedbackRepo domain.FeedbackRepository
	logger       *slog.Logger
}

// NewRegistrationLedger returns a RegistrationLedger whose operations each run as one unit of tx.
func NewRegistrationLedger(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	ticketRepo domain.TicketRepository,
	checkinRepo domain.CheckinRepository,
	feedbackRepo domain.FeedbackRepository,
	logger *slog.Logger,
) domain.RegistrationLedger {
	return &registrationLedger{
		tx:           tx,
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		checkinRepo:  checkinRepo,
		feedbackRepo: feedbackRepo,
		logger:       logger,
	}
}

func (l *registrationLedger) Register(ctx context.Context, eventID, userID string) (*domain.Ticket, bool, error) {
	var ticket *domain.Ticket
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := l.eventRepo.TryAdjustCounter(ctx, eventID, domain.CounterRegistrations, 1, admitGuard)
		if err != nil {
			return fmt.Errorf("reserve slot: %w", err)
		}
		if !ok {
			return errSlotRejected
		}
		now := time.Now().UTC()
		t := domain.NewTicket(eventID, userID, domain.TicketStatusActive, now, now)
		res, err := l.ticketRepo.Upsert(ctx, t)
		if err != nil {
			return fmt.Errorf("upsert ticket: %w", err)
		}
		ticket = t
		if res == domain.UpsertUnchanged {
			return errAlreadyActive
		}
		return nil
	})
	switch {
	case err == nil:
		return ticket, true, nil
	case errors.Is(err, errAlreadyActive):
		return ticket, false, nil
	case errors.Is(err, errSlotRejected):
		return l.rejectRegistration(ctx, eventID, userID)
	default:
		return nil, false, err
	}
}

// rejectRegistration explains why the guarded increment did not match. A user already holding an
// active ticket gets it back as a no-op success even when the event has since filled up or closed.
func (l *registrationLedger) rejectRegistration(ctx context.Context, eventID, userID string) (*domain.Ticket, bool, error) {
	existing, err := l.ticketRepo.GetByEventAndUser(ctx, eventID, userID)
	if err == nil && existing.IsActive() {
		return existing, false, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get ticket: %w", err)
	}

	event, err := l.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrEventNotFound
		}
		return nil, false, fmt.Errorf("get event: %w", err)
	}
	if event.IsDeleted() {
		return nil, false, domain.ErrEventNotFound
	}
	if event.Status != domain.EventStatusPublished {
		return nil, false, domain.ErrEventNotOpen
	}
	return nil, false, domain.ErrEventFull
}

// Cancel locks the event row before touching the ticket so it takes locks in the same order as
// Register, whose guarded increment locks the event row first.
func (l *registrationLedger) Cancel(ctx context.Context, eventID, userID string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := l.eventRepo.GetByIDForUpdate(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotRegistered
			}
			return fmt.Errorf("lock event: %w", err)
		}
		t, applied, err := l.ticketRepo.TransitionStatus(ctx, eventID, userID,
			domain.TicketStatusActive, domain.TicketStatusCancelled, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("cancel ticket: %w", err)
		}
		if !applied {
			return domain.ErrNotRegistered
		}
		ticket = t

		ok, err := l.eventRepo.TryAdjustCounter(ctx, eventID, domain.CounterRegistrations, -1, releaseGuard)
		if err != nil {
			return fmt.Errorf("release slot: %w", err)
		}
		if !ok {
			l.logger.WarnContext(ctx, "registration counter already at zero on cancel, reconciling",
				"event_id", eventID, "user_id", userID)
			if _, err := l.reconcile(ctx, eventID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (l *registrationLedger) CheckIn(ctx context.Context, eventID, userID, checkedInBy string) (*domain.Checkin, bool, error) {
	var (
		checkin *domain.Checkin
		created bool
	)
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := l.liveEvent(ctx, eventID); err != nil {
			return err
		}
		t, err := l.ticketRepo.GetByEventAndUser(ctx, eventID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotRegistered
			}
			return fmt.Errorf("get ticket: %w", err)
		}
		if !t.IsActive() {
			return domain.ErrNotRegistered
		}

		c := &domain.Checkin{
			EventID:     eventID,
			UserID:      userID,
			CheckedInBy: checkedInBy,
			CheckedInAt: time.Now().UTC(),
		}
		created, err = l.checkinRepo.Insert(ctx, c)
		if err != nil {
			return fmt.Errorf("insert checkin: %w", err)
		}
		checkin = c
		if !created {
			return nil
		}
		ok, err := l.eventRepo.TryAdjustCounter(ctx, eventID, domain.CounterCheckins, 1, domain.CounterGuard{})
		if err != nil {
			return fmt.Errorf("increment checkins: %w", err)
		}
		if !ok {
			return domain.ErrEventNotFound
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return checkin, created, nil
}

func (l *registrationLedger) LeaveFeedback(ctx context.Context, eventID, userID string, rating int, text string) (*domain.Feedback, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, fmt.Errorf("rating must be between %d and %d: %w", domain.MinRating, domain.MaxRating, domain.ErrInvalidInput)
	}
	if _, err := l.liveEvent(ctx, eventID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	f := &domain.Feedback{
		EventID:   eventID,
		UserID:    userID,
		Rating:    rating,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := l.feedbackRepo.Upsert(ctx, f); err != nil {
		return nil, fmt.Errorf("upsert feedback: %w", err)
	}
	return f, nil
}

func (l *registrationLedger) Reconcile(ctx context.Context, eventID string) (*domain.CounterReconciliation, error) {
	var out *domain.CounterReconciliation
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := l.reconcile(ctx, eventID)
		out = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// reconcile must run inside a unit; the event row stays locked until the unit ends.
func (l *registrationLedger) reconcile(ctx context.Context, eventID string) (*domain.CounterReconciliation, error) {
	event, err := l.eventRepo.GetByIDForUpdate(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("lock event: %w", err)
	}
	active, err := l.ticketRepo.CountActiveByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count active tickets: %w", err)
	}
	r := &domain.CounterReconciliation{
		EventID:       eventID,
		StoredCount:   event.Counters.Registrations,
		ActiveTickets: active,
	}
	if r.StoredCount == active {
		return r, nil
	}
	if err := l.eventRepo.SetCounter(ctx, eventID, domain.CounterRegistrations, active); err != nil {
		return nil, fmt.Errorf("set registration counter: %w", err)
	}
	r.Corrected = true
	l.logger.WarnContext(ctx, "registration counter drift corrected",
		"event_id", eventID, "stored", r.StoredCount, "active_tickets", active)
	return r, nil
}

// liveEvent returns the event unless it is missing or soft-deleted.
func (l *registrationLedger) liveEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := l.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.IsDeleted() {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}
