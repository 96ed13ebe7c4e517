package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type eventService struct {
	ledger         domain.RegistrationLedger
	eventRepo      domain.EventRepository
	ticketRepo     domain.TicketRepository
	checkinRepo    domain.CheckinRepository
	feedbackRepo   domain.FeedbackRepository
	publisher      domain.TicketEventPublisher
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(
	ledger domain.RegistrationLedger,
	eventRepo domain.EventRepository,
	ticketRepo domain.TicketRepository,
	checkinRepo domain.CheckinRepository,
	feedbackRepo domain.FeedbackRepository,
	publisher domain.TicketEventPublisher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		ledger:         ledger,
		eventRepo:      eventRepo,
		ticketRepo:     ticketRepo,
		checkinRepo:    checkinRepo,
		feedbackRepo:   feedbackRepo,
		publisher:      publisher,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, p domain.Principal, in domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !p.HasRole(domain.RoleOrganizer, domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	in.Title = strings.TrimSpace(in.Title)
	in.City = strings.TrimSpace(in.City)
	switch {
	case in.Title == "":
		return nil, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	case in.City == "":
		return nil, fmt.Errorf("city is required: %w", domain.ErrInvalidInput)
	case in.Capacity < 0:
		return nil, fmt.Errorf("capacity must be positive: %w", domain.ErrInvalidInput)
	case !in.EndAt.IsZero() && in.EndAt.Before(in.StartAt):
		return nil, fmt.Errorf("end_at is before start_at: %w", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	event := domain.NewEvent(p.UserID, in.Title, in.Description, in.City, in.Place,
		in.StartAt, in.EndAt, in.Capacity, in.Tags, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.liveEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ok, err := s.eventRepo.TryAdjustCounter(ctx, eventID, domain.CounterViews, 1, domain.CounterGuard{})
	if err != nil {
		s.logger.WarnContext(ctx, "increment views failed", "event_id", eventID, "err", err)
	} else if ok {
		event.Counters.Views++
	}
	stars, err := s.feedbackRepo.StarCounts(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}
	return &domain.EventDetails{Event: event, Rating: domain.NewRatingSummary(stars)}, nil
}

func (s *eventService) UpdateCapacity(ctx context.Context, p domain.Principal, eventID string, capacity int) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if capacity < 1 {
		return nil, fmt.Errorf("capacity must be at least 1: %w", domain.ErrInvalidInput)
	}
	if _, err := s.managedEvent(ctx, p, eventID); err != nil {
		return nil, err
	}
	ok, err := s.eventRepo.UpdateCapacity(ctx, eventID, capacity)
	if err != nil {
		return nil, fmt.Errorf("update capacity: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("capacity %d is below current registrations: %w", capacity, domain.ErrInvalidInput)
	}
	return s.liveEvent(ctx, eventID)
}

func (s *eventService) PublishEvent(ctx context.Context, p domain.Principal, eventID string) error {
	return s.setStatus(ctx, p, eventID, domain.EventStatusPublished)
}

func (s *eventService) CloseEvent(ctx context.Context, p domain.Principal, eventID string) error {
	return s.setStatus(ctx, p, eventID, domain.EventStatusClosed)
}

func (s *eventService) setStatus(ctx context.Context, p domain.Principal, eventID string, status domain.EventStatus) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.managedEvent(ctx, p, eventID); err != nil {
		return err
	}
	if err := s.eventRepo.SetStatus(ctx, eventID, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("set event status: %w", err)
	}
	return nil
}

func (s *eventService) DeleteEvent(ctx context.Context, p domain.Principal, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.managedEvent(ctx, p, eventID); err != nil {
		return err
	}
	if err := s.eventRepo.SoftDelete(ctx, eventID, time.Now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) CheckInAttendee(ctx context.Context, p domain.Principal, eventID, userID string) (*domain.Checkin, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.managedEvent(ctx, p, eventID); err != nil {
		return nil, false, err
	}
	checkin, created, err := s.ledger.CheckIn(ctx, eventID, userID, p.UserID)
	if err != nil {
		return nil, false, err
	}
	if created {
		evt := domain.TicketEvent{
			Type:       domain.TicketEventCheckedIn,
			EventID:    eventID,
			UserID:     userID,
			OccurredAt: checkin.CheckedInAt,
		}
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.WarnContext(ctx, "publish ticket event failed", "type", evt.Type, "event_id", eventID, "err", err)
		}
	}
	return checkin, created, nil
}

func (s *eventService) EventStats(ctx context.Context, p domain.Principal, eventID string) (*domain.EventStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.managedEvent(ctx, p, eventID)
	if err != nil {
		return nil, err
	}
	active, err := s.ticketRepo.CountActiveByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count active tickets: %w", err)
	}
	checkedIn, err := s.checkinRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count checkins: %w", err)
	}
	stars, err := s.feedbackRepo.StarCounts(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}

	stats := &domain.EventStats{
		Registered: active,
		CheckedIn:  checkedIn,
		Rating:     domain.NewRatingSummary(stars),
		Reconciliation: &domain.CounterReconciliation{
			EventID:       eventID,
			StoredCount:   event.Counters.Registrations,
			ActiveTickets: active,
		},
	}
	if active > 0 {
		stats.Conversion = math.Round(float64(checkedIn)/float64(active)*100) / 100
	}
	return stats, nil
}

func (s *eventService) ReconcileCounter(ctx context.Context, p domain.Principal, eventID string) (*domain.CounterReconciliation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.managedEvent(ctx, p, eventID); err != nil {
		return nil, err
	}
	return s.ledger.Reconcile(ctx, eventID)
}

func (s *eventService) liveEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
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

// managedEvent loads a live event the principal owns or administers.
func (s *eventService) managedEvent(ctx context.Context, p domain.Principal, eventID string) (*domain.Event, error) {
	event, err := s.liveEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !p.CanManage(event) {
		return nil, domain.ErrForbidden
	}
	return event, nil
}
