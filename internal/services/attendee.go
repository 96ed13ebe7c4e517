package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

type attendeeService struct {
	ledger         domain.RegistrationLedger
	eventRepo      domain.EventRepository
	ticketRepo     domain.TicketRepository
	feedbackRepo   domain.FeedbackRepository
	emailService   domain.EmailService
	publisher      domain.TicketEventPublisher
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAttendeeService creates an AttendeeService. Notifications (broker and email) are best-effort:
// their failures are logged and never undo a ledger operation.
func NewAttendeeService(
	ledger domain.RegistrationLedger,
	eventRepo domain.EventRepository,
	ticketRepo domain.TicketRepository,
	feedbackRepo domain.FeedbackRepository,
	emailService domain.EmailService,
	publisher domain.TicketEventPublisher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		ledger:         ledger,
		eventRepo:      eventRepo,
		ticketRepo:     ticketRepo,
		feedbackRepo:   feedbackRepo,
		emailService:   emailService,
		publisher:      publisher,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) RegisterForEvent(ctx context.Context, p domain.Principal, eventID string) (*domain.Ticket, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ticket, registered, err := s.ledger.Register(ctx, eventID, p.UserID)
	if err != nil {
		return nil, false, err
	}
	if registered {
		s.notify(ctx, domain.TicketEventRegistered, p, ticket)
	}
	return ticket, registered, nil
}

func (s *attendeeService) CancelRegistration(ctx context.Context, p domain.Principal, eventID string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ticket, err := s.ledger.Cancel(ctx, eventID, p.UserID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, domain.TicketEventCancelled, p, ticket)
	return ticket, nil
}

// notify publishes the ticket event and emails the principal.
func (s *attendeeService) notify(ctx context.Context, kind string, p domain.Principal, ticket *domain.Ticket) {
	evt := domain.TicketEvent{
		Type:       kind,
		EventID:    ticket.EventID,
		UserID:     ticket.UserID,
		TicketID:   ticket.ID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "publish ticket event failed", "type", kind, "ticket_id", ticket.ID, "err", err)
	}

	if p.Email == "" {
		return
	}
	event, err := s.eventRepo.GetByID(ctx, ticket.EventID)
	if err != nil {
		s.logger.WarnContext(ctx, "load event for ticket email failed", "event_id", ticket.EventID, "err", err)
		return
	}
	data := &domain.TicketEmailData{
		Email:      p.Email,
		TicketID:   ticket.ID,
		EventTitle: event.Title,
		EventCity:  event.City,
		EventPlace: event.Place,
		StartAt:    event.StartAt,
	}
	send := s.emailService.SendTicketConfirmation
	if kind == domain.TicketEventCancelled {
		send = s.emailService.SendTicketCancellation
	}
	if err := send(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "ticket email failed", "type", kind, "ticket_id", ticket.ID, "err", err)
	}
}

func (s *attendeeService) ListMyTickets(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.TicketWithEvent, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	tickets, total, err := s.ticketRepo.ListByUserID(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}

	// Fetch events one by one (N+1); pages are small.
	eventsByID := make(map[string]*domain.Event)
	result := make([]*domain.TicketWithEvent, 0, len(tickets))
	for _, t := range tickets {
		ev, ok := eventsByID[t.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, t.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, 0, fmt.Errorf("get event for ticket: %w", err)
			}
			eventsByID[t.EventID] = ev
		}
		if ev.IsDeleted() {
			continue
		}
		result = append(result, &domain.TicketWithEvent{Ticket: t, Event: ev})
	}
	return result, total, nil
}

func (s *attendeeService) LeaveFeedback(ctx context.Context, p domain.Principal, eventID string, rating int, text string) (*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.ledger.LeaveFeedback(ctx, eventID, p.UserID, rating, text)
}

func (s *attendeeService) ListEventFeedback(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Feedback, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.ensureLive(ctx, eventID); err != nil {
		return nil, 0, err
	}
	items, total, err := s.feedbackRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}
	return items, total, nil
}

func (s *attendeeService) FeedbackSummary(ctx context.Context, eventID string) (*domain.RatingSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.ensureLive(ctx, eventID); err != nil {
		return nil, err
	}
	stars, err := s.feedbackRepo.StarCounts(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}
	return domain.NewRatingSummary(stars), nil
}

func (s *attendeeService) ensureLive(ctx context.Context, eventID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.IsDeleted() {
		return domain.ErrEventNotFound
	}
	return nil
}
