package domain

import (
	"context"
	"time"
)

// TicketWithEvent bundles a ticket with its related event.
type TicketWithEvent struct {
	Ticket *Ticket `json:"ticket"`
	Event  *Event  `json:"event"`
}

// AttendeeService defines attendee-facing operations such as event registration.
type AttendeeService interface {
	// RegisterForEvent registers the principal for the event. Returns (ticket, registered, err):
	// registered is false if the principal already held an active ticket.
	RegisterForEvent(ctx context.Context, p Principal, eventID string) (*Ticket, bool, error)
	CancelRegistration(ctx context.Context, p Principal, eventID string) (*Ticket, error)
	ListMyTickets(ctx context.Context, userID string, params PaginationParams) ([]*TicketWithEvent, int, error)
	LeaveFeedback(ctx context.Context, p Principal, eventID string, rating int, text string) (*Feedback, error)
	ListEventFeedback(ctx context.Context, eventID string, params PaginationParams) ([]*Feedback, int, error)
	FeedbackSummary(ctx context.Context, eventID string) (*RatingSummary, error)
}

// EventDetails is an event together with its rating summary.
type EventDetails struct {
	Event  *Event         `json:"event"`
	Rating *RatingSummary `json:"rating"`
}

// EventStats reports attendance figures for an event.
// swagger:model EventStats
type EventStats struct {
	Registered     int                    `json:"registered"`
	CheckedIn      int                    `json:"checked_in"`
	Conversion     float64                `json:"conversion"`
	Rating         *RatingSummary         `json:"rating"`
	Reconciliation *CounterReconciliation `json:"reconciliation"`
}

// CreateEventInput carries the organizer-supplied fields of a new event.
type CreateEventInput struct {
	Title       string
	Description string
	City        string
	Place       string
	StartAt     time.Time
	EndAt       time.Time
	Capacity    int
	Tags        []string
}

// EventService defines organizer-facing event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, p Principal, in CreateEventInput) (*Event, error)
	GetEvent(ctx context.Context, eventID string) (*EventDetails, error)
	UpdateCapacity(ctx context.Context, p Principal, eventID string, capacity int) (*Event, error)
	PublishEvent(ctx context.Context, p Principal, eventID string) error
	CloseEvent(ctx context.Context, p Principal, eventID string) error
	DeleteEvent(ctx context.Context, p Principal, eventID string) error
	CheckInAttendee(ctx context.Context, p Principal, eventID, userID string) (*Checkin, bool, error)
	EventStats(ctx context.Context, p Principal, eventID string) (*EventStats, error)
	ReconcileCounter(ctx context.Context, p Principal, eventID string) (*CounterReconciliation, error)
}
