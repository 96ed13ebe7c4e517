package domain

import (
	"context"
	"time"
)

// Ticket lifecycle event types published to the message broker.
const (
	TicketEventRegistered = "ticket.registered"
	TicketEventCancelled  = "ticket.cancelled"
	TicketEventCheckedIn  = "ticket.checked_in"
)

// TicketEvent is the message published after a ledger operation changed state.
type TicketEvent struct {
	Type       string    `json:"type"`
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	TicketID   string    `json:"ticket_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TicketEventPublisher publishes ticket lifecycle events for downstream consumers.
type TicketEventPublisher interface {
	Publish(ctx context.Context, evt TicketEvent) error
}
