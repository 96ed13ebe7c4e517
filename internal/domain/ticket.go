package domain

import (
	"context"
	"strconv"
	"time"
)

// TicketStatus is the state of a user's registration for an event.
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// Ticket is the single registration record for an (event, user) pair.
// It is created once and afterwards only transitions between active and cancelled.
// swagger:model Ticket
type Ticket struct {
	ID        string       `json:"id"`
	EventID   string       `json:"event_id"`
	UserID    string       `json:"user_id"`
	Status    TicketStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewTicket returns a Ticket for the pair. ID is typically set by the repository on create.
func NewTicket(eventID, userID string, status TicketStatus, createdAt, updatedAt time.Time) *Ticket {
	return &Ticket{
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// IsActive reports whether the ticket is a live registration.
func (t *Ticket) IsActive() bool {
	return t.Status == TicketStatusActive
}

// UpsertResult tags what an upsert did to the stored record.
type UpsertResult int

const (
	// UpsertCreated means no record existed and one was inserted.
	UpsertCreated UpsertResult = iota + 1
	// UpsertUpdated means an existing record was changed.
	UpsertUpdated
	// UpsertUnchanged means an existing record already had the requested state.
	UpsertUnchanged
)

func (r UpsertResult) String() string {
	switch r {
	case UpsertCreated:
		return "created"
	case UpsertUpdated:
		return "updated"
	case UpsertUnchanged:
		return "unchanged"
	}
	return "unknown"
}

// TicketRepository defines storage operations for tickets.
type TicketRepository interface {
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Ticket, error)
	// Upsert sets the ticket for (t.EventID, t.UserID) to t.Status, creating it if absent.
	// On return t holds the stored record.
	Upsert(ctx context.Context, t *Ticket) (UpsertResult, error)
	// TransitionStatus moves the ticket from one status to another only if it currently has `from`.
	// applied is false (and the ticket nil) when no ticket matched.
	TransitionStatus(ctx context.Context, eventID, userID string, from, to TicketStatus, at time.Time) (t *Ticket, applied bool, err error)
	CountActiveByEventID(ctx context.Context, eventID string) (int, error)
	ListByUserID(ctx context.Context, userID string, params PaginationParams) ([]*Ticket, int, error)
}

// Checkin records that an attendee was admitted at the door. At most one exists per (event, user).
// swagger:model Checkin
type Checkin struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	CheckedInBy string    `json:"checked_in_by"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// CheckinRepository defines storage operations for check-ins.
type CheckinRepository interface {
	// Insert stores c unless a check-in for the pair already exists. created reports which happened;
	// on return c holds the stored record either way.
	Insert(ctx context.Context, c *Checkin) (created bool, err error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
}

// Feedback rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a user's rating and comment for an event, one per (event, user).
// swagger:model Feedback
type Feedback struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingSummary aggregates feedback ratings for an event. Avg is nil when there is no feedback.
// swagger:model RatingSummary
type RatingSummary struct {
	Avg   *float64       `json:"avg"`
	Count int            `json:"count"`
	Stars map[string]int `json:"stars"`
}

// NewRatingSummary builds a summary from per-star counts (index 1..5).
func NewRatingSummary(stars [MaxRating + 1]int) *RatingSummary {
	s := &RatingSummary{Stars: make(map[string]int, MaxRating)}
	total := 0
	for r := MinRating; r <= MaxRating; r++ {
		s.Stars[strconv.Itoa(r)] = stars[r]
		s.Count += stars[r]
		total += r * stars[r]
	}
	if s.Count > 0 {
		avg := float64(total) / float64(s.Count)
		avg = float64(int(avg*100+0.5)) / 100
		s.Avg = &avg
	}
	return s
}

// FeedbackRepository defines storage operations for feedback.
type FeedbackRepository interface {
	// Upsert creates or overwrites the feedback for (f.EventID, f.UserID).
	Upsert(ctx context.Context, f *Feedback) (UpsertResult, error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Feedback, int, error)
	// StarCounts returns the number of feedback entries per rating, indexed 1..5.
	StarCounts(ctx context.Context, eventID string) ([MaxRating + 1]int, error)
}
