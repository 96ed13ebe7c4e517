package domain

import (
	"context"
	"time"
)

// DefaultEventCapacity is applied when an event is created without an explicit capacity.
const DefaultEventCapacity = 50

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusClosed    EventStatus = "closed"
)

// EventCounters holds the denormalized counters kept on the event record.
// Registrations always equals the number of active tickets between ledger operations.
type EventCounters struct {
	Views         int `json:"views"`
	Registrations int `json:"registrations"`
	Checkins      int `json:"checkins"`
}

// Event represents an event attendees can register for.
// swagger:model Event
type Event struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	City        string        `json:"city"`
	Place       string        `json:"place"`
	StartAt     time.Time     `json:"start_at"`
	EndAt       time.Time     `json:"end_at"`
	Capacity    int           `json:"capacity"`
	Tags        []string      `json:"tags"`
	Status      EventStatus   `json:"status"`
	Counters    EventCounters `json:"counters"`
	DeletedAt   *time.Time    `json:"deleted_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewEvent returns a draft Event with zeroed counters. ID is typically set by the repository on create.
func NewEvent(ownerID, title, description, city, place string, startAt, endAt time.Time, capacity int, tags []string, createdAt, updatedAt time.Time) *Event {
	if capacity == 0 {
		capacity = DefaultEventCapacity
	}
	if tags == nil {
		tags = []string{}
	}
	return &Event{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		City:        city,
		Place:       place,
		StartAt:     startAt,
		EndAt:       endAt,
		Capacity:    capacity,
		Tags:        tags,
		Status:      EventStatusDraft,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// IsDeleted reports whether the event has been soft-deleted.
func (e *Event) IsDeleted() bool {
	return e.DeletedAt != nil
}

// AcceptsRegistrations reports whether the event is published and not deleted.
func (e *Event) AcceptsRegistrations() bool {
	return !e.IsDeleted() && e.Status == EventStatusPublished
}

// CounterField names one of the event counters that can be adjusted atomically.
type CounterField string

const (
	CounterViews         CounterField = "views"
	CounterRegistrations CounterField = "registrations"
	CounterCheckins      CounterField = "checkins"
)

// CounterGuard is the predicate a counter adjustment is conditioned on.
// All set conditions must hold against the current row for the delta to apply.
type CounterGuard struct {
	// RequireOpen requires the event to be published and not soft-deleted.
	RequireOpen bool
	// BelowCapacity requires the adjusted counter to be strictly below capacity before the change.
	BelowCapacity bool
	// KeepNonNegative requires the counter to stay >= 0 after the change.
	KeepNonNegative bool
}

// Matches evaluates the guard against an in-memory event for the given counter and delta.
func (g CounterGuard) Matches(e *Event, field CounterField, delta int) bool {
	if g.RequireOpen && !e.AcceptsRegistrations() {
		return false
	}
	current := e.Counters.Get(field)
	if g.BelowCapacity && current >= e.Capacity {
		return false
	}
	if g.KeepNonNegative && current+delta < 0 {
		return false
	}
	return true
}

// Get returns the value of the named counter.
func (c EventCounters) Get(field CounterField) int {
	switch field {
	case CounterViews:
		return c.Views
	case CounterRegistrations:
		return c.Registrations
	case CounterCheckins:
		return c.Checkins
	}
	return 0
}

// Add applies delta to the named counter.
func (c *EventCounters) Add(field CounterField, delta int) {
	switch field {
	case CounterViews:
		c.Views += delta
	case CounterRegistrations:
		c.Registrations += delta
	case CounterCheckins:
		c.Checkins += delta
	}
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	// GetByID returns the event including soft-deleted ones; callers decide how to treat DeletedAt.
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForUpdate is GetByID that also locks the row until the surrounding unit ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	// UpdateCapacity sets a new capacity only if it is not below the current registration count.
	// Returns false when the guard did not match.
	UpdateCapacity(ctx context.Context, id string, capacity int) (bool, error)
	SetStatus(ctx context.Context, id string, status EventStatus) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// TryAdjustCounter adds delta to the counter iff the guard holds, as one indivisible operation.
	// It reports whether the guard matched; a missing event never matches.
	TryAdjustCounter(ctx context.Context, id string, field CounterField, delta int, guard CounterGuard) (bool, error)
	// SetCounter overwrites a counter; used only by reconciliation.
	SetCounter(ctx context.Context, id string, field CounterField, value int) error
}
