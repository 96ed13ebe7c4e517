package domain

import "context"

// Transactor runs fn as one atomic unit against the store. Repository calls made with the
// context passed to fn participate in the unit; returning an error rolls every write back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CounterReconciliation reports a registration counter compared with the active tickets behind it.
// swagger:model CounterReconciliation
type CounterReconciliation struct {
	EventID       string `json:"event_id"`
	StoredCount   int    `json:"stored_count"`
	ActiveTickets int    `json:"active_tickets"`
	Corrected     bool   `json:"corrected"`
}

// RegistrationLedger admits users into events under the capacity ceiling and keeps the
// event registration counter equal to the number of active tickets.
type RegistrationLedger interface {
	// Register admits the user. registered is false when the user already held an active ticket,
	// in which case the existing ticket is returned and no counter changes.
	// Rejections: ErrEventNotFound, ErrEventNotOpen, ErrEventFull.
	Register(ctx context.Context, eventID, userID string) (ticket *Ticket, registered bool, err error)
	// Cancel deactivates the user's active ticket and releases its slot. Rejection: ErrNotRegistered.
	Cancel(ctx context.Context, eventID, userID string) (*Ticket, error)
	// CheckIn records the attendee's check-in; created is false when already checked in.
	// The checkins counter moves only when created is true. Rejections: ErrEventNotFound, ErrNotRegistered.
	CheckIn(ctx context.Context, eventID, userID, checkedInBy string) (checkin *Checkin, created bool, err error)
	// LeaveFeedback upserts the user's feedback for the event. No counter side effect.
	LeaveFeedback(ctx context.Context, eventID, userID string, rating int, text string) (*Feedback, error)
	// Reconcile recomputes the registration counter from the active tickets.
	Reconcile(ctx context.Context, eventID string) (*CounterReconciliation, error)
}
