package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testEventID = "6f1c2a4e-8d2b-4c1e-9a7f-3b5d8e0c1a22"

var (
	organizerPrincipal = domain.Principal{UserID: "org-1", Roles: []string{domain.RoleOrganizer}}
	attendeePrincipal  = domain.Principal{UserID: "user-1", Email: "user-1@example.com", Roles: []string{domain.RoleAttendee}}
)

// withPrincipal returns r with p attached, or r unchanged when p is nil.
func withPrincipal(r *http.Request, p *domain.Principal) *http.Request {
	if p == nil {
		return r
	}
	return r.WithContext(middleware.SetPrincipal(r.Context(), *p))
}

// decodeEnvelope decodes the response envelope and re-decodes its data into dest when dest is non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if dest != nil {
		require.Nil(t, envelope.Error, "success response must have error nil")
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(dataBytes, dest))
	}
	return envelope
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err error

	event          *domain.Event
	details        *domain.EventDetails
	checkin        *domain.Checkin
	checkinCreated bool
	stats          *domain.EventStats
	reconciliation *domain.CounterReconciliation

	lastPrincipal domain.Principal
	lastEventID   string
	lastUserID    string
	lastInput     domain.CreateEventInput
	lastCapacity  int
	calls         []string
}

func (f *fakeEventService) record(call string, p domain.Principal, eventID string) {
	f.calls = append(f.calls, call)
	f.lastPrincipal = p
	f.lastEventID = eventID
}

func (f *fakeEventService) CreateEvent(_ context.Context, p domain.Principal, in domain.CreateEventInput) (*domain.Event, error) {
	f.record("create", p, "")
	f.lastInput = in
	return f.event, f.err
}

func (f *fakeEventService) GetEvent(_ context.Context, eventID string) (*domain.EventDetails, error) {
	f.record("get", domain.Principal{}, eventID)
	return f.details, f.err
}

func (f *fakeEventService) UpdateCapacity(_ context.Context, p domain.Principal, eventID string, capacity int) (*domain.Event, error) {
	f.record("capacity", p, eventID)
	f.lastCapacity = capacity
	return f.event, f.err
}

func (f *fakeEventService) PublishEvent(_ context.Context, p domain.Principal, eventID string) error {
	f.record("publish", p, eventID)
	return f.err
}

func (f *fakeEventService) CloseEvent(_ context.Context, p domain.Principal, eventID string) error {
	f.record("close", p, eventID)
	return f.err
}

func (f *fakeEventService) DeleteEvent(_ context.Context, p domain.Principal, eventID string) error {
	f.record("delete", p, eventID)
	return f.err
}

func (f *fakeEventService) CheckInAttendee(_ context.Context, p domain.Principal, eventID, userID string) (*domain.Checkin, bool, error) {
	f.record("checkin", p, eventID)
	f.lastUserID = userID
	return f.checkin, f.checkinCreated, f.err
}

func (f *fakeEventService) EventStats(_ context.Context, p domain.Principal, eventID string) (*domain.EventStats, error) {
	f.record("stats", p, eventID)
	return f.stats, f.err
}

func (f *fakeEventService) ReconcileCounter(_ context.Context, p domain.Principal, eventID string) (*domain.CounterReconciliation, error) {
	f.record("reconcile", p, eventID)
	return f.reconciliation, f.err
}

// fakeAttendeeService implements domain.AttendeeService for handler tests.
type fakeAttendeeService struct {
	err error

	ticket     *domain.Ticket
	registered bool
	tickets    []*domain.TicketWithEvent
	feedback   *domain.Feedback
	feedbacks  []*domain.Feedback
	total      int
	summary    *domain.RatingSummary

	lastPrincipal domain.Principal
	lastEventID   string
	lastUserID    string
	lastParams    domain.PaginationParams
	lastRating    int
	lastText      string
	called        bool
}

func (f *fakeAttendeeService) RegisterForEvent(_ context.Context, p domain.Principal, eventID string) (*domain.Ticket, bool, error) {
	f.called, f.lastPrincipal, f.lastEventID = true, p, eventID
	return f.ticket, f.registered, f.err
}

func (f *fakeAttendeeService) CancelRegistration(_ context.Context, p domain.Principal, eventID string) (*domain.Ticket, error) {
	f.called, f.lastPrincipal, f.lastEventID = true, p, eventID
	return f.ticket, f.err
}

func (f *fakeAttendeeService) ListMyTickets(_ context.Context, userID string, params domain.PaginationParams) ([]*domain.TicketWithEvent, int, error) {
	f.called, f.lastUserID, f.lastParams = true, userID, params
	return f.tickets, f.total, f.err
}

func (f *fakeAttendeeService) LeaveFeedback(_ context.Context, p domain.Principal, eventID string, rating int, text string) (*domain.Feedback, error) {
	f.called, f.lastPrincipal, f.lastEventID = true, p, eventID
	f.lastRating, f.lastText = rating, text
	return f.feedback, f.err
}

func (f *fakeAttendeeService) ListEventFeedback(_ context.Context, eventID string, params domain.PaginationParams) ([]*domain.Feedback, int, error) {
	f.called, f.lastEventID, f.lastParams = true, eventID, params
	return f.feedbacks, f.total, f.err
}

func (f *fakeAttendeeService) FeedbackSummary(_ context.Context, eventID string) (*domain.RatingSummary, error) {
	f.called, f.lastEventID = true, eventID
	return f.summary, f.err
}
