package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/broker"
	"eventhub/internal/adapters/email"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
	"eventhub/internal/repository/memory"
	"eventhub/internal/services"
)

const testSecret = "router-test-secret"

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	events := memory.NewEventRepository(store)
	tickets := memory.NewTicketRepository(store)
	checkins := memory.NewCheckinRepository(store)
	feedback := memory.NewFeedbackRepository(store)

	mailer, err := email.NewMailer(email.MailerConfig{Provider: "noop"}, testLogger)
	require.NoError(t, err)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), testLogger)
	publisher := broker.NewNoopPublisher(testLogger)

	ledger := services.NewRegistrationLedger(store, events, tickets, checkins, feedback, testLogger)
	eventService := services.NewEventService(ledger, events, tickets, checkins, feedback, publisher, testLogger, 5*time.Second)
	attendeeService := services.NewAttendeeService(ledger, events, tickets, feedback, emailService, publisher, testLogger, 5*time.Second)

	return NewRouter(
		controllers.NewEventController(testLogger, eventService),
		controllers.NewAttendeeController(testLogger, attendeeService),
		auth.NewJWTVerifier(testSecret),
		testLogger,
	)
}

func bearer(t *testing.T, userID string, roles ...string) string {
	t.Helper()
	token, err := auth.NewJWTIssuer(testSecret).Issue(userID, userID+"@example.com", roles, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, h http.Handler, method, path, authHeader, body string, dest any) (int, *helpers.APIError) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "%s %s: response must be a JSON envelope", method, path)
	if dest != nil && envelope.Error == nil {
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, dest))
	}
	return rr.Code, envelope.Error
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)
	var got HealthResponse
	status, apiErr := do(t, h, http.MethodGet, "/health", "", "", &got)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, apiErr)
	assert.Equal(t, "ok", got.Status)
}

func TestRouter_RegistrationFlow(t *testing.T) {
	h := newTestRouter(t)
	organizer := bearer(t, "org-1", domain.RoleOrganizer)
	alice := bearer(t, "alice", domain.RoleAttendee)
	bob := bearer(t, "bob", domain.RoleAttendee)

	status, apiErr := do(t, h, http.MethodPost, "/events", alice,
		`{"title":"Go Meetup","city":"Almaty","start_at":"2026-11-01T18:00:00Z"}`, nil)
	require.Equal(t, http.StatusForbidden, status, "attendee cannot create events")
	require.NotNil(t, apiErr)

	var event domain.Event
	status, _ = do(t, h, http.MethodPost, "/events", organizer,
		`{"title":"Go Meetup","city":"Almaty","start_at":"2026-11-01T18:00:00Z","capacity":1}`, &event)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, event.ID)
	base := "/events/" + event.ID

	status, apiErr = do(t, h, http.MethodPost, base+"/registrations", alice, "", nil)
	require.Equal(t, http.StatusConflict, status, "draft event is not open")
	assert.Equal(t, helpers.ErrCodeEventNotOpen, apiErr.Code)

	status, _ = do(t, h, http.MethodPost, base+"/publish", alice, "", nil)
	require.Equal(t, http.StatusForbidden, status, "only the owner publishes")
	status, _ = do(t, h, http.MethodPost, base+"/publish", organizer, "", nil)
	require.Equal(t, http.StatusOK, status)

	var ticket domain.Ticket
	status, _ = do(t, h, http.MethodPost, base+"/registrations", alice, "", &ticket)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "alice", ticket.UserID)

	var again domain.Ticket
	status, _ = do(t, h, http.MethodPost, base+"/registrations", alice, "", &again)
	require.Equal(t, http.StatusOK, status, "repeat registration is idempotent")
	assert.Equal(t, ticket.ID, again.ID)

	status, apiErr = do(t, h, http.MethodPost, base+"/registrations", bob, "", nil)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, helpers.ErrCodeEventFull, apiErr.Code)

	var mine controllers.ListMyTicketsResponse
	status, _ = do(t, h, http.MethodGet, "/tickets/mine", alice, "", &mine)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, event.ID, mine.Items[0].Event.ID)

	var checkin domain.Checkin
	status, _ = do(t, h, http.MethodPost, base+"/checkins/alice", organizer, "", &checkin)
	require.Equal(t, http.StatusCreated, status)
	status, _ = do(t, h, http.MethodPost, base+"/checkins/alice", organizer, "", nil)
	require.Equal(t, http.StatusOK, status)
	status, apiErr = do(t, h, http.MethodPost, base+"/checkins/bob", organizer, "", nil)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, helpers.ErrCodeNotRegistered, apiErr.Code)

	status, _ = do(t, h, http.MethodPost, base+"/feedback", alice, `{"rating":5,"text":"great"}`, nil)
	require.Equal(t, http.StatusOK, status)

	var stats domain.EventStats
	status, _ = do(t, h, http.MethodGet, base+"/stats", organizer, "", &stats)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, stats.Registered)
	assert.Equal(t, 1, stats.CheckedIn)
	assert.InDelta(t, 1.0, stats.Conversion, 0.0001)
	require.NotNil(t, stats.Rating.Avg)
	assert.InDelta(t, 5.0, *stats.Rating.Avg, 0.0001)

	status, _ = do(t, h, http.MethodDelete, base+"/registrations", alice, "", nil)
	require.Equal(t, http.StatusOK, status)
	status, apiErr = do(t, h, http.MethodDelete, base+"/registrations", alice, "", nil)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, helpers.ErrCodeNotRegistered, apiErr.Code)

	status, _ = do(t, h, http.MethodPost, base+"/registrations", bob, "", nil)
	require.Equal(t, http.StatusCreated, status, "cancelled place is free again")

	var details domain.EventDetails
	status, _ = do(t, h, http.MethodGet, base, "", "", &details)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, details.Event.Counters.Registrations)
	assert.Equal(t, 1, details.Event.Counters.Views)
}

func TestRouter_RequiresToken(t *testing.T) {
	h := newTestRouter(t)
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/events"},
		{http.MethodPost, "/events/6f1c2a4e-8d2b-4c1e-9a7f-3b5d8e0c1a22/registrations"},
		{http.MethodGet, "/tickets/mine"},
		{http.MethodPost, "/events/6f1c2a4e-8d2b-4c1e-9a7f-3b5d8e0c1a22/reconcile"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			status, apiErr := do(t, h, p.method, p.path, "", "", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			require.NotNil(t, apiErr)
			assert.Equal(t, helpers.ErrCodeUnauthorized, apiErr.Code)
		})
	}
}

func TestRouter_DeletedEventIsGone(t *testing.T) {
	h := newTestRouter(t)
	organizer := bearer(t, "org-1", domain.RoleOrganizer)

	var event domain.Event
	status, _ := do(t, h, http.MethodPost, "/events", organizer,
		`{"title":"Go Meetup","city":"Almaty","start_at":"2026-11-01T18:00:00Z"}`, &event)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, domain.DefaultEventCapacity, event.Capacity)

	status, _ = do(t, h, http.MethodDelete, "/events/"+event.ID, organizer, "", nil)
	require.Equal(t, http.StatusOK, status)

	status, apiErr := do(t, h, http.MethodGet, "/events/"+event.ID, "", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	require.NotNil(t, apiErr)
	assert.Equal(t, helpers.ErrCodeNotFound, apiErr.Code)
}
