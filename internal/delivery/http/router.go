package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// HealthResponse is the data payload for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse{data=HealthResponse}
// @Router /health [get]
func Health(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	eventController *controllers.EventController,
	attendeeController *controllers.AttendeeController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	organizer := func(h http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin)(h))
	}

	mux.HandleFunc("GET /health", Health)

	// Events
	mux.HandleFunc("POST /events", organizer(eventController.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))
	mux.HandleFunc("PATCH /events/{eventID}/capacity", auth(eventController.UpdateCapacity))
	mux.HandleFunc("POST /events/{eventID}/publish", auth(eventController.PublishEvent))
	mux.HandleFunc("POST /events/{eventID}/close", auth(eventController.CloseEvent))
	mux.HandleFunc("GET /events/{eventID}/stats", auth(eventController.EventStats))
	mux.HandleFunc("POST /events/{eventID}/reconcile", auth(eventController.ReconcileCounter))
	mux.HandleFunc("POST /events/{eventID}/checkins/{userID}", auth(eventController.CheckInAttendee))

	// Registrations and feedback
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(attendeeController.RegisterForEvent))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", auth(attendeeController.CancelRegistration))
	mux.HandleFunc("GET /tickets/mine", auth(attendeeController.ListMyTickets))
	mux.HandleFunc("POST /events/{eventID}/feedback", auth(attendeeController.LeaveFeedback))
	mux.HandleFunc("GET /events/{eventID}/feedback", attendeeController.ListEventFeedback)
	mux.HandleFunc("GET /events/{eventID}/feedback/summary", attendeeController.FeedbackSummary)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
