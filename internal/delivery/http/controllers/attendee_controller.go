package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// maxFeedbackTextLength bounds the feedback comment, in characters.
const maxFeedbackTextLength = 2000

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// TicketSuccessResponse is the success response envelope for ticket endpoints.
type TicketSuccessResponse struct {
	Data  *domain.Ticket    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RegisterForEvent godoc
// @Summary Register the current user for an event
// @Description Admits the authenticated user if the event is published and has a free place. Idempotent: returns 201 when a new registration is made, 200 when the user already holds an active ticket.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.TicketSuccessResponse "Already registered"
// @Success 201 {object} controllers.TicketSuccessResponse "New registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_full | event_not_open"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *AttendeeController) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	ticket, registered, err := c.Service.RegisterForEvent(r.Context(), p, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if registered {
		helpers.WriteJSONSuccess(w, http.StatusCreated, ticket)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// CancelRegistration godoc
// @Summary Cancel the current user's registration
// @Description Cancels the authenticated user's active ticket and frees the place.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.TicketSuccessResponse "Cancelled ticket"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: not_registered"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [delete]
func (c *AttendeeController) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	ticket, err := c.Service.CancelRegistration(r.Context(), p, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}

// ListMyTicketsResponse is the data payload for GET /tickets/mine (200).
type ListMyTicketsResponse struct {
	Items      []*domain.TicketWithEvent `json:"items"`
	Pagination helpers.PaginationMeta    `json:"pagination"`
}

// ListMyTicketsSuccessResponse is the success response envelope for GET /tickets/mine (200).
type ListMyTicketsSuccessResponse struct {
	Data  ListMyTicketsResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListMyTickets godoc
// @Summary List the current user's tickets
// @Description Returns the authenticated user's tickets, newest first, each with its event. Tickets of deleted events are omitted.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListMyTicketsSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /tickets/mine [get]
func (c *AttendeeController) ListMyTickets(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	items, total, err := c.Service.ListMyTickets(r.Context(), p.UserID, params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if items == nil {
		items = []*domain.TicketWithEvent{}
	}
	meta := helpers.NewPaginationMeta(params, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListMyTicketsResponse{Items: items, Pagination: meta})
}

// LeaveFeedbackRequest is the request body for POST /events/{eventID}/feedback.
type LeaveFeedbackRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// Validate implements helpers.Validator.
func (req *LeaveFeedbackRequest) Validate() []string {
	var errs []string
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		errs = append(errs, "rating must be between 1 and 5")
	}
	req.Text = strings.TrimSpace(req.Text)
	if utf8.RuneCountInString(req.Text) > maxFeedbackTextLength {
		errs = append(errs, "text must be at most 2000 characters")
	}
	return errs
}

// FeedbackSuccessResponse is the success response envelope for POST /events/{eventID}/feedback (200).
type FeedbackSuccessResponse struct {
	Data  *domain.Feedback  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// LeaveFeedback godoc
// @Summary Rate an event
// @Description Creates or replaces the authenticated user's rating and comment for the event.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.LeaveFeedbackRequest true "Rating 1-5 and optional text"
// @Success 200 {object} controllers.FeedbackSuccessResponse "Stored feedback"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/feedback [post]
func (c *AttendeeController) LeaveFeedback(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	var req LeaveFeedbackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	fb, err := c.Service.LeaveFeedback(r.Context(), p, eventID, req.Rating, req.Text)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, fb)
}

// ListEventFeedbackResponse is the data payload for GET /events/{eventID}/feedback (200).
type ListEventFeedbackResponse struct {
	Items      []*domain.Feedback     `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventFeedback godoc
// @Summary List feedback for an event
// @Tags feedback
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse{data=controllers.ListEventFeedbackResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/feedback [get]
func (c *AttendeeController) ListEventFeedback(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	items, total, err := c.Service.ListEventFeedback(r.Context(), eventID, params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if items == nil {
		items = []*domain.Feedback{}
	}
	meta := helpers.NewPaginationMeta(params, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventFeedbackResponse{Items: items, Pagination: meta})
}

// FeedbackSummary godoc
// @Summary Rating summary for an event
// @Description Average rating (two decimals, null without feedback), count and per-star distribution.
// @Tags feedback
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=domain.RatingSummary}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/feedback/summary [get]
func (c *AttendeeController) FeedbackSummary(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	summary, err := c.Service.FeedbackSummary(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}
