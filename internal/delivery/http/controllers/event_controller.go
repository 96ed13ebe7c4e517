package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// maxEventTags bounds the number of tags on an event.
const maxEventTags = 20

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	Place       string    `json:"place"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Capacity    int       `json:"capacity"`
	Tags        []string  `json:"tags"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c *CreateEventRequest) Validate() []string {
	var errs []string
	c.Title = strings.TrimSpace(c.Title)
	c.City = strings.TrimSpace(c.City)
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if c.City == "" {
		errs = append(errs, "city is required")
	}
	if c.StartAt.IsZero() {
		errs = append(errs, "start_at is required")
	}
	if !c.EndAt.IsZero() && c.EndAt.Before(c.StartAt) {
		errs = append(errs, "end_at must not be before start_at")
	}
	if c.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	if len(c.Tags) > maxEventTags {
		errs = append(errs, "at most 20 tags are allowed")
	}
	return errs
}

// EventSuccessResponse is the success response envelope for endpoints returning an event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates a draft event owned by the caller. Capacity defaults to 50 when omitted or zero. Organizer or admin role required.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event fields"
// @Success 201 {object} controllers.EventSuccessResponse "Created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	event, err := c.Service.CreateEvent(r.Context(), p, domain.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		City:        req.City,
		Place:       req.Place,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Capacity:    req.Capacity,
		Tags:        req.Tags,
	})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// EventDetailsSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type EventDetailsSuccessResponse struct {
	Data  *domain.EventDetails `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// GetEvent godoc
// @Summary Get an event
// @Description Returns the event with its counters and rating summary. Each call counts as a view.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailsSuccessResponse "Event and rating"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	details, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// UpdateCapacityRequest is the request body for PATCH /events/{eventID}/capacity.
type UpdateCapacityRequest struct {
	Capacity int `json:"capacity"`
}

// Validate implements Validator.
func (u *UpdateCapacityRequest) Validate() []string {
	if u.Capacity < 1 {
		return []string{"capacity must be at least 1"}
	}
	return nil
}

// UpdateCapacity godoc
// @Summary Change event capacity
// @Description Sets a new capacity. Rejected when it is below the number of current registrations. Owner or admin only.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateCapacityRequest true "New capacity"
// @Success 200 {object} controllers.EventSuccessResponse "Updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/capacity [patch]
func (c *EventController) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateCapacityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	event, err := c.Service.UpdateCapacity(r.Context(), p, eventID, req.Capacity)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// EventStatusResponse is the data payload for status-changing endpoints.
type EventStatusResponse struct {
	Status string `json:"status"`
}

// PublishEvent godoc
// @Summary Publish an event
// @Description Opens the event for registration. Owner or admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=controllers.EventStatusResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/publish [post]
func (c *EventController) PublishEvent(w http.ResponseWriter, r *http.Request) {
	c.changeStatus(w, r, c.Service.PublishEvent, string(domain.EventStatusPublished))
}

// CloseEvent godoc
// @Summary Close an event
// @Description Stops new registrations. Existing tickets stay valid. Owner or admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=controllers.EventStatusResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/close [post]
func (c *EventController) CloseEvent(w http.ResponseWriter, r *http.Request) {
	c.changeStatus(w, r, c.Service.CloseEvent, string(domain.EventStatusClosed))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Soft-deletes the event. Owner or admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=controllers.EventStatusResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	c.changeStatus(w, r, c.Service.DeleteEvent, "deleted")
}

func (c *EventController) changeStatus(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, p domain.Principal, eventID string) error, status string) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	if err := apply(r.Context(), p, eventID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventStatusResponse{Status: status})
}

// CheckinSuccessResponse is the success response envelope for check-in.
type CheckinSuccessResponse struct {
	Data  *domain.Checkin   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CheckInAttendee godoc
// @Summary Check an attendee in
// @Description Marks an attendee with an active ticket as present. Idempotent: 201 on the first check-in, 200 afterwards. Owner or admin only.
// @Tags checkins
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param userID path string true "Attendee user ID"
// @Success 200 {object} controllers.CheckinSuccessResponse "Already checked in"
// @Success 201 {object} controllers.CheckinSuccessResponse "Checked in"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: not_registered"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/checkins/{userID} [post]
func (c *EventController) CheckInAttendee(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	checkin, created, err := c.Service.CheckInAttendee(r.Context(), p, eventID, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if created {
		helpers.WriteJSONSuccess(w, http.StatusCreated, checkin)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, checkin)
}

// EventStats godoc
// @Summary Attendance statistics
// @Description Registered and checked-in counts, conversion, rating summary and a counter drift report. Owner or admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=domain.EventStats}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/stats [get]
func (c *EventController) EventStats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	stats, err := c.Service.EventStats(r.Context(), p, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// ReconcileCounter godoc
// @Summary Repair the registration counter
// @Description Recounts active tickets and overwrites the stored registration counter when they differ. Owner or admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse{data=domain.CounterReconciliation}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/reconcile [post]
func (c *EventController) ReconcileCounter(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	result, err := c.Service.ReconcileCounter(r.Context(), p, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
