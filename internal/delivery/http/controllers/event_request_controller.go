package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventrequests/internal/delivery/http/helpers"
	"eventrequests/internal/delivery/http/middleware"
	"eventrequests/internal/domain"
	"eventrequests/internal/validation"
)

// CreateEventRequestBody is the request body for POST /eventrequest.
type CreateEventRequestBody struct {
	EventType   string   `json:"eventType"`
	Venue       string   `json:"venue"`
	Date        string   `json:"date"`
	Budget      *float64 `json:"budget"`
	Description string   `json:"description"`
}

func (b CreateEventRequestBody) draft() validation.Draft {
	d := validation.Draft{
		EventType:   b.EventType,
		Venue:       b.Venue,
		Date:        b.Date,
		Description: b.Description,
	}
	if b.Budget != nil {
		d.Budget = strconv.FormatFloat(*b.Budget, 'f', -1, 64)
	}
	return d
}

// AcceptBody is the request body for PUT /eventrequest/event-request/{id}/accept.
type AcceptBody struct {
	OrganizerID    string   `json:"organizerId"`
	ProposedBudget *float64 `json:"proposedBudget"`
	Message        string   `json:"message"`
}

// Validate implements Validator.
func (b AcceptBody) Validate() []string {
	var errs []string
	if b.ProposedBudget != nil && !(*b.ProposedBudget > 0) {
		errs = append(errs, "Please enter a valid budget amount")
	}
	return errs
}

// SelectOrganizerBody is the request body for PUT /eventrequest/event-request/select-organizer.
type SelectOrganizerBody struct {
	EventID     string `json:"eventId"`
	OrganizerID string `json:"organizerId"`
}

// Validate implements Validator.
func (b SelectOrganizerBody) Validate() []string {
	var errs []string
	if _, err := uuid.Parse(b.EventID); err != nil {
		errs = append(errs, "eventId must be a valid id")
	}
	if _, err := uuid.Parse(b.OrganizerID); err != nil {
		errs = append(errs, "organizerId must be a valid id")
	}
	return errs
}

// EventRequestActionResponse is the success body of accept, reject and select.
type EventRequestActionResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message"`
	EventRequest *domain.EventRequest `json:"eventRequest"`
}

// RequesterListResponse is the success body of GET /eventrequest/event-requests-for-user.
type RequesterListResponse struct {
	EventRequests []*domain.EventRequest `json:"eventRequests"`
}

type EventRequestController struct {
	Logger    *slog.Logger
	Service   domain.EventRequestService
	Validator *validation.Validator
}

func NewEventRequestController(logger *slog.Logger, svc domain.EventRequestService, v *validation.Validator) *EventRequestController {
	return &EventRequestController{
		Logger:    logger,
		Service:   svc,
		Validator: v,
	}
}

// Create godoc
// @Summary Create an event request
// @Description Creates an open event request owned by the caller. All fields are required; date is YYYY-MM-DD, budget is positive and the description has at least 10 characters.
// @Tags eventrequest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequestBody true "Event request"
// @Success 201 {object} helpers.APIMessage
// @Failure 400 {object} helpers.APIError "code: bad_request"
// @Failure 401 {object} helpers.APIError "code: unauthorized"
// @Failure 403 {object} helpers.APIError "code: forbidden"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /eventrequest [post]
func (c *EventRequestController) Create(w http.ResponseWriter, r *http.Request) {
	var body CreateEventRequestBody
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	draft := body.draft()
	if errs := c.Validator.StrictDraft(draft); errs != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, strings.Join(errs.Messages(), "; "))
		return
	}
	in, err := draft.Input()
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "Please enter a valid budget amount")
		return
	}

	now := time.Now()
	req := domain.NewEventRequest(caller.UserID, in.EventType, in.Venue, in.Date, in.Budget, in.Description, now, now)
	req.Requester.FullName = caller.FullName
	req.Requester.Email = caller.Email
	if err := c.Service.Create(r.Context(), req); err != nil {
		c.writeServiceError(w, r, err, nil)
		return
	}
	helpers.WriteJSONMessage(w, http.StatusCreated, "Event request created successfully")
}

// ListForOrganizer godoc
// @Summary List open event requests
// @Description Lists open requests, newest first, optionally of one event type. Requests the caller already rejected are left out.
// @Tags eventrequest
// @Produce json
// @Security BearerAuth
// @Param eventType query string false "Wedding, Sports, Corporate, Political or Educational"
// @Success 200 {array} domain.EventRequest
// @Failure 400 {object} helpers.APIError "code: bad_request"
// @Failure 401 {object} helpers.APIError "code: unauthorized"
// @Failure 403 {object} helpers.APIError "code: forbidden"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /eventrequest/event-requests [get]
func (c *EventRequestController) ListForOrganizer(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	eventType := domain.EventType(strings.TrimSpace(r.URL.Query().Get("eventType")))
	if eventType != "" && !eventType.Valid() {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown eventType "+strconv.Quote(string(eventType)))
		return
	}
	list, err := c.Service.ListForOrganizer(r.Context(), caller.UserID, eventType)
	if err != nil {
		c.writeServiceError(w, r, err, nil)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, list)
}

// ListForRequester godoc
// @Summary List the caller's event requests
// @Description Lists the caller's own requests, newest first, with every organizer's response.
// @Tags eventrequest
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.RequesterListResponse
// @Failure 401 {object} helpers.APIError "code: unauthorized"
// @Failure 403 {object} helpers.APIError "code: forbidden"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /eventrequest/event-requests-for-user [get]
func (c *EventRequestController) ListForRequester(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListForRequester(r.Context(), caller.UserID)
	if err != nil {
		c.writeServiceError(w, r, err, nil)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, RequesterListResponse{EventRequests: list})
}

// Accept godoc
// @Summary Accept an event request
// @Description Records the calling organizer's acceptance. proposedBudget is optional and defaults to the request budget; accepting again updates the same entry.
// @Tags eventrequest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event request ID (UUID)"
// @Param body body AcceptBody true "organizerId must be the caller"
// @Success 200 {object} controllers.EventRequestActionResponse
// @Failure 400 {object} helpers.APIError "code: bad_request"
// @Failure 401 {object} helpers.APIError "code: unauthorized"
// @Failure 403 {object} helpers.APIError "code: forbidden"
// @Failure 404 {object} helpers.APIError "code: not_found"
// @Failure 409 {object} helpers.APIError "code: conflict (deal already done)"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /eventrequest/event-request/{id}/accept [put]
func (c *EventRequestController) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIDParam(w, r)
	if !ok {
		return
	}
	var body AcceptBody
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if body.OrganizerID != "" && body.OrganizerID != caller.UserID {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "organizerId does not match the authenticated user")
		return
	}
	req, err := c.Service.Accept(r.Context(), domain.AcceptInput{
		RequestID:      id,
		Organizer:      caller.User(),
		ProposedBudget: body.ProposedBudget,
		Message:        strings.TrimSpace(body.Message),
	})
	if err != nil {
		c.writeServiceError(w, r, err, map[error]string{
			domain.ErrConflict:     "This event request is already closed.",
			domain.ErrInvalidInput: "Please enter a valid budget amount",
			domain.ErrForbidden:    "You cannot accept your own event request.",
		})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, EventRequestActionResponse{Success: true, Message: "Event request accepted", EventRequest: req})
}

// Reject godoc
// @Summary Reject an event request
// @Description Marks only the calling organizer's entry as rejected. Other organizers' responses are untouched.
// @Tags eventrequest
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event request ID (UUID)"
// @Success 200 {object} controllers.EventRequestActionResponse
// @Failure 400 {object} helpers.APIError "code: bad_request"
// @Failure 401 {object} helpers.APIError "code: unauthorized"
// @Failure 403 {object} helpers.APIError "code: forbidden"
// @Failure 404 {object} helpers.APIError "code: not_found"
// @Failure 409 {object} helpers.APIError "code: conflict (deal already done)"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /eventrequest/event-request/{id}/reject [put]
func (c *EventRequestController) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := requestIDParam(w, r)
	if !ok {
		return
	}
	var body struct{}
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	req, err := c.Service.Reject(r.Context(), id, caller.User())
	if err != nil {
		c.writeServiceError(w, r, err, map[error]string{
			domain.ErrConflict: "This event request is already closed.",
		})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, EventRequestActionResponse{Success: true, Message: "Event request rejected", EventRequest: req})
}

// SelectOrganizer godoc
// @Summary Select an organizer
// @Description Finalizes the caller's request with an organizer who accepted it. The request becomes deal_done and both parties are emailed.
// @Tags eventrequest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SelectOrganizerBody true "Request and organizer"
// @Success 200 {object} controllers.EventRequestActionResponse
// @Failure 400 {object} helpers.APIError "code: bad_request (organizer has not accepted)"
// @Failure 401 {object} helpers.APIError "code: unauthorized"
// @Failure 403 {object} helpers.APIError "code: forbidden (not the owner)"
// @Failure 404 {object} helpers.APIError "code: not_found"
// @Failure 409 {object} helpers.APIError "code: conflict (already selected)"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /eventrequest/event-request/select-organizer [put]
func (c *EventRequestController) SelectOrganizer(w http.ResponseWriter, r *http.Request) {
	var body SelectOrganizerBody
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	req, err := c.Service.SelectOrganizer(r.Context(), body.EventID, caller.UserID, body.OrganizerID)
	if err != nil {
		c.writeServiceError(w, r, err, map[error]string{
			domain.ErrConflict:     "An organizer has already been selected for this request.",
			domain.ErrInvalidInput: "This organizer has not accepted the request.",
			domain.ErrForbidden:    "Only the requester can select an organizer.",
		})
		return
	}
	helpers.WriteJSON(w, http.StatusOK, EventRequestActionResponse{
		Success:      true,
		Message:      "Organizer selected successfully, and status updated to deal_done.",
		EventRequest: req,
	})
}

// requestIDParam reads the {id} path value. Ids are UUIDs; anything else is a 400.
func requestIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event request id")
		return "", false
	}
	return id, true
}

// writeServiceError maps service sentinels to status codes. messages overrides
// the default message per sentinel.
func (c *EventRequestController) writeServiceError(w http.ResponseWriter, r *http.Request, err error, messages map[error]string) {
	msg := func(sentinel error, def string) string {
		if m, ok := messages[sentinel]; ok {
			return m
		}
		return def
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, msg(domain.ErrInvalidInput, "invalid input"))
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, msg(domain.ErrForbidden, "forbidden"))
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, msg(domain.ErrNotFound, "event request not found"))
	case errors.Is(err, domain.ErrConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, msg(domain.ErrConflict, "conflict"))
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method,
			"request_id", middleware.RequestIDFromContext(r.Context()), "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}
