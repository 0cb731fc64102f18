package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventrequests/internal/delivery/http/helpers"
	"eventrequests/internal/delivery/http/middleware"
	"eventrequests/internal/domain"
)

// PublishNotificationBody is the request body for POST /notifications/events.
type PublishNotificationBody struct {
	EventID string                  `json:"eventId"`
	UserID  string                  `json:"userId"`
	Message string                  `json:"message"`
	Type    domain.NotificationKind `json:"type"`
}

// Validate implements Validator.
func (b PublishNotificationBody) Validate() []string {
	var errs []string
	switch b.Type {
	case domain.KindEventRequest, domain.KindRequestAccepted, domain.KindRequestRejected, domain.KindOrganizerSelected:
	default:
		errs = append(errs, "type must be one of event_request, request_accepted, request_rejected, organizer_selected")
	}
	if b.EventID == "" && b.Type != domain.KindEventRequest {
		errs = append(errs, "eventId is required")
	}
	return errs
}

type NotificationController struct {
	Logger      *slog.Logger
	Broadcaster domain.Broadcaster
	now         func() time.Time
}

func NewNotificationController(logger *slog.Logger, b domain.Broadcaster) *NotificationController {
	return &NotificationController{Logger: logger, Broadcaster: b, now: time.Now}
}

// Publish godoc
// @Summary Publish a notification
// @Description Broadcasts a notification to every client connected to the push channel.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PublishNotificationBody true "Notification"
// @Success 202 {object} helpers.APIMessage
// @Failure 400 {object} helpers.APIError "code: bad_request"
// @Failure 401 {object} helpers.APIError "code: unauthorized"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /notifications/events [post]
func (c *NotificationController) Publish(w http.ResponseWriter, r *http.Request) {
	var body PublishNotificationBody
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	n := domain.Notification{
		Kind:      body.Type,
		EventID:   body.EventID,
		UserID:    body.UserID,
		Message:   body.Message,
		CreatedAt: c.now(),
	}
	if caller.Role == domain.RoleOrganizer {
		n.OrganizerID = caller.UserID
	}
	if err := c.Broadcaster.Broadcast(domain.MessageTypeNotification, n); err != nil {
		c.Logger.ErrorContext(r.Context(), "broadcast failed", "kind", n.Kind, "event_id", n.EventID, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to publish notification")
		return
	}
	helpers.WriteJSONMessage(w, http.StatusAccepted, "Notification published")
}
