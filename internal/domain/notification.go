package domain

import "time"

// MessageTypeNotification is the push message type for cross-role alerts.
const MessageTypeNotification = "notification"

// NotificationKind says what happened to an event request.
type NotificationKind string

const (
	KindEventRequest      NotificationKind = "event_request"
	KindRequestAccepted   NotificationKind = "request_accepted"
	KindRequestRejected   NotificationKind = "request_rejected"
	KindOrganizerSelected NotificationKind = "organizer_selected"
)

// Notification is the payload of a "notification" push message. On the wire it
// is flattened next to the message type: {"type":"notification","kind":...}.
// swagger:model Notification
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	EventID     string           `json:"eventId,omitempty"`
	UserID      string           `json:"userId,omitempty"`
	OrganizerID string           `json:"organizerId,omitempty"`
	Message     string           `json:"message,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Publisher is the narrow send side of the push channel. Delivery is
// best-effort; a returned error is informational only.
type Publisher interface {
	Send(event string, payload any) error
}

// Broadcaster fans a push message out to every connected client.
type Broadcaster interface {
	Broadcast(event string, payload any) error
}
