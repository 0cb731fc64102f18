package usecase

import (
	"context"

	"eventrequests/internal/domain"
	"eventrequests/internal/relay"
)

// Alerter shows a blocking, user-visible message.
type Alerter interface {
	Alert(msg string)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(msg string)

func (f AlertFunc) Alert(msg string) { f(msg) }

// RequestCreator is the backend call used by the request form.
type RequestCreator interface {
	CreateRequest(ctx context.Context, in domain.EventRequestInput) (domain.CreateResult, error)
}

// OrganizerAPI is the backend surface used by the organizer board.
type OrganizerAPI interface {
	ListOpenRequests(ctx context.Context, eventType domain.EventType) ([]domain.EventRequest, error)
	Accept(ctx context.Context, requestID, organizerID string, proposedBudget *float64) error
	Reject(ctx context.Context, requestID string) error
}

// RequesterAPI is the backend surface used by the requester board.
type RequesterAPI interface {
	ListMyRequests(ctx context.Context) ([]domain.EventRequest, error)
	SelectOrganizer(ctx context.Context, requestID, organizerID string) error
}

// Subscriber is the receive side of the push channel.
type Subscriber interface {
	On(event string, handler relay.Handler) relay.Subscription
	Off(sub relay.Subscription)
}

// alertMessage prefers the backend-provided message over fallback.
func alertMessage(err error, fallback string) string {
	if msg, ok := domain.ServerMessage(err); ok {
		return msg
	}
	return fallback
}
