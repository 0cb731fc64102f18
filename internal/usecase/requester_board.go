package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventrequests/internal/domain"
	"eventrequests/internal/relay"
)

const (
	msgUserMissing      = "User ID is missing. Please log in again."
	msgSelected         = "Organizer selected successfully, and status updated to deal_done."
	msgSelectFailed     = "An error occurred while selecting the organizer."
	msgNotInterested    = "This organizer has not responded to the request."
	msgAlreadyFinalized = "An organizer has already been selected for this request."
	msgFetchOwnFailed   = "Failed to fetch your event requests. Please try again."
)

// RequesterBoard shows a requester their own event requests with the
// organizers that responded, and finalizes a request with one of them.
type RequesterBoard struct {
	api       RequesterAPI
	publisher domain.Publisher
	alerter   Alerter
	identity  domain.Identity
	logger    *slog.Logger
	now       func() time.Time

	mu           sync.Mutex
	requests     []domain.EventRequest
	loaded       bool
	loading      bool
	loadErr      string
	needsRefresh bool
	selecting    bool
}

// NewRequesterBoard returns an empty board for identity. publisher may be nil.
func NewRequesterBoard(api RequesterAPI, publisher domain.Publisher, alerter Alerter, identity domain.Identity, logger *slog.Logger) *RequesterBoard {
	return &RequesterBoard{
		api:       api,
		publisher: publisher,
		alerter:   alerter,
		identity:  identity,
		logger:    logger,
		now:       time.Now,
	}
}

// Watch marks the board stale when an organizer responds to one of the
// caller's requests. The returned func unsubscribes.
func (b *RequesterBoard) Watch(sub Subscriber) (stop func()) {
	s := sub.On(domain.MessageTypeNotification, func(msg relay.Message) {
		var n domain.Notification
		if err := msg.Decode(&n); err != nil {
			return
		}
		if n.Kind != domain.KindRequestAccepted && n.Kind != domain.KindRequestRejected {
			return
		}
		if n.UserID != "" && n.UserID != b.identity.UserID {
			return
		}
		b.mu.Lock()
		b.needsRefresh = true
		b.mu.Unlock()
	})
	return func() { sub.Off(s) }
}

// Refresh reloads the caller's requests.
func (b *RequesterBoard) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	list, err := b.api.ListMyRequests(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	b.loaded = true
	if err != nil {
		b.requests = nil
		b.loadErr = msgFetchOwnFailed
		b.logger.Warn("requester list fetch failed", "user_id", b.identity.UserID, "err", err)
		return fmt.Errorf("list own requests: %w", err)
	}
	b.requests = cloneRequests(list)
	b.loadErr = ""
	b.needsRefresh = false
	return nil
}

// Requests returns a copy of the loaded list.
func (b *RequesterBoard) Requests() []domain.EventRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneRequests(b.requests)
}

// Empty reports whether a load completed without error and returned nothing.
func (b *RequesterBoard) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded && b.loadErr == "" && len(b.requests) == 0
}

// Loading reports whether a Refresh is in progress.
func (b *RequesterBoard) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// LoadError returns the message of the last failed Refresh, or "".
func (b *RequesterBoard) LoadError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadErr
}

// NeedsRefresh reports whether the list is known to be stale.
func (b *RequesterBoard) NeedsRefresh() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.needsRefresh
}

// SelectOrganizer finalizes requestID with organizerID, who must be one of
// the request's interested organizers. The list is refetched afterwards; a
// failed refetch is reported through LoadError and does not fail the call.
func (b *RequesterBoard) SelectOrganizer(ctx context.Context, requestID, organizerID string) error {
	if !b.identity.Resolved() {
		b.alerter.Alert(msgUserMissing)
		return domain.ErrIdentity
	}
	if err := b.beginSelect(requestID, organizerID); err != nil {
		return err
	}
	defer func() {
		b.mu.Lock()
		b.selecting = false
		b.mu.Unlock()
	}()

	if err := b.api.SelectOrganizer(ctx, requestID, organizerID); err != nil {
		b.alerter.Alert(alertMessage(err, msgSelectFailed))
		b.logger.Warn("select organizer failed", "request_id", requestID, "organizer_id", organizerID, "err", err)
		return fmt.Errorf("select organizer for %s: %w", requestID, err)
	}

	b.mu.Lock()
	b.needsRefresh = true
	b.mu.Unlock()
	b.alerter.Alert(msgSelected)
	b.notify(requestID, organizerID)

	if err := b.Refresh(ctx); err != nil {
		b.logger.Warn("refetch after selection failed", "request_id", requestID, "err", err)
	}
	return nil
}

func (b *RequesterBoard) beginSelect(requestID, organizerID string) error {
	b.mu.Lock()
	if b.selecting {
		b.mu.Unlock()
		return domain.ErrInProgress
	}
	var req *domain.EventRequest
	for i := range b.requests {
		if b.requests[i].ID == requestID {
			req = &b.requests[i]
			break
		}
	}
	var alert string
	var err error
	switch {
	case req == nil:
		err = fmt.Errorf("event request %s: %w", requestID, domain.ErrNotFound)
	case req.Finalized():
		alert = msgAlreadyFinalized
		err = fmt.Errorf("event request %s: %w", requestID, domain.ErrRequestClosed)
	case req.Interest(organizerID) == nil:
		alert = msgNotInterested
		err = fmt.Errorf("organizer %s on %s: %w", organizerID, requestID, domain.ErrInvalidInput)
	default:
		b.selecting = true
	}
	b.mu.Unlock()
	if alert != "" {
		b.alerter.Alert(alert)
	}
	return err
}

func (b *RequesterBoard) notify(requestID, organizerID string) {
	if b.publisher == nil {
		return
	}
	n := domain.Notification{
		Kind:        domain.KindOrganizerSelected,
		EventID:     requestID,
		UserID:      b.identity.UserID,
		OrganizerID: organizerID,
		CreatedAt:   b.now(),
	}
	if err := b.publisher.Send(domain.MessageTypeNotification, n); err != nil {
		b.logger.Debug("selection notification not sent", "err", err)
	}
}
