package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"eventrequests/internal/domain"
	"eventrequests/internal/relay"
)

const (
	msgOrganizerMissing = "Organizer ID is missing. Please log in again."
	msgAccepted         = "Event request accepted successfully"
	msgAcceptFailed     = "Error accepting event request"
	msgRejected         = "Event request rejected successfully"
	msgRejectFailed     = "Error rejecting event request"
	msgFetchFailed      = "Failed to fetch event requests. Please try again."
	msgRequestClosed    = "This event request is already closed."
	msgInvalidBudget    = "Please enter a valid budget amount"
)

// OrganizerBoard lists open event requests to an organizer and carries out
// accept and reject. The loaded list is kept locally and updated
// optimistically after each successful action.
type OrganizerBoard struct {
	api       OrganizerAPI
	publisher domain.Publisher
	alerter   Alerter
	identity  domain.Identity
	logger    *slog.Logger
	now       func() time.Time

	mu           sync.Mutex
	requests     []domain.EventRequest
	filter       domain.EventType
	search       string
	loading      bool
	loadErr      string
	needsRefresh bool
	inFlight     map[string]struct{}
}

// NewOrganizerBoard returns an empty board for identity. publisher may be nil.
func NewOrganizerBoard(api OrganizerAPI, publisher domain.Publisher, alerter Alerter, identity domain.Identity, logger *slog.Logger) *OrganizerBoard {
	return &OrganizerBoard{
		api:       api,
		publisher: publisher,
		alerter:   alerter,
		identity:  identity,
		logger:    logger,
		now:       time.Now,
		inFlight:  make(map[string]struct{}),
	}
}

// Watch marks the board stale whenever a new request or a selection is
// announced on the push channel. The returned func unsubscribes.
func (b *OrganizerBoard) Watch(sub Subscriber) (stop func()) {
	s := sub.On(domain.MessageTypeNotification, func(msg relay.Message) {
		var n domain.Notification
		if err := msg.Decode(&n); err != nil {
			return
		}
		switch n.Kind {
		case domain.KindEventRequest, domain.KindOrganizerSelected:
			b.mu.Lock()
			b.needsRefresh = true
			b.mu.Unlock()
			b.logger.Debug("organizer board marked stale", "kind", n.Kind, "event_id", n.EventID)
		}
	})
	return func() { sub.Off(s) }
}

// SetFilter selects the event type fetched by the next Refresh. An empty
// type means all types. Changing the filter marks the list stale; call
// Refresh to load the requests of the new type.
func (b *OrganizerBoard) SetFilter(t domain.EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t != b.filter {
		b.needsRefresh = true
	}
	b.filter = t
}

// SetSearch sets the free-text term matched case-insensitively against event
// type, venue, requester name and requester email.
func (b *OrganizerBoard) SetSearch(term string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.search = strings.TrimSpace(term)
}

// Refresh reloads the list for the current filter. On failure the list is
// emptied and LoadError carries the user-facing message.
func (b *OrganizerBoard) Refresh(ctx context.Context) error {
	b.mu.Lock()
	filter := b.filter
	b.loading = true
	b.mu.Unlock()

	list, err := b.api.ListOpenRequests(ctx, filter)

	b.mu.Lock()
	b.loading = false
	if err != nil {
		b.requests = nil
		b.loadErr = msgFetchFailed
		b.mu.Unlock()
		b.logger.Warn("organizer list fetch failed", "event_type", filter, "err", err)
		b.alerter.Alert(msgFetchFailed)
		return fmt.Errorf("list open requests: %w", err)
	}
	b.requests = cloneRequests(list)
	b.loadErr = ""
	b.needsRefresh = false
	b.mu.Unlock()
	return nil
}

// Requests returns a copy of the loaded list.
func (b *OrganizerBoard) Requests() []domain.EventRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneRequests(b.requests)
}

// Visible returns the loaded requests matching the filter and search term.
func (b *OrganizerBoard) Visible() []domain.EventRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	term := strings.ToLower(b.search)
	out := make([]domain.EventRequest, 0, len(b.requests))
	for i := range b.requests {
		r := &b.requests[i]
		if b.filter != "" && r.EventType != b.filter {
			continue
		}
		if term != "" && !matches(r, term) {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

// Loading reports whether a Refresh is in progress.
func (b *OrganizerBoard) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// LoadError returns the message of the last failed Refresh, or "".
func (b *OrganizerBoard) LoadError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadErr
}

// NeedsRefresh reports whether a push notification or a filter change made
// the list stale.
func (b *OrganizerBoard) NeedsRefresh() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.needsRefresh
}

// Accept expresses interest in requestID. proposedBudget, when set, must be
// positive; when nil the request budget is recorded.
func (b *OrganizerBoard) Accept(ctx context.Context, requestID string, proposedBudget *float64) error {
	req, err := b.begin(requestID)
	if err != nil {
		return err
	}
	defer b.end(requestID)
	if !validBudget(proposedBudget) {
		b.alerter.Alert(msgInvalidBudget)
		return fmt.Errorf("proposed budget %v: %w", *proposedBudget, domain.ErrInvalidInput)
	}

	me := b.identity.UserID
	if err := b.api.Accept(ctx, requestID, me, proposedBudget); err != nil {
		b.alerter.Alert(alertMessage(err, msgAcceptFailed))
		b.logger.Warn("accept failed", "request_id", requestID, "organizer_id", me, "err", err)
		return fmt.Errorf("accept %s: %w", requestID, err)
	}

	b.mu.Lock()
	if i := b.indexOf(requestID); i >= 0 {
		b.requests[i].ApplyAccept(me, proposedBudget, b.now())
	}
	b.mu.Unlock()

	b.alerter.Alert(msgAccepted)
	b.notify(domain.KindRequestAccepted, req)
	return nil
}

// Reject declines requestID for this organizer and removes it from the list.
func (b *OrganizerBoard) Reject(ctx context.Context, requestID string) error {
	req, err := b.begin(requestID)
	if err != nil {
		return err
	}
	defer b.end(requestID)

	me := b.identity.UserID
	if err := b.api.Reject(ctx, requestID); err != nil {
		b.alerter.Alert(alertMessage(err, msgRejectFailed))
		b.logger.Warn("reject failed", "request_id", requestID, "organizer_id", me, "err", err)
		return fmt.Errorf("reject %s: %w", requestID, err)
	}

	b.mu.Lock()
	if i := b.indexOf(requestID); i >= 0 {
		b.requests[i].ApplyReject(me, b.now())
		b.requests = append(b.requests[:i], b.requests[i+1:]...)
	}
	b.mu.Unlock()

	b.alerter.Alert(msgRejected)
	b.notify(domain.KindRequestRejected, req)
	return nil
}

// begin checks identity and request state and marks requestID in flight.
// It returns a copy of the request as loaded.
func (b *OrganizerBoard) begin(requestID string) (domain.EventRequest, error) {
	if !b.identity.Resolved() {
		b.alerter.Alert(msgOrganizerMissing)
		return domain.EventRequest{}, domain.ErrIdentity
	}
	b.mu.Lock()
	if _, busy := b.inFlight[requestID]; busy {
		b.mu.Unlock()
		return domain.EventRequest{}, domain.ErrInProgress
	}
	i := b.indexOf(requestID)
	if i < 0 {
		b.mu.Unlock()
		return domain.EventRequest{}, fmt.Errorf("event request %s: %w", requestID, domain.ErrNotFound)
	}
	if b.requests[i].ClosedTo(b.identity.UserID) {
		b.mu.Unlock()
		b.alerter.Alert(msgRequestClosed)
		return domain.EventRequest{}, fmt.Errorf("event request %s: %w", requestID, domain.ErrRequestClosed)
	}
	b.inFlight[requestID] = struct{}{}
	req := b.requests[i].Clone()
	b.mu.Unlock()
	return req, nil
}

func (b *OrganizerBoard) end(requestID string) {
	b.mu.Lock()
	delete(b.inFlight, requestID)
	b.mu.Unlock()
}

func (b *OrganizerBoard) indexOf(requestID string) int {
	for i := range b.requests {
		if b.requests[i].ID == requestID {
			return i
		}
	}
	return -1
}

func (b *OrganizerBoard) notify(kind domain.NotificationKind, req domain.EventRequest) {
	if b.publisher == nil {
		return
	}
	n := domain.Notification{
		Kind:        kind,
		EventID:     req.ID,
		UserID:      req.RequesterID(),
		OrganizerID: b.identity.UserID,
		CreatedAt:   b.now(),
	}
	if err := b.publisher.Send(domain.MessageTypeNotification, n); err != nil {
		b.logger.Debug("organizer notification not sent", "kind", kind, "err", err)
	}
}

func matches(r *domain.EventRequest, term string) bool {
	for _, field := range []string{string(r.EventType), r.Venue, r.Requester.FullName, r.Requester.Email} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func validBudget(p *float64) bool {
	return p == nil || *p > 0 && !math.IsInf(*p, 1)
}

func cloneRequests(in []domain.EventRequest) []domain.EventRequest {
	if in == nil {
		return nil
	}
	out := make([]domain.EventRequest, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
