package usecase

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"eventrequests/internal/domain"
	"eventrequests/internal/relay"
)

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	fixedNow   = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func budget(v float64) *float64 { return &v }

// alerts records every message shown to the user.
type alerts struct {
	mu   sync.Mutex
	msgs []string
}

func (a *alerts) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
}

func (a *alerts) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.msgs...)
}

// published records notifications sent on the push channel.
type published struct {
	mu    sync.Mutex
	sent  []domain.Notification
	fails error
}

func (p *published) Send(event string, payload any) error {
	if p.fails != nil {
		return p.fails
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if n, ok := payload.(domain.Notification); ok && event == domain.MessageTypeNotification {
		p.sent = append(p.sent, n)
	}
	return nil
}

func (p *published) notifications() []domain.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Notification(nil), p.sent...)
}

// subscriber is an in-memory push channel that delivers synchronously.
type subscriber struct {
	mu       sync.Mutex
	next     int
	handlers map[int]relay.Handler
}

func newSubscriber() *subscriber {
	return &subscriber{handlers: make(map[int]relay.Handler)}
}

func (s *subscriber) On(event string, h relay.Handler) relay.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.handlers[s.next] = h
	return relay.Subscription{}
}

func (s *subscriber) Off(relay.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = make(map[int]relay.Handler)
}

func (s *subscriber) emit(n domain.Notification) {
	raw, _ := json.Marshal(n)
	s.mu.Lock()
	hs := make([]relay.Handler, 0, len(s.handlers))
	for _, h := range s.handlers {
		hs = append(hs, h)
	}
	s.mu.Unlock()
	for _, h := range hs {
		h(relay.Message{Type: domain.MessageTypeNotification, Raw: raw})
	}
}

// mockOrganizerAPI is a testify mock of OrganizerAPI.
type mockOrganizerAPI struct {
	mock.Mock
}

func (m *mockOrganizerAPI) ListOpenRequests(ctx context.Context, eventType domain.EventType) ([]domain.EventRequest, error) {
	args := m.Called(ctx, eventType)
	list, _ := args.Get(0).([]domain.EventRequest)
	return list, args.Error(1)
}

func (m *mockOrganizerAPI) Accept(ctx context.Context, requestID, organizerID string, proposedBudget *float64) error {
	return m.Called(ctx, requestID, organizerID, proposedBudget).Error(0)
}

func (m *mockOrganizerAPI) Reject(ctx context.Context, requestID string) error {
	return m.Called(ctx, requestID).Error(0)
}

// requesterAPI is an in-memory backend for the requester board. Selection
// moves the stored request to deal_done so a refetch observes it.
type requesterAPI struct {
	mu        sync.Mutex
	requests  []domain.EventRequest
	listErr   error
	selectErr error
	selects   int
	block     chan struct{}
}

func (a *requesterAPI) ListMyRequests(ctx context.Context) ([]domain.EventRequest, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listErr != nil {
		return nil, a.listErr
	}
	return cloneRequests(a.requests), nil
}

func (a *requesterAPI) SelectOrganizer(ctx context.Context, requestID, organizerID string) error {
	if a.block != nil {
		<-a.block
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selects++
	if a.selectErr != nil {
		return a.selectErr
	}
	for i := range a.requests {
		if a.requests[i].ID == requestID {
			return a.requests[i].Select(organizerID, fixedNow)
		}
	}
	return domain.ErrNotFound
}

// creator is a scripted RequestCreator.
type creator struct {
	mu     sync.Mutex
	got    []domain.EventRequestInput
	result domain.CreateResult
	err    error
	block  chan struct{}
}

func (c *creator) CreateRequest(ctx context.Context, in domain.EventRequestInput) (domain.CreateResult, error) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, in)
	return c.result, c.err
}

func (c *creator) calls() []domain.EventRequestInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.EventRequestInput(nil), c.got...)
}

func openRequest(id string, eventType domain.EventType, venue string) domain.EventRequest {
	r := domain.NewEventRequest("user-1", eventType, venue, "2025-12-01", 5000, "A description of the event", fixedNow, fixedNow)
	r.ID = id
	r.Requester.FullName = "Ada Requester"
	return *r
}
