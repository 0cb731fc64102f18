package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventrequests/internal/delivery/http/helpers"
	"eventrequests/internal/delivery/http/middleware"
	"eventrequests/internal/domain"
	"eventrequests/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	requestID   = "6f1c2a56-8d0e-4b1e-9a59-3c5f1f6f0a01"
	requesterID = "0b5e8c1c-3a0d-4c55-8f0e-2f0f5b1d9a11"
	organizerID = "9d2b7e43-51b6-4f7e-b6c2-7a1a0e3c4d22"
)

var (
	requester = domain.Identity{UserID: requesterID, Role: domain.RoleUser, FullName: "Ada Requester", Email: "ada@example.com"}
	organizer = domain.Identity{UserID: organizerID, Role: domain.RoleOrganizer}
)

// fakeEventRequestService implements domain.EventRequestService for handler tests.
type fakeEventRequestService struct {
	err    error
	result *domain.EventRequest
	list   []*domain.EventRequest

	lastCreate      *domain.EventRequest
	lastAccept      domain.AcceptInput
	lastOrganizerID string
	lastEventType   domain.EventType
	lastRequestID   string
	lastRequesterID string
}

func (f *fakeEventRequestService) Create(ctx context.Context, req *domain.EventRequest) error {
	f.lastCreate = req
	return f.err
}

func (f *fakeEventRequestService) ListForOrganizer(ctx context.Context, organizerID string, eventType domain.EventType) ([]*domain.EventRequest, error) {
	f.lastOrganizerID, f.lastEventType = organizerID, eventType
	return f.list, f.err
}

func (f *fakeEventRequestService) ListForRequester(ctx context.Context, requesterID string) ([]*domain.EventRequest, error) {
	f.lastRequesterID = requesterID
	return f.list, f.err
}

func (f *fakeEventRequestService) Accept(ctx context.Context, in domain.AcceptInput) (*domain.EventRequest, error) {
	f.lastAccept = in
	return f.result, f.err
}

func (f *fakeEventRequestService) Reject(ctx context.Context, requestID string, organizer domain.User) (*domain.EventRequest, error) {
	f.lastRequestID, f.lastOrganizerID = requestID, organizer.ID
	return f.result, f.err
}

func (f *fakeEventRequestService) SelectOrganizer(ctx context.Context, requestID, requesterID, organizerID string) (*domain.EventRequest, error) {
	f.lastRequestID, f.lastRequesterID, f.lastOrganizerID = requestID, requesterID, organizerID
	return f.result, f.err
}

func newController(svc *fakeEventRequestService) *EventRequestController {
	return NewEventRequestController(testLogger, svc, validation.New())
}

func newRequest(t *testing.T, method, target string, body any, caller *domain.Identity) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if caller != nil {
		req = req.WithContext(middleware.SetIdentity(req.Context(), *caller))
	}
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIError {
	t.Helper()
	var body helpers.APIError
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.False(t, body.Success)
	return body
}

func TestEventRequestController_Create(t *testing.T) {
	valid := map[string]any{
		"eventType":   "Wedding",
		"venue":       "Hall A",
		"date":        "2025-12-01",
		"budget":      5000,
		"description": "Outdoor ceremony for 120 guests",
	}
	with := func(key string, value any) map[string]any {
		m := make(map[string]any, len(valid))
		for k, v := range valid {
			m[k] = v
		}
		if value == nil {
			delete(m, key)
		} else {
			m[key] = value
		}
		return m
	}

	tests := []struct {
		name        string
		body        any
		caller      *domain.Identity
		serviceErr  error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{name: "created", body: valid, caller: &requester, wantStatus: http.StatusCreated},
		{name: "unauthenticated", body: valid, wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{name: "short description", body: with("description", "short"), caller: &requester, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest, wantMessage: "Description must be at least 10 characters long"},
		{name: "missing budget", body: with("budget", nil), caller: &requester, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest, wantMessage: "Budget is required"},
		{name: "negative budget", body: with("budget", -5), caller: &requester, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest, wantMessage: "Please enter a valid budget amount"},
		{name: "bad date format", body: with("date", "01/12/2025"), caller: &requester, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest, wantMessage: "Date must be in YYYY-MM-DD format"},
		{name: "unknown event type", body: with("eventType", "Rave"), caller: &requester, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "unknown field", body: with("guests", 120), caller: &requester, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "service error", body: valid, caller: &requester, serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantCode: helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventRequestService{err: tt.serviceErr}
			rr := httptest.NewRecorder()

			newController(svc).Create(rr, newRequest(t, http.MethodPost, "/api/v1/eventrequest", tt.body, tt.caller))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				var body helpers.APIMessage
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.True(t, body.Success)
				assert.NotEmpty(t, body.Message)
				require.NotNil(t, svc.lastCreate)
				assert.Equal(t, requesterID, svc.lastCreate.RequesterID())
				assert.Equal(t, domain.EventTypeWedding, svc.lastCreate.EventType)
				assert.Equal(t, 5000.0, svc.lastCreate.Budget)
				assert.Equal(t, "Ada Requester", svc.lastCreate.Requester.FullName)
				return
			}
			body := decodeError(t, rr)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Contains(t, body.Message, tt.wantMessage)
		})
	}
}

func TestEventRequestController_ListForOrganizer(t *testing.T) {
	list := []*domain.EventRequest{{ID: requestID, EventType: domain.EventTypeSports, Status: domain.RequestStatusOpen, InterestedOrganizers: []domain.OrganizerInterest{}}}

	tests := []struct {
		name          string
		target        string
		serviceErr    error
		wantStatus    int
		wantEventType domain.EventType
	}{
		{name: "all types", target: "/api/v1/eventrequest/event-requests", wantStatus: http.StatusOK},
		{name: "filtered", target: "/api/v1/eventrequest/event-requests?eventType=Sports", wantStatus: http.StatusOK, wantEventType: domain.EventTypeSports},
		{name: "unknown type", target: "/api/v1/eventrequest/event-requests?eventType=Rave", wantStatus: http.StatusBadRequest},
		{name: "service error", target: "/api/v1/eventrequest/event-requests", serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventRequestService{list: list, err: tt.serviceErr}
			rr := httptest.NewRecorder()

			newController(svc).ListForOrganizer(rr, newRequest(t, http.MethodGet, tt.target, nil, &organizer))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				decodeError(t, rr)
				return
			}
			var got []domain.EventRequest
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			require.Len(t, got, 1)
			assert.Equal(t, requestID, got[0].ID)
			assert.Equal(t, organizerID, svc.lastOrganizerID)
			assert.Equal(t, tt.wantEventType, svc.lastEventType)
		})
	}
}

func TestEventRequestController_ListForRequester(t *testing.T) {
	svc := &fakeEventRequestService{list: []*domain.EventRequest{{ID: requestID, InterestedOrganizers: []domain.OrganizerInterest{}}}}
	rr := httptest.NewRecorder()

	newController(svc).ListForRequester(rr, newRequest(t, http.MethodGet, "/api/v1/eventrequest/event-requests-for-user", nil, &requester))

	require.Equal(t, http.StatusOK, rr.Code)
	var got RequesterListResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Len(t, got.EventRequests, 1)
	assert.Equal(t, requesterID, svc.lastRequesterID)
}

func TestEventRequestController_Accept(t *testing.T) {
	budget := 4500.0
	tests := []struct {
		name        string
		id          string
		body        any
		serviceErr  error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{name: "accepted with budget", id: requestID, body: AcceptBody{OrganizerID: organizerID, ProposedBudget: &budget}, wantStatus: http.StatusOK},
		{name: "accepted without organizerId", id: requestID, body: map[string]any{}, wantStatus: http.StatusOK},
		{name: "invalid id", id: "42", body: AcceptBody{}, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "non-positive budget", id: requestID, body: map[string]any{"proposedBudget": 0}, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest, wantMessage: "Please enter a valid budget amount"},
		{name: "organizerId of someone else", id: requestID, body: AcceptBody{OrganizerID: requesterID}, wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "not found", id: requestID, body: AcceptBody{}, serviceErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "deal done", id: requestID, body: AcceptBody{}, serviceErr: domain.ErrConflict, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeConflict, wantMessage: "This event request is already closed."},
		{name: "internal error", id: requestID, body: AcceptBody{}, serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantCode: helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventRequestService{err: tt.serviceErr, result: &domain.EventRequest{ID: requestID, InterestedOrganizers: []domain.OrganizerInterest{}}}
			req := newRequest(t, http.MethodPut, "/api/v1/eventrequest/event-request/"+tt.id+"/accept", tt.body, &organizer)
			req.SetPathValue("id", tt.id)
			rr := httptest.NewRecorder()

			newController(svc).Accept(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var got EventRequestActionResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.True(t, got.Success)
				assert.Equal(t, requestID, got.EventRequest.ID)
				assert.Equal(t, organizerID, svc.lastAccept.Organizer.ID)
				assert.Equal(t, requestID, svc.lastAccept.RequestID)
				return
			}
			body := decodeError(t, rr)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Contains(t, body.Message, tt.wantMessage)
		})
	}
}

func TestEventRequestController_Reject(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantStatus int
	}{
		{name: "rejected", body: "{}", wantStatus: http.StatusOK},
		{name: "empty body", wantStatus: http.StatusOK},
		{name: "deal done", body: "{}", serviceErr: domain.ErrConflict, wantStatus: http.StatusConflict},
		{name: "not found", body: "{}", serviceErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventRequestService{err: tt.serviceErr, result: &domain.EventRequest{ID: requestID, InterestedOrganizers: []domain.OrganizerInterest{}}}
			req := newRequest(t, http.MethodPut, "/api/v1/eventrequest/event-request/"+requestID+"/reject", tt.body, &organizer)
			req.SetPathValue("id", requestID)
			rr := httptest.NewRecorder()

			newController(svc).Reject(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, requestID, svc.lastRequestID)
			assert.Equal(t, organizerID, svc.lastOrganizerID)
		})
	}
}

func TestEventRequestController_SelectOrganizer(t *testing.T) {
	tests := []struct {
		name        string
		body        any
		serviceErr  error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{name: "selected", body: SelectOrganizerBody{EventID: requestID, OrganizerID: organizerID}, wantStatus: http.StatusOK},
		{name: "missing ids", body: SelectOrganizerBody{}, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest, wantMessage: "eventId must be a valid id"},
		{name: "not the owner", body: SelectOrganizerBody{EventID: requestID, OrganizerID: organizerID}, serviceErr: domain.ErrForbidden, wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "organizer did not accept", body: SelectOrganizerBody{EventID: requestID, OrganizerID: organizerID}, serviceErr: domain.ErrInvalidInput, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest, wantMessage: "has not accepted"},
		{name: "already selected", body: SelectOrganizerBody{EventID: requestID, OrganizerID: organizerID}, serviceErr: domain.ErrConflict, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeConflict, wantMessage: "already been selected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventRequestService{err: tt.serviceErr, result: &domain.EventRequest{ID: requestID, Status: domain.RequestStatusDealDone, SelectedOrganizerID: organizerID, InterestedOrganizers: []domain.OrganizerInterest{}}}
			rr := httptest.NewRecorder()

			newController(svc).SelectOrganizer(rr, newRequest(t, http.MethodPut, "/api/v1/eventrequest/event-request/select-organizer", tt.body, &requester))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var got EventRequestActionResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, domain.RequestStatusDealDone, got.EventRequest.Status)
				assert.Equal(t, "Organizer selected successfully, and status updated to deal_done.", got.Message)
				assert.Equal(t, requesterID, svc.lastRequesterID)
				assert.Equal(t, organizerID, svc.lastOrganizerID)
				return
			}
			body := decodeError(t, rr)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Contains(t, body.Message, tt.wantMessage)
		})
	}
}
