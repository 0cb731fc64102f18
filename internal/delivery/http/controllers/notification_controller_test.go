package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventrequests/internal/delivery/http/helpers"
	"eventrequests/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct {
	event   string
	payload any
	err     error
}

func (f *fakeBroadcaster) Broadcast(event string, payload any) error {
	f.event, f.payload = event, payload
	return f.err
}

func TestNotificationController_Publish(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		body         any
		caller       *domain.Identity
		broadcastErr error
		wantStatus   int
		wantCode     string
		want         domain.Notification
	}{
		{
			name:       "organizer accept is broadcast",
			body:       PublishNotificationBody{EventID: requestID, UserID: requesterID, Message: "Your request was accepted", Type: domain.KindRequestAccepted},
			caller:     &organizer,
			wantStatus: http.StatusAccepted,
			want: domain.Notification{
				Kind: domain.KindRequestAccepted, EventID: requestID, UserID: requesterID,
				OrganizerID: organizerID, Message: "Your request was accepted", CreatedAt: at,
			},
		},
		{
			name:       "new request without event id",
			body:       PublishNotificationBody{UserID: requesterID, Type: domain.KindEventRequest},
			caller:     &requester,
			wantStatus: http.StatusAccepted,
			want:       domain.Notification{Kind: domain.KindEventRequest, UserID: requesterID, CreatedAt: at},
		},
		{name: "unknown type", body: PublishNotificationBody{EventID: requestID, Type: "party"}, caller: &requester, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "missing event id", body: PublishNotificationBody{Type: domain.KindOrganizerSelected}, caller: &requester, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "unauthenticated", body: PublishNotificationBody{EventID: requestID, Type: domain.KindRequestRejected}, wantStatus: http.StatusUnauthorized, wantCode: helpers.ErrCodeUnauthorized},
		{name: "broadcast failure", body: PublishNotificationBody{EventID: requestID, Type: domain.KindRequestRejected}, caller: &organizer, broadcastErr: errors.New("closed"), wantStatus: http.StatusInternalServerError, wantCode: helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBroadcaster{err: tt.broadcastErr}
			c := NewNotificationController(testLogger, b)
			c.now = func() time.Time { return at }
			rr := httptest.NewRecorder()

			c.Publish(rr, newRequest(t, http.MethodPost, "/api/v1/notifications/events", tt.body, tt.caller))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
				return
			}
			assert.Equal(t, domain.MessageTypeNotification, b.event)
			assert.Equal(t, tt.want, b.payload)
		})
	}
}
