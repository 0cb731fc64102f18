package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "eventrequests/docs"
	"eventrequests/internal/delivery/http/controllers"
	"eventrequests/internal/delivery/http/helpers"
	"eventrequests/internal/domain"
)

// APIPrefix is the base path of the REST API.
const APIPrefix = "/api/v1"

// Auth wraps a handler with bearer authentication and an optional role check.
type Auth func(next http.HandlerFunc, roles ...domain.Role) http.HandlerFunc

// NewRouter initializes the HTTP router with all application routes.
// push serves the WebSocket channel at /ws.
func NewRouter(eventRequests *controllers.EventRequestController, notifications *controllers.NotificationController, push http.Handler, auth Auth) *http.ServeMux {
	mux := http.NewServeMux()

	// Requester
	mux.HandleFunc("POST "+APIPrefix+"/eventrequest", auth(eventRequests.Create, domain.RoleUser))
	mux.HandleFunc("GET "+APIPrefix+"/eventrequest/event-requests-for-user", auth(eventRequests.ListForRequester, domain.RoleUser))
	mux.HandleFunc("PUT "+APIPrefix+"/eventrequest/event-request/select-organizer", auth(eventRequests.SelectOrganizer, domain.RoleUser))

	// Organizer
	mux.HandleFunc("GET "+APIPrefix+"/eventrequest/event-requests", auth(eventRequests.ListForOrganizer, domain.RoleOrganizer))
	mux.HandleFunc("PUT "+APIPrefix+"/eventrequest/event-request/{id}/accept", auth(eventRequests.Accept, domain.RoleOrganizer))
	mux.HandleFunc("PUT "+APIPrefix+"/eventrequest/event-request/{id}/reject", auth(eventRequests.Reject, domain.RoleOrganizer))

	// Notifications
	mux.HandleFunc("POST "+APIPrefix+"/notifications/events", auth(notifications.Publish))
	mux.Handle("GET /ws", push)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONMessage(w, http.StatusOK, "ok")
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
