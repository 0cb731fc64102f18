package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the client core and the backend.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// ErrIdentity is returned when a write action has no resolved caller identity
	// (missing or undecodable bearer credential).
	ErrIdentity = errors.New("identity unavailable")

	// ErrRequestClosed is returned when an organizer acts on a request that is
	// read-only to them.
	ErrRequestClosed = errors.New("event request is closed")

	// ErrInProgress is returned when an action is triggered again while the
	// first call is still in flight.
	ErrInProgress = errors.New("action already in progress")
)

// BackendError is a non-2xx response from the backend. Message carries the
// server-provided message when the body had one.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// ServerMessage returns the backend-provided message carried by err, if any.
func ServerMessage(err error) (string, bool) {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message, true
	}
	return "", false
}
