package domain

import (
	"context"
	"time"
)

// EventType is the category of a requested event.
type EventType string

const (
	EventTypeWedding     EventType = "Wedding"
	EventTypeSports      EventType = "Sports"
	EventTypeCorporate   EventType = "Corporate"
	EventTypePolitical   EventType = "Political"
	EventTypeEducational EventType = "Educational"
)

// EventTypes lists the accepted event types in display order.
var EventTypes = []EventType{
	EventTypeWedding,
	EventTypeSports,
	EventTypeCorporate,
	EventTypePolitical,
	EventTypeEducational,
}

// Valid reports whether t is one of EventTypes.
func (t EventType) Valid() bool {
	for _, v := range EventTypes {
		if v == t {
			return true
		}
	}
	return false
}

// RequestStatus is the aggregate status of an event request.
type RequestStatus string

const (
	RequestStatusOpen     RequestStatus = "open"
	RequestStatusDealDone RequestStatus = "deal_done"
)

// InterestStatus is the status of one organizer's interest in a request.
type InterestStatus string

const (
	InterestPending  InterestStatus = "pending"
	InterestAccepted InterestStatus = "accepted"
	InterestRejected InterestStatus = "rejected"
)

// Requester is the user who owns an event request, as populated by the backend.
type Requester struct {
	ID       string `json:"_id"`
	FullName string `json:"fullname,omitempty"`
	Email    string `json:"email,omitempty"`
}

// OrganizerInterest is one organizer's response to an event request.
// swagger:model OrganizerInterest
type OrganizerInterest struct {
	OrganizerID    string         `json:"organizerId"`
	Status         InterestStatus `json:"status"`
	ProposedBudget *float64       `json:"proposedBudget,omitempty"`
	ResponseDate   *time.Time     `json:"responseDate,omitempty"`
	Message        string         `json:"message,omitempty"`
}

// EventRequest is a requester's call for an organizer.
// swagger:model EventRequest
type EventRequest struct {
	ID                   string              `json:"_id"`
	Requester            Requester           `json:"userId"`
	EventType            EventType           `json:"eventType"`
	Venue                string              `json:"venue"`
	Date                 string              `json:"date"`
	Budget               float64             `json:"budget"`
	Description          string              `json:"description"`
	Status               RequestStatus       `json:"status"`
	InterestedOrganizers []OrganizerInterest `json:"interestedOrganizers"`
	SelectedOrganizerID  string              `json:"selectedOrganizer,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// NewEventRequest returns an open EventRequest. ID is set by the repository on create.
func NewEventRequest(requesterID string, eventType EventType, venue, date string, budget float64, description string, createdAt, updatedAt time.Time) *EventRequest {
	return &EventRequest{
		Requester:            Requester{ID: requesterID},
		EventType:            eventType,
		Venue:                venue,
		Date:                 date,
		Budget:               budget,
		Description:          description,
		Status:               RequestStatusOpen,
		InterestedOrganizers: []OrganizerInterest{},
		CreatedAt:            createdAt,
		UpdatedAt:            updatedAt,
	}
}

// RequesterID returns the owning user's id.
func (r *EventRequest) RequesterID() string {
	return r.Requester.ID
}

// Clone returns a deep copy of r.
func (r *EventRequest) Clone() EventRequest {
	c := *r
	c.InterestedOrganizers = make([]OrganizerInterest, len(r.InterestedOrganizers))
	for i, in := range r.InterestedOrganizers {
		if in.ProposedBudget != nil {
			b := *in.ProposedBudget
			in.ProposedBudget = &b
		}
		if in.ResponseDate != nil {
			d := *in.ResponseDate
			in.ResponseDate = &d
		}
		c.InterestedOrganizers[i] = in
	}
	return c
}

// Interest returns organizerID's entry, or nil.
func (r *EventRequest) Interest(organizerID string) *OrganizerInterest {
	for i := range r.InterestedOrganizers {
		if r.InterestedOrganizers[i].OrganizerID == organizerID {
			return &r.InterestedOrganizers[i]
		}
	}
	return nil
}

// Finalized reports whether the requester has selected an organizer.
func (r *EventRequest) Finalized() bool {
	return r.Status == RequestStatusDealDone && r.SelectedOrganizerID != ""
}

// ClosedTo reports whether organizerID may no longer accept or reject r.
// A finalized request is closed to everyone. A deal_done request without a
// selection stays open only to the organizer whose own accepted entry put it
// there.
func (r *EventRequest) ClosedTo(organizerID string) bool {
	if r.Status != RequestStatusDealDone {
		return false
	}
	if r.SelectedOrganizerID != "" {
		return true
	}
	in := r.Interest(organizerID)
	return in == nil || in.Status != InterestAccepted
}

// RecordInterest upserts organizerID's entry. A new entry is appended so the
// slice keeps acceptance order; an existing entry is updated in place.
func (r *EventRequest) RecordInterest(organizerID string, status InterestStatus, proposedBudget *float64, message string, at time.Time) {
	if in := r.Interest(organizerID); in != nil {
		in.Status = status
		if proposedBudget != nil {
			in.ProposedBudget = proposedBudget
		}
		if message != "" {
			in.Message = message
		}
		in.ResponseDate = &at
		return
	}
	r.InterestedOrganizers = append(r.InterestedOrganizers, OrganizerInterest{
		OrganizerID:    organizerID,
		Status:         status,
		ProposedBudget: proposedBudget,
		ResponseDate:   &at,
		Message:        message,
	})
}

// EffectiveBudget returns proposed when set, else the request budget.
func (r *EventRequest) EffectiveBudget(proposed *float64) *float64 {
	if proposed != nil {
		b := *proposed
		return &b
	}
	b := r.Budget
	return &b
}

// ApplyAccept is the organizer-side transition after a successful accept:
// status becomes deal_done and the organizer's entry is accepted with the
// submitted budget.
func (r *EventRequest) ApplyAccept(organizerID string, proposedBudget *float64, at time.Time) {
	r.Status = RequestStatusDealDone
	r.RecordInterest(organizerID, InterestAccepted, r.EffectiveBudget(proposedBudget), "", at)
}

// ApplyReject is the organizer-side transition after a successful reject:
// status reverts to open and only the organizer's own entry is marked rejected.
func (r *EventRequest) ApplyReject(organizerID string, at time.Time) {
	r.Status = RequestStatusOpen
	r.RecordInterest(organizerID, InterestRejected, nil, "", at)
}

// Select finalizes r with organizerID. The organizer must hold an accepted
// entry and r must not already be deal_done.
func (r *EventRequest) Select(organizerID string, at time.Time) error {
	if r.Status == RequestStatusDealDone {
		return ErrConflict
	}
	in := r.Interest(organizerID)
	if in == nil || in.Status != InterestAccepted {
		return ErrInvalidInput
	}
	r.Status = RequestStatusDealDone
	r.SelectedOrganizerID = organizerID
	r.UpdatedAt = at
	return nil
}

// EventRequestInput is the payload of a new event request.
type EventRequestInput struct {
	EventType   EventType `json:"eventType"`
	Venue       string    `json:"venue"`
	Date        string    `json:"date"`
	Budget      float64   `json:"budget"`
	Description string    `json:"description"`
}

// CreateResult is the backend's answer to a create.
type CreateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OpenRequestFilter narrows the organizer listing.
type OpenRequestFilter struct {
	EventType EventType // empty means all
	// ExcludeRejectedBy hides requests this organizer already rejected.
	ExcludeRejectedBy string
}

// EventRequestRepository defines storage for event requests and interests.
type EventRequestRepository interface {
	Create(ctx context.Context, req *EventRequest) error
	GetByID(ctx context.Context, id string) (*EventRequest, error)
	ListOpen(ctx context.Context, filter OpenRequestFilter) ([]*EventRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*EventRequest, error)
	UpsertInterest(ctx context.Context, requestID string, interest OrganizerInterest) error
	// MarkDealDone sets deal_done and the selected organizer only if the request
	// is still open; otherwise it returns ErrConflict.
	MarkDealDone(ctx context.Context, requestID, organizerID string, at time.Time) error
}

// AcceptInput is an organizer's accept action.
type AcceptInput struct {
	RequestID      string
	Organizer      User
	ProposedBudget *float64
	Message        string
}

// EventRequestService defines the backend business logic of the matching workflow.
type EventRequestService interface {
	Create(ctx context.Context, req *EventRequest) error
	ListForOrganizer(ctx context.Context, organizerID string, eventType EventType) ([]*EventRequest, error)
	ListForRequester(ctx context.Context, requesterID string) ([]*EventRequest, error)
	Accept(ctx context.Context, in AcceptInput) (*EventRequest, error)
	Reject(ctx context.Context, requestID string, organizer User) (*EventRequest, error)
	SelectOrganizer(ctx context.Context, requestID, requesterID, organizerID string) (*EventRequest, error)
}
