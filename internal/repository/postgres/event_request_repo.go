package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"eventrequests/internal/domain"
)

const selectEventRequests = `
	SELECT r.id, r.user_id, u.fullname, u.email, r.event_type, r.venue, to_char(r.event_date, 'YYYY-MM-DD'),
		r.budget, r.description, r.status, r.selected_organizer_id, r.created_at, r.updated_at
	FROM event_requests r
	INNER JOIN users u ON u.id = r.user_id
`

type EventRequestRepository struct {
	DB *sql.DB
}

func NewEventRequestRepository(db *sql.DB) *EventRequestRepository {
	return &EventRequestRepository{DB: db}
}

func (r *EventRequestRepository) Create(ctx context.Context, req *domain.EventRequest) error {
	query := `
		INSERT INTO event_requests (user_id, event_type, venue, event_date, budget, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		req.RequesterID(), string(req.EventType), req.Venue, req.Date, req.Budget, req.Description,
		string(req.Status), req.CreatedAt, req.UpdatedAt,
	).Scan(&req.ID)
}

func (r *EventRequestRepository) GetByID(ctx context.Context, id string) (*domain.EventRequest, error) {
	row := r.DB.QueryRowContext(ctx, selectEventRequests+`WHERE r.id = $1`, id)
	req, err := scanEventRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachInterests(ctx, []*domain.EventRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// ListOpen returns open requests, newest first. An empty filter field is
// ignored.
func (r *EventRequestRepository) ListOpen(ctx context.Context, filter domain.OpenRequestFilter) ([]*domain.EventRequest, error) {
	query := selectEventRequests + `
		WHERE r.status = 'open'
			AND ($1 = '' OR r.event_type = $1)
			AND ($2 = '' OR NOT EXISTS (
				SELECT 1 FROM event_request_interests i
				WHERE i.event_request_id = r.id AND i.organizer_id::text = $2 AND i.status = 'rejected'
			))
		ORDER BY r.created_at DESC
	`
	return r.list(ctx, query, string(filter.EventType), filter.ExcludeRejectedBy)
}

func (r *EventRequestRepository) ListByRequester(ctx context.Context, requesterID string) ([]*domain.EventRequest, error) {
	return r.list(ctx, selectEventRequests+`WHERE r.user_id = $1 ORDER BY r.created_at DESC`, requesterID)
}

// UpsertInterest inserts or updates the organizer's entry. A nil proposed
// budget or an empty message keeps the stored value.
func (r *EventRequestRepository) UpsertInterest(ctx context.Context, requestID string, in domain.OrganizerInterest) error {
	query := `
		INSERT INTO event_request_interests (event_request_id, organizer_id, status, proposed_budget, message, response_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_request_id, organizer_id) DO UPDATE SET
			status = EXCLUDED.status,
			proposed_budget = COALESCE(EXCLUDED.proposed_budget, event_request_interests.proposed_budget),
			message = CASE WHEN EXCLUDED.message <> '' THEN EXCLUDED.message ELSE event_request_interests.message END,
			response_date = EXCLUDED.response_date
	`
	var budget sql.NullFloat64
	if in.ProposedBudget != nil {
		budget = sql.NullFloat64{Float64: *in.ProposedBudget, Valid: true}
	}
	var responded sql.NullTime
	if in.ResponseDate != nil {
		responded = sql.NullTime{Time: *in.ResponseDate, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, requestID, in.OrganizerID, string(in.Status), budget, in.Message, responded)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// MarkDealDone finalizes an open request. It returns domain.ErrConflict when
// the request exists but is no longer open.
func (r *EventRequestRepository) MarkDealDone(ctx context.Context, requestID, organizerID string, at time.Time) error {
	query := `
		UPDATE event_requests
		SET status = 'deal_done', selected_organizer_id = $2, updated_at = $3
		WHERE id = $1 AND status = 'open'
	`
	res, err := r.DB.ExecContext(ctx, query, requestID, organizerID, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM event_requests WHERE id = $1)`, requestID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	return nil
}

func (r *EventRequestRepository) list(ctx context.Context, query string, args ...any) ([]*domain.EventRequest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	requests := make([]*domain.EventRequest, 0)
	for rows.Next() {
		req, err := scanEventRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachInterests(ctx, requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// attachInterests loads the interest entries of requests in one query,
// ordered by when each organizer first responded.
func (r *EventRequestRepository) attachInterests(ctx context.Context, requests []*domain.EventRequest) error {
	if len(requests) == 0 {
		return nil
	}
	ids := make([]string, len(requests))
	byID := make(map[string]*domain.EventRequest, len(requests))
	for i, req := range requests {
		ids[i] = req.ID
		byID[req.ID] = req
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT event_request_id, organizer_id, status, proposed_budget, message, response_date
		FROM event_request_interests
		WHERE event_request_id = ANY($1)
		ORDER BY created_at, organizer_id
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var requestID, status string
		var in domain.OrganizerInterest
		var budget sql.NullFloat64
		var responded sql.NullTime
		if err := rows.Scan(&requestID, &in.OrganizerID, &status, &budget, &in.Message, &responded); err != nil {
			return err
		}
		in.Status = domain.InterestStatus(status)
		if budget.Valid {
			in.ProposedBudget = &budget.Float64
		}
		if responded.Valid {
			in.ResponseDate = &responded.Time
		}
		if req, ok := byID[requestID]; ok {
			req.InterestedOrganizers = append(req.InterestedOrganizers, in)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEventRequest(row rowScanner) (*domain.EventRequest, error) {
	req := &domain.EventRequest{InterestedOrganizers: []domain.OrganizerInterest{}}
	var eventType, status string
	var selected sql.NullString
	err := row.Scan(
		&req.ID, &req.Requester.ID, &req.Requester.FullName, &req.Requester.Email,
		&eventType, &req.Venue, &req.Date, &req.Budget, &req.Description, &status,
		&selected, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan event request: %w", err)
	}
	req.EventType = domain.EventType(eventType)
	req.Status = domain.RequestStatus(status)
	if selected.Valid {
		req.SelectedOrganizerID = selected.String
	}
	return req, nil
}
