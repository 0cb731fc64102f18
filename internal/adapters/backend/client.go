package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"eventrequests/internal/domain"
)

type acceptBody struct {
	OrganizerID    string   `json:"organizerId"`
	ProposedBudget *float64 `json:"proposedBudget,omitempty"`
}

type selectBody struct {
	EventID     string `json:"eventId"`
	OrganizerID string `json:"organizerId"`
}

type requesterListBody struct {
	EventRequests []domain.EventRequest `json:"eventRequests"`
}

// errorBody covers the error shapes the backend may send.
type errorBody struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
}

// Client calls the event-request REST API on behalf of one identity.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewClient returns a Client for baseURL (e.g. http://localhost:4001/api/v1)
// that sends token as bearer credential.
func NewClient(client *http.Client, baseURL, token string) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{client: client, baseURL: baseURL, token: token}
}

// CreateRequest submits a new event request.
func (c *Client) CreateRequest(ctx context.Context, in domain.EventRequestInput) (domain.CreateResult, error) {
	var out domain.CreateResult
	if err := c.do(ctx, http.MethodPost, "/eventrequest", in, &out); err != nil {
		return domain.CreateResult{}, err
	}
	return out, nil
}

// ListOpenRequests lists requests visible to an organizer, optionally narrowed
// to one event type.
func (c *Client) ListOpenRequests(ctx context.Context, eventType domain.EventType) ([]domain.EventRequest, error) {
	path := "/eventrequest/event-requests"
	if eventType != "" {
		path += "?eventType=" + url.QueryEscape(string(eventType))
	}
	var out []domain.EventRequest
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Accept records the organizer's interest with an optional proposed budget.
func (c *Client) Accept(ctx context.Context, requestID, organizerID string, proposedBudget *float64) error {
	path := "/eventrequest/event-request/" + url.PathEscape(requestID) + "/accept"
	return c.do(ctx, http.MethodPut, path, acceptBody{OrganizerID: organizerID, ProposedBudget: proposedBudget}, nil)
}

// Reject declines the request for the calling organizer.
func (c *Client) Reject(ctx context.Context, requestID string) error {
	path := "/eventrequest/event-request/" + url.PathEscape(requestID) + "/reject"
	return c.do(ctx, http.MethodPut, path, struct{}{}, nil)
}

// ListMyRequests lists the caller's own requests with their interested organizers.
func (c *Client) ListMyRequests(ctx context.Context) ([]domain.EventRequest, error) {
	var out requesterListBody
	if err := c.do(ctx, http.MethodGet, "/eventrequest/event-requests-for-user", nil, &out); err != nil {
		return nil, err
	}
	return out.EventRequests, nil
}

// SelectOrganizer finalizes the request with one organizer.
func (c *Client) SelectOrganizer(ctx context.Context, requestID, organizerID string) error {
	return c.do(ctx, http.MethodPut, "/eventrequest/event-request/select-organizer", selectBody{EventID: requestID, OrganizerID: organizerID}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.BackendError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	var body errorBody
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	switch e := body.Error.(type) {
	case string:
		return e
	case map[string]any:
		if m, ok := e["message"].(string); ok {
			return m
		}
	}
	return ""
}
