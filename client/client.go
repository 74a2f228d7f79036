// Package client is the consuming side of the eventdeck API: a typed HTTP
// client plus a session-scoped cache that mirrors server state, deduplicates
// reads, and applies optimistic writes for event creation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Date          time.Time `json:"date"`
	Capacity      int       `json:"capacity"`
	AttendeeCount int       `json:"attendee_count"`
}

type Attendee struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateEventInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	Capacity    int    `json:"capacity"`
}

type RegisterInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// APIError is a non-2xx answer from the server, carrying the status code and
// the message from the {"error": ...} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Client talks to the eventdeck HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a Client for the given base URL, e.g.
// "http://localhost:8080/api/v1". A nil httpClient falls back to a client
// with a 15s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodGet, "/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, input CreateEventInput) (*Event, error) {
	var event Event
	if err := c.do(ctx, http.MethodPost, "/events", input, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+eventID, nil, nil)
}

func (c *Client) ListAttendees(ctx context.Context, eventID string) ([]Attendee, error) {
	var attendees []Attendee
	if err := c.do(ctx, http.MethodGet, "/events/"+eventID+"/attendees", nil, &attendees); err != nil {
		return nil, err
	}
	return attendees, nil
}

func (c *Client) Register(ctx context.Context, eventID string, input RegisterInput) (*Attendee, error) {
	var attendee Attendee
	if err := c.do(ctx, http.MethodPost, "/events/"+eventID+"/attendees", input, &attendee); err != nil {
		return nil, err
	}
	return &attendee, nil
}

func (c *Client) DeleteAttendee(ctx context.Context, attendeeID string) error {
	return c.do(ctx, http.MethodDelete, "/attendees/"+attendeeID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
