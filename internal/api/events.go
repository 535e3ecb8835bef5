package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/andrewbrowne3/caltrack/internal/models"
)

// EventFilter narrows ListEvents to a calendar and/or date range
type EventFilter struct {
	CalendarID int64
	Start      time.Time
	End        time.Time
}

func (f EventFilter) query() url.Values {
	q := url.Values{}
	if f.CalendarID != 0 {
		q.Set("calendar", strconv.FormatInt(f.CalendarID, 10))
	}
	if !f.Start.IsZero() {
		q.Set("start_date", f.Start.Format("2006-01-02"))
	}
	if !f.End.IsZero() {
		q.Set("end_date", f.End.Format("2006-01-02"))
	}
	return q
}

// ListEvents returns events matching the filter
func (c *Client) ListEvents(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	var events []models.Event
	if err := c.send(ctx, http.MethodGet, "/api/events/", filter.query(), nil, &events, false); err != nil {
		return nil, err
	}
	return events, nil
}

// EventInput is the payload for creating an event
type EventInput struct {
	CalendarID  int64     `json:"calendar"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start_time"`
	End         time.Time `json:"end_time"`
	AllDay      bool      `json:"all_day"`
	Status      string    `json:"status,omitempty"`
	Private     bool      `json:"is_private"`
}

// CreateEvent creates a new event
func (c *Client) CreateEvent(ctx context.Context, in EventInput) (*models.Event, error) {
	var e models.Event
	if err := c.send(ctx, http.MethodPost, "/api/events/", nil, in, &e, false); err != nil {
		return nil, err
	}
	return &e, nil
}

// EventPatch is a partial update; only non-nil fields are sent
type EventPatch struct {
	CalendarID  *int64     `json:"calendar,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Start       *time.Time `json:"start_time,omitempty"`
	End         *time.Time `json:"end_time,omitempty"`
	AllDay      *bool      `json:"all_day,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Private     *bool      `json:"is_private,omitempty"`
	IsCompleted *bool      `json:"is_completed,omitempty"`
}

// UpdateEvent applies a partial update and returns the server's copy
func (c *Client) UpdateEvent(ctx context.Context, id int64, patch EventPatch) (*models.Event, error) {
	var e models.Event
	path := fmt.Sprintf("/api/events/%d/", id)
	if err := c.send(ctx, http.MethodPatch, path, nil, patch, &e, false); err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEvent removes an event
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/api/events/%d/", id), nil, nil, nil, false)
}
