package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/andrewbrowne3/caltrack/internal/models"
)

// ListCalendars returns the caller's calendars
func (c *Client) ListCalendars(ctx context.Context) ([]models.Calendar, error) {
	var cals []models.Calendar
	if err := c.send(ctx, http.MethodGet, "/api/calendars/", nil, nil, &cals, false); err != nil {
		return nil, err
	}
	return cals, nil
}

// CalendarInput is the payload for creating a calendar
type CalendarInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// CreateCalendar creates a new calendar
func (c *Client) CreateCalendar(ctx context.Context, in CalendarInput) (*models.Calendar, error) {
	var cal models.Calendar
	if err := c.send(ctx, http.MethodPost, "/api/calendars/", nil, in, &cal, false); err != nil {
		return nil, err
	}
	return &cal, nil
}

// CalendarPatch is a partial update; only non-nil fields are sent
type CalendarPatch struct {
	Name    *string `json:"name,omitempty"`
	Color   *string `json:"color,omitempty"`
	Visible *bool   `json:"is_visible,omitempty"`
	Active  *bool   `json:"is_active,omitempty"`
}

// UpdateCalendar applies a partial update and returns the server's copy
func (c *Client) UpdateCalendar(ctx context.Context, id int64, patch CalendarPatch) (*models.Calendar, error) {
	var cal models.Calendar
	path := fmt.Sprintf("/api/calendars/%d/", id)
	if err := c.send(ctx, http.MethodPatch, path, nil, patch, &cal, false); err != nil {
		return nil, err
	}
	return &cal, nil
}

// SetCalendarVisibility updates just the visibility flag
func (c *Client) SetCalendarVisibility(ctx context.Context, id int64, visible bool) (*models.Calendar, error) {
	return c.UpdateCalendar(ctx, id, CalendarPatch{Visible: &visible})
}

// DeleteCalendar removes a calendar
func (c *Client) DeleteCalendar(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/api/calendars/%d/", id), nil, nil, nil, false)
}
