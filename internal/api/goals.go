package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/andrewbrowne3/caltrack/internal/models"
)

// GoalFilter narrows ListGoals; zero-value fields are omitted
type GoalFilter struct {
	Status string
}

func (f GoalFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	return q
}

// ListGoals returns the caller's goals, optionally filtered by status
func (c *Client) ListGoals(ctx context.Context, filter GoalFilter) ([]models.Goal, error) {
	var goals []models.Goal
	if err := c.send(ctx, http.MethodGet, "/api/goals/", filter.query(), nil, &goals, false); err != nil {
		return nil, err
	}
	return goals, nil
}

// GoalInput is the payload for creating a goal
type GoalInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Priority    string  `json:"priority,omitempty"`
	Frequency   string  `json:"frequency,omitempty"`
	TargetValue float64 `json:"target_value,omitempty"`
}

// CreateGoal creates a new goal
func (c *Client) CreateGoal(ctx context.Context, in GoalInput) (*models.Goal, error) {
	var g models.Goal
	if err := c.send(ctx, http.MethodPost, "/api/goals/", nil, in, &g, false); err != nil {
		return nil, err
	}
	return &g, nil
}

// GoalPatch is a partial update; only non-nil fields are sent
type GoalPatch struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Status       *string  `json:"status,omitempty"`
	IsCompleted  *bool    `json:"is_completed,omitempty"`
	Priority     *string  `json:"priority,omitempty"`
	Frequency    *string  `json:"frequency,omitempty"`
	CurrentValue *float64 `json:"current_value,omitempty"`
	TargetValue  *float64 `json:"target_value,omitempty"`
}

// UpdateGoal applies a partial update and returns the server's copy
func (c *Client) UpdateGoal(ctx context.Context, id int64, patch GoalPatch) (*models.Goal, error) {
	var g models.Goal
	path := fmt.Sprintf("/api/goals/%d/", id)
	if err := c.send(ctx, http.MethodPatch, path, nil, patch, &g, false); err != nil {
		return nil, err
	}
	return &g, nil
}

// SetGoalCompletion updates a goal's completion state, sending the status
// alongside the flag so the two never disagree server-side.
func (c *Client) SetGoalCompletion(ctx context.Context, id int64, done bool) (*models.Goal, error) {
	status := models.GoalStatusActive
	if done {
		status = models.GoalStatusCompleted
	}
	return c.UpdateGoal(ctx, id, GoalPatch{IsCompleted: &done, Status: &status})
}

// DeleteGoal removes a goal
func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/api/goals/%d/", id), nil, nil, nil, false)
}
