package models

import "time"

// User is the authenticated account cached alongside the session tokens
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// Valid reports whether the record carries the required identity fields.
// A user without an id and email must never be treated as logged in.
func (u *User) Valid() bool {
	return u != nil && u.ID != 0 && u.Email != ""
}

// DisplayName returns the best human-readable name available
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		if u.LastName != "" {
			return u.FirstName + " " + u.LastName
		}
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Goal statuses
const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusPaused    = "paused"
	GoalStatusCancelled = "cancelled"
)

// Goal represents a tracked goal
type Goal struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Status             string    `json:"status"`
	IsCompleted        bool      `json:"is_completed"`
	Priority           string    `json:"priority,omitempty"`
	Frequency          string    `json:"frequency,omitempty"`
	CurrentValue       float64   `json:"current_value"`
	TargetValue        float64   `json:"target_value"`
	ProgressPercentage float64   `json:"progress_percentage"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SetCompleted flips the completion flag and keeps status in sync with it.
// is_completed and status must always agree; an incomplete goal goes back
// to active regardless of what it was before.
func (g *Goal) SetCompleted(done bool) {
	g.IsCompleted = done
	if done {
		g.Status = GoalStatusCompleted
	} else {
		g.Status = GoalStatusActive
	}
}

// RecomputeProgress recalculates progress_percentage from current/target.
// Goals without a target value keep whatever percentage they had.
func (g *Goal) RecomputeProgress() {
	if g.TargetValue <= 0 {
		return
	}
	pct := g.CurrentValue / g.TargetValue * 100
	if pct > 100 {
		pct = 100
	}
	g.ProgressPercentage = pct
}

// Event statuses
const (
	EventStatusConfirmed = "confirmed"
	EventStatusTentative = "tentative"
	EventStatusCancelled = "cancelled"
)

// Event represents a calendar event
type Event struct {
	ID          int64     `json:"id"`
	CalendarID  int64     `json:"calendar"`
	Creator     int64     `json:"creator,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start_time"`
	End         time.Time `json:"end_time"`
	AllDay      bool      `json:"all_day"`
	Status      string    `json:"status"`
	Private     bool      `json:"is_private"`
	IsCompleted *bool     `json:"is_completed,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Calendar represents an event collection, read-mostly in this client
type Calendar struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
	Visible bool   `json:"is_visible"`
	Active  bool   `json:"is_active"`
}

// SetVisible flips the visibility flag
func (c *Calendar) SetVisible(visible bool) {
	c.Visible = visible
}
