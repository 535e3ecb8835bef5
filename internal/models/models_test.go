package models

import "testing"

func TestSetCompletedKeepsStatusInSync(t *testing.T) {
	g := Goal{Status: GoalStatusActive}

	g.SetCompleted(true)
	if !g.IsCompleted || g.Status != GoalStatusCompleted {
		t.Fatalf("after complete: is_completed=%v status=%q", g.IsCompleted, g.Status)
	}

	g.SetCompleted(false)
	if g.IsCompleted || g.Status != GoalStatusActive {
		t.Fatalf("after uncomplete: is_completed=%v status=%q", g.IsCompleted, g.Status)
	}

	// Uncompleting a paused goal still lands on active, not paused
	g = Goal{Status: GoalStatusPaused}
	g.SetCompleted(true)
	g.SetCompleted(false)
	if g.Status != GoalStatusActive {
		t.Fatalf("status=%q, want %q", g.Status, GoalStatusActive)
	}
}

func TestRecomputeProgress(t *testing.T) {
	g := Goal{CurrentValue: 25, TargetValue: 100}
	g.RecomputeProgress()
	if g.ProgressPercentage != 25 {
		t.Fatalf("progress=%v, want 25", g.ProgressPercentage)
	}

	g.CurrentValue = 150
	g.RecomputeProgress()
	if g.ProgressPercentage != 100 {
		t.Fatalf("progress=%v, want capped at 100", g.ProgressPercentage)
	}

	// No target: percentage untouched
	g = Goal{CurrentValue: 10, TargetValue: 0, ProgressPercentage: 42}
	g.RecomputeProgress()
	if g.ProgressPercentage != 42 {
		t.Fatalf("progress=%v, want unchanged 42", g.ProgressPercentage)
	}
}

func TestUserValid(t *testing.T) {
	cases := []struct {
		name string
		user *User
		want bool
	}{
		{"nil", nil, false},
		{"complete", &User{ID: 1, Email: "a@b.com"}, true},
		{"missing id", &User{Email: "a@b.com"}, false},
		{"missing email", &User{ID: 1}, false},
	}
	for _, c := range cases {
		if got := c.user.Valid(); got != c.want {
			t.Errorf("%s: Valid()=%v, want %v", c.name, got, c.want)
		}
	}
}
