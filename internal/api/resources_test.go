package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListEventsFilterQuery(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{access: "A1", refresh: "R1"})
	filter := EventFilter{
		CalendarID: 7,
		Start:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	if _, err := c.ListEvents(context.Background(), filter); err != nil {
		t.Fatalf("list events: %v", err)
	}

	want := map[string]string{"calendar": "7", "start_date": "2025-03-01", "end_date": "2025-03-31"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query[%s]=%q, want %q", k, gotQuery[k], v)
		}
	}

	// Zero filter sends no params
	if _, err := c.ListEvents(context.Background(), EventFilter{}); err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(gotQuery) != 0 {
		t.Fatalf("zero filter sent params: %v", gotQuery)
	}
}

func TestSetGoalCompletionPayload(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"id": 3, "title": "Run", "status": "completed", "is_completed": true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{access: "A1", refresh: "R1"})
	g, err := c.SetGoalCompletion(context.Background(), 3, true)
	if err != nil {
		t.Fatalf("set completion: %v", err)
	}

	if gotPath != "PATCH /api/goals/3/" {
		t.Fatalf("request=%q", gotPath)
	}
	if gotBody["is_completed"] != true || gotBody["status"] != "completed" {
		t.Fatalf("body=%v, want is_completed and status in agreement", gotBody)
	}
	if len(gotBody) != 2 {
		t.Fatalf("body=%v, want only the two completion fields", gotBody)
	}
	if !g.IsCompleted || g.Status != "completed" {
		t.Fatalf("goal=%+v", g)
	}
}

func TestSetCalendarVisibilityPayload(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"id": 2, "name": "Work", "is_visible": false})
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{access: "A1", refresh: "R1"})
	cal, err := c.SetCalendarVisibility(context.Background(), 2, false)
	if err != nil {
		t.Fatalf("set visibility: %v", err)
	}
	if gotBody["is_visible"] != false || len(gotBody) != 1 {
		t.Fatalf("body=%v, want only is_visible", gotBody)
	}
	if cal.Visible {
		t.Fatalf("calendar=%+v", cal)
	}
}

func TestDeleteGoalPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{access: "A1", refresh: "R1"})
	if err := c.DeleteGoal(context.Background(), 9); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gotPath != "DELETE /api/goals/9/" {
		t.Fatalf("request=%q", gotPath)
	}
}
