package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// memStore is an in-memory TokenStore for exercising the client without
// touching durable storage.
type memStore struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func (m *memStore) AccessToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, m.access != ""
}

func (m *memStore) RefreshToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh, m.refresh != ""
}

func (m *memStore) SaveAccessToken(access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	return nil
}

func (m *memStore) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = "", ""
	return nil
}

func TestLoginScenario(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("login carried Authorization header %q", auth)
		}
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode login: %v", err)
		}
		if req.Email != "a@b.com" || req.Password != "x" {
			t.Errorf("login payload %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access":  "A1",
			"refresh": "R1",
			"user":    map[string]any{"id": 1, "email": "a@b.com"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{})
	res, err := c.Login(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Access != "A1" || res.Refresh != "R1" {
		t.Fatalf("tokens: %+v", res)
	}
	if res.User == nil || res.User.ID != 1 || res.User.Email != "a@b.com" {
		t.Fatalf("user: %+v", res.User)
	}
}

func TestExpiredTokenRefreshedAndRetried(t *testing.T) {
	var refreshCalls, goalCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/token/refresh/":
			atomic.AddInt32(&refreshCalls, 1)
			var req struct {
				Refresh string `json:"refresh"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if req.Refresh != "R1" {
				t.Errorf("refresh payload %q, want R1", req.Refresh)
			}
			json.NewEncoder(w).Encode(map[string]string{"access": "A2"})
		case "/api/goals/":
			atomic.AddInt32(&goalCalls, 1)
			if r.Header.Get("Authorization") != "Bearer A2" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"detail": "token expired"})
				return
			}
			json.NewEncoder(w).Encode([]map[string]any{{"id": 5, "title": "Run", "status": "active"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	store := &memStore{access: "A1", refresh: "R1"}
	c := New(srv.URL, store)

	goals, err := c.ListGoals(context.Background(), GoalFilter{})
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 1 || goals[0].ID != 5 {
		t.Fatalf("goals: %+v", goals)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Fatalf("refresh calls=%d, want 1", n)
	}
	if n := atomic.LoadInt32(&goalCalls); n != 2 {
		t.Fatalf("goal calls=%d, want 2 (original + retry)", n)
	}
	if access, _ := store.AccessToken(); access != "A2" {
		t.Fatalf("stored access=%q, want A2", access)
	}
	if refresh, _ := store.RefreshToken(); refresh != "R1" {
		t.Fatalf("stored refresh=%q, want unchanged R1", refresh)
	}
}

func TestSecond401AfterRetryPropagates(t *testing.T) {
	var refreshCalls, goalCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/token/refresh/":
			atomic.AddInt32(&refreshCalls, 1)
			json.NewEncoder(w).Encode(map[string]string{"access": "A2"})
		case "/api/goals/":
			atomic.AddInt32(&goalCalls, 1)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "nope"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{access: "A1", refresh: "R1"})
	_, err := c.ListGoals(context.Background(), GoalFilter{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err=%v, want 401 APIError", err)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Fatalf("refresh calls=%d, want exactly 1", n)
	}
	if n := atomic.LoadInt32(&goalCalls); n != 2 {
		t.Fatalf("goal calls=%d, want 2, never a loop", n)
	}
}

func TestRefreshFailureTearsDownSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/token/refresh/":
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "refresh token expired"})
		case "/api/goals/":
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	store := &memStore{access: "A1", refresh: "R1"}
	c := New(srv.URL, store)

	_, err := c.ListGoals(context.Background(), GoalFilter{})
	if !IsSessionExpired(err) {
		t.Fatalf("err=%v, want session expired", err)
	}
	if _, ok := store.AccessToken(); ok {
		t.Fatalf("access token survived failed refresh")
	}
	if _, ok := store.RefreshToken(); ok {
		t.Fatalf("refresh token survived failed refresh")
	}
}

func TestMissingRefreshTokenPropagatesOriginalError(t *testing.T) {
	var refreshCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/token/refresh/" {
			atomic.AddInt32(&refreshCalls, 1)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "bad token"})
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{access: "A1"})
	_, err := c.ListGoals(context.Background(), GoalFilter{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "bad token" {
		t.Fatalf("err=%v, want original 401 with server message", err)
	}
	if atomic.LoadInt32(&refreshCalls) != 0 {
		t.Fatalf("refresh endpoint was called without a refresh token")
	}
}

func TestConcurrent401sShareOneRefresh(t *testing.T) {
	var refreshCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/token/refresh/":
			atomic.AddInt32(&refreshCalls, 1)
			time.Sleep(50 * time.Millisecond)
			json.NewEncoder(w).Encode(map[string]string{"access": "A2"})
		case "/api/goals/":
			if r.Header.Get("Authorization") != "Bearer A2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode([]map[string]any{})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{access: "A1", refresh: "R1"})

	const parallel = 8
	var wg sync.WaitGroup
	errs := make([]error, parallel)
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.ListGoals(context.Background(), GoalFilter{})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Fatalf("refresh calls=%d, want all waiters on a single refresh", n)
	}
}

func TestValidationErrorKeepsServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "title is required"})
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{access: "A1", refresh: "R1"})
	_, err := c.CreateGoal(context.Background(), GoalInput{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err=%v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "title is required" {
		t.Fatalf("got %d %q", apiErr.StatusCode, apiErr.Message)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	seen := map[string]bool{}
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get("X-Request-ID")] = true
		mu.Unlock()
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	c := New(srv.URL, &memStore{access: "A1", refresh: "R1"})
	for i := 0; i < 3; i++ {
		if _, err := c.ListCalendars(context.Background()); err != nil {
			t.Fatalf("list calendars: %v", err)
		}
	}
	if len(seen) != 3 || seen[""] {
		t.Fatalf("request ids not unique per call: %v", seen)
	}
}
