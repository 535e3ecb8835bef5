package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/andrewbrowne3/caltrack/internal/api"
	"github.com/andrewbrowne3/caltrack/internal/models"
	"github.com/andrewbrowne3/caltrack/internal/session"
)

func newTestController(t *testing.T, handler http.Handler) (*Controller, *session.Store) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := session.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return NewController(store, api.New(srv.URL, store)), store
}

func loginOK(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login/":
			json.NewEncoder(w).Encode(map[string]any{
				"access":  "A1",
				"refresh": "R1",
				"user":    map[string]any{"id": 1, "email": "a@b.com"},
			})
		case "/api/auth/logout/":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
}

func TestBootstrapFreshStore(t *testing.T) {
	c, _ := newTestController(t, loginOK(t))

	if c.State() != StateUnknown {
		t.Fatalf("initial state=%v, want unknown", c.State())
	}
	if got := c.Bootstrap(context.Background()); got != StateUnauthenticated {
		t.Fatalf("bootstrap=%v, want unauthenticated", got)
	}
}

func TestBootstrapWithPersistedSession(t *testing.T) {
	c, store := newTestController(t, loginOK(t))

	_ = store.SaveTokens("A1", "R1")
	_ = store.SaveUser(&models.User{ID: 1, Email: "a@b.com"})

	if got := c.Bootstrap(context.Background()); got != StateAuthenticated {
		t.Fatalf("bootstrap=%v, want authenticated", got)
	}
	if c.User() == nil || c.User().Email != "a@b.com" {
		t.Fatalf("user=%+v", c.User())
	}
}

func TestBootstrapHalfSessionClears(t *testing.T) {
	c, store := newTestController(t, loginOK(t))

	// Tokens without a user record is a broken session
	_ = store.SaveTokens("A1", "R1")

	if got := c.Bootstrap(context.Background()); got != StateUnauthenticated {
		t.Fatalf("bootstrap=%v, want unauthenticated", got)
	}
	if _, ok := store.AccessToken(); ok {
		t.Fatalf("broken session not cleared")
	}
}

func TestLoginPersistsSession(t *testing.T) {
	c, store := newTestController(t, loginOK(t))
	c.Bootstrap(context.Background())

	if err := c.Login(context.Background(), "a@b.com", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if c.State() != StateAuthenticated {
		t.Fatalf("state=%v, want authenticated", c.State())
	}
	if access, _ := store.AccessToken(); access != "A1" {
		t.Fatalf("stored access=%q", access)
	}
	if !store.IsLoggedIn() {
		t.Fatalf("store not logged in after login")
	}
}

func TestFailedLoginClearsPreviousSession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "invalid credentials"})
	})
	c, store := newTestController(t, handler)

	// A previous session exists
	_ = store.SaveTokens("OLD_A", "OLD_R")
	_ = store.SaveUser(&models.User{ID: 9, Email: "old@b.com"})
	c.Bootstrap(context.Background())

	err := c.Login(context.Background(), "a@b.com", "wrong")
	if err == nil {
		t.Fatalf("expected login error")
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "invalid credentials" {
		t.Fatalf("err=%v, want server message preserved", err)
	}
	if c.State() != StateUnauthenticated {
		t.Fatalf("state=%v, want unauthenticated", c.State())
	}
	// The old session must be gone, not half-restored
	if _, ok := store.AccessToken(); ok {
		t.Fatalf("old tokens survived failed login")
	}
	if store.IsLoggedIn() {
		t.Fatalf("store logged in after failed login")
	}
}

func TestLogoutAlwaysClearsLocally(t *testing.T) {
	var logoutCalls int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/logout/" {
			atomic.AddInt32(&logoutCalls, 1)
			// Server-side logout fails; local teardown must proceed
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access":  "A1",
			"refresh": "R1",
			"user":    map[string]any{"id": 1, "email": "a@b.com"},
		})
	})
	c, store := newTestController(t, handler)

	if err := c.Login(context.Background(), "a@b.com", "x"); err != nil {
		t.Fatalf("login: %v", err)
	}

	c.Logout(context.Background())
	if c.State() != StateUnauthenticated || c.User() != nil {
		t.Fatalf("state=%v user=%v after logout", c.State(), c.User())
	}
	if store.IsLoggedIn() {
		t.Fatalf("store still logged in after logout")
	}
	if atomic.LoadInt32(&logoutCalls) != 1 {
		t.Fatalf("logout endpoint calls=%d, want 1 best-effort call", logoutCalls)
	}
}

func TestRefreshUserSessionExpired(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/profile/":
			w.WriteHeader(http.StatusUnauthorized)
		case "/api/auth/token/refresh/":
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "refresh expired"})
		}
	})
	c, store := newTestController(t, handler)

	_ = store.SaveTokens("A1", "R1")
	_ = store.SaveUser(&models.User{ID: 1, Email: "a@b.com"})
	c.Bootstrap(context.Background())

	err := c.RefreshUser(context.Background())
	if !api.IsSessionExpired(err) {
		t.Fatalf("err=%v, want session expired", err)
	}
	if c.State() != StateUnauthenticated {
		t.Fatalf("state=%v, want unauthenticated", c.State())
	}
	if store.IsLoggedIn() {
		t.Fatalf("store still logged in after expired session")
	}
}

func TestRefreshUserGenericErrorKeepsSession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "server on fire"})
	})
	c, store := newTestController(t, handler)

	_ = store.SaveTokens("A1", "R1")
	_ = store.SaveUser(&models.User{ID: 1, Email: "a@b.com"})
	c.Bootstrap(context.Background())

	err := c.RefreshUser(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if c.State() != StateAuthenticated {
		t.Fatalf("state=%v, want still authenticated on generic error", c.State())
	}
	if c.User() == nil || c.User().Email != "a@b.com" {
		t.Fatalf("cached user lost: %+v", c.User())
	}
}
