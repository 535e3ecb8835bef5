// Package auth owns the client's authentication state: validating the
// persisted session at startup and driving login/logout transitions.
package auth

import (
	"context"
	"errors"

	"github.com/andrewbrowne3/caltrack/internal/api"
	"github.com/andrewbrowne3/caltrack/internal/models"
	"github.com/andrewbrowne3/caltrack/internal/session"
)

// State is the controller's position in the auth lifecycle
type State int

const (
	StateUnknown State = iota
	StateChecking
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Controller moves the session between authenticated and unauthenticated
// states. It is owned by a single update loop and is not safe for
// concurrent use.
type Controller struct {
	store  *session.Store
	client *api.Client
	state  State
	user   *models.User
}

// NewController creates a controller in the unknown state
func NewController(store *session.Store, client *api.Client) *Controller {
	return &Controller{store: store, client: client, state: StateUnknown}
}

// State returns the current lifecycle state
func (c *Controller) State() State { return c.state }

// User returns the cached user, or nil when not authenticated
func (c *Controller) User() *models.User { return c.user }

// IsAuthenticated reports whether a valid session is active
func (c *Controller) IsAuthenticated() bool { return c.state == StateAuthenticated }

// Loading reports whether a session check is in progress
func (c *Controller) Loading() bool { return c.state == StateChecking }

// Bootstrap validates the persisted session on startup. A broken
// half-session (tokens without a valid user) is cleared by the store
// itself, so this lands on unauthenticated with nothing stale left over.
func (c *Controller) Bootstrap(ctx context.Context) State {
	c.state = StateChecking
	if c.store.IsLoggedIn() {
		if u, ok := c.store.User(); ok {
			c.user = u
			c.state = StateAuthenticated
			return c.state
		}
	}
	c.user = nil
	c.state = StateUnauthenticated
	return c.state
}

// Login authenticates with the server and persists the session. Storage
// is cleared before the attempt so a failed login never leaves a
// half-valid previous session behind; the server's error comes back
// unchanged for the UI to display.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	c.state = StateChecking
	c.user = nil

	if err := c.store.ClearAll(); err != nil {
		c.state = StateUnauthenticated
		return err
	}

	res, err := c.client.Login(ctx, email, password)
	if err != nil {
		c.state = StateUnauthenticated
		return err
	}
	if !res.User.Valid() {
		c.state = StateUnauthenticated
		return errors.New("login response missing user record")
	}

	if err := c.store.SaveTokens(res.Access, res.Refresh); err != nil {
		_ = c.store.ClearAll()
		c.state = StateUnauthenticated
		return err
	}
	if err := c.store.SaveUser(res.User); err != nil {
		_ = c.store.ClearAll()
		c.state = StateUnauthenticated
		return err
	}

	c.user = res.User
	c.state = StateAuthenticated
	return nil
}

// Logout ends the session. The server is notified best-effort with a
// bounded call; local teardown happens regardless of the outcome.
func (c *Controller) Logout(ctx context.Context) {
	if refresh, ok := c.store.RefreshToken(); ok {
		_ = c.client.Logout(ctx, refresh)
	}
	_ = c.store.ClearAll()
	c.user = nil
	c.state = StateUnauthenticated
}

// RefreshUser re-fetches the profile from the server. A session-expired
// failure drops to unauthenticated (the client already tore the session
// down); any other failure keeps the cached user and the authenticated
// state, returning the error for inline display.
func (c *Controller) RefreshUser(ctx context.Context) error {
	c.state = StateChecking

	u, err := c.client.Profile(ctx)
	if err != nil {
		if api.IsSessionExpired(err) {
			c.user = nil
			c.state = StateUnauthenticated
			return err
		}
		c.state = StateAuthenticated
		return err
	}

	if err := c.store.SaveUser(u); err != nil {
		c.state = StateAuthenticated
		return err
	}
	c.user = u
	c.state = StateAuthenticated
	return nil
}
