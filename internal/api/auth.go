package api

import (
	"context"
	"net/http"
	"time"

	"github.com/andrewbrowne3/caltrack/internal/models"
)

// Server-side logout is best effort; it must never hold up the local
// teardown, so the call gets its own short deadline.
const logoutTimeout = 3 * time.Second

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the server's response to a successful login
type LoginResult struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *models.User `json:"user"`
}

// Login exchanges credentials for a token pair and the user record.
// It does not persist anything; the session lifecycle owns that.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	err := c.send(ctx, http.MethodPost, "/api/auth/login/", nil, loginRequest{Email: email, Password: password}, &res, true)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// RegisterInput is the payload for account creation
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Register creates an account and returns the same shape as Login
func (c *Client) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	var res LoginResult
	err := c.send(ctx, http.MethodPost, "/api/auth/register/", nil, in, &res, true)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

// Logout notifies the server that the refresh token should be revoked.
// The call is bounded so logout always completes locally even when the
// server is unreachable.
func (c *Client) Logout(ctx context.Context, refresh string) error {
	ctx, cancel := context.WithTimeout(ctx, logoutTimeout)
	defer cancel()
	return c.send(ctx, http.MethodPost, "/api/auth/logout/", nil, logoutRequest{Refresh: refresh}, nil, false)
}

// Profile fetches the current user's record from the server
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.send(ctx, http.MethodGet, "/api/auth/profile/", nil, nil, &u, false); err != nil {
		return nil, err
	}
	return &u, nil
}
