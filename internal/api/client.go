package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 15 * time.Second

// TokenStore is the slice of the session store the client needs. Tokens
// are read fresh on every request so a refreshed access token is picked
// up without rebuilding the client.
type TokenStore interface {
	AccessToken() (string, bool)
	RefreshToken() (string, bool)
	SaveAccessToken(access string) error
	ClearAll() error
}

// Client issues REST calls against the backend. It attaches bearer auth
// from the token store and performs a single refresh-and-retry when a
// request comes back 401. Construct one per process and pass it around;
// there is no hidden global instance.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	mw      []Middleware

	// Concurrent 401s share one in-flight refresh instead of racing
	// separate refresh calls against the same refresh token.
	refresh singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the fixed per-request deadline
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithMiddleware appends request middleware to the chain
func WithMiddleware(mw ...Middleware) Option {
	return func(c *Client) { c.mw = append(c.mw, mw...) }
}

// New creates a client for the API at baseURL
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		mw:      []Middleware{RequestID()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// roundTrip performs one HTTP exchange and returns the raw body and
// status. Transport-level failures come back as errors; non-2xx statuses
// do not, so the caller can decide how to treat them.
func (c *Client) roundTrip(ctx context.Context, method, rawURL string, payload []byte, attachAuth bool) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, mw := range c.mw {
		if err := mw(req); err != nil {
			return nil, 0, err
		}
	}
	if attachAuth {
		if token, ok := c.tokens.AccessToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return b, resp.StatusCode, nil
}

// send issues a request and decodes the JSON response into out. Requests
// to auth endpoints set authExempt: no bearer header and no refresh
// handling, which keeps the refresh call itself out of the retry path.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any, authExempt bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}
	rawURL := c.url(path, query)

	respBody, status, err := c.roundTrip(ctx, method, rawURL, payload, !authExempt)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !authExempt {
		original := newAPIError(status, respBody)
		if err := c.refreshAccessToken(ctx); err != nil {
			if errors.Is(err, errNoRefreshToken) {
				return original
			}
			return err
		}
		// Retried exactly once; a second 401 falls through to the
		// generic status check below.
		respBody, status, err = c.roundTrip(ctx, method, rawURL, payload, true)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return newAPIError(status, respBody)
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

var errNoRefreshToken = errors.New("no refresh token stored")

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token and persists it. All concurrent callers wait on the same refresh.
// Any failure past the missing-token check tears the session down.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	_, err, _ := c.refresh.Do("refresh", func() (any, error) {
		refresh, ok := c.tokens.RefreshToken()
		if !ok {
			return nil, errNoRefreshToken
		}

		payload, err := json.Marshal(refreshRequest{Refresh: refresh})
		if err != nil {
			return nil, err
		}
		body, status, err := c.roundTrip(ctx, http.MethodPost, c.url("/api/auth/token/refresh/", nil), payload, false)
		if err != nil {
			_ = c.tokens.ClearAll()
			return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		if status < 200 || status >= 300 {
			_ = c.tokens.ClearAll()
			return nil, fmt.Errorf("%w: %v", ErrSessionExpired, newAPIError(status, body))
		}

		var res refreshResponse
		if err := json.Unmarshal(body, &res); err != nil || res.Access == "" {
			_ = c.tokens.ClearAll()
			return nil, fmt.Errorf("%w: malformed refresh response", ErrSessionExpired)
		}
		if err := c.tokens.SaveAccessToken(res.Access); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
