package api

import (
	"net/http"

	"github.com/google/uuid"
)

// Middleware mutates an outbound request before it is sent. The client
// applies its middleware in order on every request, including the retry
// after a token refresh.
type Middleware func(*http.Request) error

// RequestID stamps each request with a fresh X-Request-ID so individual
// calls can be correlated with server logs.
func RequestID() Middleware {
	return func(r *http.Request) error {
		r.Header.Set("X-Request-ID", uuid.NewString())
		return nil
	}
}

// UserAgent sets the client's User-Agent header
func UserAgent(ua string) Middleware {
	return func(r *http.Request) error {
		r.Header.Set("User-Agent", ua)
		return nil
	}
}
