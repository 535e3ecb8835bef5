package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired marks the failed-refresh path: the refresh token was
// rejected and the session has been torn down. Callers should transition
// to a logged-out state instead of showing an inline error.
var ErrSessionExpired = errors.New("session expired")

// IsSessionExpired reports whether err came from a failed token refresh
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// APIError is a non-2xx response from the server, carrying the status
// code and the server-provided message when one was present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// newAPIError extracts the server's error message from a response body.
// The backend answers with {"detail": ...} on auth/validation errors but
// older endpoints use "error" or "message".
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	for _, key := range []string{"detail", "error", "message"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
			apiErr.Message = msg
			break
		}
	}
	return apiErr
}
