package session

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/andrewbrowne3/caltrack/internal/models"
)

//go:embed schema.sql
var schema string

// Keys are namespaced so the session table can hold other app state later
// without collisions.
const (
	keyAccessToken  = "auth.access_token"
	keyRefreshToken = "auth.refresh_token"
	keyUser         = "auth.user"
)

// Store persists the session (tokens plus cached user) across restarts.
// Reads never fail: a missing or unreadable value is simply absent.
// Writes surface errors to the caller.
type Store struct {
	db *sql.DB
}

// Open creates a store backed by the SQLite file at path and initializes
// the schema. An empty path uses DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// DefaultPath returns the session database location under the XDG data
// directory, falling back to ~/.local/share.
func DefaultPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	appDir := filepath.Join(dataDir, "caltrack")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, "caltrack.db"), nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM session WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (s *Store) delete(key string) error {
	_, err := s.db.Exec("DELETE FROM session WHERE key = ?", key)
	return err
}

// SaveTokens persists both tokens. If either write fails the session is
// incomplete and the caller should treat the save as failed.
func (s *Store) SaveTokens(access, refresh string) error {
	if err := s.set(keyAccessToken, access); err != nil {
		return err
	}
	return s.set(keyRefreshToken, refresh)
}

// SaveAccessToken replaces only the access token, leaving the refresh
// token in place. Used after a token refresh.
func (s *Store) SaveAccessToken(access string) error {
	return s.set(keyAccessToken, access)
}

// AccessToken returns the stored access token, or false if absent
func (s *Store) AccessToken() (string, bool) {
	return s.get(keyAccessToken)
}

// RefreshToken returns the stored refresh token, or false if absent
func (s *Store) RefreshToken() (string, bool) {
	return s.get(keyRefreshToken)
}

// SaveUser caches the user record as JSON
func (s *Store) SaveUser(u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.set(keyUser, string(data))
}

// User returns the cached user record. A record that fails to decode or
// is missing its required fields is purged and reported as absent.
func (s *Store) User() (*models.User, bool) {
	raw, ok := s.get(keyUser)
	if !ok {
		return nil, false
	}

	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || !u.Valid() {
		_ = s.delete(keyUser)
		return nil, false
	}
	return &u, true
}

// IsLoggedIn reports whether the session holds both tokens and a valid
// user record. Tokens without a valid user are a broken half-session;
// everything is cleared before returning false so a stale token is never
// reused against a missing identity.
func (s *Store) IsLoggedIn() bool {
	_, hasAccess := s.AccessToken()
	_, hasRefresh := s.RefreshToken()
	if !hasAccess || !hasRefresh {
		return false
	}
	if _, ok := s.User(); !ok {
		_ = s.ClearAll()
		return false
	}
	return true
}

// ClearAll removes the tokens and cached user. Safe to call on an
// already-empty store.
func (s *Store) ClearAll() error {
	var firstErr error
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyUser} {
		if err := s.delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
