// ABOUTME: Session token cache and login exchange for the Peloton API.
// ABOUTME: Tokens persist in a whole-file JSON cache, rewritten atomically.
package peloton

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ErrAuthentication marks fatal login failures. The sync run terminates
// when it sees this; there is no retry.
var ErrAuthentication = errors.New("peloton authentication failed")

const loginPath = "/auth/login"

// sessionFile is the on-disk shape of the token cache.
type sessionFile struct {
	SessionID string `json:"session_id"`
}

// SessionStore loads a reusable session token from durable storage and
// falls back to a credential login when none is cached. One active token
// at a time; expiry is only ever discovered by an upstream rejection.
type SessionStore struct {
	path     string
	baseURL  string
	username string
	password string
	client   *http.Client
	log      zerolog.Logger
}

// NewSessionStore creates a store persisting tokens at path.
func NewSessionStore(path, baseURL, username, password string, client *http.Client, log zerolog.Logger) *SessionStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &SessionStore{
		path:     path,
		baseURL:  baseURL,
		username: username,
		password: password,
		client:   client,
		log:      log.With().Str("component", "session").Logger(),
	}
}

// Token returns the cached session token, performing a login exchange only
// when no well-formed token is on disk. The token file is written only
// after a fresh login, never on a cache hit.
func (s *SessionStore) Token(ctx context.Context) (string, error) {
	if tok := s.cached(); tok != "" {
		s.log.Debug().Msg("using saved session token")
		return tok, nil
	}

	tok, err := s.login(ctx)
	if err != nil {
		return "", err
	}

	if err := s.save(tok); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	s.log.Info().Msg("logged in, session saved")
	return tok, nil
}

// cached reads the token file, returning "" for missing or malformed files.
func (s *SessionStore) cached() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return ""
	}
	return f.SessionID
}

// login exchanges credentials for a session token.
func (s *SessionStore) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username_or_email": s.username,
		"password":          s.password,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal login request: %v", ErrAuthentication, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: login returned %s", ErrAuthentication, resp.Status)
	}

	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode login response: %v", ErrAuthentication, err)
	}
	if payload.SessionID == "" {
		return "", fmt.Errorf("%w: no session_id in login response", ErrAuthentication)
	}
	return payload.SessionID, nil
}

// save rewrites the token file via temp file + rename so a crash mid-write
// never truncates the cache.
func (s *SessionStore) save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sessionFile{SessionID: token}, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
