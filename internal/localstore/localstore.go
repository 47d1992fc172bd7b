// Package localstore persists the client's state between runs the way the
// browser front end keeps it in local storage: one JSON document with the
// accessToken, user and agentConfig keys, overwritten wholesale on each save.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"propal/internal/selection"
)

// Profile is the public part of the logged-in user kept on the client.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

type state struct {
	AccessToken string               `json:"accessToken,omitempty"`
	User        *Profile             `json:"user,omitempty"`
	AgentConfig *selection.Selection `json:"agentConfig,omitempty"`
}

// Store is a file-backed client state store.
type Store struct {
	path  string
	state state
}

// Open loads the state file at path, creating an empty store if it does not
// exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}
	return s, nil
}

// Token returns the stored access token, if any.
func (s *Store) Token() string {
	return s.state.AccessToken
}

// SetSession stores the access token and profile returned by login.
func (s *Store) SetSession(token string, user Profile) error {
	s.state.AccessToken = token
	s.state.User = &user
	return s.flush()
}

// User returns the stored profile.
func (s *Store) User() (Profile, bool) {
	if s.state.User == nil {
		return Profile{}, false
	}
	return *s.state.User, true
}

// ClearSession discards the token and profile, e.g. on logout. The agent
// configuration survives.
func (s *Store) ClearSession() error {
	s.state.AccessToken = ""
	s.state.User = nil
	return s.flush()
}

// Load implements selection.Store.
func (s *Store) Load() (selection.Selection, bool, error) {
	if s.state.AgentConfig == nil {
		return selection.Selection{}, false, nil
	}
	return *s.state.AgentConfig, true, nil
}

// Save implements selection.Store.
func (s *Store) Save(sel selection.Selection) error {
	s.state.AgentConfig = &sel
	return s.flush()
}

func (s *Store) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

var _ selection.Store = (*Store)(nil)
