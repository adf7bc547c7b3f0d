// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/mxclient/lib/secret"
)

// SavedSession holds the persisted Matrix authentication state. Stored
// at the well-known path returned by SessionFilePath and loaded
// automatically by CLI commands that require authentication (whoami,
// send, rooms). Analogous to SSH keys — set up once via "mx login",
// then transparent.
type SavedSession struct {
	// UserID is the full Matrix user ID (e.g., "@alice:example.org").
	UserID string `json:"user_id"`

	// AccessToken is the Matrix access token proving identity.
	AccessToken string `json:"access_token"`

	// DeviceID is the device the token was issued to.
	DeviceID string `json:"device_id,omitempty"`

	// Homeserver is the base URL of the Matrix homeserver
	// (e.g., "http://localhost:6167").
	Homeserver string `json:"homeserver"`
}

// SessionFilePath returns the path to the saved session file. Checks
// the MX_SESSION_FILE environment variable first, then falls back to
// ~/.config/mx/session.json.
func SessionFilePath() string {
	if envPath := os.Getenv("MX_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			// Fallback — this should rarely happen.
			return filepath.Join("/tmp", "mx-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "mx", "session.json")
}

// LoadSession reads the saved session from the well-known path.
// Returns a clear error message directing the user to "mx login" if
// no session exists.
func LoadSession() (*SavedSession, error) {
	return LoadSessionFrom(SessionFilePath())
}

// LoadSessionFrom reads a saved session from a specific file path.
func LoadSessionFrom(path string) (*SavedSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no session found at %s — run \"mx login\" first", path)
		}
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}

	var session SavedSession
	if err := json.Unmarshal(data, &session); err != nil {
		secret.Zero(data)
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}
	secret.Zero(data)

	if session.UserID == "" {
		return nil, fmt.Errorf("session file %s has no user_id", path)
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("session file %s has no access_token", path)
	}
	if session.Homeserver == "" {
		return nil, fmt.Errorf("session file %s has no homeserver", path)
	}

	return &session, nil
}

// SaveSession writes a session to the well-known path. Creates the
// parent directory with mode 0700 if it doesn't exist. The session
// file is written with mode 0600 (owner-only read/write) since it
// contains an access token.
func SaveSession(session *SavedSession) error {
	return SaveSessionTo(session, SessionFilePath())
}

// SaveSessionTo writes a session to a specific file path.
func SaveSessionTo(session *SavedSession, path string) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		secret.Zero(data)
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}

	writeError := os.WriteFile(path, data, 0600)
	secret.Zero(data)
	if writeError != nil {
		return fmt.Errorf("writing session file %s: %w", path, writeError)
	}

	return nil
}

// RemoveSession deletes the saved session file. Missing file is not an
// error — logout is idempotent.
func RemoveSession() error {
	path := SessionFilePath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file %s: %w", path, err)
	}
	return nil
}
