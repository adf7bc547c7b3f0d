// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/bureau-foundation/mxclient/lib/ref"
	"github.com/bureau-foundation/mxclient/lib/secret"
)

// Credentials is a point-in-time snapshot of a session's authentication
// state: the access token (as a heap string, copied out of the
// protected buffer at the snapshot boundary), the authenticated user,
// and the device. Snapshots are small values taken under the session
// lock and then used lock-free — request building never holds the lock
// across network I/O.
type Credentials struct {
	AccessToken string
	UserID      ref.UserID
	DeviceID    string
}

// Session is the single source of truth for "am I authenticated, and
// as whom". It holds the homeserver base URL and, once authenticated,
// the access token and user identity.
//
// Mutations (SetCredentials, ClearCredentials) are serialized by an
// exclusive lock; reads take a consistent snapshot via Credentials.
// The access token is stored in a secret.Buffer (mmap-backed, locked
// against swap, excluded from core dumps); call Close when the session
// is no longer needed.
type Session struct {
	homeserverURL string

	mu       sync.RWMutex
	token    *secret.Buffer
	userID   ref.UserID
	deviceID string
}

// NewSession creates an unauthenticated session for the given
// homeserver. The URL is validated structurally only — no reachability
// check is performed.
//
// The URL's string form is stored with the trailing slash stripped,
// and request URLs are built by direct concatenation. This avoids
// double-encoding issues with Go's url.URL.String(), which re-encodes
// Path even when RawPath is set if it doesn't consider RawPath a valid
// encoding of Path.
func NewSession(homeserverURL string) (*Session, error) {
	if homeserverURL == "" {
		return nil, fmt.Errorf("mxclient: homeserver URL is required")
	}
	if _, err := url.Parse(homeserverURL); err != nil {
		return nil, fmt.Errorf("mxclient: invalid homeserver URL %q: %w", homeserverURL, err)
	}
	return &Session{
		homeserverURL: strings.TrimRight(homeserverURL, "/"),
	}, nil
}

// RestoreSession creates an authenticated session from a previously
// obtained access token, without a network round-trip. The token is
// not validated — the first API call fails with M_UNKNOWN_TOKEN if it
// is stale. Supplying a valid token is the caller's responsibility.
func RestoreSession(homeserverURL string, userID ref.UserID, accessToken, deviceID string) (*Session, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("mxclient: user ID is required to restore a session")
	}
	session, err := NewSession(homeserverURL)
	if err != nil {
		return nil, err
	}
	if err := session.SetCredentials(userID, accessToken, deviceID); err != nil {
		return nil, err
	}
	return session, nil
}

// HomeserverURL returns the homeserver base URL (trailing slash
// stripped). Immutable for the session's lifetime.
func (s *Session) HomeserverURL() string {
	return s.homeserverURL
}

// SetCredentials stores the authentication state from a successful
// login or register response, overwriting any prior credentials. The
// token is moved into mmap-backed protected memory; the previous
// token buffer, if any, is zeroed and released.
func (s *Session) SetCredentials(userID ref.UserID, accessToken, deviceID string) error {
	if userID.IsZero() {
		return fmt.Errorf("mxclient: cannot set credentials without a user ID")
	}
	tokenBuffer, err := secret.NewFromString(accessToken)
	if err != nil {
		return fmt.Errorf("mxclient: protecting access token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil {
		s.token.Close()
	}
	s.token = tokenBuffer
	s.userID = userID
	s.deviceID = deviceID
	return nil
}

// ClearCredentials returns the session to the unauthenticated state.
// The token buffer is zeroed and released. Safe to call on an already
// unauthenticated session.
func (s *Session) ClearCredentials() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil {
		s.token.Close()
		s.token = nil
	}
	s.userID = ref.UserID{}
	s.deviceID = ""
}

// Credentials returns a snapshot of the current authentication state,
// or ErrAuthRequired if the session is unauthenticated. The snapshot
// is consistent with the most recent completed SetCredentials or
// ClearCredentials call.
func (s *Session) Credentials() (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == nil {
		return Credentials{}, ErrAuthRequired
	}
	return Credentials{
		AccessToken: s.token.String(),
		UserID:      s.userID,
		DeviceID:    s.deviceID,
	}, nil
}

// Authenticated reports whether the session currently holds credentials.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil
}

// UserID returns the authenticated user's ID, or the zero value when
// unauthenticated.
func (s *Session) UserID() ref.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// DeviceID returns the device ID for this session, or the empty string
// when unauthenticated or when the server did not assign one.
func (s *Session) DeviceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceID
}

// Close releases the access token memory (zeros, unlocks, unmaps).
// Equivalent to ClearCredentials; idempotent.
func (s *Session) Close() error {
	s.ClearCredentials()
	return nil
}
