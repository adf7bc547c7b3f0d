// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/mxclient/lib/ref"
	"github.com/bureau-foundation/mxclient/lib/secret"
	"github.com/bureau-foundation/mxclient/schema"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// HomeserverURL is the base URL of the Matrix homeserver
	// (e.g., "http://localhost:6167").
	HomeserverURL string
	// Transport performs the network I/O. If nil, a default
	// HTTPTransport is used.
	Transport Transport
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is the facade over the dispatch engine: it owns a Session and
// a Transport, and composes request building, the transport exchange,
// and response decoding behind Invoke and the convenience methods.
//
// A Client starts unauthenticated. Login or Register moves it to the
// authenticated state; Logout moves it back. Concurrent calls are
// safe: session mutations are serialized, and in-flight requests use
// the credentials snapshot taken when they were built.
type Client struct {
	session   *Session
	transport Transport
	logger    *slog.Logger

	// transactionCounter generates unique transaction IDs for
	// idempotent event sends.
	transactionCounter atomic.Int64
}

// NewClient creates a client with an unauthenticated session.
func NewClient(config ClientConfig) (*Client, error) {
	session, err := NewSession(config.HomeserverURL)
	if err != nil {
		return nil, err
	}

	transport := config.Transport
	if transport == nil {
		transport = NewHTTPTransport(TransportConfig{})
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		session:   session,
		transport: transport,
		logger:    logger,
	}, nil
}

// Session exposes the client's session state for callers that need to
// inspect identity or persist the access token.
func (c *Client) Session() *Session {
	return c.session
}

// RestoreSession authenticates the client from a previously obtained
// access token, bypassing the network entirely. The token is not
// validated; use WhoAmI to check a restored session.
func (c *Client) RestoreSession(userID ref.UserID, accessToken, deviceID string) error {
	return c.session.SetCredentials(userID, accessToken, deviceID)
}

// CloseIdleConnections closes idle connections in the transport's
// pool, when the transport supports it. Call after a network
// disruption to avoid reusing a poisoned pooled connection.
func (c *Client) CloseIdleConnections() {
	if transport, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
		transport.CloseIdleConnections()
	}
}

// Close releases the session's protected token memory. The client
// must not be used afterwards.
func (c *Client) Close() error {
	return c.session.Close()
}

// LoginOptions holds optional parameters for Login.
type LoginOptions struct {
	// DeviceDisplayName is shown in the account's device list for the
	// new session. Empty leaves it to the server.
	DeviceDisplayName string
}

// Login authenticates with username and password. On success the
// session credentials are replaced with the server-issued token before
// the response is returned. The password buffer is read but not
// closed — the caller retains ownership.
func (c *Client) Login(ctx context.Context, username string, password *secret.Buffer) (*schema.AuthResponse, error) {
	return c.LoginWithOptions(ctx, username, password, LoginOptions{})
}

// LoginWithOptions is Login with optional parameters.
func (c *Client) LoginWithOptions(ctx context.Context, username string, password *secret.Buffer, options LoginOptions) (*schema.AuthResponse, error) {
	if username == "" {
		return nil, fmt.Errorf("mxclient: username is required for login")
	}
	if password == nil {
		return nil, fmt.Errorf("mxclient: password is required for login")
	}

	// Password is converted to string at the JSON serialization
	// boundary. The heap copy is short-lived — it exists only for
	// the duration of the exchange.
	response, err := Invoke[schema.AuthResponse](ctx, c, schema.Login, Params{
		Body: schema.LoginRequest{
			Type:                     schema.LoginTypePassword,
			User:                     username,
			Password:                 password.String(),
			InitialDeviceDisplayName: options.DeviceDisplayName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mxclient: login failed: %w", err)
	}

	if err := c.session.SetCredentials(response.UserID, response.AccessToken, response.DeviceID); err != nil {
		return nil, err
	}

	c.logger.Info("logged in to matrix",
		"user_id", response.UserID,
		"device_id", response.DeviceID,
	)
	return &response, nil
}

// RegisterRequest holds parameters for creating a new account.
// Password and RegistrationToken live in mmap-backed buffers; Register
// reads from them but does not close them.
type RegisterRequest struct {
	// Username is the desired localpart. Required for user
	// registration; must be empty for guests (the server generates
	// one).
	Username string
	// Password is required for user registration, ignored for guests.
	Password *secret.Buffer
	// Kind selects user or guest registration. Empty means user.
	Kind schema.RegistrationKind
	// RegistrationToken completes the m.login.registration_token
	// UIAA stage on servers with token-gated registration. Optional.
	RegistrationToken *secret.Buffer
}

// Register creates a new account and authenticates the session as it.
//
// Registration may require the User-Interactive Authentication (UIAA)
// flow: the first request returns 401 with a session ID and the
// acceptable stages, and the second request completes the
// registration-token stage. Guest registration skips all of this.
func (c *Client) Register(ctx context.Context, request RegisterRequest) (*schema.AuthResponse, error) {
	kind := request.Kind
	if kind == "" {
		kind = schema.RegistrationKindUser
	}
	if kind == schema.RegistrationKindUser {
		if request.Username == "" {
			return nil, fmt.Errorf("mxclient: username is required for user registration")
		}
		if request.Password == nil {
			return nil, fmt.Errorf("mxclient: password is required for user registration")
		}
	}

	params := Params{
		Query: []QueryParam{{Name: "kind", Value: string(kind)}},
		Body:  registerBody(request, ""),
	}

	response, err := Invoke[schema.AuthResponse](ctx, c, schema.Register, params)
	if err != nil {
		// A 401 here is the UIAA challenge, not a rejection —
		// complete the registration-token stage if we hold one.
		uiaaSession, uiaaErr := extractUIAASession(err)
		if uiaaErr != nil {
			return nil, fmt.Errorf("mxclient: registration failed: %w", err)
		}
		if request.RegistrationToken == nil {
			return nil, fmt.Errorf("mxclient: registration requires a registration token: %w", err)
		}

		params.Body = registerBody(request, uiaaSession)
		response, err = Invoke[schema.AuthResponse](ctx, c, schema.Register, params)
		if err != nil {
			return nil, fmt.Errorf("mxclient: registration failed: %w", err)
		}
	}

	if err := c.session.SetCredentials(response.UserID, response.AccessToken, response.DeviceID); err != nil {
		return nil, err
	}

	c.logger.Info("registered matrix account",
		"user_id", response.UserID,
		"device_id", response.DeviceID,
	)
	return &response, nil
}

// registerBody builds the wire body for a register attempt. When
// uiaaSession is non-empty, the auth block completing the
// registration-token stage is included.
func registerBody(request RegisterRequest, uiaaSession string) map[string]any {
	body := map[string]any{}
	if request.Username != "" {
		body["username"] = request.Username
	}
	if request.Password != nil {
		// String copy exists only for the exchange.
		body["password"] = request.Password.String()
	}
	if uiaaSession != "" {
		body["auth"] = map[string]any{
			"type":    "m.login.registration_token",
			"token":   request.RegistrationToken.String(),
			"session": uiaaSession,
		}
	}
	return body
}

// extractUIAASession pulls the UIAA session ID out of a 401 challenge.
// Returns an error when err is not a UIAA challenge (wrong status, no
// JSON body, or no session field) — the caller then reports the
// original error.
func extractUIAASession(err error) (string, error) {
	var matrixErr *MatrixError
	if !errors.As(err, &matrixErr) || matrixErr.StatusCode != http.StatusUnauthorized || matrixErr.Raw == nil {
		return "", fmt.Errorf("not a UIAA challenge")
	}

	var challenge schema.UIAAResponse
	if jsonErr := json.Unmarshal(matrixErr.Raw, &challenge); jsonErr != nil {
		return "", jsonErr
	}
	if challenge.Session == "" {
		return "", fmt.Errorf("UIAA challenge missing session ID")
	}
	return challenge.Session, nil
}

// Logout invalidates the access token server-side and clears the
// session credentials. The credentials are cleared on any success
// acknowledgment, regardless of response detail.
func (c *Client) Logout(ctx context.Context) error {
	_, err := Invoke[schema.Empty](ctx, c, schema.Logout, Params{Body: struct{}{}})
	if err != nil {
		return fmt.Errorf("mxclient: logout failed: %w", err)
	}
	c.session.ClearCredentials()
	return nil
}

// LogoutAll invalidates every access token for the account — including
// this session's own — and clears the session credentials.
func (c *Client) LogoutAll(ctx context.Context) error {
	_, err := Invoke[schema.Empty](ctx, c, schema.LogoutAll, Params{Body: struct{}{}})
	if err != nil {
		return fmt.Errorf("mxclient: logout all sessions failed: %w", err)
	}
	c.session.ClearCredentials()
	return nil
}

// nextTransactionID generates a unique transaction ID for idempotent
// event sending. Format: "mx-<timestamp_ms>-<counter>" to ensure
// uniqueness across restarts.
func (c *Client) nextTransactionID() string {
	counter := c.transactionCounter.Add(1)
	return fmt.Sprintf("mx-%d-%d", time.Now().UnixMilli(), counter)
}
