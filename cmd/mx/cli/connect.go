// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"

	"github.com/bureau-foundation/mxclient/client"
	"github.com/bureau-foundation/mxclient/lib/ref"
)

// ConnectFromSession loads the saved session file and returns a client
// authenticated with its access token. The token is not validated
// against the homeserver here; commands that care run WhoAmI.
//
// The caller owns the returned client and must Close it.
func ConnectFromSession() (*client.Client, *SavedSession, error) {
	saved, err := LoadSession()
	if err != nil {
		return nil, nil, err
	}

	userID, err := ref.ParseUserID(saved.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("session file has invalid user_id %q: %w", saved.UserID, err)
	}

	c, err := client.NewClient(client.ClientConfig{HomeserverURL: saved.Homeserver})
	if err != nil {
		return nil, nil, fmt.Errorf("creating matrix client: %w", err)
	}
	if err := c.RestoreSession(userID, saved.AccessToken, saved.DeviceID); err != nil {
		c.Close()
		return nil, nil, fmt.Errorf("restoring session: %w", err)
	}

	return c, saved, nil
}
