// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"time"
)

// WhoAmICommand returns the "whoami" command. It validates the saved
// access token against the homeserver and prints the authenticated
// user ID.
func WhoAmICommand() *Command {
	return &Command{
		Name:    "whoami",
		Summary: "Show the authenticated user",
		Description: `Validate the saved session against the homeserver and print the
user ID it authenticates as. Fails if the token has been revoked.`,
		Usage: "mx whoami",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			matrixClient, saved, err := ConnectFromSession()
			if err != nil {
				return err
			}
			defer matrixClient.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			userID, err := matrixClient.WhoAmI(ctx)
			if err != nil {
				return fmt.Errorf("token check failed: %w", err)
			}

			fmt.Printf("%s\n", userID)
			fmt.Printf("homeserver: %s\n", saved.Homeserver)
			if saved.DeviceID != "" {
				fmt.Printf("device: %s\n", saved.DeviceID)
			}
			return nil
		},
	}
}
