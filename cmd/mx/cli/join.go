// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"os"
	"time"
)

// JoinCommand returns the "join" command for joining a room by ID or
// alias.
func JoinCommand() *Command {
	return &Command{
		Name:    "join",
		Summary: "Join a room",
		Usage:   "mx join <room>",
		Examples: []Example{
			{
				Description: "Join a room by alias",
				Command:     `mx join '#lobby:example.org'`,
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one room is required\n\nUsage: mx join <room>")
			}

			matrixClient, _, err := ConnectFromSession()
			if err != nil {
				return err
			}
			defer matrixClient.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			roomID, err := resolveRoom(ctx, matrixClient, args[0])
			if err != nil {
				return err
			}

			joined, err := matrixClient.JoinRoom(ctx, roomID)
			if err != nil {
				return fmt.Errorf("join failed: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Joined %s\n", joined)
			return nil
		},
	}
}
