// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"time"
)

// RoomsCommand returns the "rooms" command, listing the rooms the
// authenticated user has joined.
func RoomsCommand() *Command {
	return &Command{
		Name:    "rooms",
		Summary: "List joined rooms",
		Usage:   "mx rooms",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			matrixClient, _, err := ConnectFromSession()
			if err != nil {
				return err
			}
			defer matrixClient.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			rooms, err := matrixClient.JoinedRooms(ctx)
			if err != nil {
				return fmt.Errorf("listing rooms: %w", err)
			}

			for _, roomID := range rooms {
				fmt.Println(roomID)
			}
			return nil
		},
	}
}
