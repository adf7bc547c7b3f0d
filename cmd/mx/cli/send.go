// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bureau-foundation/mxclient/client"
	"github.com/bureau-foundation/mxclient/lib/ref"
	"github.com/bureau-foundation/mxclient/schema"
)

// SendCommand returns the "send" command for posting a text message to
// a room, addressed by room ID or alias.
func SendCommand() *Command {
	return &Command{
		Name:    "send",
		Summary: "Send a text message to a room",
		Description: `Send an m.text message to a room. The room may be given as a room
ID ("!abc:example.org") or an alias ("#lobby:example.org"); aliases
are resolved first.`,
		Usage: "mx send <room> <message>",
		Examples: []Example{
			{
				Description: "Send to a room by alias",
				Command:     `mx send '#lobby:example.org' "hello there"`,
			},
			{
				Description: "Send to a room by ID",
				Command:     `mx send '!abc:example.org' "hello there"`,
			},
		},
		Run: func(args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("room and message are required\n\nUsage: mx send <room> <message>")
			}
			room := args[0]
			message := strings.Join(args[1:], " ")

			matrixClient, _, err := ConnectFromSession()
			if err != nil {
				return err
			}
			defer matrixClient.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			roomID, err := resolveRoom(ctx, matrixClient, room)
			if err != nil {
				return err
			}

			eventID, err := matrixClient.SendMessage(ctx, roomID, schema.NewTextMessage(message))
			if err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
			fmt.Printf("%s\n", eventID)
			return nil
		},
	}
}

// resolveRoom turns a room ID or alias string into a room ID, resolving
// aliases through the homeserver directory.
func resolveRoom(ctx context.Context, matrixClient *client.Client, room string) (ref.RoomID, error) {
	if strings.HasPrefix(room, "#") {
		alias, err := ref.ParseRoomAlias(room)
		if err != nil {
			return ref.RoomID{}, fmt.Errorf("invalid room alias %q: %w", room, err)
		}
		roomID, err := matrixClient.ResolveAlias(ctx, alias)
		if err != nil {
			return ref.RoomID{}, fmt.Errorf("resolving %q: %w", room, err)
		}
		return roomID, nil
	}

	roomID, err := ref.ParseRoomID(room)
	if err != nil {
		return ref.RoomID{}, fmt.Errorf("invalid room %q (expected a !room ID or #alias): %w", room, err)
	}
	return roomID, nil
}
