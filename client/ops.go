// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bureau-foundation/mxclient/lib/ref"
	"github.com/bureau-foundation/mxclient/schema"
)

// WhoAmI validates the access token and returns the user ID. Useful
// for checking whether a restored session's token is still valid.
func (c *Client) WhoAmI(ctx context.Context) (ref.UserID, error) {
	response, err := Invoke[schema.WhoAmIResponse](ctx, c, schema.WhoAmI, Params{})
	if err != nil {
		return ref.UserID{}, fmt.Errorf("mxclient: whoami failed: %w", err)
	}
	return response.UserID, nil
}

// ServerVersions returns the protocol versions and unstable features
// the homeserver supports. Unauthenticated — useful as a reachability
// probe.
func (c *Client) ServerVersions(ctx context.Context) (*schema.ServerVersionsResponse, error) {
	response, err := Invoke[schema.ServerVersionsResponse](ctx, c, schema.ServerVersions, Params{})
	if err != nil {
		return nil, fmt.Errorf("mxclient: server versions failed: %w", err)
	}
	return &response, nil
}

// CreateRoom creates a new Matrix room.
func (c *Client) CreateRoom(ctx context.Context, request schema.CreateRoomRequest) (*schema.CreateRoomResponse, error) {
	response, err := Invoke[schema.CreateRoomResponse](ctx, c, schema.CreateRoom, Params{Body: request})
	if err != nil {
		return nil, fmt.Errorf("mxclient: create room failed: %w", err)
	}

	c.logger.Info("created matrix room",
		"room_id", response.RoomID,
		"alias", request.Alias,
		"name", request.Name,
	)
	return &response, nil
}

// JoinRoom joins a room by ID and returns the room ID. To join by
// alias, resolve with ResolveAlias first.
func (c *Client) JoinRoom(ctx context.Context, roomID ref.RoomID) (ref.RoomID, error) {
	response, err := Invoke[schema.JoinRoomResponse](ctx, c, schema.JoinRoom, Params{
		Path: map[string]string{"roomID": roomID.String()},
		Body: struct{}{},
	})
	if err != nil {
		return ref.RoomID{}, fmt.Errorf("mxclient: join room %q failed: %w", roomID, err)
	}
	return response.RoomID, nil
}

// LeaveRoom leaves a room by ID.
func (c *Client) LeaveRoom(ctx context.Context, roomID ref.RoomID) error {
	_, err := Invoke[schema.Empty](ctx, c, schema.LeaveRoom, Params{
		Path: map[string]string{"roomID": roomID.String()},
		Body: struct{}{},
	})
	if err != nil {
		return fmt.Errorf("mxclient: leave room %q failed: %w", roomID, err)
	}
	return nil
}

// InviteUser invites a user to a room.
func (c *Client) InviteUser(ctx context.Context, roomID ref.RoomID, userID ref.UserID) error {
	_, err := Invoke[schema.Empty](ctx, c, schema.InviteUser, Params{
		Path: map[string]string{"roomID": roomID.String()},
		Body: schema.InviteRequest{UserID: userID},
	})
	if err != nil {
		return fmt.Errorf("mxclient: invite %q to %q failed: %w", userID, roomID, err)
	}
	return nil
}

// JoinedRooms returns the list of room IDs the user has joined.
func (c *Client) JoinedRooms(ctx context.Context) ([]ref.RoomID, error) {
	response, err := Invoke[schema.JoinedRoomsResponse](ctx, c, schema.JoinedRooms, Params{})
	if err != nil {
		return nil, fmt.Errorf("mxclient: joined rooms failed: %w", err)
	}
	return response.JoinedRooms, nil
}

// ResolveAlias resolves a room alias (e.g., "#lobby:example.org") to a
// room ID.
func (c *Client) ResolveAlias(ctx context.Context, alias ref.RoomAlias) (ref.RoomID, error) {
	response, err := Invoke[schema.ResolveAliasResponse](ctx, c, schema.ResolveAlias, Params{
		Path: map[string]string{"roomAlias": alias.String()},
	})
	if err != nil {
		return ref.RoomID{}, fmt.Errorf("mxclient: resolve alias %q failed: %w", alias, err)
	}
	return response.RoomID, nil
}

// SendMessage sends a message to a room. The content includes thread
// context if this is a thread reply (see schema.NewTextMessage and
// schema.NewThreadReply). Returns the event ID of the sent message.
func (c *Client) SendMessage(ctx context.Context, roomID ref.RoomID, content schema.MessageContent) (ref.EventID, error) {
	return c.SendEvent(ctx, roomID, "m.room.message", content)
}

// SendEvent sends an event of any type to a room, using Matrix's
// idempotent PUT with a transaction ID. Returns the event ID.
func (c *Client) SendEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, content any) (ref.EventID, error) {
	response, err := Invoke[schema.SendEventResponse](ctx, c, schema.SendEvent, Params{
		Path: map[string]string{
			"roomID":    roomID.String(),
			"eventType": eventType.String(),
			"txnID":     c.nextTransactionID(),
		},
		Body: content,
	})
	if err != nil {
		return ref.EventID{}, fmt.Errorf("mxclient: send event to %q failed: %w", roomID, err)
	}
	return response.EventID, nil
}

// SendStateEvent sends a state event to a room. State events use PUT
// with the event type and state key in the path. Returns the event ID.
func (c *Client) SendStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string, content any) (ref.EventID, error) {
	response, err := Invoke[schema.SendEventResponse](ctx, c, schema.SendStateEvent, Params{
		Path: map[string]string{
			"roomID":    roomID.String(),
			"eventType": eventType.String(),
			"stateKey":  stateKey,
		},
		Body: content,
	})
	if err != nil {
		return ref.EventID{}, fmt.Errorf("mxclient: send state event to %q failed: %w", roomID, err)
	}
	return response.EventID, nil
}

// GetStateEvent fetches a specific state event's content from a room.
// Returns the raw JSON content for the caller to unmarshal into the
// appropriate type. If the state event does not exist, the error is a
// *MatrixError with code M_NOT_FOUND.
func (c *Client) GetStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string) (json.RawMessage, error) {
	content, err := Invoke[json.RawMessage](ctx, c, schema.GetStateEvent, Params{
		Path: map[string]string{
			"roomID":    roomID.String(),
			"eventType": eventType.String(),
			"stateKey":  stateKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mxclient: get state event %s/%s in %q failed: %w", eventType, stateKey, roomID, err)
	}
	return content, nil
}

// RoomState fetches all current state events from a room.
func (c *Client) RoomState(ctx context.Context, roomID ref.RoomID) ([]schema.Event, error) {
	events, err := Invoke[[]schema.Event](ctx, c, schema.RoomState, Params{
		Path: map[string]string{"roomID": roomID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("mxclient: room state for %q failed: %w", roomID, err)
	}
	return events, nil
}

// RoomMessagesOptions controls pagination for room message fetching.
type RoomMessagesOptions struct {
	From      string // pagination token; empty means "from now"
	Direction string // "b" (backward/older) or "f" (forward/newer)
	Limit     int    // max events to return; 0 uses server default
}

// RoomMessages fetches messages from a room with pagination.
func (c *Client) RoomMessages(ctx context.Context, roomID ref.RoomID, options RoomMessagesOptions) (*schema.RoomMessagesResponse, error) {
	var query []QueryParam
	if options.From != "" {
		query = append(query, QueryParam{Name: "from", Value: options.From})
	}
	direction := options.Direction
	if direction == "" {
		direction = "b" // backward (newest first) by default
	}
	query = append(query, QueryParam{Name: "dir", Value: direction})
	if options.Limit > 0 {
		query = append(query, QueryParam{Name: "limit", Value: strconv.Itoa(options.Limit)})
	}

	response, err := Invoke[schema.RoomMessagesResponse](ctx, c, schema.RoomMessages, Params{
		Path:  map[string]string{"roomID": roomID.String()},
		Query: query,
	})
	if err != nil {
		return nil, fmt.Errorf("mxclient: room messages for %q failed: %w", roomID, err)
	}
	return &response, nil
}

// GetDisplayName fetches the display name for a user from their
// profile. Returns an empty string (not an error) if the user has no
// display name set — servers answer that case with M_NOT_FOUND.
func (c *Client) GetDisplayName(ctx context.Context, userID ref.UserID) (string, error) {
	response, err := Invoke[schema.DisplayNameResponse](ctx, c, schema.DisplayName, Params{
		Path: map[string]string{"userID": userID.String()},
	})
	if err != nil {
		if IsMatrixError(err, ErrCodeNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("mxclient: get display name for %q failed: %w", userID, err)
	}
	return response.DisplayName, nil
}

// SyncOptions controls the behavior of the sync endpoint.
type SyncOptions struct {
	Since      string // next_batch token from previous sync; empty for initial sync
	Timeout    int    // long-poll timeout in milliseconds; 0 for immediate return
	SetTimeout bool   // if true, send the timeout parameter (distinguishes "not set" from "0")
	Filter     string // filter ID or inline JSON filter
}

// Sync performs an incremental sync with the homeserver. For initial
// sync, leave options.Since empty. For long-polling, set
// options.Timeout to the desired wait in milliseconds and bound the
// call with a context deadline longer than that.
func (c *Client) Sync(ctx context.Context, options SyncOptions) (*schema.SyncResponse, error) {
	var query []QueryParam
	if options.Since != "" {
		query = append(query, QueryParam{Name: "since", Value: options.Since})
	}
	if options.SetTimeout {
		query = append(query, QueryParam{Name: "timeout", Value: strconv.Itoa(options.Timeout)})
	}
	if options.Filter != "" {
		query = append(query, QueryParam{Name: "filter", Value: options.Filter})
	}

	response, err := Invoke[schema.SyncResponse](ctx, c, schema.Sync, Params{Query: query})
	if err != nil {
		return nil, fmt.Errorf("mxclient: sync failed: %w", err)
	}
	return &response, nil
}
