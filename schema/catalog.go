// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "net/http"

// Session lifecycle endpoints.
var (
	// ServerVersions reports the protocol versions the homeserver
	// supports. Unauthenticated — useful as a reachability probe.
	ServerVersions = Endpoint{
		Name:   "server_versions",
		Method: http.MethodGet,
		Path:   "/_matrix/client/versions",
	}

	// Login exchanges credentials for an access token.
	Login = Endpoint{
		Name:   "login",
		Method: http.MethodPost,
		Path:   "/_matrix/client/v3/login",
	}

	// Register creates a new account. May respond 401 with a UIAA
	// session when the server requires additional auth stages.
	Register = Endpoint{
		Name:   "register",
		Method: http.MethodPost,
		Path:   "/_matrix/client/v3/register",
	}

	// Logout invalidates the session's access token.
	Logout = Endpoint{
		Name:         "logout",
		Method:       http.MethodPost,
		Path:         "/_matrix/client/v3/logout",
		RequiresAuth: true,
	}

	// LogoutAll invalidates every access token for the account,
	// including the caller's own.
	LogoutAll = Endpoint{
		Name:         "logout_all",
		Method:       http.MethodPost,
		Path:         "/_matrix/client/v3/logout/all",
		RequiresAuth: true,
	}

	// WhoAmI validates the access token and returns the user ID.
	WhoAmI = Endpoint{
		Name:         "whoami",
		Method:       http.MethodGet,
		Path:         "/_matrix/client/v3/account/whoami",
		RequiresAuth: true,
	}
)

// Room endpoints.
var (
	CreateRoom = Endpoint{
		Name:         "create_room",
		Method:       http.MethodPost,
		Path:         "/_matrix/client/v3/createRoom",
		RequiresAuth: true,
	}

	JoinRoom = Endpoint{
		Name:         "join_room",
		Method:       http.MethodPost,
		Path:         "/_matrix/client/v3/join/{roomID}",
		RequiresAuth: true,
	}

	LeaveRoom = Endpoint{
		Name:         "leave_room",
		Method:       http.MethodPost,
		Path:         "/_matrix/client/v3/rooms/{roomID}/leave",
		RequiresAuth: true,
	}

	InviteUser = Endpoint{
		Name:         "invite_user",
		Method:       http.MethodPost,
		Path:         "/_matrix/client/v3/rooms/{roomID}/invite",
		RequiresAuth: true,
	}

	JoinedRooms = Endpoint{
		Name:         "joined_rooms",
		Method:       http.MethodGet,
		Path:         "/_matrix/client/v3/joined_rooms",
		RequiresAuth: true,
	}

	// ResolveAlias maps a human-readable room alias to a room ID.
	ResolveAlias = Endpoint{
		Name:         "resolve_alias",
		Method:       http.MethodGet,
		Path:         "/_matrix/client/v3/directory/room/{roomAlias}",
		RequiresAuth: true,
	}
)

// Event endpoints.
var (
	// SendEvent is Matrix's idempotent event send: PUT with a
	// client-generated transaction ID in the path.
	SendEvent = Endpoint{
		Name:         "send_event",
		Method:       http.MethodPut,
		Path:         "/_matrix/client/v3/rooms/{roomID}/send/{eventType}/{txnID}",
		RequiresAuth: true,
	}

	SendStateEvent = Endpoint{
		Name:         "send_state_event",
		Method:       http.MethodPut,
		Path:         "/_matrix/client/v3/rooms/{roomID}/state/{eventType}/{stateKey}",
		RequiresAuth: true,
	}

	GetStateEvent = Endpoint{
		Name:         "get_state_event",
		Method:       http.MethodGet,
		Path:         "/_matrix/client/v3/rooms/{roomID}/state/{eventType}/{stateKey}",
		RequiresAuth: true,
	}

	RoomState = Endpoint{
		Name:         "room_state",
		Method:       http.MethodGet,
		Path:         "/_matrix/client/v3/rooms/{roomID}/state",
		RequiresAuth: true,
	}

	// RoomMessages pages through a room's timeline. Pagination
	// parameters (from, dir, limit) travel as query parameters.
	RoomMessages = Endpoint{
		Name:         "room_messages",
		Method:       http.MethodGet,
		Path:         "/_matrix/client/v3/rooms/{roomID}/messages",
		RequiresAuth: true,
	}
)

// Profile and sync endpoints.
var (
	DisplayName = Endpoint{
		Name:         "display_name",
		Method:       http.MethodGet,
		Path:         "/_matrix/client/v3/profile/{userID}/displayname",
		RequiresAuth: true,
	}

	// Sync is the incremental event stream: long-polls until events
	// arrive or the server-side timeout expires.
	Sync = Endpoint{
		Name:         "sync",
		Method:       http.MethodGet,
		Path:         "/_matrix/client/v3/sync",
		RequiresAuth: true,
	}
)
