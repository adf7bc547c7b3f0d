// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bureau-foundation/mxclient/lib/ref"
	"github.com/bureau-foundation/mxclient/lib/secret"
	"github.com/bureau-foundation/mxclient/schema"
)

// testBuffer creates a secret.Buffer from a string for testing. The
// buffer is automatically closed when the test completes.
func testBuffer(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("creating test buffer: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(ClientConfig{HomeserverURL: serverURL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNewClient(t *testing.T) {
	t.Run("valid URL", func(t *testing.T) {
		c, err := NewClient(ClientConfig{HomeserverURL: "http://localhost:6167"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if c == nil {
			t.Fatal("NewClient returned nil")
		}
		c.Close()
	})

	t.Run("empty URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{}); err == nil {
			t.Fatal("expected error for empty URL")
		}
	})

	t.Run("invalid URL", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{HomeserverURL: "://invalid"}); err == nil {
			t.Fatal("expected error for invalid URL")
		}
	})
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/_matrix/client/v3/login" {
				t.Errorf("unexpected path: %s", request.URL.Path)
				writer.WriteHeader(http.StatusNotFound)
				return
			}
			var body schema.LoginRequest
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}
			if body.Type != schema.LoginTypePassword {
				t.Errorf("unexpected login type: %q", body.Type)
			}
			if body.User != "alice" || body.Password != "password123" {
				t.Errorf("unexpected credentials: %q / %q", body.User, body.Password)
			}

			writer.Header().Set("Content-Type", "application/json")
			json.NewEncoder(writer).Encode(map[string]any{
				"user_id":      "@alice:test.local",
				"access_token": "syt_alice_token",
				"device_id":    "DEVICE1",
			})
		}))
		defer server.Close()

		c := testClient(t, server.URL)
		response, err := c.Login(context.Background(), "alice", testBuffer(t, "password123"))
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if response.UserID.String() != "@alice:test.local" {
			t.Errorf("unexpected user ID: %s", response.UserID)
		}
		if !c.Session().Authenticated() {
			t.Error("session not authenticated after login")
		}
		credentials, err := c.Session().Credentials()
		if err != nil {
			t.Fatalf("Credentials failed: %v", err)
		}
		if credentials.AccessToken != "syt_alice_token" {
			t.Errorf("unexpected stored token: %q", credentials.AccessToken)
		}
	})

	t.Run("invalid password", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusForbidden)
			json.NewEncoder(writer).Encode(map[string]any{
				"errcode": "M_FORBIDDEN",
				"error":   "Invalid password",
			})
		}))
		defer server.Close()

		c := testClient(t, server.URL)
		_, err := c.Login(context.Background(), "alice", testBuffer(t, "wrong"))
		if !IsMatrixError(err, ErrCodeForbidden) {
			t.Fatalf("got %v, want M_FORBIDDEN", err)
		}
		if c.Session().Authenticated() {
			t.Error("session authenticated after failed login")
		}
	})

	t.Run("missing username", func(t *testing.T) {
		c := testClient(t, "http://localhost:6167")
		if _, err := c.Login(context.Background(), "", testBuffer(t, "pw")); err == nil {
			t.Fatal("expected error for missing username")
		}
	})
}

func TestRegister(t *testing.T) {
	t.Run("registration with UIAA", func(t *testing.T) {
		callCount := 0
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/_matrix/client/v3/register" {
				t.Errorf("unexpected path: %s", request.URL.Path)
				writer.WriteHeader(http.StatusNotFound)
				return
			}

			callCount++
			var body map[string]any
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode request body: %v", err)
			}

			if callCount == 1 {
				// First request: return 401 with the UIAA session.
				writer.Header().Set("Content-Type", "application/json")
				writer.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(writer).Encode(map[string]any{
					"session": "test-session-123",
					"flows": []map[string]any{
						{"stages": []string{"m.login.registration_token"}},
					},
				})
				return
			}

			// Second request: verify the auth block and succeed.
			auth, ok := body["auth"].(map[string]any)
			if !ok {
				t.Fatal("second request missing auth")
			}
			if auth["type"] != "m.login.registration_token" {
				t.Errorf("unexpected auth type: %v", auth["type"])
			}
			if auth["token"] != "test-reg-token" {
				t.Errorf("unexpected registration token: %v", auth["token"])
			}
			if auth["session"] != "test-session-123" {
				t.Errorf("unexpected session: %v", auth["session"])
			}
			if body["username"] != "alice" {
				t.Errorf("unexpected username: %v", body["username"])
			}

			writer.Header().Set("Content-Type", "application/json")
			json.NewEncoder(writer).Encode(map[string]any{
				"user_id":      "@alice:test.local",
				"access_token": "syt_alice_token",
				"device_id":    "DEVICE1",
			})
		}))
		defer server.Close()

		c := testClient(t, server.URL)
		response, err := c.Register(context.Background(), RegisterRequest{
			Username:          "alice",
			Password:          testBuffer(t, "password123"),
			RegistrationToken: testBuffer(t, "test-reg-token"),
		})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if response.UserID.String() != "@alice:test.local" {
			t.Errorf("unexpected user ID: %s", response.UserID)
		}
		if callCount != 2 {
			t.Errorf("expected 2 register calls, got %d", callCount)
		}
		if !c.Session().Authenticated() {
			t.Error("session not authenticated after registration")
		}
	})

	t.Run("guest registration", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if got := request.URL.Query().Get("kind"); got != "guest" {
				t.Errorf("unexpected kind: %q", got)
			}
			writer.Header().Set("Content-Type", "application/json")
			json.NewEncoder(writer).Encode(map[string]any{
				"user_id":      "@guest123:test.local",
				"access_token": "syt_guest_token",
				"device_id":    "GUESTDEV",
			})
		}))
		defer server.Close()

		c := testClient(t, server.URL)
		response, err := c.Register(context.Background(), RegisterRequest{Kind: schema.RegistrationKindGuest})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if response.UserID.Localpart() != "guest123" {
			t.Errorf("unexpected user ID: %s", response.UserID)
		}
	})

	t.Run("UIAA challenge without token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(writer).Encode(map[string]any{
				"session": "test-session-123",
				"flows": []map[string]any{
					{"stages": []string{"m.login.registration_token"}},
				},
			})
		}))
		defer server.Close()

		c := testClient(t, server.URL)
		_, err := c.Register(context.Background(), RegisterRequest{
			Username: "alice",
			Password: testBuffer(t, "password123"),
		})
		if err == nil {
			t.Fatal("expected error when no registration token held")
		}
		if !strings.Contains(err.Error(), "registration token") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestLogout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/_matrix/client/v3/logout" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		if got := request.Header.Get("Authorization"); got != "Bearer tok1" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if err := c.RestoreSession(ref.MustParseUserID("@alice:test.local"), "tok1", "DEVICE1"); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if c.Session().Authenticated() {
		t.Error("session still authenticated after logout")
	}
}

func TestWhoAmI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/_matrix/client/v3/account/whoami" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(map[string]any{"user_id": "@alice:test.local"})
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if err := c.RestoreSession(ref.MustParseUserID("@alice:test.local"), "tok1", ""); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}
	userID, err := c.WhoAmI(context.Background())
	if err != nil {
		t.Fatalf("WhoAmI failed: %v", err)
	}
	if userID.String() != "@alice:test.local" {
		t.Errorf("unexpected user ID: %s", userID)
	}
}

func TestSendMessage(t *testing.T) {
	var capturedPath string
	var capturedBody schema.MessageContent
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		capturedPath = request.URL.Path
		if request.Method != http.MethodPut {
			t.Errorf("unexpected method: %s", request.Method)
		}
		if err := json.NewDecoder(request.Body).Decode(&capturedBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(map[string]any{"event_id": "$event1:test.local"})
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if err := c.RestoreSession(ref.MustParseUserID("@alice:test.local"), "tok1", ""); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}

	room := ref.MustParseRoomID("!room1:test.local")
	eventID, err := c.SendMessage(context.Background(), room, schema.NewTextMessage("hello"))
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if eventID.String() != "$event1:test.local" {
		t.Errorf("unexpected event ID: %s", eventID)
	}
	if !strings.HasPrefix(capturedPath, "/_matrix/client/v3/rooms/!room1:test.local/send/m.room.message/") {
		t.Errorf("unexpected path: %s", capturedPath)
	}
	if capturedBody.MsgType != "m.text" || capturedBody.Body != "hello" {
		t.Errorf("unexpected message content: %+v", capturedBody)
	}

	// A second send must use a different transaction ID.
	firstPath := capturedPath
	if _, err := c.SendMessage(context.Background(), room, schema.NewTextMessage("again")); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if capturedPath == firstPath {
		t.Error("transaction ID reused across sends")
	}
}

func TestSync(t *testing.T) {
	var capturedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/_matrix/client/v3/sync" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		capturedQuery = request.URL.RawQuery
		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(map[string]any{
			"next_batch": "s2",
			"rooms": map[string]any{
				"join": map[string]any{
					"!room1:test.local": map[string]any{
						"timeline": map[string]any{
							"events": []map[string]any{
								{
									"type":     "m.room.message",
									"sender":   "@bob:test.local",
									"event_id": "$e1:test.local",
									"content":  map[string]any{"msgtype": "m.text", "body": "hi"},
								},
							},
						},
					},
				},
			},
		})
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if err := c.RestoreSession(ref.MustParseUserID("@alice:test.local"), "tok1", ""); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}

	response, err := c.Sync(context.Background(), SyncOptions{Since: "s1", Timeout: 0, SetTimeout: true})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if response.NextBatch != "s2" {
		t.Errorf("unexpected next_batch: %q", response.NextBatch)
	}
	if capturedQuery != "since=s1&timeout=0" {
		t.Errorf("unexpected query: %q", capturedQuery)
	}

	joined, ok := response.Rooms.Join[ref.MustParseRoomID("!room1:test.local")]
	if !ok {
		t.Fatal("joined room missing from sync response")
	}
	if len(joined.Timeline.Events) != 1 {
		t.Fatalf("expected 1 timeline event, got %d", len(joined.Timeline.Events))
	}
	if joined.Timeline.Events[0].Sender.String() != "@bob:test.local" {
		t.Errorf("unexpected sender: %s", joined.Timeline.Events[0].Sender)
	}
}

func TestSendStateEvent(t *testing.T) {
	var capturedPath string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		capturedPath = request.URL.Path
		if request.Method != http.MethodPut {
			t.Errorf("unexpected method: %s", request.Method)
		}
		writer.Header().Set("Content-Type", "application/json")
		json.NewEncoder(writer).Encode(map[string]any{"event_id": "$state1:test.local"})
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if err := c.RestoreSession(ref.MustParseUserID("@alice:test.local"), "tok1", ""); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}
	room := ref.MustParseRoomID("!room1:test.local")

	t.Run("empty state key", func(t *testing.T) {
		// Singleton state events like m.room.name use the empty key.
		eventID, err := c.SendStateEvent(context.Background(), room, "m.room.name", "", map[string]any{"name": "Lobby"})
		if err != nil {
			t.Fatalf("SendStateEvent failed: %v", err)
		}
		if eventID.String() != "$state1:test.local" {
			t.Errorf("unexpected event ID: %s", eventID)
		}
		want := "/_matrix/client/v3/rooms/!room1:test.local/state/m.room.name/"
		if capturedPath != want {
			t.Errorf("unexpected path:\n got %s\nwant %s", capturedPath, want)
		}
	})

	t.Run("user-scoped state key", func(t *testing.T) {
		_, err := c.SendStateEvent(context.Background(), room, "m.room.member", "@bob:test.local", map[string]any{"membership": "invite"})
		if err != nil {
			t.Fatalf("SendStateEvent failed: %v", err)
		}
		want := "/_matrix/client/v3/rooms/!room1:test.local/state/m.room.member/@bob:test.local"
		if capturedPath != want {
			t.Errorf("unexpected path:\n got %s\nwant %s", capturedPath, want)
		}
	})
}

func TestGetStateEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		switch request.URL.Path {
		case "/_matrix/client/v3/rooms/!room1:test.local/state/m.room.name/":
			writer.Write([]byte(`{"name":"Lobby"}`))
		default:
			writer.WriteHeader(http.StatusNotFound)
			json.NewEncoder(writer).Encode(map[string]any{
				"errcode": "M_NOT_FOUND",
				"error":   "Event not found.",
			})
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if err := c.RestoreSession(ref.MustParseUserID("@alice:test.local"), "tok1", ""); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}
	room := ref.MustParseRoomID("!room1:test.local")

	t.Run("returns raw content", func(t *testing.T) {
		content, err := c.GetStateEvent(context.Background(), room, "m.room.name", "")
		if err != nil {
			t.Fatalf("GetStateEvent failed: %v", err)
		}
		var name struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(content, &name); err != nil {
			t.Fatalf("unmarshaling content: %v", err)
		}
		if name.Name != "Lobby" {
			t.Errorf("unexpected room name: %q", name.Name)
		}
	})

	t.Run("absent event is M_NOT_FOUND", func(t *testing.T) {
		_, err := c.GetStateEvent(context.Background(), room, "m.room.topic", "")
		if !IsMatrixError(err, ErrCodeNotFound) {
			t.Fatalf("got %v, want M_NOT_FOUND", err)
		}
	})
}

func TestRoomState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/_matrix/client/v3/rooms/!room1:test.local/state" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`[
			{"event_id":"$e1:test.local","type":"m.room.name","sender":"@alice:test.local","state_key":"","content":{"name":"Lobby"}},
			{"event_id":"$e2:test.local","type":"m.room.member","sender":"@alice:test.local","state_key":"@alice:test.local","content":{"membership":"join"}}
		]`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if err := c.RestoreSession(ref.MustParseUserID("@alice:test.local"), "tok1", ""); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}

	events, err := c.RoomState(context.Background(), ref.MustParseRoomID("!room1:test.local"))
	if err != nil {
		t.Fatalf("RoomState failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 state events, got %d", len(events))
	}
	if events[0].Type != "m.room.name" {
		t.Errorf("unexpected event type: %s", events[0].Type)
	}
	if events[1].StateKey == nil || *events[1].StateKey != "@alice:test.local" {
		t.Errorf("unexpected state key: %v", events[1].StateKey)
	}
}

func TestGetDisplayName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		switch request.URL.Path {
		case "/_matrix/client/v3/profile/@alice:test.local/displayname":
			json.NewEncoder(writer).Encode(map[string]any{"displayname": "Alice"})
		default:
			writer.WriteHeader(http.StatusNotFound)
			json.NewEncoder(writer).Encode(map[string]any{
				"errcode": "M_NOT_FOUND",
				"error":   "Profile was not found",
			})
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if err := c.RestoreSession(ref.MustParseUserID("@alice:test.local"), "tok1", ""); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}

	t.Run("set", func(t *testing.T) {
		name, err := c.GetDisplayName(context.Background(), ref.MustParseUserID("@alice:test.local"))
		if err != nil {
			t.Fatalf("GetDisplayName failed: %v", err)
		}
		if name != "Alice" {
			t.Errorf("unexpected display name: %q", name)
		}
	})

	t.Run("unset yields empty string", func(t *testing.T) {
		name, err := c.GetDisplayName(context.Background(), ref.MustParseUserID("@bob:test.local"))
		if err != nil {
			t.Fatalf("GetDisplayName failed: %v", err)
		}
		if name != "" {
			t.Errorf("unexpected display name: %q", name)
		}
	})
}

func TestResolveAliasAndJoin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(request.URL.Path, "/_matrix/client/v3/directory/room/"):
			json.NewEncoder(writer).Encode(map[string]any{
				"room_id": "!room1:test.local",
				"servers": []string{"test.local"},
			})
		case strings.HasPrefix(request.URL.Path, "/_matrix/client/v3/join/"):
			json.NewEncoder(writer).Encode(map[string]any{"room_id": "!room1:test.local"})
		default:
			t.Errorf("unexpected path: %s", request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if err := c.RestoreSession(ref.MustParseUserID("@alice:test.local"), "tok1", ""); err != nil {
		t.Fatalf("RestoreSession failed: %v", err)
	}

	roomID, err := c.ResolveAlias(context.Background(), ref.MustParseRoomAlias("#lobby:test.local"))
	if err != nil {
		t.Fatalf("ResolveAlias failed: %v", err)
	}
	if roomID.String() != "!room1:test.local" {
		t.Errorf("unexpected room ID: %s", roomID)
	}

	joined, err := c.JoinRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}
	if joined != roomID {
		t.Errorf("unexpected joined room: %s", joined)
	}
}
