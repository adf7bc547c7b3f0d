// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema describes the shape of Matrix client-server API
// operations, independently of how they are dispatched.
//
// [Endpoint] is an immutable descriptor of one API operation: HTTP
// method, path template with named placeholders, expected success
// status, and whether the operation requires an authenticated session.
// The catalog in this package covers the operations the client core
// exposes: session lifecycle (login, register, logout, whoami,
// versions), rooms (create, join, leave, invite, joined rooms, alias
// resolution), events (send, state get/put, pagination), profile, and
// incremental sync.
//
// The request and response types are plain structs with JSON tags.
// Identifier fields use the validated lib/ref types, so malformed IDs
// from a non-conforming server are rejected during deserialization
// rather than propagating through the program as raw strings.
//
// The client core (package client) is fully generic over this package:
// adding an operation means adding an Endpoint value and its
// request/response types here — no new dispatch code.
package schema
