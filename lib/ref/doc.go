// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable Matrix identifiers:
// user IDs, room IDs, room aliases, and event IDs.
//
// Identifiers arrive from two directions — caller input (command-line
// arguments, config files) and homeserver responses — and both are
// parsed into these types at the boundary. All constructors validate
// the structural format defined by the Matrix specification (sigil
// prefix, localpart, ':server' suffix where applicable); once
// constructed, a ref is immutable and its accessors cannot fail.
//
// The canonical serialization form is the full Matrix identifier
// (e.g., "@alice:example.org", "!abc:example.org", "#room:example.org",
// "$eventid"). JSON marshaling uses this form via encoding.TextMarshaler,
// so response types can declare ref fields directly and get validation
// during deserialization for free.
package ref
