// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "strings"

// Endpoint is an immutable descriptor of one Matrix client-server API
// operation. The client core turns an Endpoint plus concrete parameter
// values into a wire request; it never needs per-operation code.
type Endpoint struct {
	// Name identifies the operation in logs and error messages
	// (e.g., "login", "send_event"). Never sent over the wire.
	Name string

	// Method is the HTTP method (http.MethodGet, http.MethodPost, ...).
	Method string

	// Path is the URL path template. Named placeholders are written
	// as "{name}" and occupy exactly one path segment
	// (e.g., "/_matrix/client/v3/rooms/{roomID}/leave"). Placeholder
	// values are percent-encoded per segment at request-build time;
	// the template's literal slashes are never encoded.
	Path string

	// RequiresAuth marks operations that must carry a bearer
	// Authorization header. Invoking such an operation on an
	// unauthenticated session fails before any network I/O.
	RequiresAuth bool

	// SuccessStatus is the expected HTTP status of a successful
	// response. Zero means any 2xx status is a success.
	SuccessStatus int
}

// PathParams returns the placeholder names in the path template, in
// order of appearance. Used by tests to cross-check parameter bundles
// against descriptors.
func (e Endpoint) PathParams() []string {
	var names []string
	remaining := e.Path
	for {
		open := strings.IndexByte(remaining, '{')
		if open < 0 {
			return names
		}
		end := strings.IndexByte(remaining[open:], '}')
		if end < 0 {
			return names
		}
		names = append(names, remaining[open+1:open+end])
		remaining = remaining[open+end+1:]
	}
}
