// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAuthRequired is returned when an operation whose descriptor
// requires authentication is invoked on a session with no credentials.
// The failure is local: no network I/O is attempted.
var ErrAuthRequired = errors.New("mxclient: authentication required (no credentials in session)")

// MatrixError is a structured protocol-level rejection from the
// homeserver: the server answered, but refused the operation. Callers
// use errors.As to extract the structured information:
//
//	var matrixErr *client.MatrixError
//	if errors.As(err, &matrixErr) {
//	    if matrixErr.Code == client.ErrCodeNotFound { ... }
//	}
//
// A response with a non-success status whose body is not a valid error
// envelope still yields a MatrixError — with Code set to M_UNKNOWN and
// the raw status preserved — so a non-conforming server never produces
// an unclassified failure.
type MatrixError struct {
	// Code is the Matrix error code (e.g., "M_FORBIDDEN", "M_UNKNOWN_TOKEN").
	Code string `json:"errcode"`
	// Message is the human-readable error description from the server.
	Message string `json:"error"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
	// Raw is the response body when it was valid JSON. Flows that
	// need fields beyond the standard envelope (the UIAA session ID
	// on a 401 registration challenge) read them from here.
	Raw json.RawMessage `json:"-"`
}

func (e *MatrixError) Error() string {
	return fmt.Sprintf("matrix: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Standard Matrix error codes.
const (
	ErrCodeForbidden     = "M_FORBIDDEN"
	ErrCodeUnknownToken  = "M_UNKNOWN_TOKEN"
	ErrCodeNotFound      = "M_NOT_FOUND"
	ErrCodeUserInUse     = "M_USER_IN_USE"
	ErrCodeLimitExceeded = "M_LIMIT_EXCEEDED"
	ErrCodeUnrecognized  = "M_UNRECOGNIZED"
	ErrCodeUnknown       = "M_UNKNOWN"
	ErrCodeInvalidParam  = "M_INVALID_PARAM"
	ErrCodeMissingParam  = "M_MISSING_PARAM"
	ErrCodeRoomInUse     = "M_ROOM_IN_USE"
)

// IsMatrixError checks whether err is a *MatrixError with the given
// error code.
func IsMatrixError(err error, code string) bool {
	var matrixErr *MatrixError
	if errors.As(err, &matrixErr) {
		return matrixErr.Code == code
	}
	return false
}

// TransportError wraps a failure below the protocol layer: connection
// refused, TLS handshake, timeout, or a truncated body read. The cause
// comes from the transport verbatim — this package does not interpret
// it, and never retries.
type TransportError struct {
	// Endpoint is the operation name, for diagnostics.
	Endpoint string
	// Cause is the underlying transport failure.
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mxclient: transport: %s: %v", e.Endpoint, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// DecodeError reports a response with a success status whose body did
// not match the operation's declared schema. This is distinct from
// MatrixError: a DecodeError indicates a client/schema bug or a
// server incompatibility, not a protocol-level rejection.
type DecodeError struct {
	// Endpoint is the operation name, for diagnostics.
	Endpoint string
	// StatusCode is the (successful) HTTP status of the response.
	StatusCode int
	// Cause is the deserialization failure.
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("mxclient: decoding %s response (status %d): %v", e.Endpoint, e.StatusCode, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }
