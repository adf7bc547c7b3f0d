// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package client is a generic dispatch engine for the Matrix
// client-server API: it turns an endpoint descriptor (package schema)
// plus concrete parameter values and live session state into a wire
// request, sends it through a pluggable [Transport], and decodes the
// response into a typed value or a classified error.
//
// The pipeline has three pure stages around one I/O boundary:
//
//	BuildRequest  →  Transport.Send  →  DecodeResponse
//
// [Invoke] composes them for any response type; the methods on
// [Client] (Login, SendMessage, Sync, ...) are thin wrappers that
// supply the descriptor, parameter bundle, and result type. Adding an
// API operation means adding a schema.Endpoint and calling Invoke —
// no new dispatch code.
//
// Every failure is classified into exactly one of four forms, and the
// classification is exhaustive — malformed server responses degrade to
// a MatrixError with code M_UNKNOWN rather than an unclassified error:
//
//   - [ErrAuthRequired]: the operation requires credentials and the
//     session has none. Local — no network I/O was attempted.
//   - [*TransportError]: the exchange failed below the protocol layer
//     (connection refused, TLS, timeout). The cause is opaque.
//   - [*MatrixError]: the server answered and rejected the operation,
//     with the standard errcode/error envelope.
//   - [*DecodeError]: a success-status response violated the declared
//     schema — a client/schema bug or server incompatibility.
//
// Nothing is retried, recovered, or downgraded; every error surfaces
// to the caller, which tests with errors.As/errors.Is (or
// [IsMatrixError] for protocol codes).
//
// [Session] holds the authentication state. Mutations (login,
// register, logout) are serialized under an exclusive lock; request
// building takes a snapshot of the small credentials value and never
// holds the lock across network I/O, so concurrent Invoke calls are
// safe. Access tokens live in mmap-backed secret.Buffer memory, locked
// against swap and excluded from core dumps.
package client
