// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"

	"github.com/bureau-foundation/mxclient/lib/netutil"
	"github.com/bureau-foundation/mxclient/schema"
)

// Invoke performs one API operation: build the request from the
// descriptor and parameter bundle, send it through the transport,
// decode the response into T. This is the single dispatch path for
// every operation — the convenience methods on Client are thin
// wrappers around it, and new operations need no new dispatch code.
//
// The returned error is exactly one of:
//   - ErrAuthRequired: the endpoint requires credentials and the
//     session has none. No network I/O was attempted.
//   - *TransportError: the exchange failed below the protocol layer.
//   - *MatrixError: the server rejected the operation.
//   - *DecodeError: a success response violated the declared schema.
//
// Invoke never retries; cancellation is the caller's responsibility
// via ctx.
func Invoke[T any](ctx context.Context, c *Client, endpoint schema.Endpoint, params Params) (T, error) {
	var zero T

	// Snapshot the credentials before building: the request must not
	// observe a token set concurrently mid-build, and an
	// unauthenticated session must fail before any transport work.
	var credentials *Credentials
	if endpoint.RequiresAuth {
		snapshot, err := c.session.Credentials()
		if err != nil {
			return zero, err
		}
		credentials = &snapshot
	}

	request, err := BuildRequest(ctx, c.session.HomeserverURL(), endpoint, params, credentials)
	if err != nil {
		return zero, err
	}

	response, err := c.transport.Send(request)
	if err != nil {
		return zero, &TransportError{Endpoint: endpoint.Name, Cause: err}
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		// The status line arrived but the body didn't — still a
		// transport-level failure, not a protocol one.
		return zero, &TransportError{Endpoint: endpoint.Name, Cause: err}
	}

	c.logger.Debug("matrix api exchange",
		"endpoint", endpoint.Name,
		"method", endpoint.Method,
		"status", response.StatusCode,
	)

	return DecodeResponse[T](endpoint, response.StatusCode, body)
}
