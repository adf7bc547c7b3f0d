// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/mxclient/schema"
)

// DecodeResponse classifies and decodes a raw response for the given
// endpoint. Pure one-shot classifier: no retries, no caching.
//
// A status in the endpoint's success range decodes the body into T; a
// body that violates the schema yields *DecodeError, never a
// MatrixError. Any other status decodes the standard Matrix error
// envelope into *MatrixError; an unparseable error body falls back to
// a MatrixError with code M_UNKNOWN carrying the raw status, so a
// non-conforming server cannot produce an unclassified failure.
func DecodeResponse[T any](endpoint schema.Endpoint, statusCode int, body []byte) (T, error) {
	var value T

	if isSuccess(endpoint, statusCode) {
		// Some operations answer with an empty body rather than
		// "{}". Treat that as the zero value of the declared schema.
		if len(bytes.TrimSpace(body)) == 0 {
			return value, nil
		}
		if err := json.Unmarshal(body, &value); err != nil {
			var zero T
			return zero, &DecodeError{
				Endpoint:   endpoint.Name,
				StatusCode: statusCode,
				Cause:      err,
			}
		}
		return value, nil
	}

	var matrixErr MatrixError
	if err := json.Unmarshal(body, &matrixErr); err != nil {
		return value, &MatrixError{
			Code:       ErrCodeUnknown,
			Message:    fmt.Sprintf("unexpected %d response from %s: %s", statusCode, endpoint.Name, bodySnippet(body)),
			StatusCode: statusCode,
		}
	}
	if matrixErr.Code == "" {
		// Valid JSON but no errcode — UIAA challenges and some
		// reverse proxies do this. Raw preserves the full body.
		matrixErr.Code = ErrCodeUnknown
	}
	matrixErr.StatusCode = statusCode
	matrixErr.Raw = append(json.RawMessage(nil), body...)
	return value, &matrixErr
}

// isSuccess reports whether the status is in the endpoint's success
// range: the declared status if the descriptor names one, otherwise
// any 2xx.
func isSuccess(endpoint schema.Endpoint, statusCode int) bool {
	if endpoint.SuccessStatus != 0 {
		return statusCode == endpoint.SuccessStatus
	}
	return statusCode >= 200 && statusCode < 300
}

// bodySnippet truncates a response body for inclusion in an error
// message.
func bodySnippet(body []byte) string {
	const limit = 256
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
