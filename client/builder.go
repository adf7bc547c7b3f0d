// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bureau-foundation/mxclient/schema"
)

// QueryParam is one query-string entry. Query parameters are carried
// as an ordered slice, not a map: the encoded query preserves
// declaration order, keeping built URLs byte-for-byte deterministic.
type QueryParam struct {
	Name  string
	Value string
}

// Params bundles the concrete values for one endpoint invocation:
// path placeholder substitutions, query parameters in declaration
// order, and an optional JSON body. Constructed per call, never
// persisted.
type Params struct {
	// Path maps placeholder names from the endpoint's path template
	// to their values. Every placeholder must have an entry; a missing
	// one is a programming error and panics at build time. An empty
	// value is legal — the empty state key addresses singleton state
	// events.
	Path map[string]string

	// Query is appended to the URL in slice order.
	Query []QueryParam

	// Body is JSON-serialized as the request payload. Nil sends no
	// payload and no Content-Type header.
	Body any
}

// BuildRequest translates (endpoint, params, credentials) into a fully
// formed HTTP request. Pure and deterministic: the same inputs yield
// the same request, byte for byte.
//
// credentials carries the session snapshot for authenticated
// endpoints; it may be nil for endpoints that don't require auth. An
// endpoint that requires auth with nil credentials fails with
// ErrAuthRequired before any serialization work.
func BuildRequest(ctx context.Context, baseURL string, endpoint schema.Endpoint, params Params, credentials *Credentials) (*http.Request, error) {
	if endpoint.RequiresAuth && credentials == nil {
		return nil, ErrAuthRequired
	}

	requestURL := baseURL + resolvePath(endpoint.Path, params.Path)
	if query := encodeQuery(params.Query); query != "" {
		requestURL += "?" + query
	}

	var bodyReader io.Reader
	if params.Body != nil {
		encoded, err := json.Marshal(params.Body)
		if err != nil {
			return nil, fmt.Errorf("mxclient: encoding %s request body: %w", endpoint.Name, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, endpoint.Method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("mxclient: creating %s request: %w", endpoint.Name, err)
	}

	if params.Body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	if endpoint.RequiresAuth {
		request.Header.Set("Authorization", "Bearer "+credentials.AccessToken)
	}

	return request, nil
}

// resolvePath substitutes each "{name}" placeholder segment with its
// percent-encoded value. Literal template characters — including the
// slashes between segments — are never altered; each substituted value
// is encoded independently, so a value containing '/' or '#' stays
// within its segment.
//
// A placeholder absent from the value map is a programming error (the
// parameter bundle does not match the descriptor) and panics
// deterministically rather than silently omitting the segment. An
// empty value that is present in the map substitutes an empty segment:
// Matrix uses the empty state key for singleton state events like
// m.room.name, so "" is valid input, not a missing parameter.
func resolvePath(template string, values map[string]string) string {
	segments := strings.Split(template, "/")
	for index, segment := range segments {
		if len(segment) < 2 || segment[0] != '{' || segment[len(segment)-1] != '}' {
			continue
		}
		name := segment[1 : len(segment)-1]
		value, ok := values[name]
		if !ok {
			panic(fmt.Sprintf("mxclient: path template %q: no value for parameter %q", template, name))
		}
		segments[index] = url.PathEscape(value)
	}
	return strings.Join(segments, "/")
}

// encodeQuery URL-encodes query parameters preserving slice order.
// url.Values.Encode is not used because it sorts keys alphabetically.
func encodeQuery(params []QueryParam) string {
	var builder strings.Builder
	for index, param := range params {
		if index > 0 {
			builder.WriteByte('&')
		}
		builder.WriteString(url.QueryEscape(param.Name))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(param.Value))
	}
	return builder.String()
}
