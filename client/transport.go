// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"crypto/tls"
	"net/http"
	"time"
)

// Transport performs the actual network I/O for one request/response
// exchange. It is the only I/O boundary of this package: everything on
// either side of Send is pure and synchronous.
//
// Implementations must be safe for concurrent use — the client issues
// independent requests without shared mutable buffers. Cancellation
// and deadlines propagate through the request's context; this package
// passes them through opaquely and never retries.
type Transport interface {
	Send(request *http.Request) (*http.Response, error)
}

// TransportConfig holds configuration for the built-in HTTP transport.
// The zero value is usable: no client-side timeout (callers control
// cancellation via context — required for sync long-polling) and
// default TLS settings.
type TransportConfig struct {
	// Timeout bounds each exchange end-to-end, including body read.
	// Zero means no client-side timeout. Leave zero when the client
	// is used for sync long-polling and bound individual calls with
	// a context deadline instead.
	Timeout time.Duration

	// TLSClientConfig overrides TLS settings (custom CA pools,
	// client certificates). Nil uses the defaults. Whether TLS is
	// used at all is decided by the homeserver URL scheme.
	TLSClientConfig *tls.Config

	// DisableKeepAlives turns off connection reuse. Useful against
	// homeservers behind aggressive idle-connection reapers.
	DisableKeepAlives bool
}

// HTTPTransport is the standard Transport backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTP transport from the given config.
func NewHTTPTransport(config TransportConfig) *HTTPTransport {
	httpTransport := http.DefaultTransport.(*http.Transport).Clone()
	httpTransport.TLSClientConfig = config.TLSClientConfig
	httpTransport.DisableKeepAlives = config.DisableKeepAlives

	return &HTTPTransport{
		client: &http.Client{
			Transport: httpTransport,
			Timeout:   config.Timeout,
		},
	}
}

// Send performs the HTTP exchange.
func (t *HTTPTransport) Send(request *http.Request) (*http.Response, error) {
	return t.client.Do(request)
}

// CloseIdleConnections closes idle connections in the transport's
// pool. Call after a network disruption to force subsequent requests
// onto fresh TCP connections instead of a poisoned pooled one.
func (t *HTTPTransport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}
