// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	ferrors "fleetpay/cli/internal/errors"
	"fleetpay/cli/internal/gateway"
)

// UserAgent is sent with every request; the CLI stamps its version into it at startup.
var UserAgent = "fleetpay-cli"

// Endpoints contains the REST path prefixes of the backend.
type Endpoints struct {
	REST string // e.g. "/rest/v1"
	RPC  string // e.g. "/rest/v1/rpc"
}

// DefaultEndpoints returns the path layout used by hosted PostgREST deployments.
func DefaultEndpoints() Endpoints {
	return Endpoints{REST: "/rest/v1", RPC: "/rest/v1/rpc"}
}

// HTTP implements gateway.Backend over PostgREST-style endpoints.
// Procedures are POSTed to {RPC}/{name}; collections are read and updated under {REST}/{name}.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "https://xyz.example.co")
	baseURL string
	// endpoints contains the URL path prefixes
	endpoints Endpoints
	// apiKey is sent both as apikey header and bearer token
	apiKey string
	// schema selects a non-default database schema via profile headers
	schema string
	// client has no timeout of its own; requests are bounded by the caller's context
	client *http.Client
}

// Option configures the HTTP backend.
type Option func(*HTTP)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

// WithEndpoints overrides the REST path layout.
func WithEndpoints(e Endpoints) Option {
	return func(h *HTTP) { h.endpoints = e }
}

// WithSchema targets a schema other than the backend's default one.
func WithSchema(schema string) Option {
	return func(h *HTTP) { h.schema = schema }
}

// newHTTP creates a new HTTP backend with the given base URL and API key.
func newHTTP(baseURL, apiKey string, opts ...Option) *HTTP {
	h := &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: DefaultEndpoints(),
		apiKey:    apiKey,
		client:    &http.Client{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// setStandardHeaders adds the headers every backend request carries.
func (h *HTTP) setStandardHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if h.apiKey != "" {
		req.Header.Set("apikey", h.apiKey)
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
	if id := gateway.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}
	if h.schema != "" {
		if req.Method == http.MethodGet || req.Method == http.MethodHead {
			req.Header.Set("Accept-Profile", h.schema)
		} else {
			req.Header.Set("Content-Profile", h.schema)
		}
	}
}

// request describes one round trip to the backend.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	accept string
	prefer string
}

// do executes the request and returns the response body of a 2xx answer.
// Failures are tagged with an error kind for presentation.
func (h *HTTP) do(ctx context.Context, r request) ([]byte, error) {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, ferrors.Wrap(ferrors.DecodeFailed, r.op+": encode body", err)
		}
		body = bytes.NewReader(b)
	}

	u := h.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, err
	}
	h.setStandardHeaders(ctx, req)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.BackendUnavailable, r.op, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.BackendUnavailable, r.op+": read response", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return b, nil
	}
	return nil, statusError(r.op, resp.StatusCode, b)
}

// Ping checks that the REST root answers. No table or procedure is touched.
func (h *HTTP) Ping(ctx context.Context) error {
	_, err := h.do(ctx, request{op: "ping", method: http.MethodHead, path: h.endpoints.REST + "/"})
	return err
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
