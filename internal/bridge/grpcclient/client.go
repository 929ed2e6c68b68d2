// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcclient implements gateway.Backend over a gRPC data bridge.
// The bridge exposes four unary methods on the fleetpay.gateway.v1.Gateway
// service whose messages are the well-known Struct/Value/ListValue types, so
// no generated stubs are needed: rows and payloads travel as JSON-shaped
// protobuf values. Every call carries the API key as a bearer token.
package grpcclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	ferrors "fleetpay/cli/internal/errors"
	"fleetpay/cli/internal/gateway"
)

// ServiceName is the fully qualified gRPC service the bridge serves.
const ServiceName = "fleetpay.gateway.v1.Gateway"

// Full method names.
const (
	MethodCallProcedure = "/" + ServiceName + "/CallProcedure"
	MethodSelectAll     = "/" + ServiceName + "/SelectAll"
	MethodSelectSingle  = "/" + ServiceName + "/SelectSingle"
	MethodUpdate        = "/" + ServiceName + "/Update"
)

// Client implements gateway.Backend on a single gRPC connection.
type Client struct {
	conn   *grpc.ClientConn
	apiKey string
}

var _ gateway.Backend = (*Client)(nil)

type dialConfig struct {
	insecure bool
	extra    []grpc.DialOption
}

// Option configures Dial.
type Option func(*dialConfig)

// WithInsecure disables TLS, for local bridges.
func WithInsecure() Option {
	return func(c *dialConfig) { c.insecure = true }
}

// WithDialOptions appends raw gRPC dial options.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *dialConfig) { c.extra = append(c.extra, opts...) }
}

// Dial creates a client for addr. TLS is used unless WithInsecure is given;
// a missing port defaults to 443. The connection is established lazily.
func Dial(addr, apiKey string, opts ...Option) (*Client, error) {
	var cfg dialConfig
	for _, o := range opts {
		o(&cfg)
	}

	// Derive SNI and ensure default port if missing
	host := addr
	target := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	} else if !cfg.insecure {
		target = net.JoinHostPort(addr, "443")
	}

	creds := insecure.NewCredentials()
	if !cfg.insecure {
		creds = credentials.NewTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	}
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, cfg.extra...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.BackendUnavailable, "dial "+addr, err)
	}
	return &Client{conn: conn, apiKey: apiKey}, nil
}

// outgoing attaches authorization and request id metadata.
func (c *Client) outgoing(ctx context.Context) context.Context {
	pairs := []string{}
	if c.apiKey != "" {
		pairs = append(pairs, "authorization", "Bearer "+c.apiKey)
	}
	if id := gateway.RequestID(ctx); id != "" {
		pairs = append(pairs, "x-request-id", id)
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...)
}

// CallProcedure invokes name with args and returns the decoded payload.
func (c *Client) CallProcedure(ctx context.Context, name string, args map[string]any) (any, error) {
	op := "rpc " + name
	if args == nil {
		args = map[string]any{}
	}
	req, err := newStruct(op, map[string]any{"name": name, "args": args})
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Value)
	if err := c.conn.Invoke(c.outgoing(ctx), MethodCallProcedure, req, resp); err != nil {
		return nil, statusError(op, err)
	}
	return resp.AsInterface(), nil
}

// SelectAll returns every row of collection.
func (c *Client) SelectAll(ctx context.Context, collection string) ([]map[string]any, error) {
	op := "select " + collection
	req, err := newStruct(op, map[string]any{"collection": collection})
	if err != nil {
		return nil, err
	}
	resp := new(structpb.ListValue)
	if err := c.conn.Invoke(c.outgoing(ctx), MethodSelectAll, req, resp); err != nil {
		return nil, statusError(op, err)
	}

	rows := make([]map[string]any, 0, len(resp.GetValues()))
	for i, v := range resp.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, ferrors.New(ferrors.DecodeFailed, fmt.Sprintf("%s: row %d is not an object", op, i))
		}
		rows = append(rows, s.AsMap())
	}
	return rows, nil
}

// SelectSingle returns the only row of collection. The bridge answers
// NotFound for no rows and FailedPrecondition for more than one.
func (c *Client) SelectSingle(ctx context.Context, collection string) (map[string]any, error) {
	op := "select single " + collection
	req, err := newStruct(op, map[string]any{"collection": collection})
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), MethodSelectSingle, req, resp); err != nil {
		switch status.Code(err) {
		case codes.NotFound:
			return nil, fmt.Errorf("%s: %w", op, gateway.ErrNoRows)
		case codes.FailedPrecondition:
			return nil, fmt.Errorf("%s: %w", op, gateway.ErrMultipleRows)
		}
		return nil, statusError(op, err)
	}
	return resp.AsMap(), nil
}

// Update writes values to the row of collection whose idColumn equals id.
// NotFound from the bridge means no row matched.
func (c *Client) Update(ctx context.Context, collection, idColumn string, id any, values map[string]any) error {
	op := "update " + collection
	req, err := newStruct(op, map[string]any{
		"collection": collection,
		"id_column":  idColumn,
		"id":         id,
		"values":     values,
	})
	if err != nil {
		return err
	}
	if err := c.conn.Invoke(c.outgoing(ctx), MethodUpdate, req, new(emptypb.Empty)); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%s: %w", op, gateway.ErrNoRows)
		}
		return statusError(op, err)
	}
	return nil
}

// Ping asks the bridge's health service whether the gateway is serving.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := healthpb.NewHealthClient(c.conn).Check(c.outgoing(ctx), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return statusError("ping", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ferrors.New(ferrors.BackendUnavailable, "ping: bridge is "+resp.GetStatus().String())
	}
	return nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// newStruct builds a request message. Values are passed through JSON first so
// that decimals, typed slices and other marshalable values become plain
// JSON-shaped data that structpb accepts.
func newStruct(op string, fields map[string]any) (*structpb.Struct, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.DecodeFailed, op+": encode request", err)
	}
	var plain map[string]any
	if err := json.Unmarshal(b, &plain); err != nil {
		return nil, ferrors.Wrap(ferrors.DecodeFailed, op+": encode request", err)
	}
	s, err := structpb.NewStruct(plain)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.DecodeFailed, op+": encode request", err)
	}
	return s, nil
}

// statusError tags a gRPC status with an error kind.
func statusError(op string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return ferrors.Wrap(ferrors.BackendUnavailable, op, err)
	}
	msg := fmt.Sprintf("%s failed: %s %s", op, st.Code(), st.Message())
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return ferrors.Wrap(ferrors.BackendUnavailable, msg, err)
	case codes.Unauthenticated, codes.PermissionDenied:
		return ferrors.Wrap(ferrors.Unauthorized, msg, err)
	default:
		return ferrors.Wrap(ferrors.BackendStatus, msg, err)
	}
}
