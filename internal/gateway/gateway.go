// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package gateway relays wallet and settings operations to a remote backend.
//
// A Gateway turns local calls into either a named remote procedure invocation or a
// direct query against a named collection. It owns no state besides its collaborators:
// every operation is a single remote round trip, with one exception per access pattern:
//
//   - InvokeWithFallback runs a collection select when the procedure fails.
//   - UpdateSettingsSection reads the singleton settings document before writing it back.
//
// Failures are logged and returned as *RemoteCallError. Nothing is retried.
package gateway

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Backend is the remote backend as seen by the gateway. Implementations live in
// internal/backend (HTTP), internal/pgstore (Postgres) and internal/bridge/grpcclient (gRPC).
type Backend interface {
	// CallProcedure invokes the named procedure with keyword arguments and returns its payload.
	CallProcedure(ctx context.Context, name string, args map[string]any) (any, error)
	// SelectAll returns every row of the collection.
	SelectAll(ctx context.Context, collection string) ([]map[string]any, error)
	// SelectSingle returns the only row of the collection. Implementations report
	// zero rows with ErrNoRows and more than one row with ErrMultipleRows.
	SelectSingle(ctx context.Context, collection string) (map[string]any, error)
	// Update writes values to the row whose idColumn equals id.
	Update(ctx context.Context, collection, idColumn string, id any, values map[string]any) error
}

// Gateway forwards operations to a Backend. It is safe for concurrent use.
type Gateway struct {
	backend  Backend
	log      *zap.Logger
	settings settingsTable
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger used for failure reporting. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// WithSettingsTable overrides where the singleton settings document lives.
// An empty documentColumn means the row itself is the section mapping.
func WithSettingsTable(collection, idColumn, documentColumn string) Option {
	return func(g *Gateway) {
		g.settings = settingsTable{collection: collection, idColumn: idColumn, documentColumn: documentColumn}
	}
}

// New creates a gateway over an already connected backend. The caller keeps
// ownership of the backend's connection lifecycle.
func New(backend Backend, opts ...Option) *Gateway {
	g := &Gateway{
		backend:  backend,
		log:      zap.NewNop(),
		settings: defaultSettingsTable,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Invoke calls a remote procedure once and returns its payload unchanged, nil included.
func (g *Gateway) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	ctx, reqID := ensureRequestID(ctx)

	payload, err := g.backend.CallProcedure(ctx, name, args)
	if err != nil {
		g.log.Error("remote procedure failed",
			zap.String("op", name),
			zap.String("request_id", reqID),
			zap.Error(err))
		return nil, &RemoteCallError{Op: name, Err: err}
	}
	return payload, nil
}

// InvokeWithFallback calls a list-returning procedure and, when it fails, selects every
// row of fallbackCollection instead. The result is never nil.
//
// The fallback covers deployments where the procedure does not exist. It runs only
// after the primary failure has been observed and is attempted exactly once.
func (g *Gateway) InvokeWithFallback(ctx context.Context, name string, args map[string]any, fallbackCollection string) ([]any, error) {
	ctx, reqID := ensureRequestID(ctx)

	payload, err := g.backend.CallProcedure(ctx, name, args)
	if err == nil {
		return asList(payload), nil
	}

	g.log.Warn("remote procedure failed, falling back to collection query",
		zap.String("op", name),
		zap.String("fallback", fallbackCollection),
		zap.String("request_id", reqID),
		zap.Error(err))

	rows, err := g.backend.SelectAll(ctx, fallbackCollection)
	if err != nil {
		g.log.Error("fallback collection query failed",
			zap.String("op", name),
			zap.String("fallback", fallbackCollection),
			zap.String("request_id", reqID),
			zap.Error(err))
		return nil, &RemoteCallError{Op: name, Fallback: fallbackCollection, Err: err}
	}

	out := make([]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	return out, nil
}

// asList normalizes a procedure payload into a sequence.
func asList(payload any) []any {
	switch v := payload.(type) {
	case nil:
		return []any{}
	case []any:
		if v == nil {
			return []any{}
		}
		return v
	case []map[string]any:
		out := make([]any, 0, len(v))
		for _, row := range v {
			out = append(out, row)
		}
		return out
	default:
		return []any{v}
	}
}

type requestIDKey struct{}

// ContextWithRequestID attaches a correlation id that transports forward to the backend.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func ensureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return ContextWithRequestID(ctx, id), id
}
