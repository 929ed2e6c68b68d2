// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pgstore implements gateway.Backend directly against PostgreSQL over a
// pgx connection pool. Remote procedures are plain SQL functions called with
// named arguments; collections are tables or views in the configured schema.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	ferrors "fleetpay/cli/internal/errors"
	"fleetpay/cli/internal/gateway"
)

// ApplicationName is reported to the server in pg_stat_activity.
const ApplicationName = "fleetpay-cli"

// Store runs gateway operations on a pgx pool.
type Store struct {
	// Pool is the PostgreSQL connection pool
	Pool   *pgxpool.Pool
	schema string
}

var _ gateway.Backend = (*Store)(nil)

// New creates a Store from an existing pool. An empty schema leaves names unqualified.
func New(pool *pgxpool.Pool, schema string) *Store {
	return &Store{Pool: pool, schema: schema}
}

// Open parses dsn, creates a pool and verifies the connection.
func Open(ctx context.Context, dsn, schema string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName
	cfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		registerJSONCodecs(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.BackendUnavailable, "connect", err)
	}
	s := New(pool, schema)
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// CallProcedure runs SELECT * FROM schema.name(arg => $n, ...).
func (s *Store) CallProcedure(ctx context.Context, name string, args map[string]any) (any, error) {
	op := "rpc " + name
	sql, params := buildCall(s.schema, name, args)
	rows, err := s.query(ctx, op, sql, params...)
	if err != nil {
		return nil, err
	}
	return shapeResult(name, rows), nil
}

// SelectAll reads every row of collection. No rows yields an empty, non-nil slice.
func (s *Store) SelectAll(ctx context.Context, collection string) ([]map[string]any, error) {
	return s.query(ctx, "select "+collection, buildSelect(s.schema, collection, 0))
}

// SelectSingle reads the only row of collection.
func (s *Store) SelectSingle(ctx context.Context, collection string) (map[string]any, error) {
	op := "select single " + collection
	rows, err := s.query(ctx, op, buildSelect(s.schema, collection, 2))
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, fmt.Errorf("%s: %w", op, gateway.ErrNoRows)
	case 1:
		return rows[0], nil
	default:
		return nil, fmt.Errorf("%s: %w", op, gateway.ErrMultipleRows)
	}
}

// Update sets values on the row whose idColumn equals id.
func (s *Store) Update(ctx context.Context, collection, idColumn string, id any, values map[string]any) error {
	op := "update " + collection
	if len(values) == 0 {
		return nil
	}
	sql, params := buildUpdate(s.schema, collection, idColumn, id, values)
	ct, err := s.Pool.Exec(ctx, sql, params...)
	if err != nil {
		return classify(op, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, gateway.ErrNoRows)
	}
	return nil
}

// Ping verifies the pool can reach the server.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.Pool.Ping(ctx); err != nil {
		return ferrors.Wrap(ferrors.BackendUnavailable, "ping", err)
	}
	return nil
}

// Close closes every pooled connection.
func (s *Store) Close() error {
	s.Pool.Close()
	return nil
}

func (s *Store) query(ctx context.Context, op, sql string, args ...any) ([]map[string]any, error) {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, classify(op, err)
	}
	return normalizeRows(maps), nil
}

// classify tags driver errors: server-side errors carry the SQLSTATE,
// anything else means the server could not be used at all.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := fmt.Sprintf("%s failed: %s %s", op, pgErr.Code, pgErr.Message)
		// 28xxx: invalid authorization, 42501: insufficient_privilege
		if strings.HasPrefix(pgErr.Code, "28") || pgErr.Code == "42501" {
			return ferrors.Wrap(ferrors.Unauthorized, msg, err)
		}
		return ferrors.Wrap(ferrors.BackendStatus, msg, err)
	}
	return ferrors.Wrap(ferrors.BackendUnavailable, op, err)
}
