// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	ferrors "fleetpay/cli/internal/errors"
)

// objectMediaType asks PostgREST for exactly one row as a bare object.
const objectMediaType = "application/vnd.pgrst.object+json"

func (h *HTTP) collectionPath(collection string) string {
	return h.endpoints.REST + "/" + url.PathEscape(collection)
}

// SelectAll calls GET {REST}/{collection}?select=*.
func (h *HTTP) SelectAll(ctx context.Context, collection string) ([]map[string]any, error) {
	op := "select " + collection
	b, err := h.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   h.collectionPath(collection),
		query:  url.Values{"select": {"*"}},
	})
	if err != nil {
		return nil, err
	}

	rows := []map[string]any{}
	if len(b) == 0 {
		return rows, nil
	}
	if err := decodeJSON(b, &rows); err != nil {
		return nil, ferrors.Wrap(ferrors.DecodeFailed, op, err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}

// SelectSingle calls GET {REST}/{collection}?select=* asking for a single object.
// PostgREST refuses with 406 unless exactly one row matches.
func (h *HTTP) SelectSingle(ctx context.Context, collection string) (map[string]any, error) {
	op := "select single " + collection
	b, err := h.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   h.collectionPath(collection),
		query:  url.Values{"select": {"*"}},
		accept: objectMediaType,
	})
	if err != nil {
		return nil, err
	}

	var row map[string]any
	if err := decodeJSON(b, &row); err != nil {
		return nil, ferrors.Wrap(ferrors.DecodeFailed, op, err)
	}
	return row, nil
}

// Update calls PATCH {REST}/{collection}?{idColumn}=eq.{id} with values as the body.
func (h *HTTP) Update(ctx context.Context, collection, idColumn string, id any, values map[string]any) error {
	_, err := h.do(ctx, request{
		op:     "update " + collection,
		method: http.MethodPatch,
		path:   h.collectionPath(collection),
		query:  url.Values{idColumn: {"eq." + formatID(id)}},
		body:   values,
		prefer: "return=minimal",
	})
	return err
}

// formatID renders a row identifier for a PostgREST filter. Floats are
// written without an exponent so 1000000 does not become 1e+06.
func formatID(id any) string {
	switch v := id.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(id)
	}
}
