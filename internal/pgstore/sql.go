// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pgstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// qualified returns a sanitized, optionally schema-qualified identifier.
func qualified(schema, name string) string {
	if schema == "" {
		return pgx.Identifier{name}.Sanitize()
	}
	return pgx.Identifier{schema, name}.Sanitize()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildCall renders a call with named arguments, e.g.
// SELECT * FROM "public"."get_wallet_balance"("p_user_id" => $1).
func buildCall(schema, name string, args map[string]any) (string, []any) {
	keys := sortedKeys(args)
	params := make([]string, len(keys))
	values := make([]any, len(keys))
	for i, k := range keys {
		params[i] = fmt.Sprintf("%s => $%d", pgx.Identifier{k}.Sanitize(), i+1)
		values[i] = args[k]
	}
	return fmt.Sprintf("SELECT * FROM %s(%s)", qualified(schema, name), strings.Join(params, ", ")), values
}

// buildSelect renders a full-collection read. limit <= 0 means no limit.
func buildSelect(schema, collection string, limit int) string {
	sql := "SELECT * FROM " + qualified(schema, collection)
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	return sql
}

// buildUpdate renders UPDATE ... SET ... WHERE idColumn = $n with columns in sorted order.
func buildUpdate(schema, collection, idColumn string, id any, values map[string]any) (string, []any) {
	keys := sortedKeys(values)
	sets := make([]string, len(keys))
	params := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		sets[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{k}.Sanitize(), i+1)
		params = append(params, values[k])
	}
	params = append(params, id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		qualified(schema, collection), strings.Join(sets, ", "), pgx.Identifier{idColumn}.Sanitize(), len(params))
	return sql, params
}

// decodeJSON unmarshals json and jsonb values keeping numbers as json.Number,
// so documents read and written back keep their exact digits.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// registerJSONCodecs replaces the json and jsonb codecs of m (and their array
// types) with ones that decode through decodeJSON.
func registerJSONCodecs(m *pgtype.Map) {
	jsonType := &pgtype.Type{Name: "json", OID: pgtype.JSONOID, Codec: &pgtype.JSONCodec{Marshal: json.Marshal, Unmarshal: decodeJSON}}
	jsonbType := &pgtype.Type{Name: "jsonb", OID: pgtype.JSONBOID, Codec: &pgtype.JSONBCodec{Marshal: json.Marshal, Unmarshal: decodeJSON}}
	m.RegisterType(jsonType)
	m.RegisterType(jsonbType)
	m.RegisterType(&pgtype.Type{Name: "_json", OID: pgtype.JSONArrayOID, Codec: &pgtype.ArrayCodec{ElementType: jsonType}})
	m.RegisterType(&pgtype.Type{Name: "_jsonb", OID: pgtype.JSONBArrayOID, Codec: &pgtype.ArrayCodec{ElementType: jsonbType}})
}

// normalizeValue turns pgx driver values into plain JSON-friendly ones.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case [16]byte:
		return uuid.UUID(x).String()
	case []byte:
		return fmt.Sprintf("\\x%x", x)
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		if x.NaN || x.InfinityModifier != pgtype.Finite {
			f, err := x.Float64Value()
			if err != nil {
				return nil
			}
			return f.Float64
		}
		return decimal.NewFromBigInt(x.Int, x.Exp)
	case map[string]any:
		return normalizeRow(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

func normalizeRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = normalizeRow(r)
	}
	return out
}

// shapeResult maps the rows of a function call onto a payload.
// A single row with a single column named after the function is a scalar
// (or json) return and is unwrapped; anything else is a set of records.
func shapeResult(name string, rows []map[string]any) any {
	if len(rows) == 1 && len(rows[0]) == 1 {
		if v, ok := rows[0][name]; ok {
			return v
		}
	}
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
