// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	ferrors "fleetpay/cli/internal/errors"
	"fleetpay/cli/internal/gateway"
)

// pgrstError is the error body PostgREST returns for failed requests.
type pgrstError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// statusError converts a non-2xx response into a tagged error.
// Single-object requests that matched zero or several rows map onto the gateway sentinels.
func statusError(op string, status int, body []byte) error {
	var pe pgrstError
	_ = json.Unmarshal(body, &pe)

	detail := strings.TrimSpace(pe.Message)
	if detail == "" {
		detail = strings.TrimSpace(string(body))
	}

	if status == http.StatusNotAcceptable && pe.Code == "PGRST116" {
		if strings.Contains(pe.Details, " 0 rows") {
			return fmt.Errorf("%s: %w", op, gateway.ErrNoRows)
		}
		return fmt.Errorf("%s: %w", op, gateway.ErrMultipleRows)
	}

	msg := fmt.Sprintf("%s failed: %d %s", op, status, detail)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ferrors.New(ferrors.Unauthorized, msg)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ferrors.New(ferrors.BackendUnavailable, msg)
	default:
		return ferrors.New(ferrors.BackendStatus, msg)
	}
}

// decodeJSON unmarshals a response body keeping numbers as json.Number, so
// payloads and documents written back keep their exact digits.
func decodeJSON(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// CallProcedure posts args to {RPC}/{name} and decodes whatever JSON comes back.
// An empty body (void procedures) yields a nil payload.
func (h *HTTP) CallProcedure(ctx context.Context, name string, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	b, err := h.do(ctx, request{
		op:     "rpc " + name,
		method: http.MethodPost,
		path:   h.endpoints.RPC + "/" + url.PathEscape(name),
		body:   args,
	})
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	var payload any
	if err := decodeJSON(b, &payload); err != nil {
		return nil, ferrors.Wrap(ferrors.DecodeFailed, "rpc "+name, err)
	}
	return payload, nil
}
