// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRows indicates a single-row select matched nothing.
	ErrNoRows = errors.New("no rows returned")

	// ErrMultipleRows indicates a single-row select matched more than one row.
	ErrMultipleRows = errors.New("multiple rows returned")
)

// RemoteCallError is the only error kind the gateway returns. Err is the
// backend-reported cause; Fallback names the collection queried after the
// procedure failed, if any.
type RemoteCallError struct {
	Op       string
	Fallback string
	Err      error
}

func (e *RemoteCallError) Error() string {
	if e.Fallback != "" {
		return fmt.Sprintf("remote call %s (fallback %s): %v", e.Op, e.Fallback, e.Err)
	}
	return fmt.Sprintf("remote call %s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// IsNoRows reports whether err was caused by an empty single-row select.
func IsNoRows(err error) bool {
	return errors.Is(err, ErrNoRows)
}
