// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend talks to a hosted PostgREST-style data API.
// It implements gateway.Backend: remote procedures are POSTed to the RPC
// endpoint, collections are read and patched under the REST endpoint.
// Failures carry an errors.Kind so the CLI can present them.
package backend

import "fleetpay/cli/internal/gateway"

var _ gateway.Backend = (*HTTP)(nil)
