// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

// New creates the PostgREST transport for baseURL, authenticating with apiKey.
func New(baseURL, apiKey string, opts ...Option) *HTTP {
	return newHTTP(baseURL, apiKey, opts...)
}
