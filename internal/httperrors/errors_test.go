// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{name: "deadline", err: fmt.Errorf("rpc get_wallet_balance: %w", context.DeadlineExceeded), want: Timeout},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "xyz.example.co"}, want: DNS},
		{name: "refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, want: ConnectionRefused},
		{name: "tls", err: errors.New("x509: certificate signed by unknown authority"), want: TLS},
		{name: "gateway", err: errors.New("rpc x failed: 502 Bad Gateway"), want: ServerError},
		{name: "other", err: errors.New("EOF"), want: Generic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestDescribe_NamesHost(t *testing.T) {
	title, lines := Describe(DNS, "fetching balance", "xyz.example.co")

	assert.Contains(t, title, "fetching balance")
	assert.Contains(t, lines[0], "xyz.example.co")
}

func TestDescribe_DefaultHost(t *testing.T) {
	title, _ := Describe(Generic, "connecting", "")
	assert.Contains(t, title, "the backend")
}

func TestExtractHostFromURL(t *testing.T) {
	assert.Equal(t, "xyz.example.co", ExtractHostFromURL("https://xyz.example.co:443/rest/v1"))
	assert.Equal(t, "", ExtractHostFromURL("not a url"))
}
