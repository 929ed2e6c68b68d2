// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetpay/cli/internal/config"
	"fleetpay/cli/internal/keychain"
)

// runCLI executes the root command against a PostgREST-style test server.
func runCLI(t *testing.T, handler http.HandlerFunc, args ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvBackend, config.BackendHTTP)
	t.Setenv(config.EnvURL, srv.URL)
	t.Setenv(config.EnvAPIKey, "test-key")
	t.Setenv(config.EnvLogLevel, "off")
	t.Setenv(config.EnvSchema, "")
	t.Setenv(config.EnvDSN, "")
	t.Setenv(config.EnvInsecure, "")
	t.Cleanup(func() { jsonOutput = false })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--json"))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBalanceCommand(t *testing.T) {
	var body map[string]any
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/get_wallet_balance", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		_, _ = io.WriteString(w, `{"balance":"12.50","currency":"SAR"}`)
	}, "balance", "U1")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"p_user_id": "U1"}, body)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "12.50", got["balance"])
}

func TestWalletsVendorsCommand_Fallback(t *testing.T) {
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/rpc/get_all_vendor_wallets":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code":"PGRST202","message":"Could not find the function"}`)
		case "/rest/v1/vendor_wallets":
			_, _ = io.WriteString(w, `[]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}, "wallets", "vendors")

	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestSettingsPaymentSetCommand(t *testing.T) {
	var patched map[string]any
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/rest/v1/app_settings", r.URL.Path)
			_, _ = io.WriteString(w, `{"id":1,"settings":{"a":1,"payment":{"x":1}}}`)
		case http.MethodPatch:
			assert.Equal(t, "eq.1", r.URL.Query().Get("id"))
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, &patched)
			w.WriteHeader(http.StatusNoContent)
		}
	}, "settings", "payment", "set", `{"y":2}`)

	require.NoError(t, err)
	assert.JSONEq(t, `{"updated":true}`, out)
	assert.Equal(t, map[string]any{"settings": map[string]any{"a": 1.0, "payment": map[string]any{"y": 2.0}}}, patched)
}

func TestTransactionsCommand_ExplicitZeroLimit(t *testing.T) {
	var body map[string]any
	out, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/get_wallet_transactions", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		_, _ = io.WriteString(w, `[]`)
	}, "transactions", "W1", "--limit", "0")

	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
	assert.Equal(t, map[string]any{
		"p_wallet_id": "W1",
		"p_limit":     0.0,
		"p_offset":    0.0,
		"p_type":      nil,
		"p_status":    nil,
	}, body)
}

func TestChargeCommand_InvalidAmount(t *testing.T) {
	_, err := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s", r.URL.Path)
	}, "charge", "vendor", "V1", "ten")

	assert.ErrorContains(t, err, `invalid amount "ten"`)
}

func TestParseSettings(t *testing.T) {
	v, err := parseSettings([]byte(`{"fee":0.025,"methods":["card"]}`))
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, json.Number("0.025"), m["fee"])

	_, err = parseSettings([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)

	_, err = parseSettings([]byte(`{`))
	assert.Error(t, err)
}

func TestResolveSecrets(t *testing.T) {
	km := keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil))
	require.NoError(t, km.SaveAPIKey("stored-key"))
	require.NoError(t, km.SaveDSN("postgres://u:p@db/app"))
	open := func() (*keychain.Manager, error) { return km, nil }

	cfg := config.Default()
	require.NoError(t, resolveSecrets(&cfg, open))
	assert.Equal(t, "stored-key", cfg.APIKey)

	cfg = config.Default()
	cfg.APIKey = "env-key"
	require.NoError(t, resolveSecrets(&cfg, open))
	assert.Equal(t, "env-key", cfg.APIKey)

	cfg = config.Default()
	cfg.Backend = config.BackendPostgres
	require.NoError(t, resolveSecrets(&cfg, open))
	assert.Equal(t, "postgres://u:p@db/app", cfg.DSN)
}

func TestResolveSecrets_Missing(t *testing.T) {
	km := keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil))
	cfg := config.Default()

	err := resolveSecrets(&cfg, func() (*keychain.Manager, error) { return km, nil })

	assert.ErrorIs(t, err, keychain.ErrNotFound)
}

func TestDescribeConfig_MasksSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.URL = "https://xyz.example.co"
	cfg.APIKey = "eyJhbGciOiJIUzI1NiJ9.secret-part-abcd"

	out := describeConfig(cfg, "/tmp/config.json", "environment")

	assert.Contains(t, out, "****abcd")
	assert.NotContains(t, out, "secret-part")
	assert.Contains(t, out, "app_settings.settings (id id)")

	cfg.Backend = config.BackendPostgres
	cfg.DSN = "postgres://fleet:hunter2@db/app"
	out = describeConfig(cfg, "/tmp/config.json", "OS keychain")
	assert.NotContains(t, out, "hunter2")
}
