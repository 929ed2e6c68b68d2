// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to the OS keychain.
// Environment variables override the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fleetpay/cli/internal/xdg"
)

// Transports the CLI can talk to.
const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
	BackendGRPC     = "grpc"
)

// Environment variables that override the config file.
const (
	EnvBackend  = "FLEETPAY_BACKEND"
	EnvURL      = "FLEETPAY_URL"
	EnvSchema   = "FLEETPAY_SCHEMA"
	EnvLogLevel = "FLEETPAY_LOG_LEVEL"
	EnvInsecure = "FLEETPAY_INSECURE"
	EnvAPIKey   = "FLEETPAY_API_KEY"
	EnvDSN      = "FLEETPAY_DSN"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	// Backend selects the transport: http, postgres or grpc.
	Backend string `json:"backend"`
	// URL is the data API base URL (http) or bridge address (grpc).
	// The postgres transport reads its DSN from the keychain or FLEETPAY_DSN.
	URL string `json:"url"`
	// Schema is the database schema holding procedures and collections.
	Schema string `json:"schema,omitempty"`
	// Insecure disables TLS for the grpc transport.
	Insecure bool   `json:"insecure,omitempty"`
	LogLevel string `json:"log_level"`
	// DefaultDescription is sent with charges that carry no description.
	DefaultDescription string        `json:"default_description,omitempty"`
	Settings           SettingsTable `json:"settings"`

	// Secrets supplied through the environment. Never written to disk.
	APIKey string `json:"-"`
	DSN    string `json:"-"`
}

// SettingsTable locates the singleton settings document.
type SettingsTable struct {
	Collection string `json:"collection"`
	IDColumn   string `json:"id_column"`
	// DocumentColumn holds the JSON document. Ignored with RowLayout.
	DocumentColumn string `json:"document_column"`
	// RowLayout treats every non-id column of the row as a section.
	RowLayout bool `json:"row_layout,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Backend:  BackendHTTP,
		LogLevel: "warn",
		Settings: SettingsTable{
			Collection:     "app_settings",
			IDColumn:       "id",
			DocumentColumn: "settings",
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration, applies environment overrides and validates the result.
// A missing file yields the defaults.
func Load() (Config, error) {
	c, err := loadFile()
	if err != nil {
		return c, err
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func loadFile() (Config, error) {
	c := Default()
	p, err := Path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", p, err)
	}
	c.fillDefaults()
	return c, nil
}

// fillDefaults restores defaults for fields a partial file left empty.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Settings.Collection == "" {
		c.Settings.Collection = d.Settings.Collection
	}
	if c.Settings.IDColumn == "" {
		c.Settings.IDColumn = d.Settings.IDColumn
	}
	switch {
	case c.Settings.RowLayout:
		c.Settings.DocumentColumn = ""
	case c.Settings.DocumentColumn == "":
		c.Settings.DocumentColumn = d.Settings.DocumentColumn
	}
}

func (c *Config) applyEnv() error {
	c.Backend = getEnv(EnvBackend, c.Backend)
	c.URL = getEnv(EnvURL, c.URL)
	c.Schema = getEnv(EnvSchema, c.Schema)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.APIKey = getEnv(EnvAPIKey, c.APIKey)
	c.DSN = getEnv(EnvDSN, c.DSN)
	if v := os.Getenv(EnvInsecure); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvInsecure, err)
		}
		c.Insecure = b
	}
	return nil
}

// Validate checks that the selected backend is known.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendHTTP, BackendPostgres, BackendGRPC:
		return nil
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, BackendHTTP, BackendPostgres, BackendGRPC)
	}
}

// Save writes configuration with 0600 permissions. Secrets are not written.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
