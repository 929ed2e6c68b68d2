// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fleetpay/cli/internal/backend"
	"fleetpay/cli/internal/bridge/grpcclient"
	"fleetpay/cli/internal/config"
	"fleetpay/cli/internal/gateway"
	"fleetpay/cli/internal/httperrors"
	"fleetpay/cli/internal/keychain"
	"fleetpay/cli/internal/logging"
	"fleetpay/cli/internal/pgstore"
	"fleetpay/cli/internal/wallet"
)

// currentHost names the backend in network error messages.
var currentHost string

// transport is a gateway backend with a connection lifecycle.
type transport interface {
	gateway.Backend
	Ping(ctx context.Context) error
	Close() error
}

// session bundles everything a wallet command needs.
type session struct {
	cfg    config.Config
	log    *zap.Logger
	tr     transport
	gw     *gateway.Gateway
	wallet *wallet.Service
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	pf := cmd.Flags()
	if pf.Changed("backend") {
		cfg.Backend = flagBackend
	}
	if pf.Changed("url") {
		cfg.URL = flagURL
	}
	if pf.Changed("schema") {
		cfg.Schema = flagSchema
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// resolveSecrets fills the API key or DSN from the keychain when the
// environment did not provide it.
func resolveSecrets(cfg *config.Config, km func() (*keychain.Manager, error)) error {
	switch cfg.Backend {
	case config.BackendPostgres:
		if cfg.DSN != "" {
			return nil
		}
		m, err := km()
		if err != nil {
			return fmt.Errorf("no DSN configured: set %s or run 'fleetpay connect' (%w)", config.EnvDSN, err)
		}
		dsn, err := m.LoadDSN()
		if err != nil {
			return fmt.Errorf("no DSN configured: run 'fleetpay connect' (%w)", err)
		}
		cfg.DSN = dsn
	default:
		if cfg.APIKey != "" {
			return nil
		}
		m, err := km()
		if err != nil {
			return fmt.Errorf("no API key configured: set %s or run 'fleetpay connect' (%w)", config.EnvAPIKey, err)
		}
		key, err := m.LoadAPIKey()
		if err != nil {
			return fmt.Errorf("no API key configured: run 'fleetpay connect' (%w)", err)
		}
		cfg.APIKey = key
	}
	return nil
}

// openTransport builds the backend selected by cfg. Secrets must already be resolved.
func openTransport(ctx context.Context, cfg config.Config) (transport, error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, errors.New("no backend URL configured: pass --url or run 'fleetpay connect'")
		}
		opts := []backend.Option{}
		if cfg.Schema != "" {
			opts = append(opts, backend.WithSchema(cfg.Schema))
		}
		return backend.New(cfg.URL, cfg.APIKey, opts...), nil
	case config.BackendPostgres:
		return pgstore.Open(ctx, cfg.DSN, cfg.Schema)
	case config.BackendGRPC:
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, errors.New("no bridge address configured: pass --url or run 'fleetpay connect'")
		}
		var opts []grpcclient.Option
		if cfg.Insecure {
			opts = append(opts, grpcclient.WithInsecure())
		}
		return grpcclient.Dial(cfg.URL, cfg.APIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// hostOf names the backend for messages without exposing credentials.
func hostOf(cfg config.Config) string {
	if cfg.Backend == config.BackendPostgres {
		return httperrors.ExtractHostFromURL(cfg.DSN)
	}
	if h := httperrors.ExtractHostFromURL(cfg.URL); h != "" {
		return h
	}
	return cfg.URL
}

// gatewayOptions maps the settings table config onto gateway options.
func gatewayOptions(cfg config.Config, log *zap.Logger) []gateway.Option {
	doc := cfg.Settings.DocumentColumn
	if cfg.Settings.RowLayout {
		doc = ""
	}
	return []gateway.Option{
		gateway.WithLogger(log),
		gateway.WithSettingsTable(cfg.Settings.Collection, cfg.Settings.IDColumn, doc),
	}
}

// newSession loads configuration, credentials and the transport.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if err := resolveSecrets(&cfg, keychain.GetManager); err != nil {
		return nil, err
	}
	currentHost = hostOf(cfg)

	tr, err := openTransport(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("session opened", zap.String("backend", cfg.Backend), zap.String("host", currentHost))

	gw := gateway.New(tr, gatewayOptions(cfg, log)...)
	return &session{
		cfg:    cfg,
		log:    log,
		tr:     tr,
		gw:     gw,
		wallet: wallet.NewService(gw, wallet.Options{DefaultDescription: cfg.DefaultDescription}),
	}, nil
}

// Close releases the transport and flushes the logger.
func (s *session) Close() {
	_ = s.tr.Close()
	_ = s.log.Sync()
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(cmd.Context(), s)
}
