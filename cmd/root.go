// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the fleetpay CLI.
// It implements subcommands for reading and charging vendor/driver wallets and
// for managing payment settings, using the Cobra CLI framework. Every command
// goes through the remote data gateway; the backend is reached over a
// PostgREST-style HTTP API, directly over PostgreSQL, or through a gRPC bridge.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fleetpay/cli/internal/backend"
	ferrors "fleetpay/cli/internal/errors"
	"fleetpay/cli/internal/gateway"
	"fleetpay/cli/internal/httperrors"
	"fleetpay/cli/internal/logging"
)

var (
	showVersion bool

	// Persistent overrides of the config file.
	flagBackend  string
	flagURL      string
	flagSchema   string
	flagLogLevel string
	jsonOutput   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "fleetpay",
	Short:         "fleetpay CLI for vendor and driver wallets",
	Long:          `fleetpay is a command-line tool for inspecting and charging vendor and driver wallets and for managing payment settings stored in a hosted backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "fleetpay %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// Backend failures are explained before exiting with status 1.
func Execute() {
	backend.UserAgent = "fleetpay-cli/" + Version
	if err := rootCmd.Execute(); err != nil {
		presentError(err)
		os.Exit(1)
	}
}

// presentError explains err on the terminal.
func presentError(err error) {
	var rce *gateway.RemoteCallError
	switch {
	case errors.As(err, &rce) && ferrors.Is(err, ferrors.BackendUnavailable):
		_ = httperrors.FormatNetworkError(err, "calling "+rce.Op, currentHost)
		fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
	case errors.As(err, &rce):
		logging.PresentRemoteError(err)
	default:
		fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagBackend, "backend", "", "Transport to use: http, postgres or grpc (overrides config)")
	pf.StringVar(&flagURL, "url", "", "Data API base URL or gRPC bridge address (overrides config)")
	pf.StringVar(&flagSchema, "schema", "", "Database schema holding procedures and collections (overrides config)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error or off (overrides config)")
	pf.BoolVar(&jsonOutput, "json", false, "Print raw JSON instead of tables")
}
