// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"fleetpay/cli/internal/config"
	"fleetpay/cli/internal/keychain"
	"fleetpay/cli/internal/logging"
)

// configCmd shows the effective configuration with secrets masked.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the current backend configuration",
	Long: `The config command displays the effective configuration: the config file
merged with environment variables and flags. The API key is shortened and
the DSN password is masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path, _ := config.Path()
		secretSource := "OS keychain"
		if (cfg.Backend == config.BackendPostgres && cfg.DSN != "") || (cfg.Backend != config.BackendPostgres && cfg.APIKey != "") {
			secretSource = "environment"
		}
		if err := resolveSecrets(&cfg, keychain.GetManager); err != nil {
			secretSource = "not configured"
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("fleetpay configuration")).
			WithPadding(1).
			Println(describeConfig(cfg, path, secretSource))
		pterm.Println()
		pterm.Println("To update the connection, run: fleetpay connect")
		return nil
	},
}

// describeConfig lists the configuration one setting per line, secrets masked.
func describeConfig(cfg config.Config, path, secretSource string) string {
	layout := fmt.Sprintf("%s.%s (id %s)", cfg.Settings.Collection, cfg.Settings.DocumentColumn, cfg.Settings.IDColumn)
	if cfg.Settings.RowLayout {
		layout = fmt.Sprintf("%s, one column per section (id %s)", cfg.Settings.Collection, cfg.Settings.IDColumn)
	}
	lines := []string{
		"Config file:  " + path,
		"Backend:      " + cfg.Backend,
	}
	if cfg.Backend == config.BackendPostgres {
		lines = append(lines, "DSN:          "+logging.Mask(cfg.DSN))
	} else {
		lines = append(lines,
			"URL:          "+cfg.URL,
			"API key:      "+logging.MaskKey(cfg.APIKey),
		)
	}
	if cfg.Schema != "" {
		lines = append(lines, "Schema:       "+cfg.Schema)
	}
	lines = append(lines,
		"Credentials:  "+secretSource,
		"Settings:     "+layout,
		"Log level:    "+cfg.LogLevel,
	)
	if cfg.DefaultDescription != "" {
		lines = append(lines, "Charge desc.: "+cfg.DefaultDescription)
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(configCmd)
}
