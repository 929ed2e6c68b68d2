// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var settingsFile string

// settingsCmd groups settings document commands.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and update application settings",
}

var settingsPaymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Show or replace the payment settings section",
}

var settingsPaymentGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the payment settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			var payload any
			err := withSpinner("fetching settings", func() (err error) {
				payload, err = s.wallet.PaymentSettings(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), "Payment settings", payload)
		})
	},
}

var settingsPaymentSetCmd = &cobra.Command{
	Use:   "set [json]",
	Short: "Replace the payment settings",
	Long: `Replace the payment section of the settings document with the given JSON value.
The section is replaced as a whole; every other section is kept as stored.
The value is read from the argument, from --file, or from stdin when the argument is "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := settingsInput(cmd, args)
		if err != nil {
			return err
		}
		value, err := parseSettings(raw)
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, s *session) error {
			err := withSpinner("saving settings", func() error {
				_, err := s.wallet.UpdatePaymentSettings(ctx, value)
				return err
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return render(cmd.OutOrStdout(), "", map[string]any{"updated": true})
			}
			fmt.Fprintln(cmd.OutOrStdout(), pterm.FgGreen.Sprint("✅ Payment settings updated"))
			return nil
		})
	},
}

// settingsInput picks the JSON source for settings set.
func settingsInput(cmd *cobra.Command, args []string) ([]byte, error) {
	switch {
	case settingsFile != "" && len(args) > 0:
		return nil, errors.New("pass the settings either as an argument or with --file, not both")
	case settingsFile != "":
		return os.ReadFile(settingsFile)
	case len(args) == 1 && args[0] == "-":
		return io.ReadAll(cmd.InOrStdin())
	case len(args) == 1:
		return []byte(args[0]), nil
	default:
		return nil, errors.New("no settings given: pass a JSON value, --file, or - for stdin")
	}
}

// parseSettings decodes a JSON value keeping numbers exact.
func parseSettings(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid settings JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid settings JSON: trailing data after value")
	}
	return v, nil
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsPaymentCmd)
	settingsPaymentCmd.AddCommand(settingsPaymentGetCmd, settingsPaymentSetCmd)
	settingsPaymentSetCmd.Flags().StringVarP(&settingsFile, "file", "f", "", "Read the settings JSON from a file")
}
