// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// walletsCmd groups the vendor and driver wallet listings.
var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "List or show vendor and driver wallets",
}

var walletsVendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List all vendor wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listWallets(cmd, "vendor wallets", func(ctx context.Context, s *session) ([]any, error) {
			return s.wallet.VendorWallets(ctx)
		})
	},
}

var walletsDriversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List all driver wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listWallets(cmd, "driver wallets", func(ctx context.Context, s *session) ([]any, error) {
			return s.wallet.DriverWallets(ctx)
		})
	},
}

var walletsVendorCmd = &cobra.Command{
	Use:   "vendor <vendor-id>",
	Short: "Show a vendor's wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showWallet(cmd, "Vendor wallet", func(ctx context.Context, s *session) (any, error) {
			return s.wallet.VendorWallet(ctx, args[0])
		})
	},
}

var walletsDriverCmd = &cobra.Command{
	Use:   "driver <driver-id>",
	Short: "Show a driver's wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showWallet(cmd, "Driver wallet", func(ctx context.Context, s *session) (any, error) {
			return s.wallet.DriverWallet(ctx, args[0])
		})
	},
}

func listWallets(cmd *cobra.Command, title string, fetch func(context.Context, *session) ([]any, error)) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		var rows []any
		err := withSpinner("fetching "+title, func() (err error) {
			rows, err = fetch(ctx, s)
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), title, rows)
	})
}

func showWallet(cmd *cobra.Command, title string, fetch func(context.Context, *session) (any, error)) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		var payload any
		err := withSpinner("fetching wallet", func() (err error) {
			payload, err = fetch(ctx, s)
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), title, payload)
	})
}

func init() {
	rootCmd.AddCommand(walletsCmd)
	walletsCmd.AddCommand(walletsVendorsCmd, walletsDriversCmd, walletsVendorCmd, walletsDriverCmd)
}
