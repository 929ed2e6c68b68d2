// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// balanceCmd shows a user's wallet balance.
var balanceCmd = &cobra.Command{
	Use:   "balance <user-id>",
	Short: "Show the wallet balance of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			var payload any
			err := withSpinner("fetching balance", func() (err error) {
				payload, err = s.wallet.WalletBalance(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), "Balance", payload)
		})
	},
}

// summaryCmd shows the aggregate financial summary.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the financial summary across all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctx context.Context, s *session) error {
			var payload any
			err := withSpinner("fetching summary", func() (err error) {
				payload, err = s.wallet.FinancialSummary(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), "Financial summary", payload)
		})
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(summaryCmd)
}
