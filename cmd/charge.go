// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fleetpay/cli/internal/wallet"
)

var chargeDescription string

// chargeCmd groups wallet top-ups.
var chargeCmd = &cobra.Command{
	Use:   "charge",
	Short: "Top up a vendor or driver wallet",
	Long: `Top up a vendor or driver wallet. The amount is passed to the backend
unchanged; currency, limits and balance rules are enforced remotely.`,
}

var chargeVendorCmd = &cobra.Command{
	Use:   "vendor <vendor-id> <amount>",
	Short: "Top up a vendor wallet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCharge(cmd, args, func(ctx context.Context, s *session, amount decimal.Decimal) (any, error) {
			return s.wallet.ChargeVendorWallet(ctx, args[0], amount, wallet.ChargeOptions{Description: chargeDescription})
		})
	},
}

var chargeDriverCmd = &cobra.Command{
	Use:   "driver <driver-id> <amount>",
	Short: "Top up a driver wallet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCharge(cmd, args, func(ctx context.Context, s *session, amount decimal.Decimal) (any, error) {
			return s.wallet.ChargeDriverWallet(ctx, args[0], amount, wallet.ChargeOptions{Description: chargeDescription})
		})
	},
}

// parseAmount reads a decimal amount without going through float64.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

func runCharge(cmd *cobra.Command, args []string, charge func(context.Context, *session, decimal.Decimal) (any, error)) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *session) error {
		var payload any
		err := withSpinner("charging wallet", func() (err error) {
			payload, err = charge(ctx, s, amount)
			return err
		})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), "Transaction", payload)
	})
}

func init() {
	rootCmd.AddCommand(chargeCmd)
	chargeCmd.AddCommand(chargeVendorCmd, chargeDriverCmd)
	chargeCmd.PersistentFlags().StringVarP(&chargeDescription, "description", "d", "", "Description recorded with the charge (default from config, else \"top-up\")")
}
