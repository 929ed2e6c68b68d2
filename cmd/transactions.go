// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"fleetpay/cli/internal/wallet"
)

var (
	txQuery wallet.TransactionsQuery
	txLimit int
)

// transactionsCmd lists one page of a wallet's transactions.
var transactionsCmd = &cobra.Command{
	Use:   "transactions <wallet-id>",
	Short: "List the transactions of a wallet",
	Long: `List one page of a wallet's transactions, newest first as ordered by the backend.
Use --limit and --offset to page and --type/--status to filter.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := transactionsQuery(cmd)
		if err != nil {
			return err
		}
		return withSession(cmd, func(ctx context.Context, s *session) error {
			var payload any
			err := withSpinner("fetching transactions", func() (err error) {
				payload, err = s.wallet.WalletTransactions(ctx, args[0], q)
				return err
			})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), "transactions", payload)
		})
	},
}

// transactionsQuery builds the query from the flags. An unset --limit is
// left to the wallet default; an explicit one, including 0, is forwarded.
func transactionsQuery(cmd *cobra.Command) (wallet.TransactionsQuery, error) {
	if txLimit < 0 || txQuery.Offset < 0 {
		return wallet.TransactionsQuery{}, errors.New("--limit and --offset must not be negative")
	}
	q := txQuery
	q.Limit = nil
	if cmd.Flags().Changed("limit") {
		limit := txLimit
		q.Limit = &limit
	}
	return q, nil
}

func init() {
	rootCmd.AddCommand(transactionsCmd)
	f := transactionsCmd.Flags()
	f.IntVar(&txLimit, "limit", wallet.DefaultLimit, "Maximum number of transactions")
	f.IntVar(&txQuery.Offset, "offset", 0, "Number of transactions to skip")
	f.StringVar(&txQuery.Type, "type", "", "Only transactions of this type")
	f.StringVar(&txQuery.Status, "status", "", "Only transactions with this status")
}
