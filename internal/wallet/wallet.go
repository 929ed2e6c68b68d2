// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package wallet exposes the vendor/driver wallet and payment-settings operations
// of the backend as typed Go calls. It shapes parameters (argument names and
// defaults) and forwards them through the gateway; balances, ledgers and
// currency rules all live in the backend.
package wallet

import (
	"context"

	"github.com/shopspring/decimal"
)

// Remote procedures and collections used by the service.
const (
	ProcWalletBalance      = "get_wallet_balance"
	ProcWalletTransactions = "get_wallet_transactions"
	ProcVendorWallets      = "get_all_vendor_wallets"
	ProcDriverWallets      = "get_all_driver_wallets"
	ProcChargeVendorWallet = "charge_vendor_wallet"
	ProcChargeDriverWallet = "charge_driver_wallet"
	ProcFinancialSummary   = "get_financial_summary"
	ProcVendorWallet       = "get_vendor_wallet"
	ProcDriverWallet       = "get_driver_wallet"

	VendorWalletsCollection = "vendor_wallets"
	DriverWalletsCollection = "driver_wallets"

	// PaymentSection is the settings document section holding payment configuration.
	PaymentSection = "payment"
)

// Defaults applied when the caller leaves a field empty.
const (
	DefaultLimit       = 10
	DefaultDescription = "top-up"
)

// Relay is the subset of *gateway.Gateway the service depends on.
type Relay interface {
	Invoke(ctx context.Context, name string, args map[string]any) (any, error)
	InvokeWithFallback(ctx context.Context, name string, args map[string]any, fallbackCollection string) ([]any, error)
	SettingsSection(ctx context.Context, section string) (any, error)
	UpdateSettingsSection(ctx context.Context, section string, value any) (bool, error)
}

// Options holds service-wide defaults.
type Options struct {
	// DefaultDescription is sent with charges that carry no description.
	// Deployments localize it; empty means DefaultDescription.
	DefaultDescription string
}

// TransactionsQuery filters a wallet's transaction list.
// A nil Limit means DefaultLimit, so an explicit 0 is forwarded as given.
// Empty Type/Status are sent as null (no filter).
type TransactionsQuery struct {
	Limit  *int
	Offset int
	Type   string
	Status string
}

// ChargeOptions carries optional charge parameters.
type ChargeOptions struct {
	Description string
}

// Service forwards wallet operations to the backend.
type Service struct {
	relay       Relay
	description string
}

// NewService creates a wallet service on top of a gateway.
func NewService(relay Relay, opts Options) *Service {
	desc := opts.DefaultDescription
	if desc == "" {
		desc = DefaultDescription
	}
	return &Service{relay: relay, description: desc}
}

// WalletBalance returns the wallet balance payload for a user.
func (s *Service) WalletBalance(ctx context.Context, userID string) (any, error) {
	return s.relay.Invoke(ctx, ProcWalletBalance, map[string]any{
		"p_user_id": userID,
	})
}

// WalletTransactions returns one page of a wallet's transactions.
func (s *Service) WalletTransactions(ctx context.Context, walletID string, q TransactionsQuery) (any, error) {
	return s.relay.Invoke(ctx, ProcWalletTransactions, transactionArgs(walletID, q))
}

func transactionArgs(walletID string, q TransactionsQuery) map[string]any {
	limit := DefaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	return map[string]any{
		"p_wallet_id": walletID,
		"p_limit":     limit,
		"p_offset":    q.Offset,
		"p_type":      nullable(q.Type),
		"p_status":    nullable(q.Status),
	}
}

// VendorWallets lists every vendor wallet, reading the vendor_wallets
// collection directly when the procedure is unavailable.
func (s *Service) VendorWallets(ctx context.Context) ([]any, error) {
	return s.relay.InvokeWithFallback(ctx, ProcVendorWallets, map[string]any{}, VendorWalletsCollection)
}

// DriverWallets lists every driver wallet, reading the driver_wallets
// collection directly when the procedure is unavailable.
func (s *Service) DriverWallets(ctx context.Context) ([]any, error) {
	return s.relay.InvokeWithFallback(ctx, ProcDriverWallets, map[string]any{}, DriverWalletsCollection)
}

// ChargeVendorWallet tops up a vendor wallet and returns the backend's transaction payload.
func (s *Service) ChargeVendorWallet(ctx context.Context, vendorID string, amount decimal.Decimal, opts ChargeOptions) (any, error) {
	return s.relay.Invoke(ctx, ProcChargeVendorWallet, map[string]any{
		"p_vendor_id":   vendorID,
		"p_amount":      amount,
		"p_description": s.chargeDescription(opts),
	})
}

// ChargeDriverWallet tops up a driver wallet and returns the backend's transaction payload.
func (s *Service) ChargeDriverWallet(ctx context.Context, driverID string, amount decimal.Decimal, opts ChargeOptions) (any, error) {
	return s.relay.Invoke(ctx, ProcChargeDriverWallet, map[string]any{
		"p_driver_id":   driverID,
		"p_amount":      amount,
		"p_description": s.chargeDescription(opts),
	})
}

func (s *Service) chargeDescription(opts ChargeOptions) string {
	if opts.Description != "" {
		return opts.Description
	}
	return s.description
}

// FinancialSummary returns the backend's aggregate wallet figures.
func (s *Service) FinancialSummary(ctx context.Context) (any, error) {
	return s.relay.Invoke(ctx, ProcFinancialSummary, map[string]any{})
}

// VendorWallet returns a single vendor's wallet.
func (s *Service) VendorWallet(ctx context.Context, vendorID string) (any, error) {
	return s.relay.Invoke(ctx, ProcVendorWallet, map[string]any{
		"p_vendor_id": vendorID,
	})
}

// DriverWallet returns a single driver's wallet.
func (s *Service) DriverWallet(ctx context.Context, driverID string) (any, error) {
	return s.relay.Invoke(ctx, ProcDriverWallet, map[string]any{
		"p_driver_id": driverID,
	})
}

// PaymentSettings returns the payment section of the settings document, nil if unset.
func (s *Service) PaymentSettings(ctx context.Context) (any, error) {
	return s.relay.SettingsSection(ctx, PaymentSection)
}

// UpdatePaymentSettings replaces the payment section wholesale, leaving other sections untouched.
func (s *Service) UpdatePaymentSettings(ctx context.Context, settings any) (bool, error) {
	return s.relay.UpdateSettingsSection(ctx, PaymentSection, settings)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
