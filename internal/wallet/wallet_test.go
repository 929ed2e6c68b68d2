// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package wallet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"fleetpay/cli/internal/gateway"
	"fleetpay/cli/internal/wallet"
)

// MockBackend implements gateway.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CallProcedure(ctx context.Context, name string, args map[string]any) (any, error) {
	a := m.Called(ctx, name, args)
	return a.Get(0), a.Error(1)
}

func (m *MockBackend) SelectAll(ctx context.Context, collection string) ([]map[string]any, error) {
	a := m.Called(ctx, collection)
	rows, _ := a.Get(0).([]map[string]any)
	return rows, a.Error(1)
}

func (m *MockBackend) SelectSingle(ctx context.Context, collection string) (map[string]any, error) {
	a := m.Called(ctx, collection)
	row, _ := a.Get(0).(map[string]any)
	return row, a.Error(1)
}

func (m *MockBackend) Update(ctx context.Context, collection, idColumn string, id any, values map[string]any) error {
	return m.Called(ctx, collection, idColumn, id, values).Error(0)
}

func newService(t *testing.T, opts wallet.Options) (*wallet.Service, *MockBackend, *observer.ObservedLogs) {
	t.Helper()
	be := new(MockBackend)
	core, logs := observer.New(zapcore.DebugLevel)
	gw := gateway.New(be, gateway.WithLogger(zap.New(core)))
	return wallet.NewService(gw, opts), be, logs
}

func TestService_ChargeVendorWallet_DefaultDescription(t *testing.T) {
	svc, be, _ := newService(t, wallet.Options{})
	tx := map[string]any{"transaction_id": "T1", "status": "completed"}

	be.On("CallProcedure", mock.Anything, "charge_vendor_wallet", mock.MatchedBy(func(args map[string]any) bool {
		amount, ok := args["p_amount"].(decimal.Decimal)
		return ok && amount.Equal(decimal.NewFromInt(50)) &&
			args["p_vendor_id"] == "V1" &&
			args["p_description"] == "top-up" &&
			len(args) == 3
	})).Return(tx, nil)

	got, err := svc.ChargeVendorWallet(context.Background(), "V1", decimal.NewFromInt(50), wallet.ChargeOptions{})

	require.NoError(t, err)
	assert.Equal(t, tx, got)
	be.AssertExpectations(t)
}

func TestService_ChargeDriverWallet_Description(t *testing.T) {
	tests := []struct {
		name string
		opts wallet.Options
		in   wallet.ChargeOptions
		want string
	}{
		{name: "explicit", in: wallet.ChargeOptions{Description: "bonus"}, want: "bonus"},
		{name: "localized default", opts: wallet.Options{DefaultDescription: "شحن رصيد"}, want: "شحن رصيد"},
		{name: "package default", want: wallet.DefaultDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, be, _ := newService(t, tt.opts)
			be.On("CallProcedure", mock.Anything, "charge_driver_wallet", mock.MatchedBy(func(args map[string]any) bool {
				return args["p_driver_id"] == "D9" && args["p_description"] == tt.want
			})).Return(map[string]any{"ok": true}, nil)

			_, err := svc.ChargeDriverWallet(context.Background(), "D9", decimal.RequireFromString("12.75"), tt.in)

			require.NoError(t, err)
			be.AssertExpectations(t)
		})
	}
}

func intPtr(n int) *int { return &n }

func TestService_WalletTransactions_Args(t *testing.T) {
	tests := []struct {
		name string
		q    wallet.TransactionsQuery
		want map[string]any
	}{
		{
			name: "defaults",
			q:    wallet.TransactionsQuery{},
			want: map[string]any{"p_wallet_id": "W1", "p_limit": 10, "p_offset": 0, "p_type": nil, "p_status": nil},
		},
		{
			name: "explicit filters",
			q:    wallet.TransactionsQuery{Limit: intPtr(25), Offset: 50, Type: "credit", Status: "pending"},
			want: map[string]any{"p_wallet_id": "W1", "p_limit": 25, "p_offset": 50, "p_type": "credit", "p_status": "pending"},
		},
		{
			name: "explicit zero limit",
			q:    wallet.TransactionsQuery{Limit: intPtr(0)},
			want: map[string]any{"p_wallet_id": "W1", "p_limit": 0, "p_offset": 0, "p_type": nil, "p_status": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, be, _ := newService(t, wallet.Options{})
			be.On("CallProcedure", mock.Anything, "get_wallet_transactions", tt.want).Return([]any{}, nil)

			_, err := svc.WalletTransactions(context.Background(), "W1", tt.q)

			require.NoError(t, err)
			be.AssertExpectations(t)
		})
	}
}

func TestService_ProcedureBackedOperations(t *testing.T) {
	tests := []struct {
		name string
		proc string
		args map[string]any
		call func(*wallet.Service) (any, error)
	}{
		{
			name: "balance",
			proc: wallet.ProcWalletBalance,
			args: map[string]any{"p_user_id": "U1"},
			call: func(s *wallet.Service) (any, error) { return s.WalletBalance(context.Background(), "U1") },
		},
		{
			name: "summary",
			proc: wallet.ProcFinancialSummary,
			args: map[string]any{},
			call: func(s *wallet.Service) (any, error) { return s.FinancialSummary(context.Background()) },
		},
		{
			name: "vendor wallet",
			proc: wallet.ProcVendorWallet,
			args: map[string]any{"p_vendor_id": "V1"},
			call: func(s *wallet.Service) (any, error) { return s.VendorWallet(context.Background(), "V1") },
		},
		{
			name: "driver wallet",
			proc: wallet.ProcDriverWallet,
			args: map[string]any{"p_driver_id": "D1"},
			call: func(s *wallet.Service) (any, error) { return s.DriverWallet(context.Background(), "D1") },
		},
		{
			name: "charge vendor",
			proc: wallet.ProcChargeVendorWallet,
			args: map[string]any{"p_vendor_id": "V1", "p_amount": decimal.NewFromInt(5), "p_description": "top-up"},
			call: func(s *wallet.Service) (any, error) {
				return s.ChargeVendorWallet(context.Background(), "V1", decimal.NewFromInt(5), wallet.ChargeOptions{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" success", func(t *testing.T) {
			svc, be, _ := newService(t, wallet.Options{})
			payload := map[string]any{"proc": tt.proc}
			be.On("CallProcedure", mock.Anything, tt.proc, tt.args).Return(payload, nil)

			got, err := tt.call(svc)

			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})

		t.Run(tt.name+" failure", func(t *testing.T) {
			svc, be, logs := newService(t, wallet.Options{})
			be.On("CallProcedure", mock.Anything, tt.proc, tt.args).Return(nil, errors.New("backend down"))

			got, err := tt.call(svc)

			assert.Nil(t, got)
			var rce *gateway.RemoteCallError
			require.ErrorAs(t, err, &rce)
			assert.Equal(t, tt.proc, rce.Op)
			assert.Equal(t, 1, logs.FilterField(zap.String("op", tt.proc)).Len())
		})
	}
}

func TestService_VendorAndDriverWallets_Fallback(t *testing.T) {
	tests := []struct {
		name       string
		proc       string
		collection string
		call       func(*wallet.Service) ([]any, error)
	}{
		{
			name:       "vendors",
			proc:       wallet.ProcVendorWallets,
			collection: wallet.VendorWalletsCollection,
			call:       func(s *wallet.Service) ([]any, error) { return s.VendorWallets(context.Background()) },
		},
		{
			name:       "drivers",
			proc:       wallet.ProcDriverWallets,
			collection: wallet.DriverWalletsCollection,
			call:       func(s *wallet.Service) ([]any, error) { return s.DriverWallets(context.Background()) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" rows", func(t *testing.T) {
			svc, be, _ := newService(t, wallet.Options{})
			rows := []map[string]any{{"id": "w1"}}
			be.On("CallProcedure", mock.Anything, tt.proc, map[string]any{}).Return(nil, errors.New("missing"))
			be.On("SelectAll", mock.Anything, tt.collection).Return(rows, nil)

			got, err := tt.call(svc)

			require.NoError(t, err)
			assert.Equal(t, []any{rows[0]}, got)
		})

		t.Run(tt.name+" empty", func(t *testing.T) {
			svc, be, _ := newService(t, wallet.Options{})
			be.On("CallProcedure", mock.Anything, tt.proc, map[string]any{}).Return(nil, errors.New("missing"))
			be.On("SelectAll", mock.Anything, tt.collection).Return([]map[string]any{}, nil)

			got, err := tt.call(svc)

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Len(t, got, 0)
		})
	}
}

func TestService_PaymentSettings(t *testing.T) {
	svc, be, _ := newService(t, wallet.Options{})
	be.On("SelectSingle", mock.Anything, "app_settings").Return(map[string]any{
		"id":       "s-1",
		"settings": map[string]any{"a": 1.0, "payment": map[string]any{"x": 1.0}},
	}, nil)

	got, err := svc.PaymentSettings(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1.0}, got)
}

func TestService_UpdatePaymentSettings(t *testing.T) {
	svc, be, _ := newService(t, wallet.Options{})
	be.On("SelectSingle", mock.Anything, "app_settings").Return(map[string]any{
		"id":       "s-1",
		"settings": map[string]any{"a": 1.0, "payment": map[string]any{"x": 1.0}},
	}, nil)
	be.On("Update", mock.Anything, "app_settings", "id", "s-1", map[string]any{
		"settings": map[string]any{"a": 1.0, "payment": map[string]any{"y": 2.0}},
	}).Return(nil)

	ok, err := svc.UpdatePaymentSettings(context.Background(), map[string]any{"y": 2.0})

	require.NoError(t, err)
	assert.True(t, ok)
	be.AssertExpectations(t)
}
