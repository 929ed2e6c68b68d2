// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"fleetpay/cli/internal/gateway"
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
	a := m.Called(ctx, collection, idColumn, id, values)
	return a.Error(0)
}

// memoryBackend keeps collections in memory so read-modify-write can be observed end to end.
type memoryBackend struct {
	mu          sync.Mutex
	collections map[string][]map[string]any
	updateErr   error
	updates     int
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{collections: map[string][]map[string]any{}}
}

func (b *memoryBackend) CallProcedure(ctx context.Context, name string, args map[string]any) (any, error) {
	return nil, gateway.ErrNoRows
}

func (b *memoryBackend) SelectAll(ctx context.Context, collection string) ([]map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.collections[collection]...), nil
}

func (b *memoryBackend) SelectSingle(ctx context.Context, collection string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rows := b.collections[collection]
	switch len(rows) {
	case 0:
		return nil, gateway.ErrNoRows
	case 1:
		return rows[0], nil
	default:
		return nil, gateway.ErrMultipleRows
	}
}

func (b *memoryBackend) Update(ctx context.Context, collection, idColumn string, id any, values map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.updateErr != nil {
		return b.updateErr
	}
	for i, row := range b.collections[collection] {
		if row[idColumn] != id {
			continue
		}
		updated := map[string]any{}
		for k, v := range row {
			updated[k] = v
		}
		for k, v := range values {
			updated[k] = v
		}
		b.collections[collection][i] = updated
		b.updates++
	}
	return nil
}

func (b *memoryBackend) row(collection string, i int) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.collections[collection][i]
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}
