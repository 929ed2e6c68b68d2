// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManagerWithRing(keyring.NewArrayKeyring(nil))
}

func TestManager_APIKey(t *testing.T) {
	m := newTestManager()

	_, err := m.LoadAPIKey()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.SaveAPIKey("anon-key"))
	got, err := m.LoadAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "anon-key", got)
}

func TestManager_DSN(t *testing.T) {
	m := newTestManager()

	require.NoError(t, m.SaveDSN("postgres://u:p@db/app"))
	got, err := m.LoadDSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/app", got)
}

func TestManager_EmptyValueIsMissing(t *testing.T) {
	m := newTestManager()

	require.NoError(t, m.SaveAPIKey(""))
	_, err := m.LoadAPIKey()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_ClearAll(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.SaveAPIKey("k"))

	require.NoError(t, m.ClearAll())

	_, err := m.LoadAPIKey()
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.LoadDSN()
	assert.ErrorIs(t, err, ErrNotFound)
}
