package wallet

import (
	"context"
	"testing"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, store *storage.Store) *Manager {
	t.Helper()
	p, _ := newTestProvider(t, NetworkBaseSepolia)
	m, err := NewManager(p, store.Wallets, "master-key", 4)
	require.NoError(t, err)
	return m
}

func openFileStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.OpenStore(config.StorageConfig{Backend: "file", DataDir: t.TempDir()})
	require.NoError(t, err)
	return s
}

func TestManagerCreateAndLoad(t *testing.T) {
	store := openFileStore(t)
	m := newTestManager(t, store)

	w, err := m.Create(context.Background())
	require.NoError(t, err)

	record, err := store.Wallets.Get(w.ID())
	require.NoError(t, err)
	assert.Empty(t, record.Seed, "seed must not be stored in clear text")
	assert.Equal(t, w.DefaultAddress(), record.Address())

	ids, err := m.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{w.ID()}, ids)

	// a fresh manager has an empty cache and must decrypt the seed
	fresh := newTestManager(t, store)
	loaded, err := fresh.Load(context.Background(), w.ID())
	require.NoError(t, err)
	assert.Equal(t, w.DefaultAddress(), loaded.DefaultAddress())

	addr, err := fresh.Address(w.ID())
	require.NoError(t, err)
	assert.Equal(t, w.DefaultAddress(), addr)
}

func TestManagerLoadMissing(t *testing.T) {
	m := newTestManager(t, openFileStore(t))
	_, err := m.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrWalletNotFound)
	_, err = m.Address("nope")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestManagerWrongMasterKey(t *testing.T) {
	store := openFileStore(t)
	w, err := newTestManager(t, store).Create(context.Background())
	require.NoError(t, err)

	p, _ := newTestProvider(t, NetworkBaseSepolia)
	other, err := NewManager(p, store.Wallets, "another-key", 4)
	require.NoError(t, err)
	_, err = other.Load(context.Background(), w.ID())
	assert.Error(t, err)
}

func TestManagerMigratesLegacySeed(t *testing.T) {
	store := openFileStore(t)
	p, _ := newTestProvider(t, NetworkBaseSepolia)
	w, err := p.Create(context.Background())
	require.NoError(t, err)

	// legacy records carry the seed inline
	require.NoError(t, store.Wallets.Save(w.Export()))

	m := newTestManager(t, store)
	loaded, err := m.Load(context.Background(), w.ID())
	require.NoError(t, err)
	assert.Equal(t, w.DefaultAddress(), loaded.DefaultAddress())

	record, err := store.Wallets.Get(w.ID())
	require.NoError(t, err)
	assert.Empty(t, record.Seed)
	_, err = store.Wallets.Seed(w.ID())
	assert.NoError(t, err)
}
