package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/aigent-launchpad/crypto"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/NethermindEth/aigent-launchpad/storage"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Manager creates wallets, persists them and restores them on demand
type Manager struct {
	provider  Provider
	repo      *storage.WalletRepository
	masterKey string
	cache     *lru.Cache[string, Wallet]
}

func NewManager(provider Provider, repo *storage.WalletRepository, masterKey string, cacheSize int) (*Manager, error) {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New[string, Wallet](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Manager{
		provider:  provider,
		repo:      repo,
		masterKey: masterKey,
		cache:     cache,
	}, nil
}

// Create makes a new wallet and persists its record, encrypted seed and registry entry
func (m *Manager) Create(ctx context.Context) (Wallet, error) {
	w, err := m.provider.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	if err := m.save(w); err != nil {
		return nil, err
	}
	m.cache.Add(w.ID(), w)
	return w, nil
}

// save persists the wallet. The seed is only stored sealed.
func (m *Manager) save(w Wallet) error {
	sealed, err := w.SealSeed(crypto.SeedPassphrase(m.masterKey, w.ID()))
	if err != nil {
		return fmt.Errorf("failed to seal seed: %w", err)
	}
	if err := m.repo.SaveSeed(w.ID(), sealed); err != nil {
		return fmt.Errorf("failed to save seed: %w", err)
	}
	record := w.Export()
	record.Seed = ""
	if err := m.repo.Save(record); err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	logger.L().Info("wallet saved", zap.String("wallet_id", w.ID()), zap.String("address", w.DefaultAddress()))
	return nil
}

// Load restores a stored wallet, ErrWalletNotFound when no record exists
func (m *Manager) Load(ctx context.Context, walletID string) (Wallet, error) {
	if w, ok := m.cache.Get(walletID); ok {
		return w, nil
	}

	record, err := m.repo.Get(walletID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, walletID)
	}
	if err != nil {
		return nil, err
	}

	legacySeed := record.Seed != ""
	if !legacySeed {
		sealed, err := m.repo.Seed(walletID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: no seed stored for %s", ErrWalletNotFound, walletID)
		}
		if err != nil {
			return nil, err
		}
		if record.Seed, err = m.provider.OpenSeed(sealed, crypto.SeedPassphrase(m.masterKey, walletID)); err != nil {
			return nil, err
		}
	}

	w, err := m.provider.Import(ctx, record)
	if err != nil {
		return nil, err
	}

	// records written by the old layout carry the seed in clear text
	if legacySeed {
		if err := m.save(w); err != nil {
			logger.L().Warn("failed to migrate legacy wallet record", zap.String("wallet_id", walletID), zap.Error(err))
		}
	}

	m.cache.Add(walletID, w)
	return w, nil
}

// Address returns the stored default address of a wallet without restoring it
func (m *Manager) Address(walletID string) (string, error) {
	record, err := m.repo.Get(walletID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrWalletNotFound, walletID)
	}
	if err != nil {
		return "", err
	}
	return record.Address(), nil
}

func (m *Manager) IDs() ([]string, error) {
	return m.repo.IDs()
}

func (m *Manager) NetworkID() string {
	return m.provider.NetworkID()
}
