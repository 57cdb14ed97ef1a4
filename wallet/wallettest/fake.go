// Package wallettest provides an in-memory wallet provider for tests.
package wallettest

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/NethermindEth/aigent-launchpad/wallet"
	"github.com/google/uuid"
)

// Provider creates Wallets that keep balances in memory
type Provider struct {
	Network   string
	// CreateErr, when set, fails every Create call
	CreateErr error

	mu      sync.Mutex
	next    int
	wallets map[string]*Wallet
}

func NewProvider(network string) *Provider {
	return &Provider{Network: network, wallets: make(map[string]*Wallet)}
}

func (p *Provider) NetworkID() string { return p.Network }

func (p *Provider) Create(ctx context.Context) (wallet.Wallet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.CreateErr != nil {
		return nil, p.CreateErr
	}
	p.next++
	w := newWallet(uuid.NewString(), fmt.Sprintf("0x%040x", p.next), fmt.Sprintf("%064x", p.next), p.Network)
	p.wallets[w.id] = w
	return w, nil
}

func (p *Provider) Import(ctx context.Context, data wallet.Data) (wallet.Wallet, error) {
	if data.Seed == "" {
		return nil, fmt.Errorf("wallet %s has no seed", data.WalletID)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.wallets[data.WalletID]; ok {
		return w, nil
	}
	w := newWallet(data.WalletID, data.Address(), data.Seed, data.NetworkID)
	p.wallets[w.id] = w
	return w, nil
}

func (p *Provider) OpenSeed(sealed []byte, passphrase string) (string, error) {
	prefix := passphrase + ":"
	if !strings.HasPrefix(string(sealed), prefix) {
		return "", fmt.Errorf("failed to decrypt seed: wrong passphrase")
	}
	return strings.TrimPrefix(string(sealed), prefix), nil
}

// Wallet returns a wallet created or imported by the provider
func (p *Provider) Wallet(id string) *Wallet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wallets[id]
}

type Invocation struct {
	Contract string
	Method   string
	Args     []interface{}
}

// Wallet is a fake custodial wallet. Assets other than eth, usdc and those
// given a balance are unsupported.
type Wallet struct {
	id      string
	address string
	seed    string
	network string

	mu          sync.Mutex
	balances    map[string]*big.Float
	Transfers   []wallet.TransferRequest
	Invocations []Invocation
	// Err, when set, fails every state changing call
	Err         error
}

// NewWallet builds a standalone wallet on network
func NewWallet(network string) *Wallet {
	return newWallet(uuid.NewString(), "0x00000000000000000000000000000000000000aa", strings.Repeat("ab", 32), network)
}

func newWallet(id, address, seed, network string) *Wallet {
	return &Wallet{
		id:       id,
		address:  address,
		seed:     seed,
		network:  network,
		balances: map[string]*big.Float{"eth": new(big.Float), "usdc": new(big.Float)},
	}
}

func (w *Wallet) ID() string             { return w.id }
func (w *Wallet) NetworkID() string      { return w.network }
func (w *Wallet) DefaultAddress() string { return w.address }

func (w *Wallet) Export() wallet.Data {
	return wallet.Data{
		WalletID:         w.id,
		Seed:             w.seed,
		NetworkID:        w.network,
		DefaultAddressID: w.address,
		Addresses:        []core.AddressRecord{{AddressID: w.address}},
	}
}

func (w *Wallet) SealSeed(passphrase string) ([]byte, error) {
	return []byte(passphrase + ":" + w.seed), nil
}

// SetBalance funds the wallet with amount of asset
func (w *Wallet) SetBalance(asset string, amount float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[strings.ToLower(asset)] = big.NewFloat(amount)
}

func (w *Wallet) Balance(ctx context.Context, assetID string) (*big.Float, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.balances[strings.ToLower(assetID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", wallet.ErrUnsupportedAsset, assetID)
	}
	return new(big.Float).Set(b), nil
}

func (w *Wallet) Transfer(ctx context.Context, req wallet.TransferRequest) (*wallet.TransferResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return nil, w.Err
	}
	b, ok := w.balances[strings.ToLower(req.AssetID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", wallet.ErrUnsupportedAsset, req.AssetID)
	}
	if b.Cmp(req.Amount) < 0 {
		return nil, fmt.Errorf("insufficient funds")
	}
	b.Sub(b, req.Amount)
	w.Transfers = append(w.Transfers, req)
	return &wallet.TransferResult{TxHash: fmt.Sprintf("0x%064x", len(w.Transfers))}, nil
}

func (w *Wallet) InvokeContract(ctx context.Context, req wallet.InvokeRequest) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return "", w.Err
	}
	w.Invocations = append(w.Invocations, Invocation{Contract: req.ContractAddress, Method: req.Method, Args: req.Args})
	return fmt.Sprintf("0x%064x", len(w.Invocations)), nil
}

func (w *Wallet) Faucet(ctx context.Context) (string, error) {
	if w.Err != nil {
		return "", w.Err
	}
	return "0xfaucet", nil
}

func (w *Wallet) DeployToken(ctx context.Context, name, symbol string, supply *big.Int) (string, error) {
	if w.Err != nil {
		return "", w.Err
	}
	return "0x00000000000000000000000000000000000000t0", nil
}

func (w *Wallet) DeployNFT(ctx context.Context, name, symbol, baseURI string) (string, error) {
	if w.Err != nil {
		return "", w.Err
	}
	return "0x00000000000000000000000000000000000000n1", nil
}

func (w *Wallet) Trade(ctx context.Context, amount *big.Float, fromAsset, toAsset string) (string, error) {
	if w.Err != nil {
		return "", w.Err
	}
	return "0xtrade", nil
}
