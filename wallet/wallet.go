package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/NethermindEth/aigent-launchpad/core"
)

var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrUnsupportedAsset   = errors.New("asset not supported on this network")
	ErrUnsupportedNetwork = errors.New("unsupported network")
	ErrUnsupported        = errors.New("operation not supported by the wallet provider")
)

// Data is the exported form of a wallet
type Data = core.WalletRecord

type TransferRequest struct {
	Amount      *big.Float
	AssetID     string
	Destination string
	Gasless     bool
}

type TransferResult struct {
	TxHash string
}

// InvokeRequest calls a state changing contract method. ABI is a JSON ABI
// containing Method; Args are passed to the ABI encoder in order.
type InvokeRequest struct {
	ContractAddress string
	Method          string
	Args            []interface{}
	ABI             string
	Amount          *big.Float // native value sent along, may be nil
}

// Wallet is a custodial account able to sign for itself
type Wallet interface {
	ID() string
	NetworkID() string
	DefaultAddress() string
	Export() Data

	Balance(ctx context.Context, assetID string) (*big.Float, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	InvokeContract(ctx context.Context, req InvokeRequest) (string, error)
	Faucet(ctx context.Context) (string, error)
	DeployToken(ctx context.Context, name, symbol string, supply *big.Int) (string, error)
	DeployNFT(ctx context.Context, name, symbol, baseURI string) (string, error)
	Trade(ctx context.Context, amount *big.Float, fromAsset, toAsset string) (string, error)

	// SealSeed encrypts the wallet's seed with passphrase
	SealSeed(passphrase string) ([]byte, error)
}

// Provider creates wallets and restores them from exported data
type Provider interface {
	Create(ctx context.Context) (Wallet, error)
	// Import restores a wallet. data.Seed must be set.
	Import(ctx context.Context, data Data) (Wallet, error)
	// OpenSeed decrypts a seed produced by Wallet.SealSeed
	OpenSeed(sealed []byte, passphrase string) (string, error)
	NetworkID() string
}
