package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ethDecimals = 18

// Backend is the subset of an Ethereum JSON-RPC client the wallet needs
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// EthereumProvider manages secp256k1 wallets on a Base network
type EthereumProvider struct {
	network Network
	backend Backend
	scryptN int
	scryptP int
}

// NewEthereumProvider dials cfg.RPCURL for the configured network
func NewEthereumProvider(cfg config.WalletConfig) (*EthereumProvider, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.RPCURL, err)
	}
	return NewEthereumProviderWithBackend(cfg.Network, client, cfg.LightScrypt)
}

func NewEthereumProviderWithBackend(networkID string, backend Backend, lightScrypt bool) (*EthereumProvider, error) {
	network, err := LookupNetwork(networkID)
	if err != nil {
		return nil, err
	}
	p := &EthereumProvider{
		network: network,
		backend: backend,
		scryptN: keystore.StandardScryptN,
		scryptP: keystore.StandardScryptP,
	}
	if lightScrypt {
		p.scryptN, p.scryptP = keystore.LightScryptN, keystore.LightScryptP
	}
	return p, nil
}

func (p *EthereumProvider) NetworkID() string {
	return p.network.ID
}

func (p *EthereumProvider) Create(ctx context.Context) (Wallet, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	w := p.newWallet(uuid.New().String(), key)
	logger.L().Info("created wallet", zap.String("wallet_id", w.id), zap.String("address", w.DefaultAddress()))
	return w, nil
}

func (p *EthereumProvider) Import(ctx context.Context, data Data) (Wallet, error) {
	if data.NetworkID != "" && data.NetworkID != p.network.ID {
		return nil, fmt.Errorf("%w: wallet %s belongs to %s, provider serves %s",
			ErrUnsupportedNetwork, data.WalletID, data.NetworkID, p.network.ID)
	}
	if data.Seed == "" {
		return nil, fmt.Errorf("wallet %s has no seed", data.WalletID)
	}
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(data.Seed, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid seed for wallet %s: %w", data.WalletID, err)
	}
	w := p.newWallet(data.WalletID, key)
	if addr := data.Address(); addr != "" && !strings.EqualFold(addr, w.DefaultAddress()) {
		return nil, fmt.Errorf("seed for wallet %s does not match address %s", data.WalletID, addr)
	}
	return w, nil
}

func (p *EthereumProvider) OpenSeed(sealed []byte, passphrase string) (string, error) {
	key, err := keystore.DecryptKey(sealed, passphrase)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt seed: %w", err)
	}
	return hex.EncodeToString(ethcrypto.FromECDSA(key.PrivateKey)), nil
}

func (p *EthereumProvider) newWallet(id string, key *ecdsa.PrivateKey) *ethWallet {
	return &ethWallet{
		id:       id,
		key:      key,
		address:  ethcrypto.PubkeyToAddress(key.PublicKey),
		provider: p,
	}
}

type ethWallet struct {
	id       string
	key      *ecdsa.PrivateKey
	address  common.Address
	provider *EthereumProvider
	txMu     sync.Mutex // one in-flight transaction per wallet keeps nonces ordered
}

func (w *ethWallet) ID() string             { return w.id }
func (w *ethWallet) NetworkID() string      { return w.provider.network.ID }
func (w *ethWallet) DefaultAddress() string { return w.address.Hex() }

func (w *ethWallet) Export() Data {
	return Data{
		WalletID:         w.id,
		Seed:             hex.EncodeToString(ethcrypto.FromECDSA(w.key)),
		NetworkID:        w.NetworkID(),
		DefaultAddressID: w.DefaultAddress(),
		Addresses:        []core.AddressRecord{{AddressID: w.DefaultAddress()}},
	}
}

func (w *ethWallet) SealSeed(passphrase string) ([]byte, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	key := &keystore.Key{Id: id, Address: w.address, PrivateKey: w.key}
	return keystore.EncryptKey(key, passphrase, w.provider.scryptN, w.provider.scryptP)
}

// asset is either the native coin (token == nil) or an ERC-20 contract
type asset struct {
	token *common.Address
}

func (w *ethWallet) resolveAsset(assetID string) (asset, error) {
	switch id := strings.ToLower(strings.TrimSpace(assetID)); {
	case id == "eth":
		return asset{}, nil
	case id == "usdc":
		usdc := w.provider.network.USDC
		return asset{token: &usdc}, nil
	case common.IsHexAddress(id):
		addr := common.HexToAddress(id)
		return asset{token: &addr}, nil
	default:
		return asset{}, fmt.Errorf("%w: %s", ErrUnsupportedAsset, assetID)
	}
}

func (w *ethWallet) Balance(ctx context.Context, assetID string) (*big.Float, error) {
	a, err := w.resolveAsset(assetID)
	if err != nil {
		return nil, err
	}
	if a.token == nil {
		wei, err := w.provider.backend.BalanceAt(ctx, w.address, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch balance: %w", err)
		}
		return FromBaseUnits(wei, ethDecimals), nil
	}

	decimals, err := w.tokenDecimals(ctx, *a.token)
	if err != nil {
		return nil, err
	}
	units, err := w.tokenBalance(ctx, *a.token)
	if err != nil {
		return nil, err
	}
	return FromBaseUnits(units, decimals), nil
}

func (w *ethWallet) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if req.Amount == nil || req.Amount.IsInf() || req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if !common.IsHexAddress(req.Destination) {
		return nil, fmt.Errorf("invalid destination address %q", req.Destination)
	}
	dest := common.HexToAddress(req.Destination)

	a, err := w.resolveAsset(req.AssetID)
	if err != nil {
		return nil, err
	}
	if req.Gasless {
		// no paymaster is configured, the transfer is paid for normally
		logger.L().Debug("gasless transfer requested, sending a regular transfer", zap.String("wallet_id", w.id))
	}

	var receipt *types.Receipt
	if a.token == nil {
		value, verr := ToBaseUnits(req.Amount, ethDecimals)
		if verr != nil {
			return nil, verr
		}
		receipt, err = w.send(ctx, dest, value, nil)
	} else {
		decimals, derr := w.tokenDecimals(ctx, *a.token)
		if derr != nil {
			return nil, derr
		}
		units, verr := ToBaseUnits(req.Amount, decimals)
		if verr != nil {
			return nil, verr
		}
		data, perr := erc20ABI.Pack("transfer", dest, units)
		if perr != nil {
			return nil, perr
		}
		receipt, err = w.send(ctx, *a.token, big.NewInt(0), data)
	}
	if err != nil {
		return nil, err
	}
	return &TransferResult{TxHash: receipt.TxHash.Hex()}, nil
}

func (w *ethWallet) InvokeContract(ctx context.Context, req InvokeRequest) (string, error) {
	if !common.IsHexAddress(req.ContractAddress) {
		return "", fmt.Errorf("invalid contract address %q", req.ContractAddress)
	}
	parsed, err := abi.JSON(strings.NewReader(req.ABI))
	if err != nil {
		return "", fmt.Errorf("invalid ABI: %w", err)
	}
	data, err := parsed.Pack(req.Method, req.Args...)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s call: %w", req.Method, err)
	}
	value := big.NewInt(0)
	if req.Amount != nil {
		if value, err = ToBaseUnits(req.Amount, ethDecimals); err != nil {
			return "", err
		}
	}
	receipt, err := w.send(ctx, common.HexToAddress(req.ContractAddress), value, data)
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}

func (w *ethWallet) Faucet(ctx context.Context) (string, error) {
	return "", fmt.Errorf("%w: faucet", ErrUnsupported)
}

func (w *ethWallet) DeployToken(ctx context.Context, name, symbol string, supply *big.Int) (string, error) {
	return "", fmt.Errorf("%w: token deployment", ErrUnsupported)
}

func (w *ethWallet) DeployNFT(ctx context.Context, name, symbol, baseURI string) (string, error) {
	return "", fmt.Errorf("%w: NFT deployment", ErrUnsupported)
}

func (w *ethWallet) Trade(ctx context.Context, amount *big.Float, fromAsset, toAsset string) (string, error) {
	if amount == nil || amount.IsInf() || amount.Sign() <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	return "", fmt.Errorf("%w: trade", ErrUnsupported)
}

// send signs an EIP-1559 transaction, broadcasts it and waits until it is mined
func (w *ethWallet) send(ctx context.Context, to common.Address, value *big.Int, data []byte) (*types.Receipt, error) {
	w.txMu.Lock()
	defer w.txMu.Unlock()

	backend := w.provider.backend
	nonce, err := backend.PendingNonceAt(ctx, w.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	tip, err := backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas tip: %w", err)
	}
	head, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch head: %w", err)
	}
	feeCap := new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}
	gas, err := backend.EstimateGas(ctx, ethereum.CallMsg{From: w.address, To: &to, Value: value, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	chainID := w.provider.network.ChainID
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), w.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	logger.L().Info("transaction sent", zap.String("wallet_id", w.id), zap.String("tx", signed.Hash().Hex()))

	receipt, err := bind.WaitMined(ctx, backend, signed)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s: %w", signed.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", signed.Hash().Hex())
	}
	return receipt, nil
}
