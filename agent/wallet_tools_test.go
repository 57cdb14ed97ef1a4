package agent

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/NethermindEth/aigent-launchpad/wallet"
	"github.com/NethermindEth/aigent-launchpad/wallet/wallettest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dest = "0x00000000000000000000000000000000000000bb"

func call(t *testing.T, r *Registry, name string, args interface{}) string {
	t.Helper()
	tool, ok := r.Get(name)
	require.True(t, ok, "tool %s not registered", name)
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return tool.Handler(context.Background(), raw)
}

func TestWeb3CatalogueMatchesWalletTools(t *testing.T) {
	catalogue := Web3Catalogue()
	tools := WalletTools(wallettest.NewWallet(wallet.NetworkBaseSepolia))

	require.Len(t, catalogue, 7)
	assert.Equal(t, tools.Names(), func() []string {
		var names []string
		for _, c := range catalogue {
			names = append(names, c.Name)
		}
		return names
	}())
	assert.Equal(t, "Request ETH from the Base Sepolia testnet faucet.", catalogue[3].Description)
}

func TestGetBalance(t *testing.T) {
	w := wallettest.NewWallet(wallet.NetworkBaseSepolia)
	w.SetBalance("eth", 1.5)
	r := WalletTools(w)

	assert.Equal(t, "Current balance of eth: 1.5", call(t, r, FuncGetBalance, map[string]string{"asset_id": "eth"}))
	assert.Contains(t, call(t, r, FuncGetBalance, map[string]string{"asset_id": "doge"}), "Error getting balance of doge")
}

func TestTransferAsset(t *testing.T) {
	token := "0x00000000000000000000000000000000000000cc"

	tests := []struct {
		name    string
		network string
		setup   func(w *wallettest.Wallet)
		args    map[string]interface{}
		want    string
	}{
		{
			name:    "eth",
			network: wallet.NetworkBaseSepolia,
			setup:   func(w *wallettest.Wallet) { w.SetBalance("eth", 2) },
			args:    map[string]interface{}{"amount": 0.5, "asset_id": "eth", "destination_address": dest},
			want:    "Transferred 0.5 eth to " + dest,
		},
		{
			name:    "amount as string",
			network: wallet.NetworkBaseSepolia,
			setup:   func(w *wallettest.Wallet) { w.SetBalance("eth", 2) },
			args:    map[string]interface{}{"amount": "1.25", "asset_id": "eth", "destination_address": dest},
			want:    "Transferred 1.25 eth to " + dest,
		},
		{
			name:    "usdc on mainnet falls back to a paid transfer",
			network: wallet.NetworkBaseMainnet,
			setup:   func(w *wallettest.Wallet) { w.SetBalance("usdc", 10) },
			args:    map[string]interface{}{"amount": 3, "asset_id": "usdc", "destination_address": dest},
			want:    "Transferred 3 usdc to " + dest,
		},
		{
			name:    "unsupported token",
			network: wallet.NetworkBaseSepolia,
			setup:   func(w *wallettest.Wallet) {},
			args:    map[string]interface{}{"amount": 1, "asset_id": token, "destination_address": dest},
			want: "Error: The asset " + token + " is not supported on this network. It may have been recently deployed. " +
				"Please try again in about 30 minutes.",
		},
		{
			name:    "insufficient token balance",
			network: wallet.NetworkBaseSepolia,
			setup:   func(w *wallettest.Wallet) { w.SetBalance(token, 2) },
			args:    map[string]interface{}{"amount": 3, "asset_id": token, "destination_address": dest},
			want:    "Insufficient balance. You have 2 " + token + ", but tried to transfer 3.",
		},
		{
			name:    "token transfer",
			network: wallet.NetworkBaseSepolia,
			setup:   func(w *wallettest.Wallet) { w.SetBalance(token, 5) },
			args:    map[string]interface{}{"amount": 3, "asset_id": token, "destination_address": dest},
			want:    "Transferred 3 " + token + " to " + dest,
		},
		{
			name:    "missing amount",
			network: wallet.NetworkBaseSepolia,
			setup:   func(w *wallettest.Wallet) {},
			args:    map[string]interface{}{"asset_id": "eth", "destination_address": dest},
			want:    "Error: amount is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := wallettest.NewWallet(tt.network)
			tt.setup(w)
			assert.Equal(t, tt.want, call(t, WalletTools(w), FuncTransferAsset, tt.args))
		})
	}
}

func TestAmountArgumentsAreValidated(t *testing.T) {
	amounts := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"infinite", "inf", "Error: invalid arguments"},
		{"signed infinite", "+Inf", "Error: invalid arguments"},
		{"not a number", "NaN", "Error: invalid arguments"},
		{"out of range", "1e400", "Error: invalid arguments"},
		{"empty", "", "Error: invalid arguments"},
		{"negative", -2, "Error: invalid arguments"},
		{"zero", 0, "amount must be positive"},
	}

	for _, a := range amounts {
		t.Run("transfer_asset/"+a.name, func(t *testing.T) {
			for _, asset := range []string{"eth", "usdc"} {
				w := wallettest.NewWallet(wallet.NetworkBaseMainnet)
				w.SetBalance(asset, 10)
				out := call(t, WalletTools(w), FuncTransferAsset,
					map[string]interface{}{"amount": a.value, "asset_id": asset, "destination_address": dest})
				assert.Contains(t, out, a.want)
				assert.Empty(t, w.Transfers)
			}
		})
		t.Run("swap_assets/"+a.name, func(t *testing.T) {
			w := wallettest.NewWallet(wallet.NetworkBaseMainnet)
			out := call(t, WalletTools(w), FuncSwapAssets,
				map[string]interface{}{"amount": a.value, "from_asset_id": "eth", "to_asset_id": "usdc"})
			assert.Contains(t, out, a.want)
			assert.NotContains(t, out, "Successfully swapped")
		})
	}

	supplies := []interface{}{"inf", "NaN", "1e400", "", -5, 0, 1.5}
	for _, supply := range supplies {
		w := wallettest.NewWallet(wallet.NetworkBaseSepolia)
		out := call(t, WalletTools(w), FuncCreateToken,
			map[string]interface{}{"name": "Gold", "symbol": "GLD", "initial_supply": supply})
		assert.True(t, strings.HasPrefix(out, "Error"), "supply %v: %s", supply, out)
	}
}

func TestTransferRequestsGaslessUSDCOnMainnet(t *testing.T) {
	w := wallettest.NewWallet(wallet.NetworkBaseMainnet)
	w.SetBalance("usdc", 10)
	call(t, WalletTools(w), FuncTransferAsset, map[string]interface{}{"amount": 1, "asset_id": "USDC", "destination_address": dest})

	require.Len(t, w.Transfers, 1)
	assert.True(t, w.Transfers[0].Gasless)
	assert.Equal(t, 0, w.Transfers[0].Amount.Cmp(big.NewFloat(1)))
}

func TestTransferErrorIsStringified(t *testing.T) {
	w := wallettest.NewWallet(wallet.NetworkBaseSepolia)
	w.SetBalance("eth", 5)
	w.Err = errors.New("nonce too low")
	out := call(t, WalletTools(w), FuncTransferAsset, map[string]interface{}{"amount": 1, "asset_id": "eth", "destination_address": dest})
	assert.Contains(t, out, "Error transferring asset: nonce too low.")
}

func TestNetworkGatedFunctions(t *testing.T) {
	sepolia := WalletTools(wallettest.NewWallet(wallet.NetworkBaseSepolia))
	mainnet := WalletTools(wallettest.NewWallet(wallet.NetworkBaseMainnet))

	assert.Equal(t, "Requested ETH from faucet. Transaction: 0xfaucet", call(t, sepolia, FuncFaucet, nil))
	assert.Equal(t, "Error: The faucet is only available on Base Sepolia testnet.", call(t, mainnet, FuncFaucet, nil))

	swap := map[string]interface{}{"amount": 1, "from_asset_id": "eth", "to_asset_id": "usdc"}
	assert.Equal(t, "Error: Asset swaps are only available on Base Mainnet. Current network is not Base Mainnet.",
		call(t, sepolia, FuncSwapAssets, swap))
	assert.Equal(t, "Successfully swapped 1 eth for usdc", call(t, mainnet, FuncSwapAssets, swap))
}

func TestDeployAndMint(t *testing.T) {
	w := wallettest.NewWallet(wallet.NetworkBaseSepolia)
	r := WalletTools(w)

	assert.Equal(t,
		"Successfully deployed NFT contract 'Cats' (CAT) at address 0x00000000000000000000000000000000000000n1 with base URI: ipfs://cats/",
		call(t, r, FuncDeployNFT, map[string]string{"name": "Cats", "symbol": "CAT", "base_uri": "ipfs://cats/"}))

	assert.Equal(t,
		"Token Gold (GLD) created with initial supply of 1000 and contract address 0x00000000000000000000000000000000000000t0",
		call(t, r, FuncCreateToken, map[string]interface{}{"name": "Gold", "symbol": "GLD", "initial_supply": 1000}))

	assert.Equal(t, "Successfully minted NFT to "+dest,
		call(t, r, FuncMintNFT, map[string]string{"contract_address": "0x00000000000000000000000000000000000000cc", "mint_to": dest}))
	require.Len(t, w.Invocations, 1)
	assert.Equal(t, "mint", w.Invocations[0].Method)
	assert.Equal(t, common.HexToAddress(dest), w.Invocations[0].Args[0])
	assert.Equal(t, big.NewInt(1), w.Invocations[0].Args[1])

	assert.Contains(t, call(t, r, FuncMintNFT, map[string]string{"contract_address": "0x1", "mint_to": "nobody"}), "Error minting NFT")

	w.Err = wallet.ErrUnsupported
	assert.Contains(t, call(t, r, FuncDeployNFT, map[string]string{"name": "x"}), "Error deploying NFT contract: operation not supported")
}
