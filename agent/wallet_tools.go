package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/NethermindEth/aigent-launchpad/ai"
	"github.com/NethermindEth/aigent-launchpad/wallet"
	"github.com/ethereum/go-ethereum/common"
)

// Web3 function names
const (
	FuncCreateToken   = "create_token"
	FuncTransferAsset = "transfer_asset"
	FuncGetBalance    = "get_balance"
	FuncFaucet        = "request_eth_from_faucet"
	FuncDeployNFT     = "deploy_nft"
	FuncMintNFT       = "mint_nft"
	FuncSwapAssets    = "swap_assets"
)

const assetIDHelp = `Asset identifier ("eth", "usdc") or contract address of an ERC-20 token`

type web3Function struct {
	name        string
	description string
	params      *ai.Schema
	handler     func(w wallet.Wallet) Handler
}

var web3Functions = []web3Function{
	{
		name:        FuncCreateToken,
		description: "Create a new ERC-20 token with a specified name, symbol, and initial supply.",
		params: ai.Object(map[string]*ai.Schema{
			"name":           ai.String("The name of the token"),
			"symbol":         ai.String("The symbol of the token"),
			"initial_supply": ai.Integer("The initial supply of tokens"),
		}, "name", "symbol", "initial_supply"),
		handler: createToken,
	},
	{
		name:        FuncTransferAsset,
		description: "Transfer an asset to a specific address, checking balances and handling gasless transfers.",
		params: ai.Object(map[string]*ai.Schema{
			"amount":              ai.Number("Amount to transfer"),
			"asset_id":            ai.String(assetIDHelp),
			"destination_address": ai.String("Recipient's address"),
		}, "amount", "asset_id", "destination_address"),
		handler: transferAsset,
	},
	{
		name:        FuncGetBalance,
		description: "Get the balance of a specific asset in the agent's wallet.",
		params: ai.Object(map[string]*ai.Schema{
			"asset_id": ai.String(assetIDHelp),
		}, "asset_id"),
		handler: getBalance,
	},
	{
		name:        FuncFaucet,
		description: "Request ETH from the Base Sepolia testnet faucet.",
		params:      ai.Object(nil),
		handler:     requestFaucet,
	},
	{
		name:        FuncDeployNFT,
		description: "Deploy an ERC-721 NFT contract with a specified name, symbol, and base URI.",
		params: ai.Object(map[string]*ai.Schema{
			"name":     ai.String("Name of the NFT collection"),
			"symbol":   ai.String("Symbol of the NFT collection"),
			"base_uri": ai.String("Base URI for the NFT metadata"),
		}, "name", "symbol", "base_uri"),
		handler: deployNFT,
	},
	{
		name:        FuncMintNFT,
		description: "Mint an NFT to a specified address from a given contract.",
		params: ai.Object(map[string]*ai.Schema{
			"contract_address": ai.String("Address of the NFT contract"),
			"mint_to":          ai.String("Address to mint the NFT to"),
		}, "contract_address", "mint_to"),
		handler: mintNFT,
	},
	{
		name:        FuncSwapAssets,
		description: "Swap one asset for another using the trade function, available only on Base Mainnet.",
		params: ai.Object(map[string]*ai.Schema{
			"amount":        ai.Number("Amount of the source asset to swap"),
			"from_asset_id": ai.String("Source asset identifier"),
			"to_asset_id":   ai.String("Destination asset identifier"),
		}, "amount", "from_asset_id", "to_asset_id"),
		handler: swapAssets,
	},
}

// Web3Catalogue lists the wallet functions without binding them to a wallet
func Web3Catalogue() []ai.ToolSpec {
	out := make([]ai.ToolSpec, 0, len(web3Functions))
	for _, f := range web3Functions {
		out = append(out, ai.ToolSpec{Name: f.name, Description: f.description, Parameters: f.params})
	}
	return out
}

// WalletTools returns every web3 function bound to w
func WalletTools(w wallet.Wallet) *Registry {
	tools := make([]Tool, 0, len(web3Functions))
	for _, f := range web3Functions {
		tools = append(tools, Tool{
			Name:        f.name,
			Description: f.description,
			Parameters:  f.params,
			Handler:     f.handler(w),
		})
	}
	return NewRegistry(tools...)
}

// Amount accepts a JSON number or a numeric string
type Amount struct {
	*big.Float
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	f, err := wallet.ParseAmount(s)
	if err != nil {
		return err
	}
	a.Float = f
	return nil
}

func (a Amount) String() string {
	if a.Float == nil {
		return "0"
	}
	return wallet.FormatAmount(a.Float)
}

func getBalance(w wallet.Wallet) Handler {
	return func(ctx context.Context, raw json.RawMessage) string {
		var args struct {
			AssetID string `json:"asset_id"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return "Error: " + err.Error()
		}
		balance, err := w.Balance(ctx, args.AssetID)
		if err != nil {
			return fmt.Sprintf("Error getting balance of %s: %v", args.AssetID, err)
		}
		return fmt.Sprintf("Current balance of %s: %s", args.AssetID, wallet.FormatAmount(balance))
	}
}

func transferAsset(w wallet.Wallet) Handler {
	return func(ctx context.Context, raw json.RawMessage) string {
		var args struct {
			Amount      Amount `json:"amount"`
			AssetID     string `json:"asset_id"`
			Destination string `json:"destination_address"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return "Error: " + err.Error()
		}
		if args.Amount.Float == nil {
			return "Error: amount is required"
		}
		if args.Amount.Sign() <= 0 {
			return "Error: amount must be positive"
		}

		msg, err := doTransfer(ctx, w, args.Amount, args.AssetID, args.Destination)
		if err != nil {
			return fmt.Sprintf("Error transferring asset: %v. If this is a custom token, it may have been recently deployed. "+
				"Please try again in about 30 minutes, as it needs to be indexed first.", err)
		}
		return msg
	}
}

func doTransfer(ctx context.Context, w wallet.Wallet, amount Amount, assetID, destination string) (string, error) {
	id := strings.ToLower(assetID)
	if id == "eth" || id == "usdc" {
		gasless := wallet.IsMainnet(w.NetworkID()) && id == "usdc"
		_, err := w.Transfer(ctx, wallet.TransferRequest{
			Amount:      amount.Float,
			AssetID:     assetID,
			Destination: destination,
			Gasless:     gasless,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Transferred %s %s to %s", amount, assetID, destination), nil
	}

	balance, err := w.Balance(ctx, assetID)
	if errors.Is(err, wallet.ErrUnsupportedAsset) {
		return fmt.Sprintf("Error: The asset %s is not supported on this network. It may have been recently deployed. "+
			"Please try again in about 30 minutes.", assetID), nil
	}
	if err != nil {
		return "", err
	}
	if balance.Cmp(amount.Float) < 0 {
		return fmt.Sprintf("Insufficient balance. You have %s %s, but tried to transfer %s.",
			wallet.FormatAmount(balance), assetID, amount), nil
	}

	if _, err := w.Transfer(ctx, wallet.TransferRequest{Amount: amount.Float, AssetID: assetID, Destination: destination}); err != nil {
		return "", err
	}
	return fmt.Sprintf("Transferred %s %s to %s", amount, assetID, destination), nil
}

func requestFaucet(w wallet.Wallet) Handler {
	return func(ctx context.Context, _ json.RawMessage) string {
		if wallet.IsMainnet(w.NetworkID()) {
			return "Error: The faucet is only available on Base Sepolia testnet."
		}
		tx, err := w.Faucet(ctx)
		if err != nil {
			return fmt.Sprintf("Error requesting ETH from faucet: %v", err)
		}
		return fmt.Sprintf("Requested ETH from faucet. Transaction: %s", tx)
	}
}

func createToken(w wallet.Wallet) Handler {
	return func(ctx context.Context, raw json.RawMessage) string {
		var args struct {
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			InitialSupply Amount `json:"initial_supply"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return "Error: " + err.Error()
		}
		if args.InitialSupply.Float == nil || !args.InitialSupply.IsInt() || args.InitialSupply.Sign() <= 0 {
			return "Error: initial_supply must be a positive whole number"
		}
		supply, _ := args.InitialSupply.Int(nil)
		contract, err := w.DeployToken(ctx, args.Name, args.Symbol, supply)
		if err != nil {
			return fmt.Sprintf("Error creating token: %v", err)
		}
		return fmt.Sprintf("Token %s (%s) created with initial supply of %s and contract address %s",
			args.Name, args.Symbol, supply.String(), contract)
	}
}

func deployNFT(w wallet.Wallet) Handler {
	return func(ctx context.Context, raw json.RawMessage) string {
		var args struct {
			Name    string `json:"name"`
			Symbol  string `json:"symbol"`
			BaseURI string `json:"base_uri"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return "Error: " + err.Error()
		}
		contract, err := w.DeployNFT(ctx, args.Name, args.Symbol, args.BaseURI)
		if err != nil {
			return fmt.Sprintf("Error deploying NFT contract: %v", err)
		}
		return fmt.Sprintf("Successfully deployed NFT contract '%s' (%s) at address %s with base URI: %s",
			args.Name, args.Symbol, contract, args.BaseURI)
	}
}

func mintNFT(w wallet.Wallet) Handler {
	return func(ctx context.Context, raw json.RawMessage) string {
		var args struct {
			ContractAddress string `json:"contract_address"`
			MintTo          string `json:"mint_to"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return "Error: " + err.Error()
		}
		if !common.IsHexAddress(args.MintTo) {
			return fmt.Sprintf("Error minting NFT: invalid address %q", args.MintTo)
		}
		_, err := w.InvokeContract(ctx, wallet.InvokeRequest{
			ContractAddress: args.ContractAddress,
			Method:          "mint",
			Args:            []interface{}{common.HexToAddress(args.MintTo), big.NewInt(1)},
			ABI:             wallet.MintABI,
		})
		if err != nil {
			return fmt.Sprintf("Error minting NFT: %v", err)
		}
		return fmt.Sprintf("Successfully minted NFT to %s", args.MintTo)
	}
}

func swapAssets(w wallet.Wallet) Handler {
	return func(ctx context.Context, raw json.RawMessage) string {
		var args struct {
			Amount      Amount `json:"amount"`
			FromAssetID string `json:"from_asset_id"`
			ToAssetID   string `json:"to_asset_id"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return "Error: " + err.Error()
		}
		if !wallet.IsMainnet(w.NetworkID()) {
			return "Error: Asset swaps are only available on Base Mainnet. Current network is not Base Mainnet."
		}
		if args.Amount.Float == nil {
			return "Error swapping assets: amount is required"
		}
		if args.Amount.Sign() <= 0 {
			return "Error swapping assets: amount must be positive"
		}
		if _, err := w.Trade(ctx, args.Amount.Float, args.FromAssetID, args.ToAssetID); err != nil {
			return fmt.Sprintf("Error swapping assets: %v", err)
		}
		return fmt.Sprintf("Successfully swapped %s %s for %s", args.Amount, args.FromAssetID, args.ToAssetID)
	}
}
