package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20ABIJSON = `[
{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// MintABI is the ABI used to mint from NFT contracts
const MintABI = `[{"inputs":[{"name":"to","type":"address"},{"name":"quantity","type":"uint256"}],"name":"mint","outputs":[],"stateMutability":"payable","type":"function"}]`

var erc20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

func (w *ethWallet) callToken(ctx context.Context, token common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := erc20ABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := w.provider.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call on %s failed: %w", method, token.Hex(), err)
	}
	if len(out) == 0 {
		// no contract at this address on this network
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, token.Hex())
	}
	values, err := erc20ABI.Unpack(method, out)
	if err != nil || len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, token.Hex())
	}
	return values, nil
}

func (w *ethWallet) tokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	values, err := w.callToken(ctx, token, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedAsset, token.Hex())
	}
	return decimals, nil
}

func (w *ethWallet) tokenBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	values, err := w.callToken(ctx, token, "balanceOf", w.address)
	if err != nil {
		return nil, err
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, token.Hex())
	}
	return balance, nil
}
