package wallet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	NetworkBaseSepolia = "base-sepolia"
	NetworkBaseMainnet = "base-mainnet"
)

type Network struct {
	ID      string
	ChainID *big.Int
	USDC    common.Address
}

var networks = map[string]Network{
	NetworkBaseSepolia: {
		ID:      NetworkBaseSepolia,
		ChainID: big.NewInt(84532),
		USDC:    common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e"),
	},
	NetworkBaseMainnet: {
		ID:      NetworkBaseMainnet,
		ChainID: big.NewInt(8453),
		USDC:    common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
	},
}

func LookupNetwork(id string) (Network, error) {
	n, ok := networks[id]
	if !ok {
		return Network{}, fmt.Errorf("%w: %s", ErrUnsupportedNetwork, id)
	}
	return n, nil
}

// IsMainnet reports whether networkID is Base mainnet
func IsMainnet(networkID string) bool {
	return networkID == NetworkBaseMainnet
}
