package main

import (
	"fmt"
	"os"

	"github.com/NethermindEth/aigent-launchpad/crypto"
)

// Prints a fresh master key for encrypting wallet seeds
func main() {
	key, err := crypto.NewMasterKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("WALLET_MASTER_KEY=" + key)
}
