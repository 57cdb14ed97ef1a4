package commands

import (
	"context"
	"fmt"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/storage"
	"github.com/NethermindEth/aigent-launchpad/wallet"
	"github.com/spf13/cobra"
)

// openStore opens the store configured by --config
func openStore(opts *Options) (*config.Config, *storage.Store, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	store, err := storage.OpenStore(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening store: %w", err)
	}
	return cfg, store, nil
}

func newImportLegacyCmd(opts *Options) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Copy records from a legacy file layout into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.ImportLegacy(from)
			if err != nil {
				return fmt.Errorf("error importing %s: %w", from, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Imported %d NFTs, %d conversations, %d agent configs, %d wallets, %d seeds, %d authorizations, %d user agent lists\n",
				stats.NFTs, stats.Conversations, stats.AgentConfigs, stats.Wallets, stats.Seeds, stats.Authorizations, stats.UserAgents)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "directory holding the legacy files")
	cmd.MarkFlagRequired("from")
	return cmd
}

// walletLister is the part of the wallet manager the wallets command needs
type walletLister interface {
	IDs() ([]string, error)
	Address(walletID string) (string, error)
}

func newWalletsCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "wallets",
		Short: "List registered wallets and their addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			provider, err := wallet.NewEthereumProvider(cfg.Wallet)
			if err != nil {
				return err
			}
			mgr, err := wallet.NewManager(provider, store.Wallets, cfg.Wallet.MasterKey, cfg.Wallet.CacheSize)
			if err != nil {
				return err
			}
			return printWallets(cmd.Context(), cmd, mgr)
		},
	}
}

func printWallets(ctx context.Context, cmd *cobra.Command, wallets walletLister) error {
	ids, err := wallets.IDs()
	if err != nil {
		return fmt.Errorf("error listing wallets: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d wallets:\n", len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		address, err := wallets.Address(id)
		if err != nil {
			fmt.Fprintf(out, "- %s (no address: %v)\n", id, err)
			continue
		}
		fmt.Fprintf(out, "- %s %s\n", id, address)
	}
	return nil
}
