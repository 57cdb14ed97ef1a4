// Package commands implements the agent CLI.
package commands

import (
	"github.com/spf13/cobra"
)

// Options are the flags shared by every command
type Options struct {
	APIURL     string
	ConfigPath string
}

// NewRootCmd builds the CLI with every subcommand attached
func NewRootCmd() *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:           "agent-cli",
		Short:         "AIgent launchpad CLI",
		Long:          `Command line interface for creating and talking to NFT-bound wallet agents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.APIURL, "api-url", defaultAPIURL, "launchpad API URL")
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file used by commands that open the store directly")

	root.AddCommand(
		newCreateCmd(opts),
		newInteractCmd(opts),
		newListCmd(opts),
		newHistoryCmd(opts),
		newAddMemberCmd(opts),
		newTemplateCmd(),
		newImportLegacyCmd(opts),
		newWalletsCmd(opts),
	)
	return root
}
