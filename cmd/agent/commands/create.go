package commands

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/spf13/cobra"
)

func newCreateCmd(opts *Options) *cobra.Command {
	var (
		userID       string
		nftHash      string
		prompt       string
		templateName string
		templatesDir string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new agent",
		Long:  `Create an agent for an NFT from a prompt or a stored template.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if templateName != "" {
				registry := templateRegistry(templatesDir)
				if err := registry.CreateDefaultTemplates(); err != nil {
					return fmt.Errorf("error writing default templates: %w", err)
				}
				template, err := registry.GetTemplate(templateName)
				if err != nil {
					return fmt.Errorf("error loading template: %w", err)
				}
				prompt = template.Prompt()
			}
			if prompt == "" {
				return errors.New("either --prompt or --template is required")
			}

			var resp core.WalletAddressResponse
			err := newAPIClient(opts.APIURL).do(cmd.Context(), http.MethodPost,
				"/aigent/create-agent/"+url.PathEscape(userID),
				core.CreateAgentRequest{Prompt: prompt, NFTHash: nftHash}, &resp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Agent created for NFT %s\nWallet address: %s\n", nftHash, resp.WalletAddress)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "creator user id (wallet address)")
	cmd.Flags().StringVar(&nftHash, "nft", "", "NFT hash the agent is bound to")
	cmd.Flags().StringVar(&prompt, "prompt", "", "description of the agent")
	cmd.Flags().StringVar(&templateName, "template", "", "template to build the prompt from")
	cmd.Flags().StringVar(&templatesDir, "templates-dir", "", "template directory (default ~/.aigent/templates)")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("nft")
	return cmd
}

func newInteractCmd(opts *Options) *cobra.Command {
	var userID, nftHash, prompt string
	cmd := &cobra.Command{
		Use:   "interact",
		Short: "Send a prompt to an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp core.InteractResponse
			path := fmt.Sprintf("/aigent/agent-interact/%s/%s", url.PathEscape(nftHash), url.PathEscape(userID))
			if err := newAPIClient(opts.APIURL).do(cmd.Context(), http.MethodPost, path, core.InteractRequest{Prompt: prompt}, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Response)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (creator or member)")
	cmd.Flags().StringVar(&nftHash, "nft", "", "NFT hash of the agent")
	cmd.Flags().StringVar(&prompt, "prompt", "", "what to say")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("nft")
	cmd.MarkFlagRequired("prompt")
	return cmd
}

func newAddMemberCmd(opts *Options) *cobra.Command {
	var creator, nftHash, member string
	cmd := &cobra.Command{
		Use:   "add-member",
		Short: "Allow another user to talk to an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Members []string `json:"members"`
			}
			path := fmt.Sprintf("/aigent/members/%s/%s", url.PathEscape(nftHash), url.PathEscape(creator))
			if err := newAPIClient(opts.APIURL).do(cmd.Context(), http.MethodPost, path, core.AddMemberRequest{Member: member}, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Members of %s: %v\n", nftHash, resp.Members)
			return nil
		},
	}
	cmd.Flags().StringVar(&creator, "creator", "", "creator user id")
	cmd.Flags().StringVar(&nftHash, "nft", "", "NFT hash of the agent")
	cmd.Flags().StringVar(&member, "member", "", "user id to add")
	cmd.MarkFlagRequired("creator")
	cmd.MarkFlagRequired("nft")
	cmd.MarkFlagRequired("member")
	return cmd
}
