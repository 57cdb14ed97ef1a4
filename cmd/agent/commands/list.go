package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/spf13/cobra"
)

func newListCmd(opts *Options) *cobra.Command {
	var (
		userID string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents",
		Long:  `List the agents a user created or was added to, or every agent with --all.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts.APIURL)
			out := cmd.OutOrStdout()

			if all {
				var mappings []core.AgentMapping
				if err := client.do(cmd.Context(), http.MethodGet, "/aigent/fetch-agent-mappings", nil, &mappings); err != nil {
					return err
				}
				fmt.Fprintf(out, "Found %d agents:\n", len(mappings))
				for _, m := range mappings {
					fmt.Fprintf(out, "- %s (wallet %s, address %s)\n", m.NFTHash, m.WalletID, m.Address)
					if m.Personality != nil {
						fmt.Fprintf(out, "  Personality: %s\n", strings.TrimSpace(m.Personality.Personality))
					}
				}
				return nil
			}

			if userID == "" {
				return errors.New("--user or --all is required")
			}
			var resp core.UserAgentsResponse
			if err := client.do(cmd.Context(), http.MethodGet, "/aigent/user-agents/"+url.PathEscape(userID), nil, &resp); err != nil {
				return err
			}
			if len(resp.Agents) == 0 {
				fmt.Fprintln(out, "No agents found.")
				return nil
			}
			fmt.Fprintf(out, "Found %d agents for %s:\n", len(resp.Agents), resp.UserID)
			for _, a := range resp.Agents {
				printUserAgent(out, a)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().BoolVar(&all, "all", false, "list every agent")
	return cmd
}

func printUserAgent(out io.Writer, a core.UserAgent) {
	role := "member"
	if a.IsCreator {
		role = "creator"
	}
	fmt.Fprintf(out, "- %s (%s, address %s)\n", a.NFTHash, role, a.Address)
	if a.Personality.Description != "" {
		fmt.Fprintf(out, "  Personality: %s\n", strings.TrimSpace(a.Personality.Description))
	}
	if len(a.Personality.Concepts) > 0 {
		fmt.Fprintf(out, "  Concepts: %s\n", a.Personality.Concepts.String())
	}
	if len(a.Personality.Tools) > 0 {
		fmt.Fprintf(out, "  Tools: %s\n", strings.Join(a.Personality.Tools, ", "))
	}
	if len(a.Members) > 0 {
		fmt.Fprintf(out, "  Members: %s\n", strings.Join(a.Members, ", "))
	}
}

func newHistoryCmd(opts *Options) *cobra.Command {
	var (
		userID, nftHash string
		limit, offset   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the conversation history of an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var h core.ConversationHistory
			path := fmt.Sprintf("/aigent/conversation-history/%s/%s?limit=%d&offset=%d",
				url.PathEscape(nftHash), url.PathEscape(userID), limit, offset)
			if err := newAPIClient(opts.APIURL).do(cmd.Context(), http.MethodGet, path, nil, &h); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Agent %s (address %s), %d conversations\n", h.NFTHash, h.WalletAddress, h.TotalConversations)
			for _, turn := range h.Conversations {
				if turn.Raw != "" {
					fmt.Fprintf(out, "%s\n", turn.Raw)
					continue
				}
				fmt.Fprintf(out, "Q: %s\nA: %s\n", turn.Question, turn.Answer)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (creator or member)")
	cmd.Flags().StringVar(&nftHash, "nft", "", "NFT hash of the agent")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of turns")
	cmd.Flags().IntVar(&offset, "offset", 0, "turns to skip")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("nft")
	return cmd
}
