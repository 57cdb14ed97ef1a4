package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NethermindEth/aigent-launchpad/cmd/agent/templates"
	"github.com/spf13/cobra"
)

func templateRegistry(dir string) *templates.TemplateRegistry {
	if dir == "" {
		return templates.NewTemplateRegistry()
	}
	return templates.NewTemplateRegistryAt(dir)
}

func newTemplateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage agent templates",
	}
	cmd.PersistentFlags().StringVar(&dir, "templates-dir", "", "template directory (default ~/.aigent/templates)")

	var (
		personality string
		description string
		concepts    []string
		tools       []string
	)
	create := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new agent template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template := &templates.AgentTemplate{
				Name:        args[0],
				Personality: personality,
				Concepts:    concepts,
				Tools:       tools,
				Description: description,
			}
			if err := templateRegistry(dir).SaveTemplate(args[0], template); err != nil {
				return fmt.Errorf("error saving template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s saved\n", args[0])
			return nil
		},
	}
	create.Flags().StringVar(&personality, "personality", "", "personality description")
	create.Flags().StringVar(&description, "description", "", "short description of the template")
	create.Flags().StringSliceVar(&concepts, "concepts", nil, "fields the agent knows about")
	create.Flags().StringSliceVar(&tools, "tools", nil, "optional tools (Calculator, Wikipedia, Arxiv)")
	create.MarkFlagRequired("personality")

	list := &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := templateRegistry(dir)
			if err := registry.CreateDefaultTemplates(); err != nil {
				return fmt.Errorf("error writing default templates: %w", err)
			}
			names, err := registry.ListTemplates()
			if err != nil {
				return fmt.Errorf("error listing templates: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				template, err := registry.GetTemplate(name)
				if err != nil {
					fmt.Fprintf(out, "- %s (unreadable: %v)\n", name, err)
					continue
				}
				fmt.Fprintf(out, "- %s: %s\n", name, template.Description)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a template and the prompt it produces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := templateRegistry(dir)
			if err := registry.CreateDefaultTemplates(); err != nil {
				return fmt.Errorf("error writing default templates: %w", err)
			}
			template, err := registry.GetTemplate(args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(template, "", "  ")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, string(data))
			fmt.Fprintf(out, "Prompt: %s\n", strings.TrimSpace(template.Prompt()))
			return nil
		},
	}

	cmd.AddCommand(create, list, show)
	return cmd
}
