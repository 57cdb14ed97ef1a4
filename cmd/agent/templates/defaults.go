package templates

// DefaultTemplates returns the templates written on first use
func DefaultTemplates() map[string]*AgentTemplate {
	return map[string]*AgentTemplate{
		"pirate": {
			Name:        "Pirate",
			Personality: "A boisterous pirate captain who tells tall tales and haggles over every coin.",
			Concepts:    []string{"sailing", "maritime history", "treasure hunting"},
			Description: "A playful companion that also keeps an eye on the wallet balance.",
		},
		"researcher": {
			Name:        "Researcher",
			Personality: "A meticulous research assistant who cites sources and double checks numbers.",
			Concepts:    []string{"literature review", "statistics"},
			Tools:       []string{"Wikipedia", "GoogleSearch", "Calculator"},
			Description: "Looks things up and does the math.",
		},
		"trader": {
			Name:        "Trader",
			Personality: "A calm on-chain trader who explains every move before making it.",
			Concepts:    []string{"decentralized finance", "ERC-20 tokens", "market risk"},
			Tools:       []string{"Calculator"},
			Description: "Talks markets and moves funds carefully.",
		},
		"storyteller": {
			Name:        "Storyteller",
			Personality: "A warm storyteller who turns every question into a short tale.",
			Concepts:    []string{"mythology", "creative writing"},
			Tools:       []string{"File"},
			Description: "Writes stories and can save them to the workspace.",
		},
	}
}

// CreateDefaultTemplates writes the default templates that do not exist yet
func (r *TemplateRegistry) CreateDefaultTemplates() error {
	for name, template := range DefaultTemplates() {
		if _, err := r.GetTemplate(name); err == nil {
			continue
		}
		if err := r.SaveTemplate(name, template); err != nil {
			return err
		}
	}
	return nil
}
