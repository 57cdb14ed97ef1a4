package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NethermindEth/aigent-launchpad/utils"
)

// AgentTemplate is a reusable creation prompt for chat agents
type AgentTemplate struct {
	Name        string   `json:"name"`
	Personality string   `json:"personality"`
	Concepts    []string `json:"concepts,omitempty"`
	Tools       []string `json:"tools,omitempty"`
	Description string   `json:"description"`
}

// Prompt renders the template as the natural language prompt the analyzer reads
func (t *AgentTemplate) Prompt() string {
	var b strings.Builder
	b.WriteString(t.Personality)
	if len(t.Concepts) > 0 {
		fmt.Fprintf(&b, " It knows a lot about %s.", strings.Join(t.Concepts, ", "))
	}
	if len(t.Tools) > 0 {
		fmt.Fprintf(&b, " It can use %s.", strings.Join(t.Tools, ", "))
	}
	return strings.TrimSpace(b.String())
}

// TemplateRegistry stores templates as JSON files in one directory
type TemplateRegistry struct {
	templatesDir string
}

// NewTemplateRegistry uses ~/.aigent/templates
func NewTemplateRegistry() *TemplateRegistry {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return NewTemplateRegistryAt(filepath.Join(homeDir, ".aigent", "templates"))
}

func NewTemplateRegistryAt(dir string) *TemplateRegistry {
	return &TemplateRegistry{templatesDir: dir}
}

func (r *TemplateRegistry) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid template name %q", name)
	}
	return filepath.Join(r.templatesDir, name+".json"), nil
}

func (r *TemplateRegistry) SaveTemplate(name string, template *AgentTemplate) error {
	p, err := r.path(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(p, data, 0644)
}

func (r *TemplateRegistry) GetTemplate(name string) (*AgentTemplate, error) {
	p, err := r.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("template %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	var template AgentTemplate
	if err := json.Unmarshal(utils.StripBOM(data), &template); err != nil {
		return nil, fmt.Errorf("template %q is malformed: %w", name, err)
	}
	return &template, nil
}

// ListTemplates returns the stored template names, sorted
func (r *TemplateRegistry) ListTemplates() ([]string, error) {
	entries, err := os.ReadDir(r.templatesDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	sort.Strings(names)
	return names, nil
}
