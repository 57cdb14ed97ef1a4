package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"go.uber.org/zap"
)

const analyzerSystem = "You design chatbot agents. You read a short description of the character a user wants " +
	"and turn it into the configuration the agent runs with. Answer only with what is asked."

// ChatbotAnalyzer turns a creation prompt into an agent configuration
type ChatbotAnalyzer struct {
	provider Provider
	allowed  []string
}

// NewChatbotAnalyzer restricts tool suggestions to allowed
func NewChatbotAnalyzer(provider Provider, allowed []string) *ChatbotAnalyzer {
	return &ChatbotAnalyzer{provider: provider, allowed: allowed}
}

type toolsAndConcepts struct {
	Tools    []string `json:"tools"`
	Concepts []string `json:"concepts"`
}

// FindToolsAndConcepts picks optional tools and knowledge areas for the prompt.
// Tool names outside the allow-list are dropped.
func (a *ChatbotAnalyzer) FindToolsAndConcepts(ctx context.Context, prompt string) ([]string, []string, error) {
	query := fmt.Sprintf(`Here is the description of a chatbot:
%q

1. From this list of tools, pick the ones the chatbot needs (possibly none): %s
2. List the fields of knowledge (concepts) the chatbot must master, 1 to 5 short noun phrases.

Return a JSON object:
{"tools": ["ToolName"], "concepts": ["concept"]}`, prompt, strings.Join(a.allowed, ", "))

	answer, err := Complete(ctx, a.provider, analyzerSystem, query, true)
	if err != nil {
		return nil, nil, fmt.Errorf("find tools and concepts: %w", err)
	}
	var out toolsAndConcepts
	if err := DecodeJSON(answer, &out); err != nil {
		return nil, nil, fmt.Errorf("find tools and concepts: %w", err)
	}

	tools := make([]string, 0, len(out.Tools))
	seen := make(map[string]bool)
	for _, name := range out.Tools {
		canonical, ok := a.canonical(name)
		if !ok {
			logger.L().Info("dropping tool outside the allow-list", zap.String("tool", name))
			continue
		}
		if !seen[canonical] {
			seen[canonical] = true
			tools = append(tools, canonical)
		}
	}
	concepts := make([]string, 0, len(out.Concepts))
	for _, c := range out.Concepts {
		if c = strings.TrimSpace(c); c != "" {
			concepts = append(concepts, c)
		}
	}
	return tools, concepts, nil
}

func (a *ChatbotAnalyzer) canonical(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, allowed := range a.allowed {
		if strings.EqualFold(allowed, name) {
			return allowed, true
		}
	}
	return "", false
}

// GeneratePersonality writes the second person description the agent speaks from
func (a *ChatbotAnalyzer) GeneratePersonality(ctx context.Context, prompt string) (string, error) {
	query := fmt.Sprintf(`Write the personality of a chatbot described as:
%q

Address the chatbot as "You are ...". Describe its character, tone and way of speaking in one paragraph.
End with a complete sentence followed by a space.`, prompt)

	answer, err := Complete(ctx, a.provider, analyzerSystem, query, false)
	if err != nil {
		return "", fmt.Errorf("generate personality: %w", err)
	}
	personality := strings.TrimSpace(answer)
	if personality == "" {
		return "", fmt.Errorf("generate personality: empty answer")
	}
	return personality + " ", nil
}

type instructionList struct {
	Instructions []string `json:"instructions"`
}

// GenerateInstructions lists behavioural rules for the chatbot
func (a *ChatbotAnalyzer) GenerateInstructions(ctx context.Context, prompt string) ([]string, error) {
	query := fmt.Sprintf(`Write 3 to 6 short instructions a chatbot described as
%q
must follow when answering users.

Return a JSON object: {"instructions": ["..."]}`, prompt)

	answer, err := Complete(ctx, a.provider, analyzerSystem, query, true)
	if err != nil {
		return nil, fmt.Errorf("generate instructions: %w", err)
	}
	var out instructionList
	if err := DecodeJSON(answer, &out); err != nil {
		return nil, fmt.Errorf("generate instructions: %w", err)
	}
	var instructions []string
	for _, in := range out.Instructions {
		if in = strings.TrimSpace(in); in != "" {
			instructions = append(instructions, in)
		}
	}
	return instructions, nil
}

// Analyze runs every step and assembles the stored configuration
func (a *ChatbotAnalyzer) Analyze(ctx context.Context, prompt string) (core.AgentConfig, error) {
	tools, concepts, err := a.FindToolsAndConcepts(ctx, prompt)
	if err != nil {
		return core.AgentConfig{}, err
	}
	personality, err := a.GeneratePersonality(ctx, prompt)
	if err != nil {
		return core.AgentConfig{}, err
	}
	instructions, err := a.GenerateInstructions(ctx, prompt)
	if err != nil {
		return core.AgentConfig{}, err
	}
	return core.AgentConfig{
		Personality:  personality,
		Concepts:     concepts,
		Tools:        tools,
		Instructions: instructions,
	}, nil
}
