package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NethermindEth/aigent-launchpad/ai"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"go.uber.org/zap"
)

var ErrMaxTurns = errors.New("agent exceeded maximum turns")

const defaultMaxTurns = 8

// Agent is a chat model equipped with tools
type Agent struct {
	Description  string
	Instructions []string
	Tools        []Tool
	Provider     ai.Provider
	MaxTurns     int
}

// SystemPrompt renders the description followed by the numbered instructions
func (a *Agent) SystemPrompt() string {
	var b strings.Builder
	b.WriteString(a.Description)
	if len(a.Instructions) > 0 {
		b.WriteString("\n\n## Instructions\n")
		for i, in := range a.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, in)
		}
	}
	return strings.TrimSpace(b.String())
}

// Run sends prompt to the model and executes requested tools until the model
// answers with text.
func (a *Agent) Run(ctx context.Context, prompt string) (string, error) {
	if a.Provider == nil {
		return "", ai.ErrNoProvider
	}
	maxTurns := a.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}

	registry := NewRegistry(a.Tools...)
	specs := make([]ai.ToolSpec, 0, len(a.Tools))
	for _, t := range registry.Tools() {
		specs = append(specs, t.Spec())
	}

	messages := []ai.Message{{Role: ai.RoleUser, Content: prompt}}
	for turn := 1; turn <= maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("timed out: %w", err)
		}

		resp, err := a.Provider.Chat(ctx, ai.ChatRequest{
			System:   a.SystemPrompt(),
			Messages: messages,
			Tools:    specs,
		})
		if err != nil {
			return "", err
		}
		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		messages = append(messages, ai.Message{Role: ai.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls})
		for _, call := range resp.ToolCalls {
			messages = append(messages, ai.Message{
				Role:       ai.RoleTool,
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    a.execute(ctx, registry, call, turn),
			})
		}
	}
	return "", fmt.Errorf("%w (%d)", ErrMaxTurns, maxTurns)
}

func (a *Agent) execute(ctx context.Context, registry *Registry, call ai.ToolCall, turn int) string {
	tool, ok := registry.Get(call.Name)
	if !ok {
		logger.L().Warn("model requested unknown tool", zap.String("tool", call.Name), zap.Int("turn", turn))
		return fmt.Sprintf("unknown tool: %s", call.Name)
	}
	start := time.Now()
	result := tool.Handler(ctx, call.Arguments)
	logger.L().Debug("tool executed",
		zap.String("tool", call.Name),
		zap.Int("turn", turn),
		zap.Duration("duration", time.Since(start)))
	return result
}
