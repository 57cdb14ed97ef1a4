package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/NethermindEth/aigent-launchpad/ai"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"go.uber.org/zap"
)

// Handler runs a tool. Failures are reported in the returned text, never as
// Go errors, so the model can read them.
type Handler func(ctx context.Context, args json.RawMessage) string

type Tool struct {
	Name        string
	Description string
	Parameters  *ai.Schema
	Handler     Handler
}

func (t Tool) Spec() ai.ToolSpec {
	return ai.ToolSpec{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
}

// Registry maps tool names to tools, keeping registration order
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			logger.L().Warn("skipping tool", zap.String("tool", t.Name), zap.Error(err))
		}
	}
	return r
}

func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return errors.New("tool name is required")
	}
	if t.Handler == nil {
		return errors.New("tool handler is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool already registered: %s", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Select returns the named tools in order. Unknown names are logged and dropped.
func (r *Registry) Select(names []string) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Tool
	seen := make(map[string]bool)
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			logger.L().Warn("function not found", zap.String("function", name))
			continue
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, t)
		}
	}
	return out
}

func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func decodeArgs(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
