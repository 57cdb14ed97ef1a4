package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"go.uber.org/zap"
)

var ErrNoProvider = errors.New("no llm provider configured")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Schema is the JSON schema subset both chat backends understand
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

func Object(properties map[string]*Schema, required ...string) *Schema {
	if properties == nil {
		properties = map[string]*Schema{}
	}
	return &Schema{Type: "object", Properties: properties, Required: required}
}

func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

func Number(description string) *Schema {
	return &Schema{Type: "number", Description: description}
}

func Integer(description string) *Schema {
	return &Schema{Type: "integer", Description: description}
}

func Array(description string, items *Schema) *Schema {
	return &Schema{Type: "array", Description: description, Items: items}
}

// ToolSpec describes a callable function to the model
type ToolSpec struct {
	Name        string
	Description string
	Parameters  *Schema
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Message is one entry of a chat transcript. Tool results carry the
// originating call in ToolCallID and the tool name in Name.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

type ChatRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
	JSONMode bool
}

type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// Provider is a chat model backend
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// NewProvider builds the configured backend wrapped in a circuit breaker.
// It returns ErrNoProvider when the selected backend has no API key.
func NewProvider(ctx context.Context, cfg config.LLMConfig) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "openai", "":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrNoProvider)
		}
		p = NewOpenAIProvider(cfg)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", ErrNoProvider)
		}
		p, err = NewGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	logger.L().Info("llm provider ready", zap.String("provider", cfg.Provider))
	return NewBreaker(p, cfg.BreakerFailures, cfg.BreakerOpenFor), nil
}

type disabled struct{}

// Disabled returns a provider that fails every call with ErrNoProvider
func Disabled() Provider { return disabled{} }

func (disabled) Chat(context.Context, ChatRequest) (*ChatResponse, error) {
	return nil, ErrNoProvider
}

// Complete sends a single user prompt and returns the text answer
func Complete(ctx context.Context, p Provider, system, prompt string, jsonMode bool) (string, error) {
	resp, err := p.Chat(ctx, ChatRequest{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
		JSONMode: jsonMode,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// DecodeJSON unmarshals the JSON document embedded in a model answer.
// Code fences and text around the outermost object or array are ignored.
func DecodeJSON(text string, v interface{}) error {
	raw := ExtractJSON(text)
	if raw == "" {
		return fmt.Errorf("no JSON found in model response")
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	return nil
}

func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return ""
	}
	return text[start : end+1]
}
