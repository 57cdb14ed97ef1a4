package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"chatter", `Sure! Here it is: {"a":{"b":2}} hope it helps`, `{"a":{"b":2}}`},
		{"array", `result: [1,2]`, `[1,2]`},
		{"none", `no json here`, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	var v map[string]int
	assert.Error(t, DecodeJSON("nothing", &v))
	assert.Error(t, DecodeJSON("{broken", &v))
}

func TestNewProviderRequiresKey(t *testing.T) {
	_, err := NewProvider(context.Background(), config.LLMConfig{Provider: "openai"})
	assert.ErrorIs(t, err, ErrNoProvider)

	_, err = NewProvider(context.Background(), config.LLMConfig{Provider: "gemini"})
	assert.ErrorIs(t, err, ErrNoProvider)

	_, err = Disabled().Chat(context.Background(), ChatRequest{})
	assert.ErrorIs(t, err, ErrNoProvider)
}

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Chat(context.Context, ChatRequest) (*ChatResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &ChatResponse{Content: "ok"}, nil
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &countingProvider{err: errors.New("upstream down")}
	b := NewBreaker(inner, 2, time.Minute)
	ctx := context.Background()

	_, err := b.Chat(ctx, ChatRequest{})
	require.Error(t, err)
	_, err = b.Chat(ctx, ChatRequest{})
	require.Error(t, err)

	_, err = b.Chat(ctx, ChatRequest{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "open", b.State())
}

func TestBreakerPassesThrough(t *testing.T) {
	b := NewBreaker(&countingProvider{}, 2, time.Minute)
	resp, err := b.Chat(context.Background(), ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, "closed", b.State())
}

func TestOpenAIProviderToolCalls(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "get_balance", "arguments": "{\"asset_id\":\"eth\"}"}
					}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(config.LLMConfig{OpenAIAPIKey: "test", OpenAIBaseURL: srv.URL + "/v1", OpenAIModel: "gpt-4o-mini"})
	resp, err := p.Chat(context.Background(), ChatRequest{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "what is my balance?"}},
		Tools: []ToolSpec{{
			Name:        "get_balance",
			Description: "Get the balance of a specific asset in the agent's wallet.",
			Parameters:  Object(map[string]*Schema{"asset_id": String("asset")}, "asset_id"),
		}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "get_balance", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"asset_id":"eth"}`, string(resp.ToolCalls[0].Arguments))

	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
	tools := body["tools"].([]interface{})
	fn := tools[0].(map[string]interface{})["function"].(map[string]interface{})
	assert.Equal(t, "get_balance", fn["name"])
	assert.Nil(t, body["response_format"])
}

func TestOpenAIProviderJSONMode(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(config.LLMConfig{OpenAIAPIKey: "test", OpenAIBaseURL: srv.URL + "/v1"})
	out, err := Complete(context.Background(), p, "", "answer in json", true)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	format := body["response_format"].(map[string]interface{})
	assert.Equal(t, "json_object", format["type"])
}

func TestGeminiContentsGroupToolResults(t *testing.T) {
	contents, err := toGeminiContents([]Message{
		{Role: RoleUser, Content: "send 1 eth"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{
			{ID: "a", Name: "get_balance", Arguments: json.RawMessage(`{"asset_id":"eth"}`)},
			{ID: "b", Name: "transfer_asset", Arguments: json.RawMessage(`{"amount":1}`)},
		}},
		{Role: RoleTool, ToolCallID: "a", Name: "get_balance", Content: "Current balance of eth: 2"},
		{Role: RoleTool, ToolCallID: "b", Name: "transfer_asset", Content: "Transferred 1 eth"},
		{Role: RoleAssistant, Content: "done"},
	})
	require.NoError(t, err)
	require.Len(t, contents, 4)

	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	require.Len(t, contents[1].Parts, 2)
	assert.Equal(t, "transfer_asset", contents[1].Parts[1].FunctionCall.Name)
	assert.Equal(t, float64(1), contents[1].Parts[1].FunctionCall.Args["amount"])

	require.Len(t, contents[2].Parts, 2)
	assert.Equal(t, "get_balance", contents[2].Parts[0].FunctionResponse.Name)
	assert.Equal(t, "Transferred 1 eth", contents[2].Parts[1].FunctionResponse.Response["result"])
	assert.Equal(t, "done", contents[3].Parts[0].Text)
}

func TestGeminiSchema(t *testing.T) {
	s := toGeminiSchema(Object(map[string]*Schema{
		"amount": Number("how much"),
		"tags":   Array("labels", String("")),
	}, "amount"))
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"amount"}, s.Required)
	assert.Equal(t, genai.TypeNumber, s.Properties["amount"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["tags"].Items.Type)
}
