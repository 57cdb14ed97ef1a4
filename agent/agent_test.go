package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/NethermindEth/aigent-launchpad/ai"
	"github.com/NethermindEth/aigent-launchpad/ai/aitest"
	"github.com/NethermindEth/aigent-launchpad/wallet"
	"github.com/NethermindEth/aigent-launchpad/wallet/wallettest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesToolsUntilTextAnswer(t *testing.T) {
	w := wallettest.NewWallet(wallet.NetworkBaseSepolia)
	w.SetBalance("eth", 1.5)

	llm := aitest.New().
		Call("call_1", FuncGetBalance, map[string]string{"asset_id": "eth"}).
		Text("You have 1.5 ETH.")

	a := &Agent{
		Description:  "You are a helpful wallet.",
		Instructions: []string{"Always display the balance when asked."},
		Tools:        WalletTools(w).Select([]string{FuncGetBalance}),
		Provider:     llm,
	}
	out, err := a.Run(context.Background(), "what is my balance?")
	require.NoError(t, err)
	assert.Equal(t, "You have 1.5 ETH.", out)

	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "You are a helpful wallet.\n\n## Instructions\n1. Always display the balance when asked.", reqs[0].System)
	require.Len(t, reqs[0].Tools, 1)
	assert.Equal(t, FuncGetBalance, reqs[0].Tools[0].Name)

	second := reqs[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, ai.RoleAssistant, second[1].Role)
	assert.Equal(t, ai.RoleTool, second[2].Role)
	assert.Equal(t, "call_1", second[2].ToolCallID)
	assert.Equal(t, "Current balance of eth: 1.5", second[2].Content)
}

func TestRunReportsUnknownTool(t *testing.T) {
	llm := aitest.New().
		Call("c1", "launch_rocket", map[string]string{}).
		Text("I cannot do that.")

	out, err := (&Agent{Provider: llm}).Run(context.Background(), "launch")
	require.NoError(t, err)
	assert.Equal(t, "I cannot do that.", out)
	assert.Equal(t, "unknown tool: launch_rocket", llm.Requests()[1].Messages[2].Content)
}

func TestRunStopsAfterMaxTurns(t *testing.T) {
	llm := aitest.New()
	for i := 0; i < 3; i++ {
		llm.Call("c", "calculate", map[string]string{"expression": "1+1"})
	}
	k := NewToolkit(nil, "")
	a := &Agent{Provider: llm, Tools: k.Optional([]string{ToolCalculator}), MaxTurns: 2}

	_, err := a.Run(context.Background(), "loop forever")
	assert.ErrorIs(t, err, ErrMaxTurns)
	assert.Len(t, llm.Requests(), 2)
}

func TestRunPropagatesProviderError(t *testing.T) {
	llm := aitest.New().Fail(errors.New("rate limited"))
	_, err := (&Agent{Provider: llm}).Run(context.Background(), "hi")
	assert.EqualError(t, err, "rate limited")

	_, err = (&Agent{}).Run(context.Background(), "hi")
	assert.ErrorIs(t, err, ai.ErrNoProvider)
}

func TestRegistry(t *testing.T) {
	noop := func(context.Context, json.RawMessage) string { return "" }
	r := NewRegistry()
	require.NoError(t, r.Register(Tool{Name: "a", Handler: noop}))
	assert.Error(t, r.Register(Tool{Name: "a", Handler: noop}))
	assert.Error(t, r.Register(Tool{Name: "", Handler: noop}))
	assert.Error(t, r.Register(Tool{Name: "b"}))
	require.NoError(t, r.Register(Tool{Name: "b", Handler: noop}))

	selected := r.Select([]string{"b", "missing", "a", "b"})
	require.Len(t, selected, 2)
	assert.Equal(t, "b", selected[0].Name)
	assert.Equal(t, "a", selected[1].Name)
}
