package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConversation(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   []Turn
	}{
		{"empty", "", nil},
		{"formatted", FormatTurn("hi", "hello there"), []Turn{{Question: "hi", Answer: "hello there"}}},
		{"answer keeps separator", "Question:a,answer: b,answer: c", []Turn{{Question: "a", Answer: "b,answer: c"}}},
		{"no separator", "Question:dangling", []Turn{{Raw: "Question:dangling"}}},
		{"unrelated text", "hello", nil},
		{"json list", `[{"question":"q1","answer":"a1"},{"question":"q2","answer":"a2"}]`,
			[]Turn{{Question: "q1", Answer: "a1"}, {Question: "q2", Answer: "a2"}}},
		{"broken json list", `[{"question":]`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseConversation(tt.stored))
		})
	}
}

func TestAgentConfigAcceptsLegacyConcepts(t *testing.T) {
	var cfg AgentConfig
	require.NoError(t, json.Unmarshal([]byte(`{"Personality":"Calm. ","Concepts":"defi, nfts","Tools":["Calculator"]}`), &cfg))
	assert.Equal(t, StringList{"defi", "nfts"}, cfg.Concepts)
	assert.Equal(t, "Calm. You have very in depth knowledge in the fields of defi, nfts", cfg.Description())
}

func TestChatAuthorization(t *testing.T) {
	auth := ChatAuthorization{Creator: "0xabc", Members: []string{"0xdef"}}
	assert.True(t, auth.Allows("0xABC"))
	assert.True(t, auth.IsCreator("0xAbc"))
	assert.True(t, auth.Allows("0xdef"))
	assert.False(t, auth.IsCreator("0xdef"))
	assert.False(t, auth.Allows("0x123"))
}

func TestWalletRecordAddress(t *testing.T) {
	assert.Equal(t, "0x1", WalletRecord{Addresses: []AddressRecord{{AddressID: "0x1"}}, DefaultAddressID: "0x2"}.Address())
	assert.Equal(t, "0x2", WalletRecord{DefaultAddressID: "0x2"}.Address())
}
