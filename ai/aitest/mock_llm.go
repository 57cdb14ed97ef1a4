// Package aitest provides a deterministic chat provider for tests.
package aitest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/NethermindEth/aigent-launchpad/ai"
)

// MockLLM answers from a queue of scripted responses. When the queue is empty
// it falls back to keyword rules matched against the last user message.
type MockLLM struct {
	mu       sync.Mutex
	queue    []reply
	rules    []rule
	requests []ai.ChatRequest
	Fallback string
}

type reply struct {
	resp *ai.ChatResponse
	err  error
}

type rule struct {
	keyword string
	answer  string
}

func New() *MockLLM {
	return &MockLLM{}
}

// Text queues a plain text answer
func (m *MockLLM) Text(content string) *MockLLM {
	return m.push(&ai.ChatResponse{Content: content}, nil)
}

// JSON queues an answer holding v marshalled to JSON
func (m *MockLLM) JSON(v interface{}) *MockLLM {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return m.Text(string(data))
}

// Call queues a single tool call
func (m *MockLLM) Call(id, name string, args interface{}) *MockLLM {
	data, err := json.Marshal(args)
	if err != nil {
		panic(err)
	}
	return m.push(&ai.ChatResponse{ToolCalls: []ai.ToolCall{{ID: id, Name: name, Arguments: data}}}, nil)
}

// Fail queues an error
func (m *MockLLM) Fail(err error) *MockLLM {
	return m.push(nil, err)
}

// When answers every prompt containing keyword with answer
func (m *MockLLM) When(keyword, answer string) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, rule{keyword: keyword, answer: answer})
	return m
}

func (m *MockLLM) push(resp *ai.ChatResponse, err error) *MockLLM {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, reply{resp: resp, err: err})
	return m
}

func (m *MockLLM) Chat(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next.resp, next.err
	}

	prompt := lastUser(req.Messages)
	for _, r := range m.rules {
		if strings.Contains(prompt, r.keyword) {
			return &ai.ChatResponse{Content: r.answer}, nil
		}
	}
	if m.Fallback != "" {
		return &ai.ChatResponse{Content: m.Fallback}, nil
	}
	return nil, fmt.Errorf("mock llm: no scripted response for %q", prompt)
}

// Requests returns a copy of every request seen so far
func (m *MockLLM) Requests() []ai.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

func lastUser(msgs []ai.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == ai.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}
