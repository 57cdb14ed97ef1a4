package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/NethermindEth/aigent-launchpad/logger"
	"go.uber.org/zap"
)

const converterSystem = "You are a highly skilled web3 developer with expertise in transitioning web2 applications to web3. " +
	"Your role is to critically assess the web2 application and recommend essential web3 functionalities only when they are truly needed."

// TaskGroup is one web3 task and the functions needed to carry it out
type TaskGroup struct {
	Task      string   `json:"task"`
	Flow      string   `json:"flow"`
	Functions []string `json:"function"`
}

type taskPlan struct {
	Functions []TaskGroup `json:"functions"`
}

// Web3Converter plans which wallet functions a web2 application needs
type Web3Converter struct {
	provider  Provider
	catalogue []ToolSpec
}

func NewWeb3Converter(provider Provider, catalogue []ToolSpec) *Web3Converter {
	return &Web3Converter{provider: provider, catalogue: catalogue}
}

// Convert returns one group per task. Unknown function names are removed and
// groups left without functions are skipped.
func (c *Web3Converter) Convert(ctx context.Context, description string) ([]TaskGroup, error) {
	var functions strings.Builder
	for _, f := range c.catalogue {
		fmt.Fprintf(&functions, "- %s: %s\n", f.Name, f.Description)
	}

	prompt := fmt.Sprintf(`You will receive a detailed description of a web2 application.
The current functionalities you can provide are:
%s
Evaluate the provided functions and select only those that are necessary for enhancing the web2 application with web3 capabilities.
Give the different tasks which can be implemented to bring web3; the function list of each task must contain every function needed for it.
If a task requires only one function, provide just that function's name in the list.
Use "flow" to explain how the functions are integrated into the application.

Return a JSON object:
{"functions": [{"task": "...", "flow": "...", "function": ["function_name"]}]}

Application:
%s`, functions.String(), description)

	answer, err := Complete(ctx, c.provider, converterSystem, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("web3 conversion: %w", err)
	}
	var plan taskPlan
	if err := DecodeJSON(answer, &plan); err != nil {
		return nil, fmt.Errorf("web3 conversion: %w", err)
	}

	var groups []TaskGroup
	for _, g := range plan.Functions {
		var known []string
		for _, name := range g.Functions {
			if c.known(name) {
				known = append(known, strings.TrimSpace(name))
			} else {
				logger.L().Info("dropping unknown web3 function", zap.String("function", name), zap.String("task", g.Task))
			}
		}
		if len(known) == 0 {
			continue
		}
		g.Functions = known
		groups = append(groups, g)
	}
	return groups, nil
}

func (c *Web3Converter) known(name string) bool {
	name = strings.TrimSpace(name)
	for _, f := range c.catalogue {
		if f.Name == name {
			return true
		}
	}
	return false
}
