// Package scheduler implements the ReAct loop: the planning/action/
// evaluation cycle that drives a run from a task string to a RunResult,
// dispatching each iteration through either tool-calling or code-action
// mode and enforcing the core's termination-ordering rules.
package scheduler

import (
	"context"
	"encoding/json"

	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/tools"
)

// Model is the provider contract the scheduler calls through the resilience
// layer. Implementations adapt a concrete provider SDK to this interface.
type Model struct {
	ID       string
	Generate func(ctx context.Context, req GenerateRequest) (message.ChatMessage, error)
}

// GenerateRequest bundles one Generate call's inputs.
type GenerateRequest struct {
	Messages    []message.ChatMessage
	Tools       []message.ToolSchema
	Stop        []string
	Temperature float64
	MaxTokens   *int
}

// SchemasFromRegistry builds the []message.ToolSchema a Generate call
// advertises, derived from each registered Tool's input_schema.
func SchemasFromRegistry(reg *tools.Registry) []message.ToolSchema {
	schemas := reg.Schemas()
	out := make([]message.ToolSchema, 0, len(schemas))
	for name, t := range schemas {
		var params map[string]any
		if raw := t.InputSchema(); len(raw) > 0 {
			_ = json.Unmarshal(raw, &params)
		}
		out = append(out, message.ToolSchema{Name: name, Description: t.Description(), Parameters: params})
	}
	return out
}
