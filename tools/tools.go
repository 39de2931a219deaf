// Package tools implements the tool registry and the five-step invocation
// contract: schema validation, request event, call, observation rendering,
// completion event.
package tools

import (
	"context"

	"github.com/agentcore/reactor/agenterr"
)

// Bounds describes how a tool result has been bounded relative to the full
// underlying data set, so callers can surface truncation metadata without
// re-inspecting tool-specific result fields.
type Bounds struct {
	Returned       int
	Total          *int
	Truncated      bool
	RefinementHint string
}

// BoundedResult is implemented by tool result values that know their own
// boundedness. Invoke copies its Bounds into Invocation.Bounds; the rendered
// observation text does not include them.
type BoundedResult interface {
	Bounds() Bounds
}

// Result is what a Tool.Call returns: the raw value (passed back to the
// caller and, for final_answer, surfaced as the run's output) plus an
// optional human/model-readable rendering override. When Observation is
// empty, the invocation pipeline derives one from Value.
type Result struct {
	Value       any
	Observation string
}

// Tool is anything callable by name from model-issued tool calls or
// sandboxed code actions.
type Tool interface {
	Name() string
	Description() string
	// InputSchema returns a JSON Schema document (as raw bytes) describing
	// the named parameters, their types, and which are required. A nil or
	// empty schema disables argument validation for this tool.
	InputSchema() []byte
	// OutputType names the shape of Result.Value ("string", "number",
	// "object", "any").
	OutputType() string
	Call(ctx context.Context, args map[string]any) (Result, error)
}

// FinalAnswerToolName is the distinguished built-in tool name. Invoking it
// ends a run with outcome success and the call's single argument as output.
const FinalAnswerToolName = "final_answer"

// Registry resolves tool names (and the web_search alias) to Tool
// implementations.
type Registry struct {
	tools             map[string]Tool
	webSearchProvider string
}

// NewRegistry constructs an empty Registry. webSearchProvider names the tool
// that the "web_search" alias resolves to; pass "" if no provider is
// configured.
func NewRegistry(webSearchProvider string) *Registry {
	return &Registry{tools: make(map[string]Tool), webSearchProvider: webSearchProvider}
}

// Register adds t to the registry, keyed by t.Name(). A later call with the
// same name replaces the earlier registration.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Resolve looks up a tool by name, following the web_search alias to its
// configured preferred provider.
func (r *Registry) Resolve(name string) (Tool, error) {
	if name == "web_search" && r.webSearchProvider != "" {
		name = r.webSearchProvider
	}
	t, ok := r.tools[name]
	if !ok {
		return nil, agenterr.Newf(agenterr.KindToolExecution, "tools: unknown tool %q", name)
	}
	return t, nil
}

// Names returns every registered tool name, for building the system prompt's
// tool catalog.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.tools))
	for n := range r.tools {
		out = append(out, n)
	}
	return out
}

// Schemas returns every registered tool's name, description, and schema, for
// building the system prompt's tool catalog.
func (r *Registry) Schemas() map[string]Tool {
	out := make(map[string]Tool, len(r.tools))
	for n, t := range r.tools {
		out[n] = t
	}
	return out
}
