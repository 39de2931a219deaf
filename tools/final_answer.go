package tools

import "context"

// finalAnswerTool is the distinguished built-in tool. Calling it returns its
// single argument verbatim as Result.Value; Invoke recognizes the name and
// marks the resulting ToolCallCompleted event is_final.
type finalAnswerTool struct{}

// NewFinalAnswerTool constructs the built-in final_answer tool. Registries
// that support tool-calling mode should register it alongside domain tools.
func NewFinalAnswerTool() Tool { return finalAnswerTool{} }

func (finalAnswerTool) Name() string        { return FinalAnswerToolName }
func (finalAnswerTool) Description() string { return "Return the final answer and end the run." }
func (finalAnswerTool) OutputType() string  { return "any" }

func (finalAnswerTool) InputSchema() []byte {
	return []byte(`{
		"type": "object",
		"properties": {"answer": {}},
		"required": ["answer"]
	}`)
}

func (finalAnswerTool) Call(_ context.Context, args map[string]any) (Result, error) {
	return Result{Value: args["answer"]}, nil
}
