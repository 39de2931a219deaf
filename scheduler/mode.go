package scheduler

// Mode selects how the scheduler interprets a model response: a structured
// list of named tool calls, or a fenced code block executed by the sandbox.
type Mode string

const (
	// ModeToolCalling parses assistant.ToolCalls and routes each through the
	// tool registry.
	ModeToolCalling Mode = "tool_calling"
	// ModeCodeAction parses a fenced code block out of assistant.Content and
	// executes it in the sandbox.
	ModeCodeAction Mode = "code_action"
)
