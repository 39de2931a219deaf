package tools

import (
	"context"
	"fmt"

	"github.com/agentcore/reactor/agenterr"
	"github.com/agentcore/reactor/hooks"
	"github.com/google/uuid"
)

// TruncationMarker is appended to an observation rendering that exceeded its
// configured length budget.
const TruncationMarker = "...[truncated]"

// DefaultMaxObservationLen bounds observation length when InvokeOptions omits
// one.
const DefaultMaxObservationLen = 4000

// Invocation is the outcome of a single Invoke call: the observation text to
// fold into memory, the tool's raw return value, and whether the tool was
// final_answer.
type Invocation struct {
	Observation string
	Value       any
	IsFinal     bool
	Bounds      *Bounds
}

// InvokeOptions configures a single Invoke call.
type InvokeOptions struct {
	// MaxObservationLen bounds the rendered observation's length. Zero uses
	// DefaultMaxObservationLen.
	MaxObservationLen int
}

// Invoke runs the registry's five-step invocation contract for one tool
// call: validate arguments, emit ToolCallRequested, call the tool (wrapping
// any error as an agenterr error of KindToolExecution), render a bounded
// observation, and emit
// ToolCallCompleted with is_final set iff the tool is final_answer.
func Invoke(ctx context.Context, reg *Registry, bus *hooks.Bus, runID, toolName string, args map[string]any, opts InvokeOptions) (Invocation, error) {
	requestID := uuid.NewString()

	t, err := reg.Resolve(toolName)
	if err != nil {
		return Invocation{}, err
	}

	if err := validateArgs(t.InputSchema(), args); err != nil {
		return Invocation{}, err
	}

	bus.Publish(ctx, hooks.NewToolCallRequestedEvent(uuid.NewString(), requestID, toolName, args))

	result, callErr := t.Call(ctx, args)
	if callErr != nil {
		toolErr := agenterr.Wrap(agenterr.KindToolExecution,
			fmt.Sprintf("tool %q: %s", toolName, callErr.Error()), callErr)
		bus.Publish(ctx, hooks.NewToolCallCompletedEvent(uuid.NewString(), requestID, nil, toolErr.Error(), false))
		return Invocation{}, toolErr
	}

	maxLen := opts.MaxObservationLen
	if maxLen <= 0 {
		maxLen = DefaultMaxObservationLen
	}
	observation := renderObservation(result, maxLen)

	isFinal := toolName == FinalAnswerToolName
	bus.Publish(ctx, hooks.NewToolCallCompletedEvent(uuid.NewString(), requestID, result.Value, observation, isFinal))

	inv := Invocation{Observation: observation, Value: result.Value, IsFinal: isFinal}
	if b, ok := result.Value.(BoundedResult); ok {
		bounds := b.Bounds()
		inv.Bounds = &bounds
	}
	return inv, nil
}

// renderObservation produces the short textual rendering of a tool's result
// fed back into memory as an observation, bounded to maxLen bytes.
func renderObservation(result Result, maxLen int) string {
	text := result.Observation
	if text == "" {
		text = fmt.Sprint(result.Value)
	}
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen - len(TruncationMarker)
	if cut < 0 {
		cut = 0
	}
	return text[:cut] + TruncationMarker
}
