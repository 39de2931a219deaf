// Package subagent implements sub-agent spawning, context inheritance, and
// the bidirectional parent/child control plane (§4.8): an Orchestrator
// spawns independent scheduler.Scheduler runs as children, filters them
// through the parent's SpawnConfig, and mediates their control requests
// through a control.Bridge. An AgentPool fans out independent sub-agent
// tasks with bounded concurrency and FIFO fairness.
package subagent

import (
	"fmt"
	"strings"

	"github.com/agentcore/reactor/config"
	"github.com/agentcore/reactor/memory"
	"github.com/agentcore/reactor/step"
)

// ObservationDelimiter separates concatenated parent observations under the
// "observations" context scope.
const ObservationDelimiter = "\n---\n"

// ExtractContext builds the task text a spawned child receives, per
// level's contract in spec §4.8:
//
//	task_only    -> only the task text (plus a marker naming the scope)
//	observations -> task plus every parent ActionStep's observations,
//	                joined by ObservationDelimiter
//	summary      -> task plus a synthesized summary of parent memory
//	                (system prompt + task + observations)
//	full         -> task plus the entire rendered parent message list
func ExtractContext(level config.ContextLevel, parentMemory *memory.AgentMemory, task string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", task)
	fmt.Fprintf(&b, "[inherited_scope: %s]", level)

	switch level {
	case config.ContextTaskOnly:
		return b.String(), nil

	case config.ContextObservations:
		obs := parentObservations(parentMemory)
		if len(obs) > 0 {
			b.WriteString("\n\nParent observations:\n")
			b.WriteString(strings.Join(obs, ObservationDelimiter))
		}
		return b.String(), nil

	case config.ContextSummary:
		b.WriteString("\n\nParent summary:\n")
		b.WriteString(parentMemory.SystemPrompt().SystemPromptText)
		b.WriteString("\n")
		for _, s := range parentMemory.Steps() {
			if s.Kind == step.KindTask {
				fmt.Fprintf(&b, "Task: %s\n", s.TaskText)
			}
		}
		obs := parentObservations(parentMemory)
		if len(obs) > 0 {
			b.WriteString("Observations: ")
			b.WriteString(strings.Join(obs, ObservationDelimiter))
		}
		return b.String(), nil

	case config.ContextFull:
		messages, err := parentMemory.RenderMessages(nil)
		if err != nil {
			return "", err
		}
		b.WriteString("\n\nFull parent history:\n")
		for _, m := range messages {
			if m.Content != nil {
				fmt.Fprintf(&b, "[%s] %s\n", m.Role, *m.Content)
			}
		}
		return b.String(), nil

	default:
		return "", fmt.Errorf("subagent: unknown context scope level %q", level)
	}
}

// parentObservations collects every ActionStep's observations from parent
// memory, in step order.
func parentObservations(parentMemory *memory.AgentMemory) []string {
	var out []string
	for _, s := range parentMemory.Steps() {
		if s.Kind == step.KindAction {
			out = append(out, s.Observations...)
		}
	}
	return out
}
