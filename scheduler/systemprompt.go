package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentcore/reactor/tools"
)

// BuildSystemPrompt renders the system prompt text from the tool catalog and
// the config's custom instructions. Tool names are sorted for a
// deterministic rendering (map iteration order is not stable).
func BuildSystemPrompt(reg *tools.Registry, customInstructions string, mode Mode) string {
	var b strings.Builder
	b.WriteString("You are an autonomous agent that solves tasks by reasoning step by step.\n")
	if mode == ModeCodeAction {
		b.WriteString("On each turn, respond with a single fenced code block that calls one or more of the tools below, then call final_answer(answer: ...) to end the run.\n")
	} else {
		b.WriteString("On each turn, call one or more of the tools below, then call final_answer to end the run.\n")
	}

	schemas := reg.Schemas()
	names := make([]string, 0, len(schemas))
	for n := range schemas {
		names = append(names, n)
	}
	sort.Strings(names)

	if len(names) > 0 {
		b.WriteString("\nAvailable tools:\n")
		for _, n := range names {
			t := schemas[n]
			fmt.Fprintf(&b, "- %s: %s\n", n, t.Description())
		}
	}

	if strings.TrimSpace(customInstructions) != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(customInstructions))
		b.WriteString("\n")
	}

	return b.String()
}
