package scheduler

import (
	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/step"
)

// RunResult is the caller-visible outcome of a scheduler run.
type RunResult struct {
	Output     any
	Outcome    step.Outcome
	Steps      []step.Step
	TokenUsage message.TokenUsage
	Timing     message.Timing
}
