package step

import "github.com/agentcore/reactor/message"

// RunContext is the per-run accumulator of step number, total tokens, and
// wall-clock timing. It is a frozen value: Advance/AddTokens/Finish return a
// new RunContext rather than mutating the receiver.
type RunContext struct {
	StepNumber  int
	TotalTokens message.TokenUsage
	Timing      message.Timing
}

// Start returns a fresh RunContext with StepNumber 1 and Timing started now.
func Start() RunContext {
	return RunContext{StepNumber: 1, Timing: message.StartNow()}
}

// Advance returns a copy of ctx with StepNumber incremented.
func (ctx RunContext) Advance() RunContext {
	ctx.StepNumber++
	return ctx
}

// AddTokens returns a copy of ctx with u accumulated into TotalTokens.
func (ctx RunContext) AddTokens(u message.TokenUsage) RunContext {
	ctx.TotalTokens = message.Add(ctx.TotalTokens, u)
	return ctx
}

// Finish returns a copy of ctx with Timing stopped at the current time via
// the caller-supplied Timing (so callers can use an injected clock in tests).
func (ctx RunContext) Finish(t message.Timing) RunContext {
	ctx.Timing = t
	return ctx
}
