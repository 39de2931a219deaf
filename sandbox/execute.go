package sandbox

import (
	"context"
	"time"

	"github.com/agentcore/reactor/agenterr"
)

// Execute runs the executor's full state machine over a raw model response:
// extract the fenced code block, validate it, execute it under limits, and
// report an ExecutionOutcome. It never panics and never blocks past
// limits.Timeout.
func Execute(ctx context.Context, raw string, authorizedImports []string, env *Environment, limits Limits) ExecutionOutcome {
	limits = limits.normalized()
	start := time.Now()

	code, err := ExtractCodeBlock(raw)
	if err != nil {
		return ExecutionOutcome{State: OutcomeError, Duration: time.Since(start), Err: err}
	}

	if err := Validate(code, authorizedImports); err != nil {
		return ExecutionOutcome{State: OutcomeError, Duration: time.Since(start), Err: err}
	}

	execCtx, cancel := context.WithTimeout(ctx, limits.Timeout)
	defer cancel()

	in := newInterpreter(env, limits.MaxOperations)
	value, isFinal, err := in.run(execCtx, code)
	logs := in.logs.String()
	duration := time.Since(start)

	if err != nil {
		if execCtx.Err() != nil && ctx.Err() == nil {
			err = agenterr.Wrap(agenterr.KindTimeout, "sandbox: wall-clock timeout exceeded", err)
		}
		return ExecutionOutcome{State: OutcomeError, Logs: logs, Duration: duration, Err: err}
	}
	if isFinal {
		return ExecutionOutcome{State: OutcomeFinalAnswer, Value: value, Logs: logs, Duration: duration}
	}
	return ExecutionOutcome{State: OutcomeSuccess, Value: value, Logs: logs, Duration: duration}
}
