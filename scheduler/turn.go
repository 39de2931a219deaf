package scheduler

import (
	"context"

	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/sandbox"
	"github.com/agentcore/reactor/step"
	"github.com/agentcore/reactor/tools"
	"github.com/google/uuid"
)

// runTurn drives exactly one ReAct iteration: a resilient Model.Generate
// call followed by tool-calling or code-action dispatch. It returns the
// resulting ActionStep and whether it produced the final answer. A non-nil
// fatalErr means Model.Generate was unrecoverable (retries and failover
// exhausted, or an authentication error) — the caller terminates the run
// with outcome error rather than reifying it into the step, since no model
// output exists to build one from.
func (s *Scheduler) runTurn(ctx context.Context, runID string, rc step.RunContext, messages []message.ChatMessage) (action *step.Step, isFinal bool, fatalErr error) {
	ctx, span := s.tracer().Start(ctx, "scheduler.turn")
	defer span.End()
	start := s.now()

	modelsByID := map[string]Model{s.Model.ID: s.Model}
	altIDs := make([]string, 0, len(s.Alternatives))
	for _, m := range s.Alternatives {
		modelsByID[m.ID] = m
		altIDs = append(altIDs, m.ID)
	}

	var assistant message.ChatMessage
	var genTools []message.ToolSchema
	if s.Mode == ModeToolCalling {
		genTools = SchemasFromRegistry(s.Tools)
	}

	callErr := s.resilience().Call(ctx, s.Model.ID, altIDs, func(ctx context.Context, modelID string) error {
		m := modelsByID[modelID]
		resp, err := m.Generate(ctx, GenerateRequest{
			Messages:    messages,
			Tools:       genTools,
			Temperature: s.Config.Model.Temperature,
		})
		if err != nil {
			return err
		}
		assistant = resp
		return nil
	})
	if callErr != nil {
		span.RecordError(callErr)
		return nil, false, callErr
	}

	traceID := uuid.NewString()
	var codeAction *step.CodeAction
	var observations []string
	var actionOutput any
	var actionErr error
	var toolCalls []message.ToolCall

	switch s.Mode {
	case ModeCodeAction:
		raw := ""
		if assistant.Content != nil {
			raw = *assistant.Content
		}
		env := &sandbox.Environment{Variables: s.SandboxVariables, Tools: s.Tools, Bus: s.Bus, RunID: runID}
		execCtx, execSpan := s.tracer().Start(ctx, "sandbox.execute")
		out := sandbox.Execute(execCtx, raw, s.Config.AuthorizedImports, env, s.SandboxLimits)
		if out.Err != nil {
			execSpan.RecordError(out.Err)
		}
		execSpan.End()
		codeAction = &step.CodeAction{Code: raw, State: string(out.State)}
		if out.Logs != "" {
			observations = append(observations, out.Logs)
		}
		switch out.State {
		case sandbox.OutcomeFinalAnswer:
			isFinal = true
			actionOutput = out.Value
		case sandbox.OutcomeSuccess:
			actionOutput = out.Value
		case sandbox.OutcomeError:
			actionErr = out.Err
			observations = append(observations, sanitizeObservation(s, out.Err.Error()))
		}
	default: // ModeToolCalling
		toolCalls = assistant.ToolCalls
		for _, tc := range toolCalls {
			// Tool calls ride the same resilience layer as model calls,
			// keyed by tool name: transient and rate-limit failures are
			// retried, everything else is reified into the observation.
			var inv tools.Invocation
			toolCtx, toolSpan := s.tracer().Start(ctx, "tool.call")
			err := s.resilience().Call(toolCtx, tc.Name, nil, func(ctx context.Context, _ string) error {
				var callErr error
				inv, callErr = tools.Invoke(ctx, s.Tools, s.Bus, runID, tc.Name, tc.Arguments, tools.InvokeOptions{})
				return callErr
			})
			if err != nil {
				toolSpan.RecordError(err)
				toolSpan.End()
				actionErr = err
				observations = append(observations, sanitizeObservation(s, err.Error()))
				continue
			}
			toolSpan.End()
			observations = append(observations, sanitizeObservation(s, inv.Observation))
			if inv.IsFinal {
				isFinal = true
				actionOutput = inv.Value
			}
		}
	}

	usage := message.Zero()
	if assistant.TokenUsage != nil {
		usage = *assistant.TokenUsage
	}
	timing := message.Timing{Start: start}.Stop(s.now())

	a := step.NewAction(step.ActionStepInput{
		StepNumber:    rc.StepNumber,
		Timing:        timing,
		Assistant:     assistant,
		ToolCalls:     toolCalls,
		CodeAction:    codeAction,
		Observations:  observations,
		ActionOutput:  actionOutput,
		Error:         actionErr,
		TokenUsage:    usage,
		IsFinalAnswer: isFinal,
		TraceID:       traceID,
	})
	return &a, isFinal, nil
}

// sanitizeObservation applies the scheduler's sanitizer to a rendered
// observation before it is placed in memory/events, per spec §9 ("the core
// MUST call the sanitizer... on rendered observations before they are
// emitted in events"). A flagged observation is still returned so the
// protocol stays truthful about the forwarded tool output; the flag is
// reported alongside rather than silently redacted.
func sanitizeObservation(s *Scheduler, text string) string {
	clean, flagged := s.sanitizer()(text)
	if flagged {
		return clean + " [flagged: possible prompt injection]"
	}
	return clean
}
