// Package scheduler implements the ReAct loop: the planning/action/
// evaluation cycle that drives a run from a task string to a RunResult,
// dispatching each iteration through either tool-calling or code-action
// mode and enforcing the core's termination-ordering rules.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agentcore/reactor/agenterr"
	"github.com/agentcore/reactor/config"
	"github.com/agentcore/reactor/control"
	"github.com/agentcore/reactor/hooks"
	"github.com/agentcore/reactor/memory"
	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/reminder"
	"github.com/agentcore/reactor/resilience"
	"github.com/agentcore/reactor/sandbox"
	"github.com/agentcore/reactor/step"
	"github.com/agentcore/reactor/telemetry"
	"github.com/agentcore/reactor/tools"
	"github.com/google/uuid"
)

// Scheduler orchestrates one top-level run(task) invocation: it owns the
// memory accumulator, drives Model.Generate calls through the resilience
// layer, routes the model's response through tool-calling or code-action
// mode, and applies the termination-ordering rules from the core's
// scheduler design.
type Scheduler struct {
	Config config.AgentConfig

	// Model is the primary provider; Alternatives are tried in order, once
	// each, after Model exhausts its retries on a non-authentication error.
	Model        Model
	Alternatives []Model

	Tools *tools.Registry
	Bus   *hooks.Bus
	Mode  Mode

	// Resilience wraps Model.Generate. A nil Resilience falls back to a
	// fresh default-policy instance.
	Resilience *resilience.Resilient

	// Planner and Evaluator are optional phase callbacks; nil disables the
	// corresponding phase regardless of Config.PlanningInterval /
	// EvaluationEnabled.
	Planner           Planner
	Evaluator         Evaluator
	EvaluationEnabled bool
	// EvaluationInterval mirrors PlanningInterval's semantics: 0 evaluates
	// after every action step; a positive interval evaluates every N steps.
	EvaluationInterval int

	// Sanitizer runs over CustomInstructions (once, at BuildSystemPrompt
	// time) and over every rendered observation before it is placed in an
	// emitted event. Defaults to DefaultSanitizer.
	Sanitizer Sanitizer
	// PromptInjectionFatal, when true, makes a sanitizer hit terminate the
	// run with outcome error instead of only emitting ErrorOccurred.
	PromptInjectionFatal bool

	// Deadline bounds the run's total wall-clock time. Zero means no
	// deadline.
	Deadline time.Duration

	// Control is installed into every model/tool/sandbox call's context via
	// control.WithBridge, so a tool or code action can issue a user_input,
	// confirmation, or sub_agent_query control request. Nil means no parent
	// is attached; such requests fail with agenterr.KindEnvironment.
	Control *control.Bridge

	// SandboxVariables are the injected, read-only values a code action can
	// reference by name (§4.5). Only consulted in ModeCodeAction.
	SandboxVariables map[string]any
	SandboxLimits    sandbox.Limits

	// Logger receives swallowed phase errors and run-lifecycle diagnostics.
	// Nil defaults to the no-op logger.
	Logger telemetry.Logger
	// Tracer wraps each scheduler turn and tool call in a span. Nil defaults
	// to the no-op tracer.
	Tracer telemetry.Tracer

	// Reminders are evaluated against a per-run reminder.Tracker and, when
	// admitted, injected as <system-reminder> guidance ahead of the next
	// Model.Generate call (SPEC_FULL.md's supplemented system-reminder
	// injection feature). Nil means no reminders are configured.
	Reminders []reminder.Reminder

	// RunID correlates every event this run emits. Generated if empty.
	RunID string

	// clock exists so tests can inject a deterministic time source; nil uses
	// time.Now.
	clock func() time.Time

	// res caches the lazily-constructed default resilience layer so circuit
	// breaker state survives across turns of the same run.
	res *resilience.Resilient
}

func (s *Scheduler) now() time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now()
}

func (s *Scheduler) resilience() *resilience.Resilient {
	if s.Resilience != nil {
		return s.Resilience
	}
	if s.res == nil {
		s.res = resilience.NewResilient(s.Bus)
	}
	return s.res
}

func (s *Scheduler) sanitizer() Sanitizer {
	if s.Sanitizer != nil {
		return s.Sanitizer
	}
	return DefaultSanitizer
}

func (s *Scheduler) logger() telemetry.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return telemetry.NewNoopLogger()
}

func (s *Scheduler) tracer() telemetry.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return telemetry.NewNoopTracer()
}

// Run executes the ReAct loop for task (with optional images) to
// completion, returning the terminal RunResult. Run never panics; every
// internal failure is reified either as an ActionStep error (tool/sandbox
// failures, per §7's ToolExecution/Interpreter propagation policy) or as a
// terminal outcome.
func (s *Scheduler) Run(ctx context.Context, task string, images [][]byte) (RunResult, error) {
	runID := s.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	if s.Control != nil {
		ctx = control.WithBridge(ctx, s.Control)
	}

	rc := step.Start()

	sysPrompt := BuildSystemPrompt(s.Tools, s.Config.CustomInstructions, s.Mode)
	if starters := s.runStartReminders(); len(starters) > 0 {
		sysPrompt = sysPrompt + "\n\n" + strings.Join(starters, "\n")
	}
	mem := memory.New(sysPrompt)
	if err := mem.AddTask(task, images); err != nil {
		return RunResult{}, err
	}

	if _, flagged := s.sanitizer()(s.Config.CustomInstructions); flagged {
		s.emitError(ctx, runID, "prompt_injection", "custom_instructions flagged by sanitizer", !s.PromptInjectionFatal)
		if s.PromptInjectionFatal {
			return s.terminate(ctx, runID, rc, mem, step.OutcomeError, nil)
		}
	}
	if s.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Deadline)
		defer cancel()
	}

	havePlan := false
	tracker := reminder.NewTracker()
	for {
		if rc.StepNumber > s.Config.MaxSteps {
			return s.terminate(ctx, runID, rc, mem, step.OutcomeMaxStepsReached, nil)
		}
		// A cancelled run interrupts at the next suspension point at the
		// latest; the outcome is fixed by what cancelled it — the run
		// deadline maps to timeout, a user-initiated cancel to error.
		if err := ctx.Err(); err != nil {
			return s.terminate(ctx, runID, rc, mem, cancelOutcome(err), nil)
		}

		if s.Planner != nil && duePlanning(s.Config, rc.StepNumber, havePlan) {
			planStep, usage, err := s.runPlanning(ctx, mem)
			if err != nil {
				s.emitError(ctx, runID, "planning", err.Error(), true)
			} else {
				mem.Append(planStep)
				rc = rc.AddTokens(usage)
				havePlan = true
			}
		}

		messages, err := mem.RenderMessages(s.Config.Memory.ToMemoryConfig())
		if err != nil {
			return s.terminate(ctx, runID, rc, mem, step.OutcomeError, nil)
		}
		messages = append(messages, s.turnReminderMessages(tracker, rc.StepNumber)...)

		action, isFinal, fatalErr := s.runTurn(ctx, runID, rc, messages)
		if fatalErr != nil {
			if errors.Is(fatalErr, context.DeadlineExceeded) || errors.Is(fatalErr, context.Canceled) {
				return s.terminate(ctx, runID, rc, mem, cancelOutcome(fatalErr), nil)
			}
			s.emitError(ctx, runID, "generation", fatalErr.Error(), false)
			return s.terminate(ctx, runID, rc, mem, step.OutcomeError, nil)
		}
		mem.Append(*action)
		rc = rc.AddTokens(action.ActionTokenUsage)
		s.Bus.Publish(ctx, hooks.NewStepCompletedEvent(uuid.NewString(), runID, action.StepNumber, turnOutcome(*action), action.Observations))
		if isFinal {
			mem.Append(step.NewFinalAnswer(action.ActionOutput))
			return s.terminate(ctx, runID, rc, mem, step.OutcomeSuccess, action.ActionOutput)
		}

		if s.EvaluationEnabled && s.Evaluator != nil && dueEvaluation(s.EvaluationInterval, rc.StepNumber) {
			evalStep, err := s.runEvaluation(ctx, mem)
			if err != nil {
				s.emitError(ctx, runID, "evaluation", err.Error(), true)
			} else {
				mem.Append(evalStep)
				s.Bus.Publish(ctx, hooks.NewEvaluationCompletedEvent(uuid.NewString(), runID, rc.StepNumber, evalStep.EvalStatus, evalStep.EvalAnswer, reasoningText(evalStep.EvalReasoning)))
				switch evalStep.EvalStatus {
				case step.EvaluationGoalAchieved:
					return s.terminate(ctx, runID, rc, mem, step.OutcomeSuccess, evalStep.EvalAnswer)
				case step.EvaluationStuck:
					return s.terminate(ctx, runID, rc, mem, step.OutcomeFailure, nil)
				}
			}
		}

		rc = rc.Advance()
	}
}

// cancelOutcome maps a context error to the run outcome fixed by what
// cancelled it: a deadline becomes timeout, anything else error.
func cancelOutcome(err error) step.Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return step.OutcomeTimeout
	}
	return step.OutcomeError
}

// dueEvaluation mirrors duePlanning's interval semantics for the evaluation
// phase: 0 evaluates after every step, N evaluates every N steps.
func dueEvaluation(interval, stepNumber int) bool {
	if interval <= 0 {
		return true
	}
	return stepNumber%interval == 0
}

func turnOutcome(a step.Step) step.Outcome {
	if a.IsFinalAnswer {
		return step.OutcomeFinalAnswer
	}
	if a.ActionError != nil {
		return step.OutcomePartial
	}
	return step.OutcomeSuccess
}

func reasoningText(r *string) string {
	if r == nil {
		return ""
	}
	return *r
}

func (s *Scheduler) emitError(ctx context.Context, runID, class, msg string, recoverable bool) {
	s.logger().Warn(ctx, "scheduler: error reified", "run_id", runID, "class", class, "error", msg, "recoverable", recoverable)
	s.Bus.Publish(ctx, hooks.NewErrorOccurredEvent(uuid.NewString(), runID, class, msg, nil, recoverable))
}

func (s *Scheduler) terminate(ctx context.Context, runID string, rc step.RunContext, mem *memory.AgentMemory, outcome step.Outcome, output any) (RunResult, error) {
	rc = rc.Finish(rc.Timing.Stop(s.now()))
	steps := mem.Steps()
	if outcome.Completed() && output == nil {
		output = lastActionOutput(steps)
	}
	s.logger().Info(ctx, "scheduler: run terminated", "run_id", runID, "outcome", string(outcome), "steps", countActionSteps(steps))
	s.Bus.Publish(ctx, hooks.NewTaskCompletedEvent(uuid.NewString(), runID, outcome, output, countActionSteps(steps)))
	return RunResult{
		Output:     output,
		Outcome:    outcome,
		Steps:      append([]step.Step{mem.SystemPrompt()}, steps...),
		TokenUsage: rc.TotalTokens,
		Timing:     rc.Timing,
	}, nil
}

func lastActionOutput(steps []step.Step) any {
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].Kind == step.KindAction && steps[i].IsFinalAnswer {
			return steps[i].ActionOutput
		}
		if steps[i].Kind == step.KindFinalAnswer {
			return steps[i].FinalOutput
		}
	}
	return nil
}

func countActionSteps(steps []step.Step) int {
	n := 0
	for _, s := range steps {
		if s.Kind == step.KindAction {
			n++
		}
	}
	return n
}

func (s *Scheduler) runPlanning(ctx context.Context, mem *memory.AgentMemory) (step.Step, message.TokenUsage, error) {
	messages, err := mem.RenderMessages(s.Config.Memory.ToMemoryConfig())
	if err != nil {
		return step.Step{}, message.Zero(), err
	}
	start := s.now()
	planText, usage, err := s.Planner(ctx, append(messages, message.NewUser("Produce a short plan for the remaining steps.", nil)))
	if err != nil {
		return step.Step{}, message.Zero(), agenterr.Wrap(agenterr.KindGeneration, "scheduler: planning phase failed", err)
	}
	timing := message.Timing{Start: start}.Stop(s.now())
	return step.NewPlanning(planText, usage, timing), usage, nil
}

func (s *Scheduler) runEvaluation(ctx context.Context, mem *memory.AgentMemory) (step.Step, error) {
	messages, err := mem.RenderMessages(s.Config.Memory.ToMemoryConfig())
	if err != nil {
		return step.Step{}, err
	}
	result, err := s.Evaluator(ctx, append(messages, message.NewUser("Classify the run: goal_achieved, continue, or stuck.", nil)))
	if err != nil {
		return step.Step{}, agenterr.Wrap(agenterr.KindGeneration, "scheduler: evaluation phase failed", err)
	}
	return step.NewEvaluation(result.Status, result.Answer, result.Reasoning, result.Confidence), nil
}
