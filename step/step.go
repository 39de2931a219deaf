// Package step defines the Step sum type (the per-iteration record the
// scheduler appends to memory), the Outcome enum, and RunContext, the
// per-run accumulator of step number, token usage, and timing.
package step

import (
	"github.com/agentcore/reactor/message"
)

// Kind discriminates the Step sum type. Kind is part of the public contract:
// the tag-to-fields mapping below must stay stable.
type Kind string

const (
	KindSystemPrompt Kind = "system_prompt"
	KindTask         Kind = "task"
	KindPlanning     Kind = "planning"
	KindAction       Kind = "action"
	KindEvaluation   Kind = "evaluation"
	KindFinalAnswer  Kind = "final_answer"
)

// EvaluationStatus is the metacognitive classification produced by an
// evaluation phase.
type EvaluationStatus string

const (
	EvaluationGoalAchieved EvaluationStatus = "goal_achieved"
	EvaluationContinue     EvaluationStatus = "continue"
	EvaluationStuck        EvaluationStatus = "stuck"
)

// CodeAction captures the fenced code block extracted from an assistant
// response in code-action mode, alongside the outcome of running it.
type CodeAction struct {
	Code  string
	State string // mirrors sandbox.State without importing the sandbox package
}

// Step is a tagged-union value: exactly one of the per-variant fields below
// is meaningful, selected by Kind. The fields of the other variants hold
// their zero values; nothing guards against reading them, so callers switch
// on Kind first, mirroring exhaustive dispatch over a sealed type.
type Step struct {
	Kind Kind

	// SystemPromptStep
	SystemPromptText string

	// TaskStep
	TaskText   string
	TaskImages [][]byte

	// PlanningStep
	PlanText        string
	PlanTokenUsage  message.TokenUsage
	PlanTiming      message.Timing

	// ActionStep
	StepNumber        int
	ActionTiming      message.Timing
	AssistantMessage  message.ChatMessage
	ToolCalls         []message.ToolCall
	CodeActionVal     *CodeAction
	Observations      []string
	ActionOutput      any
	ActionError       error
	ActionTokenUsage  message.TokenUsage
	IsFinalAnswer     bool
	ReasoningContent  *string
	TraceID           string
	ParentTraceID     *string

	// EvaluationStep
	EvalStatus     EvaluationStatus
	EvalAnswer     any
	EvalReasoning  *string
	EvalConfidence *float64

	// FinalAnswerStep
	FinalOutput any
}

// NewSystemPrompt constructs a SystemPromptStep.
func NewSystemPrompt(text string) Step {
	return Step{Kind: KindSystemPrompt, SystemPromptText: text}
}

// NewTask constructs a TaskStep.
func NewTask(text string, images [][]byte) Step {
	return Step{Kind: KindTask, TaskText: text, TaskImages: images}
}

// NewPlanning constructs a PlanningStep.
func NewPlanning(plan string, usage message.TokenUsage, timing message.Timing) Step {
	return Step{Kind: KindPlanning, PlanText: plan, PlanTokenUsage: usage, PlanTiming: timing}
}

// ActionStepInput bundles the fields needed to construct an ActionStep; it
// exists so the constructor signature does not grow unbounded as the action
// record's field count has grown.
type ActionStepInput struct {
	StepNumber       int
	Timing           message.Timing
	Assistant        message.ChatMessage
	ToolCalls        []message.ToolCall
	CodeAction       *CodeAction
	Observations     []string
	ActionOutput     any
	Error            error
	TokenUsage       message.TokenUsage
	IsFinalAnswer    bool
	ReasoningContent *string
	TraceID          string
	ParentTraceID    *string
}

// NewAction constructs an ActionStep from in.
func NewAction(in ActionStepInput) Step {
	return Step{
		Kind:             KindAction,
		StepNumber:       in.StepNumber,
		ActionTiming:     in.Timing,
		AssistantMessage: in.Assistant,
		ToolCalls:        in.ToolCalls,
		CodeActionVal:    in.CodeAction,
		Observations:     in.Observations,
		ActionOutput:     in.ActionOutput,
		ActionError:      in.Error,
		ActionTokenUsage: in.TokenUsage,
		IsFinalAnswer:    in.IsFinalAnswer,
		ReasoningContent: in.ReasoningContent,
		TraceID:          in.TraceID,
		ParentTraceID:    in.ParentTraceID,
	}
}

// NewEvaluation constructs an EvaluationStep.
func NewEvaluation(status EvaluationStatus, answer any, reasoning *string, confidence *float64) Step {
	return Step{Kind: KindEvaluation, EvalStatus: status, EvalAnswer: answer, EvalReasoning: reasoning, EvalConfidence: confidence}
}

// NewFinalAnswer constructs a FinalAnswerStep.
func NewFinalAnswer(output any) Step {
	return Step{Kind: KindFinalAnswer, FinalOutput: output}
}
