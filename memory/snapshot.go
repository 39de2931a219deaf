package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/step"
)

// Record is the serializable form of a step.Step (§6.5's persisted memory
// format): every record carries its variant tag and public fields,
// timestamps as ISO-8601 strings, and token usages as {input, output,
// total}. A Store implementation persists a run's steps as an ordered
// sequence of Records.
type Record struct {
	Kind step.Kind `json:"kind"`

	SystemPromptText string `json:"system_prompt_text,omitempty"`

	TaskText   string   `json:"task_text,omitempty"`
	TaskImages [][]byte `json:"task_images,omitempty"`

	PlanText       string         `json:"plan_text,omitempty"`
	PlanTokenUsage *TokenUsageDTO `json:"plan_token_usage,omitempty"`
	PlanTiming     *TimingDTO     `json:"plan_timing,omitempty"`

	StepNumber       int                `json:"step_number,omitempty"`
	ActionTiming     *TimingDTO         `json:"action_timing,omitempty"`
	AssistantContent *string            `json:"assistant_content,omitempty"`
	ToolCalls        []message.ToolCall `json:"tool_calls,omitempty"`
	CodeActionCode   string             `json:"code_action_code,omitempty"`
	CodeActionState  string             `json:"code_action_state,omitempty"`
	Observations     []string           `json:"observations,omitempty"`
	ActionOutput     any                `json:"action_output,omitempty"`
	ActionErrorText  string             `json:"action_error,omitempty"`
	ActionTokenUsage *TokenUsageDTO     `json:"action_token_usage,omitempty"`
	IsFinalAnswer    bool               `json:"is_final_answer,omitempty"`
	ReasoningContent *string            `json:"reasoning_content,omitempty"`
	TraceID          string             `json:"trace_id,omitempty"`
	ParentTraceID    *string            `json:"parent_trace_id,omitempty"`

	EvalStatus     step.EvaluationStatus `json:"eval_status,omitempty"`
	EvalAnswer     any                   `json:"eval_answer,omitempty"`
	EvalReasoning  *string               `json:"eval_reasoning,omitempty"`
	EvalConfidence *float64              `json:"eval_confidence,omitempty"`

	FinalOutput any `json:"final_output,omitempty"`
}

// TokenUsageDTO is message.TokenUsage's persisted shape: {input, output,
// total}, matching §6.5 verbatim.
type TokenUsageDTO struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

func tokenUsageDTO(u message.TokenUsage) *TokenUsageDTO {
	return &TokenUsageDTO{Input: u.Input, Output: u.Output, Total: u.Total()}
}

func (d *TokenUsageDTO) usage() message.TokenUsage {
	if d == nil {
		return message.Zero()
	}
	return message.TokenUsage{Input: d.Input, Output: d.Output}
}

// TimingDTO is message.Timing's persisted shape: ISO-8601 start/end
// timestamps. End is the zero value (omitted) when the timing has not
// stopped.
type TimingDTO struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

func timingDTO(t message.Timing) *TimingDTO {
	d := &TimingDTO{Start: t.Start}
	if t.Done() {
		end := t.End
		d.End = &end
	}
	return d
}

func (d *TimingDTO) timing() message.Timing {
	if d == nil {
		return message.Timing{}
	}
	t := message.Timing{Start: d.Start}
	if d.End != nil {
		t.End = *d.End
	}
	return t
}

// ToRecord converts a single step.Step into its persisted Record. Loading
// must accept any sequence of Records that respects §3's invariants.
// FromRecord restores every field ToRecord writes, with two losses: an
// ActionStep's error comes back as a plain error with the same text, and the
// assistant message keeps only its content or tool calls (its TokenUsage and
// Raw are not persisted).
func ToRecord(s step.Step) Record {
	r := Record{Kind: s.Kind}
	switch s.Kind {
	case step.KindSystemPrompt:
		r.SystemPromptText = s.SystemPromptText
	case step.KindTask:
		r.TaskText = s.TaskText
		r.TaskImages = s.TaskImages
	case step.KindPlanning:
		r.PlanText = s.PlanText
		r.PlanTokenUsage = tokenUsageDTO(s.PlanTokenUsage)
		r.PlanTiming = timingDTO(s.PlanTiming)
	case step.KindAction:
		r.StepNumber = s.StepNumber
		r.ActionTiming = timingDTO(s.ActionTiming)
		r.AssistantContent = s.AssistantMessage.Content
		r.ToolCalls = s.ToolCalls
		if s.CodeActionVal != nil {
			r.CodeActionCode = s.CodeActionVal.Code
			r.CodeActionState = s.CodeActionVal.State
		}
		r.Observations = s.Observations
		r.ActionOutput = s.ActionOutput
		if s.ActionError != nil {
			r.ActionErrorText = s.ActionError.Error()
		}
		r.ActionTokenUsage = tokenUsageDTO(s.ActionTokenUsage)
		r.IsFinalAnswer = s.IsFinalAnswer
		r.ReasoningContent = s.ReasoningContent
		r.TraceID = s.TraceID
		r.ParentTraceID = s.ParentTraceID
	case step.KindEvaluation:
		r.EvalStatus = s.EvalStatus
		r.EvalAnswer = s.EvalAnswer
		r.EvalReasoning = s.EvalReasoning
		r.EvalConfidence = s.EvalConfidence
	case step.KindFinalAnswer:
		r.FinalOutput = s.FinalOutput
	}
	return r
}

// FromRecord reconstructs a step.Step from a persisted Record. A persisted
// ActionStep's error is restored as a plain error carrying the original
// message text; the Record format intentionally does not round-trip a
// structured agenterr.Kind since §6.5 only specifies step fields, not error
// taxonomy.
func FromRecord(r Record) step.Step {
	switch r.Kind {
	case step.KindSystemPrompt:
		return step.NewSystemPrompt(r.SystemPromptText)
	case step.KindTask:
		return step.NewTask(r.TaskText, r.TaskImages)
	case step.KindPlanning:
		return step.NewPlanning(r.PlanText, r.PlanTokenUsage.usage(), r.PlanTiming.timing())
	case step.KindAction:
		var actionErr error
		if r.ActionErrorText != "" {
			actionErr = recordError(r.ActionErrorText)
		}
		assistant := message.ChatMessage{Role: message.RoleAssistant, ToolCalls: r.ToolCalls}
		if len(r.ToolCalls) == 0 {
			assistant.Content = r.AssistantContent
		}
		return step.NewAction(step.ActionStepInput{
			StepNumber:       r.StepNumber,
			Timing:           r.ActionTiming.timing(),
			Assistant:        assistant,
			ToolCalls:        r.ToolCalls,
			CodeAction:       codeAction(r),
			Observations:     r.Observations,
			ActionOutput:     r.ActionOutput,
			Error:            actionErr,
			TokenUsage:       r.ActionTokenUsage.usage(),
			IsFinalAnswer:    r.IsFinalAnswer,
			ReasoningContent: r.ReasoningContent,
			TraceID:          r.TraceID,
			ParentTraceID:    r.ParentTraceID,
		})
	case step.KindEvaluation:
		return step.NewEvaluation(r.EvalStatus, r.EvalAnswer, r.EvalReasoning, r.EvalConfidence)
	case step.KindFinalAnswer:
		return step.NewFinalAnswer(r.FinalOutput)
	default:
		return step.Step{}
	}
}

func codeAction(r Record) *step.CodeAction {
	if r.CodeActionCode == "" && r.CodeActionState == "" {
		return nil
	}
	return &step.CodeAction{Code: r.CodeActionCode, State: r.CodeActionState}
}

// recordError is a plain error type wrapping a persisted message string.
type recordError string

func (e recordError) Error() string { return string(e) }

// MarshalRecords serializes steps into JSON Records, in order.
func MarshalRecords(steps []step.Step) ([]byte, error) {
	records := make([]Record, len(steps))
	for i, s := range steps {
		records[i] = ToRecord(s)
	}
	return json.Marshal(records)
}

// UnmarshalRecords deserializes a JSON Record sequence back into Steps.
func UnmarshalRecords(data []byte) ([]step.Step, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	steps := make([]step.Step, len(records))
	for i, r := range records {
		steps[i] = FromRecord(r)
	}
	return steps, nil
}

// Store persists and restores a run's step sequence (§6.5). Concrete
// backends (memory/sqlite) implement it; AgentMemory itself stays
// persistence-agnostic — a caller wanting durability constructs a Store and
// calls Save/Load explicitly around a run.
type Store interface {
	Save(ctx context.Context, runID string, steps []step.Step) error
	Load(ctx context.Context, runID string) ([]step.Step, error)
}
