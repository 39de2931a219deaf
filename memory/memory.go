// Package memory accumulates a run's steps and renders them into the
// message array sent to the model, applying a budget strategy to keep the
// rendered history within a token budget.
package memory

import (
	"fmt"
	"strings"

	"github.com/agentcore/reactor/agenterr"
	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/step"
)

// ObservationPlaceholder replaces a masked ActionStep's observations under
// the "mask" and "hybrid" budget strategies.
const ObservationPlaceholder = "[older observation omitted to fit memory budget]"

// AgentMemory accumulates a system prompt and an ordered sequence of steps.
// It is the mutable accumulator the scheduler appends to during a run — the
// Steps it holds are themselves immutable value records, but AgentMemory
// itself is a single-owner, per-run accumulator rather than a frozen value.
type AgentMemory struct {
	systemPrompt step.Step
	steps        []step.Step
	haveTask     bool
}

// New constructs an AgentMemory with the given system prompt text.
func New(systemPromptText string) *AgentMemory {
	return &AgentMemory{systemPrompt: step.NewSystemPrompt(systemPromptText)}
}

// AddTask appends a TaskStep. It is an error to call AddTask more than once
// per AgentMemory: the data model permits at most one TaskStep, at the head
// of the non-system sequence.
func (m *AgentMemory) AddTask(text string, images [][]byte) error {
	if m.haveTask {
		return agenterr.New(agenterr.KindConfiguration, "memory: a task step was already added")
	}
	m.steps = append(m.steps, step.NewTask(text, images))
	m.haveTask = true
	return nil
}

// Append appends any Step to the sequence.
func (m *AgentMemory) Append(s step.Step) {
	m.steps = append(m.steps, s)
}

// Steps returns the full ordered step sequence, system prompt excluded (it
// is rendered separately; see Invariant I1 in the core's testable properties).
func (m *AgentMemory) Steps() []step.Step {
	out := make([]step.Step, len(m.steps))
	copy(out, m.steps)
	return out
}

// SystemPrompt returns the memory's system prompt step.
func (m *AgentMemory) SystemPrompt() step.Step { return m.systemPrompt }

// Config is the budget configuration consulted by RenderMessages. A nil
// *Config (not this struct — see RenderMessages) means "use full
// unconditionally" per the core's memory contract.
type Config struct {
	Strategy       Strategy
	PreserveRecent int
	Budget         *int
	// Summarizer produces a synthesized assistant message summarizing a run
	// of non-recent ActionSteps under the "summarize"/"hybrid" strategies.
	// When nil, summarize falls back to mask.
	Summarizer func(steps []step.Step) (string, error)
}

// Strategy selects how RenderMessages fits history into a token budget.
type Strategy string

const (
	StrategyFull      Strategy = "full"
	StrategyMask      Strategy = "mask"
	StrategySummarize Strategy = "summarize"
	StrategyHybrid    Strategy = "hybrid"
)

// RenderMessages converts the step sequence into the ChatMessage array for
// the next model call, applying cfg's budget strategy. A nil cfg means
// "full unconditionally".
func (m *AgentMemory) RenderMessages(cfg *Config) ([]message.ChatMessage, error) {
	if cfg == nil {
		cfg = &Config{Strategy: StrategyFull}
	}
	switch cfg.Strategy {
	case "", StrategyFull:
		return renderFull(m.systemPrompt, m.steps), nil
	case StrategyMask:
		return renderMasked(m.systemPrompt, m.steps, cfg.PreserveRecent), nil
	case StrategySummarize:
		return renderSummarized(m.systemPrompt, m.steps, cfg)
	case StrategyHybrid:
		return renderHybrid(m.systemPrompt, m.steps, cfg)
	default:
		return nil, agenterr.Newf(agenterr.KindConfiguration, "memory: unknown strategy %q", cfg.Strategy)
	}
}

func renderFull(sysPrompt step.Step, steps []step.Step) []message.ChatMessage {
	msgs := []message.ChatMessage{message.NewSystem(sysPrompt.SystemPromptText)}
	for _, s := range steps {
		msgs = append(msgs, renderStep(s, false)...)
	}
	return msgs
}

func renderMasked(sysPrompt step.Step, steps []step.Step, preserveRecent int) []message.ChatMessage {
	cutoff := actionCutoffIndex(steps, preserveRecent)
	msgs := []message.ChatMessage{message.NewSystem(sysPrompt.SystemPromptText)}
	actionSeen := 0
	for _, s := range steps {
		mask := false
		if s.Kind == step.KindAction {
			mask = actionSeen < cutoff
			actionSeen++
		}
		msgs = append(msgs, renderStep(s, mask)...)
	}
	return msgs
}

// actionCutoffIndex returns how many leading ActionSteps (out of the total
// count) should be masked so that exactly preserveRecent trailing
// ActionSteps remain verbatim, satisfying invariant I8.
func actionCutoffIndex(steps []step.Step, preserveRecent int) int {
	total := 0
	for _, s := range steps {
		if s.Kind == step.KindAction {
			total++
		}
	}
	if preserveRecent < 0 {
		preserveRecent = 0
	}
	cutoff := total - preserveRecent
	if cutoff < 0 {
		cutoff = 0
	}
	return cutoff
}

func renderSummarized(sysPrompt step.Step, steps []step.Step, cfg *Config) ([]message.ChatMessage, error) {
	if cfg.Summarizer == nil {
		return renderMasked(sysPrompt, steps, cfg.PreserveRecent), nil
	}
	cutoff := actionCutoffIndex(steps, cfg.PreserveRecent)
	var toSummarize, recent []step.Step
	actionSeen := 0
	var nonAction []step.Step
	for _, s := range steps {
		if s.Kind == step.KindAction {
			if actionSeen < cutoff {
				toSummarize = append(toSummarize, s)
			} else {
				recent = append(recent, s)
			}
			actionSeen++
			continue
		}
		nonAction = append(nonAction, s)
	}

	msgs := []message.ChatMessage{message.NewSystem(sysPrompt.SystemPromptText)}
	for _, s := range nonAction {
		if s.Kind == step.KindTask {
			msgs = append(msgs, renderStep(s, false)...)
		}
	}
	if len(toSummarize) > 0 {
		summary, err := cfg.Summarizer(toSummarize)
		if err != nil {
			return nil, agenterr.Wrap(agenterr.KindGeneration, "memory: summarizer failed", err)
		}
		msgs = append(msgs, message.NewAssistantText(summary))
	}
	for _, s := range recent {
		msgs = append(msgs, renderStep(s, false)...)
	}
	return msgs, nil
}

func renderHybrid(sysPrompt step.Step, steps []step.Step, cfg *Config) ([]message.ChatMessage, error) {
	msgs, err := renderSummarized(sysPrompt, steps, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Budget == nil {
		return msgs, nil
	}
	for estimateTokens(msgs) > *cfg.Budget && hasUnmaskedObservation(msgs) {
		msgs = maskOldestObservation(msgs)
	}
	return msgs, nil
}

// estimateTokens is a monotonic function of message content length. Exact
// tokenization is an external concern; this estimate only needs to be
// monotonic in content size for the hybrid strategy's convergence loop to
// terminate.
func estimateTokens(msgs []message.ChatMessage) int {
	total := 0
	for _, m := range msgs {
		if m.Content != nil {
			total += len(*m.Content) / 4
		}
		for _, tc := range m.ToolCalls {
			total += len(tc.Name) + len(fmt.Sprint(tc.Arguments))
		}
	}
	return total
}

func hasUnmaskedObservation(msgs []message.ChatMessage) bool {
	for _, m := range msgs {
		if m.Role == message.RoleToolResponse && m.Content != nil && *m.Content != ObservationPlaceholder {
			return true
		}
	}
	return false
}

func maskOldestObservation(msgs []message.ChatMessage) []message.ChatMessage {
	for i, m := range msgs {
		if m.Role == message.RoleToolResponse && m.Content != nil && *m.Content != ObservationPlaceholder {
			msgs[i] = message.NewToolResponse(ObservationPlaceholder)
			return msgs
		}
	}
	return msgs
}

// renderStep converts a single Step into its ChatMessage representation. If
// mask is true and the step is an ActionStep, its observations are replaced
// with ObservationPlaceholder while tool_calls metadata is preserved.
func renderStep(s step.Step, mask bool) []message.ChatMessage {
	switch s.Kind {
	case step.KindSystemPrompt:
		return nil // rendered once by the caller
	case step.KindTask:
		return []message.ChatMessage{message.NewUser(s.TaskText, s.TaskImages)}
	case step.KindPlanning:
		return []message.ChatMessage{message.NewAssistantText("Plan: " + s.PlanText)}
	case step.KindAction:
		var msgs []message.ChatMessage
		if len(s.ToolCalls) > 0 {
			msgs = append(msgs, message.NewAssistantToolCalls(s.ToolCalls))
		} else {
			msgs = append(msgs, s.AssistantMessage)
		}
		obs := s.Observations
		if mask {
			obs = make([]string, len(s.Observations))
			for i := range obs {
				obs[i] = ObservationPlaceholder
			}
		}
		for _, o := range obs {
			msgs = append(msgs, message.NewToolResponse(o))
		}
		return msgs
	case step.KindEvaluation:
		reasoning := ""
		if s.EvalReasoning != nil {
			reasoning = *s.EvalReasoning
		}
		return []message.ChatMessage{message.NewAssistantText(strings.TrimSpace("Evaluation: " + string(s.EvalStatus) + " " + reasoning))}
	case step.KindFinalAnswer:
		return []message.ChatMessage{message.NewAssistantText(fmt.Sprint(s.FinalOutput))}
	default:
		return nil
	}
}
