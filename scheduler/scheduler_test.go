package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/agentcore/reactor/config"
	"github.com/agentcore/reactor/hooks"
	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/resilience"
	"github.com/agentcore/reactor/scheduler"
	"github.com/agentcore/reactor/step"
	"github.com/agentcore/reactor/tools"
	"github.com/stretchr/testify/require"
)

func newConfig(t *testing.T, maxSteps int) config.AgentConfig {
	t.Helper()
	mem, err := config.NewMemoryConfig("full", 0, nil)
	require.NoError(t, err)
	model, err := config.NewModelConfig("test-model", 0.2, 1000, "")
	require.NoError(t, err)
	spawn, err := config.NewSpawnConfig(0, nil, nil)
	require.NoError(t, err)
	cfg, err := config.NewAgentConfig(maxSteps, "", nil, mem, model, spawn, 1)
	require.NoError(t, err)
	return cfg
}

// TestRun_SingleShotFinalAnswer covers spec §8 scenario 1: a code-action
// response that immediately calls final_answer terminates the run in one
// ActionStep.
func TestRun_SingleShotFinalAnswer(t *testing.T) {
	reg := tools.NewRegistry("")
	reg.Register(tools.NewFinalAnswerTool())

	calls := 0
	model := scheduler.Model{
		ID: "test-model",
		Generate: func(_ context.Context, _ scheduler.GenerateRequest) (message.ChatMessage, error) {
			calls++
			return message.NewAssistantText("```\nfinal_answer(answer: 4)\n```"), nil
		},
	}

	s := &scheduler.Scheduler{
		Config: newConfig(t, 10),
		Model:  model,
		Tools:  reg,
		Bus:    hooks.NewBus(),
		Mode:   scheduler.ModeCodeAction,
	}

	result, err := s.Run(context.Background(), "What is 2+2?", nil)
	require.NoError(t, err)
	require.Equal(t, step.OutcomeSuccess, result.Outcome)
	require.Equal(t, 1, calls)

	actionCount := 0
	for _, st := range result.Steps {
		if st.Kind == step.KindAction {
			actionCount++
		}
	}
	require.Equal(t, 1, actionCount)
}

// TestRun_TwoStepToolCalling covers spec §8 scenario 2: one non-final tool
// call followed by final_answer produces exactly two ActionSteps.
func TestRun_TwoStepToolCalling(t *testing.T) {
	reg := tools.NewRegistry("")
	reg.Register(tools.NewFinalAnswerTool())
	reg.Register(fakeTool{name: "search"})

	turn := 0
	model := scheduler.Model{
		ID: "test-model",
		Generate: func(_ context.Context, _ scheduler.GenerateRequest) (message.ChatMessage, error) {
			turn++
			if turn == 1 {
				return message.NewAssistantToolCalls([]message.ToolCall{
					{ID: "1", Name: "search", Arguments: map[string]any{"query": "Ruby news"}},
				}), nil
			}
			return message.NewAssistantToolCalls([]message.ToolCall{
				{ID: "2", Name: "final_answer", Arguments: map[string]any{"answer": "done"}},
			}), nil
		},
	}

	var mu sync.Mutex
	var requested, completed int
	bus := hooks.NewBus()
	sub, err := bus.Register(hooks.SubscriberFunc(func(_ context.Context, evt hooks.Event) error {
		mu.Lock()
		defer mu.Unlock()
		switch evt.Type() {
		case hooks.EventToolCallRequested:
			requested++
		case hooks.EventToolCallCompleted:
			completed++
		}
		return nil
	}))
	require.NoError(t, err)
	defer sub.Close()

	s := &scheduler.Scheduler{
		Config: newConfig(t, 10),
		Model:  model,
		Tools:  reg,
		Bus:    bus,
		Mode:   scheduler.ModeToolCalling,
	}

	result, err := s.Run(context.Background(), "Search Ruby news and answer", nil)
	require.NoError(t, err)
	require.Equal(t, step.OutcomeSuccess, result.Outcome)

	actionCount := 0
	for _, st := range result.Steps {
		if st.Kind == step.KindAction {
			actionCount++
		}
	}
	require.Equal(t, 2, actionCount)

	// The bus drains asynchronously.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return requested == 2 && completed == 2
	}, time.Second, time.Millisecond, "expected exactly 2 ToolCallRequested/Completed pairs")
}

// TestRun_ToolRateLimitRetried covers spec §8 scenario 3: a tool that is
// rate-limited on its first attempt succeeds on the second, with exactly one
// RateLimitHit emitted and the run still completing.
func TestRun_ToolRateLimitRetried(t *testing.T) {
	reg := tools.NewRegistry("")
	reg.Register(tools.NewFinalAnswerTool())

	flaky := &rateLimitedTool{}
	reg.Register(flaky)

	turn := 0
	model := scheduler.Model{
		ID: "test-model",
		Generate: func(_ context.Context, _ scheduler.GenerateRequest) (message.ChatMessage, error) {
			turn++
			if turn == 1 {
				return message.NewAssistantToolCalls([]message.ToolCall{
					{ID: "1", Name: "search", Arguments: map[string]any{"query": "x"}},
				}), nil
			}
			return message.NewAssistantToolCalls([]message.ToolCall{
				{ID: "2", Name: "final_answer", Arguments: map[string]any{"answer": "done"}},
			}), nil
		},
	}

	var mu sync.Mutex
	rateLimitHits := 0
	bus := hooks.NewBus()
	sub, err := bus.Register(hooks.SubscriberFunc(func(_ context.Context, evt hooks.Event) error {
		if evt.Type() == hooks.EventRateLimitHit {
			mu.Lock()
			rateLimitHits++
			mu.Unlock()
		}
		return nil
	}))
	require.NoError(t, err)
	defer sub.Close()

	res := resilience.NewResilient(bus)
	res.Policy = resilience.RetryPolicy{MaxAttempts: 3, BaseInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

	s := &scheduler.Scheduler{
		Config:     newConfig(t, 10),
		Model:      model,
		Tools:      reg,
		Bus:        bus,
		Mode:       scheduler.ModeToolCalling,
		Resilience: res,
	}

	result, err := s.Run(context.Background(), "search with a flaky provider", nil)
	require.NoError(t, err)
	require.Equal(t, step.OutcomeSuccess, result.Outcome)
	require.Equal(t, 2, flaky.calls, "tool must be called twice: rate-limited, then retried")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return rateLimitHits == 1
	}, time.Second, time.Millisecond)
}

// TestOn_RejectsUnknownEventName covers callback registration validation: a
// name outside the event catalog is a configuration error, not a callback
// that silently never fires.
func TestOn_RejectsUnknownEventName(t *testing.T) {
	s := &scheduler.Scheduler{Bus: hooks.NewBus()}

	_, err := s.On("no_such_event", func(context.Context, hooks.Event) error { return nil })
	require.Error(t, err)

	_, err = s.On("step_completed", nil)
	require.Error(t, err)
}

// TestOn_FiresForNamedEvent registers a task_completed callback and runs a
// single-shot task through the scheduler.
func TestOn_FiresForNamedEvent(t *testing.T) {
	reg := tools.NewRegistry("")
	reg.Register(tools.NewFinalAnswerTool())

	model := scheduler.Model{
		ID: "test-model",
		Generate: func(_ context.Context, _ scheduler.GenerateRequest) (message.ChatMessage, error) {
			return message.NewAssistantText("```\nfinal_answer(answer: 4)\n```"), nil
		},
	}
	s := &scheduler.Scheduler{
		Config: newConfig(t, 10),
		Model:  model,
		Tools:  reg,
		Bus:    hooks.NewBus(),
		Mode:   scheduler.ModeCodeAction,
	}

	var mu sync.Mutex
	fired := 0
	sub, err := s.On("task_completed", func(_ context.Context, evt hooks.Event) error {
		mu.Lock()
		defer mu.Unlock()
		fired++
		return nil
	})
	require.NoError(t, err)
	defer sub.Close()

	_, err = s.Run(context.Background(), "What is 2+2?", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fired == 1
	}, time.Second, time.Millisecond)
}

// rateLimitedTool fails its first call with a 429 carrying a retry_after
// hint, then succeeds.
type rateLimitedTool struct{ calls int }

func (r *rateLimitedTool) Name() string        { return "search" }
func (r *rateLimitedTool) Description() string { return "rate-limited search tool" }
func (r *rateLimitedTool) InputSchema() []byte { return nil }
func (r *rateLimitedTool) OutputType() string  { return "string" }
func (r *rateLimitedTool) Call(_ context.Context, args map[string]any) (tools.Result, error) {
	r.calls++
	if r.calls == 1 {
		return tools.Result{}, &resilience.HTTPStatusError{StatusCode: 429, RetryAfter: 0.01, Message: "slow down"}
	}
	return tools.Result{Value: "result for " + args["query"].(string)}, nil
}

// TestRun_MaxStepsReached covers spec §8 scenario 4: a model that never
// calls final_answer exhausts the step budget.
func TestRun_MaxStepsReached(t *testing.T) {
	reg := tools.NewRegistry("")
	reg.Register(tools.NewFinalAnswerTool())
	reg.Register(fakeTool{name: "search"})

	model := scheduler.Model{
		ID: "test-model",
		Generate: func(_ context.Context, _ scheduler.GenerateRequest) (message.ChatMessage, error) {
			return message.NewAssistantToolCalls([]message.ToolCall{
				{ID: "x", Name: "search", Arguments: map[string]any{"query": "x"}},
			}), nil
		},
	}

	s := &scheduler.Scheduler{
		Config: newConfig(t, 3),
		Model:  model,
		Tools:  reg,
		Bus:    hooks.NewBus(),
		Mode:   scheduler.ModeToolCalling,
	}

	result, err := s.Run(context.Background(), "loop forever", nil)
	require.NoError(t, err)
	require.Equal(t, step.OutcomeMaxStepsReached, result.Outcome)

	actionCount := 0
	for _, st := range result.Steps {
		if st.Kind == step.KindAction {
			actionCount++
		}
	}
	require.Equal(t, 3, actionCount)
}

type fakeTool struct{ name string }

func (f fakeTool) Name() string        { return f.name }
func (f fakeTool) Description() string { return "fake search tool" }
func (f fakeTool) InputSchema() []byte { return nil }
func (f fakeTool) OutputType() string  { return "string" }
func (f fakeTool) Call(_ context.Context, args map[string]any) (tools.Result, error) {
	return tools.Result{Value: "result for " + args["query"].(string)}, nil
}
