package subagent_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentcore/reactor/config"
	"github.com/agentcore/reactor/control"
	"github.com/agentcore/reactor/hooks"
	"github.com/agentcore/reactor/memory"
	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/scheduler"
	"github.com/agentcore/reactor/step"
	"github.com/agentcore/reactor/subagent"
	"github.com/agentcore/reactor/tools"
	"github.com/stretchr/testify/require"
)

// TestExtractContext_Observations covers spec §8 scenario 5: a parent with
// two ActionSteps carrying observations "A" and "B" produces a child task
// text containing the original task and both observations, delimiter-joined.
func TestExtractContext_Observations(t *testing.T) {
	mem := memory.New("system prompt")
	require.NoError(t, mem.AddTask("parent task", nil))
	mem.Append(step.NewAction(step.ActionStepInput{StepNumber: 1, Observations: []string{"A"}}))
	mem.Append(step.NewAction(step.ActionStepInput{StepNumber: 2, Observations: []string{"B"}}))

	scope, err := config.NewContextScope(config.ContextObservations)
	require.NoError(t, err)

	text, err := subagent.ExtractContext(scope.Level, mem, "child task")
	require.NoError(t, err)
	require.True(t, strings.Contains(text, "child task"))
	require.True(t, strings.Contains(text, "A"))
	require.True(t, strings.Contains(text, "B"))
	require.True(t, strings.Contains(text, subagent.ObservationDelimiter))
}

func baseSpawnConfig(t *testing.T, maxChildren int) config.SpawnConfig {
	t.Helper()
	sc, err := config.NewSpawnConfig(maxChildren, nil, []string{"final_answer"})
	require.NoError(t, err)
	return sc
}

func fakeChildFactory(t *testing.T) subagent.ChildFactory {
	return func(spec subagent.ChildSpec) (*scheduler.Scheduler, error) {
		reg := tools.NewRegistry("")
		reg.Register(tools.NewFinalAnswerTool())
		model := scheduler.Model{
			ID: "child-model",
			Generate: func(_ context.Context, _ scheduler.GenerateRequest) (message.ChatMessage, error) {
				return message.NewAssistantToolCalls([]message.ToolCall{
					{ID: "1", Name: "final_answer", Arguments: map[string]any{"answer": "child done"}},
				}), nil
			},
		}
		mem, err := config.NewMemoryConfig("full", 0, nil)
		require.NoError(t, err)
		mc, err := config.NewModelConfig("child-model", 0.2, 1000, "")
		require.NoError(t, err)
		sp, err := config.NewSpawnConfig(0, nil, nil)
		require.NoError(t, err)
		cfg, err := config.NewAgentConfig(5, "", nil, mem, mc, sp, 1)
		require.NoError(t, err)
		return &scheduler.Scheduler{
			Config:  cfg,
			Model:   model,
			Tools:   reg,
			Bus:     hooks.NewBus(),
			Mode:    scheduler.ModeToolCalling,
			Control: spec.Bridge,
		}, nil
	}
}

// TestOrchestrator_SpawnAndLaunchEvents covers spec §8 scenario 5's
// launch/complete pairing: SubAgentLaunched then SubAgentCompleted, both
// carrying the same launch correlation id.
func TestOrchestrator_SpawnAndLaunchEvents(t *testing.T) {
	bus := hooks.NewBus()
	var mu sync.Mutex
	var events []hooks.Event
	sub, err := bus.Register(hooks.SubscriberFunc(func(_ context.Context, evt hooks.Event) error {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, evt)
		return nil
	}))
	require.NoError(t, err)
	defer sub.Close()

	orch := subagent.NewOrchestrator(baseSpawnConfig(t, 2), bus, fakeChildFactory(t), nil)

	mem := memory.New("sys")
	require.NoError(t, mem.AddTask("parent task", nil))
	scope, err := config.NewContextScope(config.ContextTaskOnly)
	require.NoError(t, err)

	result, err := orch.Spawn(context.Background(), subagent.SpawnRequest{
		AgentName:     "researcher",
		Task:          "investigate",
		Scope:         scope,
		ParentMemory:  mem,
		ParentTraceID: "parent-1",
	})
	require.NoError(t, err)
	require.Equal(t, step.OutcomeSuccess, result.Outcome)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		launched, completed := -1, -1
		for i, evt := range events {
			switch evt.Type() {
			case hooks.EventSubAgentLaunched:
				launched = i
			case hooks.EventSubAgentCompleted:
				completed = i
			}
		}
		return launched >= 0 && completed > launched &&
			events[launched].CorrelationID() == events[completed].CorrelationID()
	}, time.Second, time.Millisecond)
}

// TestOrchestrator_RejectsWhenDisabled covers the max_children=0 rejection
// path.
func TestOrchestrator_RejectsWhenDisabled(t *testing.T) {
	bus := hooks.NewBus()
	orch := subagent.NewOrchestrator(baseSpawnConfig(t, 0), bus, fakeChildFactory(t), nil)

	mem := memory.New("sys")
	require.NoError(t, mem.AddTask("parent task", nil))
	scope, err := config.NewContextScope(config.ContextTaskOnly)
	require.NoError(t, err)

	_, err = orch.Spawn(context.Background(), subagent.SpawnRequest{
		AgentName: "researcher", Task: "investigate", Scope: scope, ParentMemory: mem,
	})
	require.Error(t, err)
}

// TestControlBridge_YieldResume covers spec §8 scenario 6: a child issues a
// user_input request, a handler approves it, and the bridge emits a
// matching ControlYielded/ControlResumed pair.
func TestControlBridge_YieldResume(t *testing.T) {
	bus := hooks.NewBus()
	var mu sync.Mutex
	var types []hooks.EventType
	sub, err := bus.Register(hooks.SubscriberFunc(func(_ context.Context, evt hooks.Event) error {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, evt.Type())
		return nil
	}))
	require.NoError(t, err)
	defer sub.Close()

	handler := control.HandlerFunc(func(_ context.Context, req control.Request) (control.Response, error) {
		require.Equal(t, control.RequestUserInput, req.Type)
		return control.Response{Approved: true, Value: "a.rb"}, nil
	})
	bridge := control.NewBridge(handler, bus, "run-1")

	resp, err := bridge.Yield(context.Background(), control.Request{
		Type: control.RequestUserInput, Prompt: "file?", Options: []string{"a.rb", "b.rb"},
	})
	require.NoError(t, err)
	require.Equal(t, "a.rb", resp.Value)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(types) == 2 && types[0] == hooks.EventControlYielded && types[1] == hooks.EventControlResumed
	}, time.Second, time.Millisecond)
}

// TestControlBridge_NoHandler covers the "no parent attached" failure mode.
func TestControlBridge_NoHandler(t *testing.T) {
	bridge := control.NewBridge(nil, hooks.NewBus(), "run-1")
	_, err := bridge.Yield(context.Background(), control.Request{Type: control.RequestUserInput})
	require.Error(t, err)
}
