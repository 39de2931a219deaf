package tools_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentcore/reactor/hooks"
	"github.com/agentcore/reactor/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its message argument" }
func (echoTool) InputSchema() []byte {
	return []byte(`{"type":"object","properties":{"message":{"type":"string"}},"required":["message"]}`)
}
func (echoTool) OutputType() string { return "string" }
func (echoTool) Call(_ context.Context, args map[string]any) (tools.Result, error) {
	return tools.Result{Value: args["message"]}, nil
}

func TestValidationRejectsMissingRequiredArgument(t *testing.T) {
	reg := tools.NewRegistry("")
	reg.Register(echoTool{})
	bus := hooks.NewBus()

	_, err := tools.Invoke(context.Background(), reg, bus, "run-1", "echo", map[string]any{}, tools.InvokeOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing argument")
}

func TestValidationReportsTypeViolationAsItself(t *testing.T) {
	reg := tools.NewRegistry("")
	reg.Register(echoTool{})
	bus := hooks.NewBus()

	_, err := tools.Invoke(context.Background(), reg, bus, "run-1", "echo", map[string]any{"message": 42}, tools.InvokeOptions{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "missing argument")
}

func TestToolCallRequestedAndCompletedPairedByRequestID(t *testing.T) {
	reg := tools.NewRegistry("")
	reg.Register(echoTool{})
	bus := hooks.NewBus()

	var mu sync.Mutex
	var requested, completed string
	sub, err := bus.Register(hooks.SubscriberFunc(func(_ context.Context, evt hooks.Event) error {
		mu.Lock()
		defer mu.Unlock()
		switch e := evt.(type) {
		case *hooks.ToolCallRequestedEvent:
			requested = e.RequestID
		case *hooks.ToolCallCompletedEvent:
			completed = e.RequestID
		}
		return nil
	}))
	require.NoError(t, err)
	defer sub.Close()

	inv, err := tools.Invoke(context.Background(), reg, bus, "run-1", "echo", map[string]any{"message": "hi"}, tools.InvokeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hi", inv.Observation)
	assert.False(t, inv.IsFinal)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return requested != "" && completed != ""
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, requested, completed, "ToolCallRequested and ToolCallCompleted must carry the same request id")
}

func TestFinalAnswerToolMarksIsFinal(t *testing.T) {
	reg := tools.NewRegistry("")
	reg.Register(tools.NewFinalAnswerTool())
	bus := hooks.NewBus()

	inv, err := tools.Invoke(context.Background(), reg, bus, "run-1", tools.FinalAnswerToolName, map[string]any{"answer": "42"}, tools.InvokeOptions{})
	require.NoError(t, err)
	assert.True(t, inv.IsFinal)
	assert.Equal(t, "42", inv.Value)
}

func TestObservationTruncatedWithMarker(t *testing.T) {
	reg := tools.NewRegistry("")
	reg.Register(echoTool{})
	bus := hooks.NewBus()

	long := strings.Repeat("x", 100)
	inv, err := tools.Invoke(context.Background(), reg, bus, "run-1", "echo", map[string]any{"message": long}, tools.InvokeOptions{MaxObservationLen: 20})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(inv.Observation), 20)
	assert.True(t, strings.HasSuffix(inv.Observation, tools.TruncationMarker))
}

func TestWebSearchAliasResolvesToPreferredProvider(t *testing.T) {
	reg := tools.NewRegistry("echo")
	reg.Register(echoTool{})
	bus := hooks.NewBus()

	inv, err := tools.Invoke(context.Background(), reg, bus, "run-1", "web_search", map[string]any{"message": "q"}, tools.InvokeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "q", inv.Value)
}
