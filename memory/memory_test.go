package memory_test

import (
	"testing"

	"github.com/agentcore/reactor/memory"
	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionStep(n int, observation string) step.Step {
	return step.NewAction(step.ActionStepInput{
		StepNumber:   n,
		Assistant:    message.NewAssistantText("thinking"),
		Observations: []string{observation},
	})
}

func TestMaskPreservesLastKVerbatim(t *testing.T) {
	m := memory.New("you are an agent")
	require.NoError(t, m.AddTask("do the thing", nil))
	m.Append(actionStep(1, "obs-1"))
	m.Append(actionStep(2, "obs-2"))
	m.Append(actionStep(3, "obs-3"))

	msgs, err := m.RenderMessages(&memory.Config{Strategy: memory.StrategyMask, PreserveRecent: 1})
	require.NoError(t, err)

	var observations []string
	for _, msg := range msgs {
		if msg.Role == message.RoleToolResponse {
			observations = append(observations, *msg.Content)
		}
	}
	require.Len(t, observations, 3)
	assert.Equal(t, memory.ObservationPlaceholder, observations[0])
	assert.Equal(t, memory.ObservationPlaceholder, observations[1])
	assert.Equal(t, "obs-3", observations[2], "last preserve_recent=1 ActionStep must survive verbatim")
}

func TestFullStrategyReturnsEveryMessage(t *testing.T) {
	m := memory.New("sys")
	require.NoError(t, m.AddTask("task", nil))
	m.Append(actionStep(1, "obs-1"))

	msgs, err := m.RenderMessages(nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(msgs), 3)
}

func TestSummarizeFallsBackToMaskWithoutSummarizer(t *testing.T) {
	m := memory.New("sys")
	require.NoError(t, m.AddTask("task", nil))
	m.Append(actionStep(1, "obs-1"))
	m.Append(actionStep(2, "obs-2"))

	msgs, err := m.RenderMessages(&memory.Config{Strategy: memory.StrategySummarize, PreserveRecent: 1})
	require.NoError(t, err)

	var observations []string
	for _, msg := range msgs {
		if msg.Role == message.RoleToolResponse {
			observations = append(observations, *msg.Content)
		}
	}
	require.Len(t, observations, 2)
	assert.Equal(t, memory.ObservationPlaceholder, observations[0])
	assert.Equal(t, "obs-2", observations[1])
}

func TestSummarizeWithSummarizerCollapsesOlderSteps(t *testing.T) {
	m := memory.New("sys")
	require.NoError(t, m.AddTask("task", nil))
	m.Append(actionStep(1, "obs-1"))
	m.Append(actionStep(2, "obs-2"))
	m.Append(actionStep(3, "obs-3"))

	cfg := &memory.Config{
		Strategy:       memory.StrategySummarize,
		PreserveRecent: 1,
		Summarizer: func(steps []step.Step) (string, error) {
			return "summary of older steps", nil
		},
	}
	msgs, err := m.RenderMessages(cfg)
	require.NoError(t, err)

	foundSummary := false
	for _, msg := range msgs {
		if msg.Content != nil && *msg.Content == "summary of older steps" {
			foundSummary = true
		}
	}
	assert.True(t, foundSummary)
}

func TestAddTaskAtMostOnce(t *testing.T) {
	m := memory.New("sys")
	require.NoError(t, m.AddTask("first", nil))
	err := m.AddTask("second", nil)
	assert.Error(t, err)
}
