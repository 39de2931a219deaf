package message_test

import (
	"testing"
	"time"

	"github.com/agentcore/reactor/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenUsageMonoid(t *testing.T) {
	z := message.Zero()
	a := message.TokenUsage{Input: 3, Output: 5}

	assert.Equal(t, a, message.Add(a, z))
	assert.Equal(t, a, message.Add(z, a))
	assert.Equal(t, 8, a.Total())

	b := message.TokenUsage{Input: 1, Output: 2}
	assert.Equal(t, message.TokenUsage{Input: 4, Output: 7}, message.Add(a, b))
}

func TestTimingDuration(t *testing.T) {
	start := time.Now()
	tm := message.Timing{Start: start}
	require.False(t, tm.Done())

	stopped := tm.Stop(start.Add(2 * time.Second))
	require.True(t, stopped.Done())
	assert.Equal(t, 2*time.Second, stopped.Duration())
	assert.False(t, tm.Done(), "Stop must not mutate the receiver")
}

func TestChatMessageInvariants(t *testing.T) {
	valid := message.NewAssistantText("hello")
	assert.True(t, valid.Valid())

	withToolCalls := message.NewAssistantToolCalls([]message.ToolCall{{ID: "1", Name: "search"}})
	assert.True(t, withToolCalls.Valid())

	contradictory := withToolCalls
	text := "also text"
	contradictory.Content = &text
	assert.False(t, contradictory.Valid(), "assistant message may not carry both content and tool calls")

	imageOnAssistant := message.NewAssistantText("x")
	imageOnAssistant.Images = [][]byte{{0x01}}
	assert.False(t, imageOnAssistant.Valid(), "images are only legal on user messages")

	imageOnUser := message.NewUser("describe this", [][]byte{{0x01}})
	assert.True(t, imageOnUser.Valid())
}

func TestToolCallEqual(t *testing.T) {
	a := message.ToolCall{ID: "1", Name: "search", Arguments: map[string]any{"query": "go"}}
	b := message.ToolCall{ID: "1", Name: "search", Arguments: map[string]any{"query": "go"}}
	c := message.ToolCall{ID: "1", Name: "search", Arguments: map[string]any{"query": "rust"}}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	nested := message.ToolCall{ID: "2", Name: "filter", Arguments: map[string]any{"tags": []any{"go", "news"}}}
	sameNested := message.ToolCall{ID: "2", Name: "filter", Arguments: map[string]any{"tags": []any{"go", "news"}}}
	assert.True(t, nested.Equal(sameNested), "JSON-decoded slice arguments must compare structurally")
}
