// Package message defines the immutable value types shared by every other
// package in the core: chat messages, tool calls, token usage, and timing.
// Every type here is a frozen value record — updates produce a new value via
// a With-prefixed method; nothing exposes a mutating accessor.
package message

import (
	"reflect"
	"time"
)

// Role identifies who produced a ChatMessage.
type Role string

const (
	RoleSystem       Role = "system"
	RoleUser         Role = "user"
	RoleAssistant    Role = "assistant"
	RoleToolCall     Role = "tool_call"
	RoleToolResponse Role = "tool_response"
)

// ToolCall is a single named tool invocation requested by the model. ID is
// unique per call within a run.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Equal reports whether two ToolCalls are field-equal. Arguments are
// compared structurally: JSON-decoded values routinely contain nested maps
// and slices, which are not comparable with ==.
func (c ToolCall) Equal(o ToolCall) bool {
	return c.ID == o.ID && c.Name == o.Name && reflect.DeepEqual(c.Arguments, o.Arguments)
}

// TokenUsage is a monoid under addition with Zero as the identity element.
type TokenUsage struct {
	Input  int
	Output int
}

// Zero returns the additive identity TokenUsage{0, 0}.
func Zero() TokenUsage { return TokenUsage{} }

// Add returns a new TokenUsage summing a and b.
func Add(a, b TokenUsage) TokenUsage {
	return TokenUsage{Input: a.Input + b.Input, Output: a.Output + b.Output}
}

// Total returns Input + Output.
func (u TokenUsage) Total() int { return u.Input + u.Output }

// Timing records a start time and an optional end time. End is unset (zero)
// until Stop is called; Duration is defined only once End is set.
type Timing struct {
	Start time.Time
	End   time.Time
}

// StartNow returns a Timing with Start set to now and End unset.
func StartNow() Timing { return Timing{Start: time.Now()} }

// Stop returns a new Timing with End stamped at t. The receiver is not
// mutated.
func (t Timing) Stop(at time.Time) Timing {
	t.End = at
	return t
}

// Done reports whether End has been stamped.
func (t Timing) Done() bool { return !t.End.IsZero() }

// Duration returns End.Sub(Start), or 0 when End has not been stamped (see
// Done).
func (t Timing) Duration() time.Duration {
	if !t.Done() {
		return 0
	}
	return t.End.Sub(t.Start)
}

// ChatMessage is an immutable conversational turn. Exactly one of Content or
// ToolCalls may be populated for an assistant message. Images are legal only
// on user messages. The constructors only build values that satisfy these
// invariants; the fields are exported, so a struct literal can still break
// them, and Valid reports whether a value holds them.
type ChatMessage struct {
	Role       Role
	Content    *string
	ToolCalls  []ToolCall
	Images     [][]byte
	TokenUsage *TokenUsage
	Raw        any
}

// NewSystem constructs a system message.
func NewSystem(text string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: &text}
}

// NewUser constructs a user message, optionally carrying images.
func NewUser(text string, images [][]byte) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: &text, Images: images}
}

// NewAssistantText constructs an assistant message carrying text content
// only (no tool calls).
func NewAssistantText(text string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: &text}
}

// NewAssistantToolCalls constructs an assistant message carrying tool calls
// only (no text content).
func NewAssistantToolCalls(calls []ToolCall) ChatMessage {
	return ChatMessage{Role: RoleAssistant, ToolCalls: calls}
}

// NewToolResponse constructs a tool_response message rendering an
// observation back into the conversation.
func NewToolResponse(observation string) ChatMessage {
	return ChatMessage{Role: RoleToolResponse, Content: &observation}
}

// WithTokenUsage returns a copy of m with TokenUsage set to u.
func (m ChatMessage) WithTokenUsage(u TokenUsage) ChatMessage {
	m.TokenUsage = &u
	return m
}

// WithRaw returns a copy of m with Raw set to v, for carrying the
// provider-native response alongside the normalized form.
func (m ChatMessage) WithRaw(v any) ChatMessage {
	m.Raw = v
	return m
}

// Valid reports whether m satisfies the data-model invariants: at most one
// of Content/ToolCalls populated on assistant messages, and images only on
// user messages.
func (m ChatMessage) Valid() bool {
	if len(m.Images) > 0 && m.Role != RoleUser {
		return false
	}
	if m.Role == RoleAssistant && m.Content != nil && len(m.ToolCalls) > 0 {
		return false
	}
	return true
}

// ToolSchema is a JSON-Schema-like description of a tool's input, derived
// from a Tool's input schema, passed to Model.Generate.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}
