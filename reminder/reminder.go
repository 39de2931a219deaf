// Package reminder defines run-scoped system reminders: tiered,
// rate-limited guidance strings injected into rendered messages to surface
// policy or resilience state to the model without a dedicated event type
// (SPEC_FULL.md's supplemented feature 1), grounded on
// runtime/agent/reminder. The package only defines the value types and the
// per-run rate-limiting Tracker; the scheduler decides when and how to
// invoke it.
package reminder

// Tier represents the priority tier for a reminder. Lower values name higher
// precedence; caps are enforced per reminder ID, not per tier.
type Tier int

const (
	// TierSafety reminders must never be dropped by policy; they may be
	// de-duplicated but not suppressed due to lower-priority budgets.
	TierSafety Tier = iota
	// TierGuidance carries workflow suggestions and soft nudges. Lowest
	// priority.
	TierGuidance
)

// Attachment describes where a reminder should conceptually attach in the
// conversation.
type Attachment string

const (
	// AttachmentRunStart reminders attach to the start of a run, alongside
	// the system prompt and task.
	AttachmentRunStart Attachment = "run_start"
	// AttachmentTurn reminders attach to a turn, shaping how the model
	// interprets the next rendered messages.
	AttachmentTurn Attachment = "turn"
)

// Reminder describes concrete guidance to inject into prompts.
type Reminder struct {
	// ID is the stable identifier for this reminder type within a run. It is
	// used for de-duplication, rate limiting, and telemetry (e.g.
	// "tool_disabled.search", "approaching_step_budget").
	ID string

	// Text is the natural-language guidance to inject, conventionally
	// wrapped in a <system-reminder>...</system-reminder> tag so the model
	// can distinguish platform guidance from user content.
	Text string

	// Priority records the reminder's tier. Neither Tracker nor the
	// scheduler reads it: admission depends only on MaxPerRun and
	// MinStepsBetween, whatever the tier.
	Priority Tier

	// Attachment indicates where in the conversation this reminder attaches.
	Attachment Attachment

	// MaxPerRun caps how many times this reminder's ID may be emitted in a
	// single run. Zero means unlimited.
	MaxPerRun int

	// MinStepsBetween enforces a minimum number of scheduler steps between
	// emissions of this reminder's ID. Zero means no rate limit.
	MinStepsBetween int
}

// DefaultExplanation documents <system-reminder> blocks for inclusion in an
// agent's system prompt: platform-added guidance the model should read and
// follow but never surface verbatim to the end user.
const DefaultExplanation = `
- **System reminders**
  - You may see <system-reminder>...</system-reminder> blocks in messages.
    These are added by the runtime to provide contextual guidance (e.g. a
    tool was disabled after repeated failures, or the step budget is almost
    exhausted). They are not part of the task, but you should read and act
    on them. Never quote the raw <system-reminder> markup back to the user.`

// Wrap renders text inside the conventional <system-reminder> tag.
func Wrap(text string) string {
	return "<system-reminder>" + text + "</system-reminder>"
}
