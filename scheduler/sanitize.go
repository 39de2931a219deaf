package scheduler

import "strings"

// Sanitizer inspects text for injected instructions before it either enters
// the system prompt (custom_instructions, at config construction) or leaves
// the run as an observation recorded in an event. It returns the text to use
// (unchanged, unless the sanitizer redacts part of it) and whether it
// flagged a suspicious pattern.
type Sanitizer func(text string) (clean string, flagged bool)

// DefaultSanitizer flags a small set of common prompt-injection markers
// ("ignore previous instructions", "disregard the system prompt", and
// similar phrasing) without altering the text. It is intentionally
// conservative: detection lives outside the core per spec §9, this is a
// reasonable stand-in so the required call site (§9, "the core MUST call
// the sanitizer... ") has a real default Scheduler callers can use.
func DefaultSanitizer(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, marker := range []string{
		"ignore previous instructions",
		"ignore all previous instructions",
		"disregard the system prompt",
		"disregard previous instructions",
	} {
		if strings.Contains(lower, marker) {
			return text, true
		}
	}
	return text, false
}
