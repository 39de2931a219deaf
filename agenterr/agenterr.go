// Package agenterr provides the structured error taxonomy used across the
// agent execution core (config validation, generation, parsing, tool
// execution, sandbox limits, resilience classification, spawn, and control
// plane errors). Errors preserve causal chains and support errors.Is/As
// instead of being reduced to bare strings.
package agenterr

import (
	"errors"
	"fmt"
)

// Kind classifies an AgentError per the core's error taxonomy. Kind values
// are part of the public contract: callers branch on Kind to decide
// recovery policy (see the core's error-handling design).
type Kind string

const (
	// KindConfiguration marks config validation failures. Fail fast on run start.
	KindConfiguration Kind = "configuration"
	// KindGeneration marks malformed model output. Retry once, else surface.
	KindGeneration Kind = "generation"
	// KindParsing marks a failure to extract a code block or tool-call payload.
	KindParsing Kind = "parsing"
	// KindToolExecution marks a tool call that raised, received bad args, or named an unknown tool.
	KindToolExecution Kind = "tool_execution"
	// KindInterpreter marks a sandbox limit violation (operation budget, timeout, forbidden construct).
	KindInterpreter Kind = "interpreter"
	// KindRateLimit marks a classified 429-like response. Never fatal by itself.
	KindRateLimit Kind = "rate_limit"
	// KindService marks a classified 5xx/transport failure. Retries, then failover, then fatal.
	KindService Kind = "service"
	// KindAuthentication marks a classified 401/403. Fatal; never retried.
	KindAuthentication Kind = "authentication"
	// KindPromptInjection marks a sanitizer hit. Configurable: warn or fatal.
	KindPromptInjection Kind = "prompt_injection"
	// KindMaxStepsReached marks the scheduler's step budget exhausting. Terminal outcome, not an exception.
	KindMaxStepsReached Kind = "max_steps_reached"
	// KindTimeout marks any expired deadline. Terminal outcome.
	KindTimeout Kind = "timeout"
	// KindSpawn marks an orchestrator spawn refusal. Surfaced to the caller of spawn.
	KindSpawn Kind = "spawn"
	// KindEnvironment marks a control request issued with no parent attached.
	KindEnvironment Kind = "environment"
)

// AgentError is a structured error carrying a taxonomy Kind plus an optional
// causal chain. The wrapped cause is kept as-is so errors.As still reaches
// the original typed error (an HTTP status error, a context deadline) through
// the chain — the resilience layer's classification depends on that.
type AgentError struct {
	Kind    Kind
	Message string
	Cause   error
}

// New constructs an AgentError of the given kind with no wrapped cause.
func New(kind Kind, message string) *AgentError {
	if message == "" {
		message = string(kind)
	}
	return &AgentError{Kind: kind, Message: message}
}

// Newf formats according to a format specifier and returns the result as an AgentError.
func Newf(kind Kind, format string, args ...any) *AgentError {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap constructs an AgentError of the given kind wrapping cause verbatim.
func Wrap(kind Kind, message string, cause error) *AgentError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &AgentError{Kind: kind, Message: message, Cause: cause}
}

// FromError converts an arbitrary error into an AgentError, preserving an
// existing AgentError (and its Kind) if one is found via errors.As; a plain
// error is wrapped as KindService with itself as the cause.
func FromError(err error) *AgentError {
	if err == nil {
		return nil
	}
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae
	}
	return &AgentError{Kind: KindService, Message: err.Error(), Cause: err}
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil && e.Message != e.Cause.Error() {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, supporting errors.Is/As traversal.
func (e *AgentError) Unwrap() error {
	if e == nil || e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an AgentError with the same Kind, enabling
// errors.Is(err, agenterr.New(agenterr.KindTimeout, "")) style matching on
// the taxonomy rather than on message text.
func (e *AgentError) Is(target error) bool {
	var ae *AgentError
	if !errors.As(target, &ae) {
		return false
	}
	return e.Kind == ae.Kind
}

// Of reports the Kind of err if it is (or wraps) an AgentError, and whether
// one was found.
func Of(err error) (Kind, bool) {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}
