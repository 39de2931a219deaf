package hooks

import "github.com/agentcore/reactor/step"

type (
	// ToolCallRequestedEvent fires before a tool runs.
	ToolCallRequestedEvent struct {
		baseEvent
		ToolName  string
		Args      map[string]any
		RequestID string
	}

	// ToolCallCompletedEvent fires after a tool returns (or fails).
	ToolCallCompletedEvent struct {
		baseEvent
		RequestID   string
		Result      any
		Observation string
		IsFinal     bool
	}

	// StepCompletedEvent fires after one ReAct iteration.
	StepCompletedEvent struct {
		baseEvent
		StepNumber   int
		Outcome      step.Outcome
		Observations []string
	}

	// TaskCompletedEvent fires after a run terminates.
	TaskCompletedEvent struct {
		baseEvent
		Outcome    step.Outcome
		Output     any
		StepsTaken int
	}

	// EvaluationCompletedEvent fires after the evaluation phase runs.
	EvaluationCompletedEvent struct {
		baseEvent
		StepNumber int
		Status     step.EvaluationStatus
		Answer     any
		Reasoning  string
	}

	// ErrorOccurredEvent fires when a caught error is reified instead of
	// unwinding the scheduler loop.
	ErrorOccurredEvent struct {
		baseEvent
		ErrorClass   string
		ErrorMessage string
		Context      map[string]any
		Recoverable  bool
	}

	// RateLimitHitEvent fires from the resilience layer on a classified
	// rate-limit error.
	RateLimitHitEvent struct {
		baseEvent
		ToolName        string
		RetryAfter      float64
		OriginalRequest any
	}

	// RetryRequestedEvent fires when the resilience layer schedules a model
	// retry.
	RetryRequestedEvent struct {
		baseEvent
		ModelID           string
		Attempt           int
		MaxAttempts       int
		SuggestedInterval float64
	}

	// FailoverOccurredEvent fires when the resilience layer switches to an
	// alternative model.
	FailoverOccurredEvent struct {
		baseEvent
		FromModelID string
		ToModelID   string
		Attempt     int
	}

	// RecoveryCompletedEvent fires after a retried call eventually succeeds.
	RecoveryCompletedEvent struct {
		baseEvent
		ModelID                string
		AttemptsBeforeRecovery int
	}

	// SubAgentLaunchedEvent fires when the orchestrator spawns a child run.
	SubAgentLaunchedEvent struct {
		baseEvent
		AgentName string
		Task      string
		ParentID  string
		LaunchID  string
	}

	// SubAgentProgressEvent fires per child step.
	SubAgentProgressEvent struct {
		baseEvent
		LaunchID   string
		StepNumber int
		Message    string
	}

	// SubAgentCompletedEvent fires when a child run terminates.
	SubAgentCompletedEvent struct {
		baseEvent
		LaunchID string
		Outcome  step.Outcome
		Output   any
	}

	// ControlYieldedEvent fires when a run suspends on a control request.
	ControlYieldedEvent struct {
		baseEvent
		RequestType string
		RequestID   string
		Prompt      string
	}

	// ControlResumedEvent fires when a control request receives its reply.
	ControlResumedEvent struct {
		baseEvent
		RequestID string
		Approved  bool
		Value     any
	}

	// RunPausedEvent fires when a run is paused out-of-band (supplemented
	// pause/resume control signal, not part of the original tool/sub-agent
	// control-request contract).
	RunPausedEvent struct {
		baseEvent
		Reason string
	}

	// RunResumedEvent fires when a paused run resumes.
	RunResumedEvent struct {
		baseEvent
		Notes string
	}

	// SpawnErrorEvent fires when the orchestrator refuses a spawn request
	// (unauthorized model, unauthorized tool, or max_children exceeded).
	SpawnErrorEvent struct {
		baseEvent
		AgentName string
		Reason    string
		ParentID  string
	}
)

// NewToolCallRequestedEvent constructs a ToolCallRequestedEvent correlated by requestID.
func NewToolCallRequestedEvent(id, requestID, toolName string, args map[string]any) *ToolCallRequestedEvent {
	return &ToolCallRequestedEvent{baseEvent: NewBase(id, requestID), ToolName: toolName, Args: args, RequestID: requestID}
}

// NewToolCallCompletedEvent constructs a ToolCallCompletedEvent correlated by requestID.
func NewToolCallCompletedEvent(id, requestID string, result any, observation string, isFinal bool) *ToolCallCompletedEvent {
	return &ToolCallCompletedEvent{baseEvent: NewBase(id, requestID), RequestID: requestID, Result: result, Observation: observation, IsFinal: isFinal}
}

// NewStepCompletedEvent constructs a StepCompletedEvent correlated by runID.
func NewStepCompletedEvent(id, runID string, stepNumber int, outcome step.Outcome, observations []string) *StepCompletedEvent {
	return &StepCompletedEvent{baseEvent: NewBase(id, runID), StepNumber: stepNumber, Outcome: outcome, Observations: observations}
}

// NewTaskCompletedEvent constructs a TaskCompletedEvent correlated by runID.
func NewTaskCompletedEvent(id, runID string, outcome step.Outcome, output any, stepsTaken int) *TaskCompletedEvent {
	return &TaskCompletedEvent{baseEvent: NewBase(id, runID), Outcome: outcome, Output: output, StepsTaken: stepsTaken}
}

// NewEvaluationCompletedEvent constructs an EvaluationCompletedEvent correlated by runID.
func NewEvaluationCompletedEvent(id, runID string, stepNumber int, status step.EvaluationStatus, answer any, reasoning string) *EvaluationCompletedEvent {
	return &EvaluationCompletedEvent{baseEvent: NewBase(id, runID), StepNumber: stepNumber, Status: status, Answer: answer, Reasoning: reasoning}
}

// NewErrorOccurredEvent constructs an ErrorOccurredEvent correlated by runID.
func NewErrorOccurredEvent(id, runID, errorClass, errorMessage string, ctx map[string]any, recoverable bool) *ErrorOccurredEvent {
	return &ErrorOccurredEvent{baseEvent: NewBase(id, runID), ErrorClass: errorClass, ErrorMessage: errorMessage, Context: ctx, Recoverable: recoverable}
}

// NewRateLimitHitEvent constructs a RateLimitHitEvent correlated by requestID.
func NewRateLimitHitEvent(id, requestID, toolName string, retryAfter float64, originalRequest any) *RateLimitHitEvent {
	return &RateLimitHitEvent{baseEvent: NewBase(id, requestID), ToolName: toolName, RetryAfter: retryAfter, OriginalRequest: originalRequest}
}

// NewRetryRequestedEvent constructs a RetryRequestedEvent correlated by modelID.
func NewRetryRequestedEvent(id, modelID string, attempt, maxAttempts int, suggestedInterval float64) *RetryRequestedEvent {
	return &RetryRequestedEvent{baseEvent: NewBase(id, modelID), ModelID: modelID, Attempt: attempt, MaxAttempts: maxAttempts, SuggestedInterval: suggestedInterval}
}

// NewFailoverOccurredEvent constructs a FailoverOccurredEvent correlated by fromModelID.
func NewFailoverOccurredEvent(id, fromModelID, toModelID string, attempt int) *FailoverOccurredEvent {
	return &FailoverOccurredEvent{baseEvent: NewBase(id, fromModelID), FromModelID: fromModelID, ToModelID: toModelID, Attempt: attempt}
}

// NewRecoveryCompletedEvent constructs a RecoveryCompletedEvent correlated by modelID.
func NewRecoveryCompletedEvent(id, modelID string, attemptsBeforeRecovery int) *RecoveryCompletedEvent {
	return &RecoveryCompletedEvent{baseEvent: NewBase(id, modelID), ModelID: modelID, AttemptsBeforeRecovery: attemptsBeforeRecovery}
}

// NewSubAgentLaunchedEvent constructs a SubAgentLaunchedEvent correlated by launchID.
func NewSubAgentLaunchedEvent(id, launchID, agentName, task, parentID string) *SubAgentLaunchedEvent {
	return &SubAgentLaunchedEvent{baseEvent: NewBase(id, launchID), AgentName: agentName, Task: task, ParentID: parentID, LaunchID: launchID}
}

// NewSubAgentProgressEvent constructs a SubAgentProgressEvent correlated by launchID.
func NewSubAgentProgressEvent(id, launchID string, stepNumber int, message string) *SubAgentProgressEvent {
	return &SubAgentProgressEvent{baseEvent: NewBase(id, launchID), LaunchID: launchID, StepNumber: stepNumber, Message: message}
}

// NewSubAgentCompletedEvent constructs a SubAgentCompletedEvent correlated by launchID.
func NewSubAgentCompletedEvent(id, launchID string, outcome step.Outcome, output any) *SubAgentCompletedEvent {
	return &SubAgentCompletedEvent{baseEvent: NewBase(id, launchID), LaunchID: launchID, Outcome: outcome, Output: output}
}

// NewControlYieldedEvent constructs a ControlYieldedEvent correlated by requestID.
func NewControlYieldedEvent(id, requestID, requestType, prompt string) *ControlYieldedEvent {
	return &ControlYieldedEvent{baseEvent: NewBase(id, requestID), RequestType: requestType, RequestID: requestID, Prompt: prompt}
}

// NewControlResumedEvent constructs a ControlResumedEvent correlated by requestID.
func NewControlResumedEvent(id, requestID string, approved bool, value any) *ControlResumedEvent {
	return &ControlResumedEvent{baseEvent: NewBase(id, requestID), RequestID: requestID, Approved: approved, Value: value}
}

// NewRunPausedEvent constructs a RunPausedEvent correlated by runID.
func NewRunPausedEvent(id, runID, reason string) *RunPausedEvent {
	return &RunPausedEvent{baseEvent: NewBase(id, runID), Reason: reason}
}

// NewRunResumedEvent constructs a RunResumedEvent correlated by runID.
func NewRunResumedEvent(id, runID, notes string) *RunResumedEvent {
	return &RunResumedEvent{baseEvent: NewBase(id, runID), Notes: notes}
}

// NewSpawnErrorEvent constructs a SpawnErrorEvent correlated by parentID.
func NewSpawnErrorEvent(id, parentID, agentName, reason string) *SpawnErrorEvent {
	return &SpawnErrorEvent{baseEvent: NewBase(id, parentID), AgentName: agentName, Reason: reason, ParentID: parentID}
}

func (ToolCallRequestedEvent) Type() EventType   { return EventToolCallRequested }
func (ToolCallCompletedEvent) Type() EventType   { return EventToolCallCompleted }
func (StepCompletedEvent) Type() EventType       { return EventStepCompleted }
func (TaskCompletedEvent) Type() EventType       { return EventTaskCompleted }
func (EvaluationCompletedEvent) Type() EventType { return EventEvaluationComplete }
func (ErrorOccurredEvent) Type() EventType       { return EventErrorOccurred }
func (RateLimitHitEvent) Type() EventType        { return EventRateLimitHit }
func (RetryRequestedEvent) Type() EventType      { return EventRetryRequested }
func (FailoverOccurredEvent) Type() EventType    { return EventFailoverOccurred }
func (RecoveryCompletedEvent) Type() EventType   { return EventRecoveryCompleted }
func (SubAgentLaunchedEvent) Type() EventType    { return EventSubAgentLaunched }
func (SubAgentProgressEvent) Type() EventType    { return EventSubAgentProgress }
func (SubAgentCompletedEvent) Type() EventType   { return EventSubAgentCompleted }
func (ControlYieldedEvent) Type() EventType      { return EventControlYielded }
func (ControlResumedEvent) Type() EventType      { return EventControlResumed }
func (RunPausedEvent) Type() EventType           { return EventRunPaused }
func (RunResumedEvent) Type() EventType          { return EventRunResumed }
func (SpawnErrorEvent) Type() EventType          { return EventSpawnError }
