package step

// Outcome is the terminal classification of a run.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeFinalAnswer     Outcome = "final_answer"
	OutcomePartial         Outcome = "partial"
	OutcomeFailure         Outcome = "failure"
	OutcomeError           Outcome = "error"
	OutcomeMaxStepsReached Outcome = "max_steps_reached"
	OutcomeTimeout         Outcome = "timeout"
)

var completed = map[Outcome]bool{
	OutcomeSuccess:     true,
	OutcomeFinalAnswer: true,
}

var failed = map[Outcome]bool{
	OutcomeFailure:         true,
	OutcomeError:           true,
	OutcomeMaxStepsReached: true,
	OutcomeTimeout:         true,
}

var retriable = map[Outcome]bool{
	OutcomePartial:         true,
	OutcomeMaxStepsReached: true,
}

var terminal = map[Outcome]bool{
	OutcomeSuccess:         true,
	OutcomeFinalAnswer:     true,
	OutcomeFailure:         true,
	OutcomeError:           true,
	OutcomeTimeout:         true,
}

// Completed reports whether o is in the {success, final_answer} partition.
func (o Outcome) Completed() bool { return completed[o] }

// Failed reports whether o is in the {failure, error, max_steps_reached, timeout} partition.
func (o Outcome) Failed() bool { return failed[o] }

// Retriable reports whether o is in the {partial, max_steps_reached} partition.
func (o Outcome) Retriable() bool { return retriable[o] }

// Terminal reports whether o is in completed ∪ {failure, error, timeout, final_answer}.
// Note max_steps_reached is deliberately excluded from Terminal per the
// spec's partition (it is Failed and Retriable but not listed under
// Terminal); callers that need "run has stopped" should use Failed() ||
// Completed() instead.
func (o Outcome) Terminal() bool { return terminal[o] }
