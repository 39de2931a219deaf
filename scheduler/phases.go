package scheduler

import (
	"context"

	"github.com/agentcore/reactor/config"
	"github.com/agentcore/reactor/message"
	"github.com/agentcore/reactor/step"
)

// Planner produces a plan string for the planning phase, given the messages
// rendered so far. Implementations typically issue a Model.Generate call
// with a planning-specific prompt appended.
type Planner func(ctx context.Context, messages []message.ChatMessage) (planText string, usage message.TokenUsage, err error)

// EvaluationResult is the evaluation phase's output: a metacognitive
// classification of the run state, plus an optional answer/reasoning and a
// confidence in [0,1].
type EvaluationResult struct {
	Status     step.EvaluationStatus
	Answer     any
	Reasoning  *string
	Confidence *float64
}

// Evaluator classifies the run state from the messages rendered so far.
type Evaluator func(ctx context.Context, messages []message.ChatMessage) (EvaluationResult, error)

// duePlanning reports whether a planning phase should run before the turn
// at stepNumber. cfg.PlansEveryStep (planning_interval=0) always plans; a
// positive interval N plans once up front (no PlanningStep in memory yet)
// and then every N steps thereafter.
func duePlanning(cfg config.AgentConfig, stepNumber int, havePlan bool) bool {
	if cfg.PlansEveryStep() {
		return true
	}
	if !havePlan {
		return true
	}
	return (stepNumber-1)%cfg.PlanningInterval == 0
}
