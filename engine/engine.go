// Package engine defines a pluggable execution backend for running a
// scheduler.Scheduler: the default in-process backend (engine/inmem) and a
// Temporal-backed durable backend (engine/temporal) satisfy the same
// Engine interface, so a caller can swap durability characteristics without
// touching scheduler or subagent code.
package engine

import (
	"context"

	"github.com/agentcore/reactor/scheduler"
)

// RunRequest describes one run to start.
type RunRequest struct {
	// RunID correlates the run across engine, event bus, and runlog. Engines
	// generate one if empty.
	RunID     string
	Scheduler *scheduler.Scheduler
	Task      string
	Images    [][]byte
}

// Handle represents an in-flight or completed run started through an
// Engine. Wait blocks until the run reaches a terminal outcome; Cancel
// requests early termination (the run still completes with a terminal
// outcome — timeout or error — per spec §5's cancellation contract, it does
// not simply vanish).
type Handle interface {
	ID() string
	Wait(ctx context.Context) (scheduler.RunResult, error)
	Cancel(ctx context.Context) error
}

// Engine starts scheduler runs against a specific execution backend.
type Engine interface {
	StartRun(ctx context.Context, req RunRequest) (Handle, error)
}
