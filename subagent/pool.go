package subagent

import (
	"context"
	"time"

	"github.com/agentcore/reactor/scheduler"
)

// OrchestratorResult is the typed outcome of an AgentPool.Run fan-out: which
// spawn requests succeeded, which failed, and the wall-clock duration of
// the whole fan-out.
type OrchestratorResult struct {
	Succeeded []scheduler.RunResult
	Failed    []error
	Duration  time.Duration
}

// AgentPool fans out multiple sub-agent spawns over independent tasks with
// bounded concurrency. Scheduling is fair: requests are admitted to the
// worker pool in the order Run receives them (FIFO), though individual
// results may complete out of order since each runs in its own isolated
// execution context — no run's outcome depends on another's, and no run can
// mutate another's memory.
type AgentPool struct {
	Orchestrator  *Orchestrator
	MaxConcurrent int
}

// NewAgentPool constructs an AgentPool bounded to maxConcurrent simultaneous
// child runs.
func NewAgentPool(orch *Orchestrator, maxConcurrent int) *AgentPool {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &AgentPool{Orchestrator: orch, MaxConcurrent: maxConcurrent}
}

// Run spawns every request in reqs, admitting at most MaxConcurrent
// concurrently, in the FIFO order reqs was given. It blocks until every
// spawn has completed or failed.
func (p *AgentPool) Run(ctx context.Context, reqs []SpawnRequest) OrchestratorResult {
	start := time.Now()

	type outcome struct {
		index  int
		result scheduler.RunResult
		err    error
	}

	sem := make(chan struct{}, p.MaxConcurrent)
	out := make(chan outcome, len(reqs))

	for i, req := range reqs {
		i, req := i, req
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			res, err := p.Orchestrator.Spawn(ctx, req)
			out <- outcome{index: i, result: res, err: err}
		}()
	}

	results := make([]outcome, len(reqs))
	for range reqs {
		o := <-out
		results[o.index] = o
	}

	var final OrchestratorResult
	for _, o := range results {
		if o.err != nil {
			final.Failed = append(final.Failed, o.err)
			continue
		}
		final.Succeeded = append(final.Succeeded, o.result)
	}
	final.Duration = time.Since(start)
	return final
}
