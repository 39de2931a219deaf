// Package inmem provides an in-process implementation of engine.Engine,
// grounded on runtime/agent/engine/inmem: each run is a goroutine driving a
// scheduler.Scheduler.Run call to completion, with Wait/Cancel coordinated
// over a done channel. It is not durable across process restarts and is
// intended for local development, tests, and single-process deployments.
package inmem

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/agentcore/reactor/engine"
	"github.com/agentcore/reactor/scheduler"
)

type eng struct {
	mu      sync.Mutex
	handles map[string]*handle
}

// New returns an Engine that runs every scheduler.Scheduler in-process.
func New() engine.Engine {
	return &eng{handles: make(map[string]*handle)}
}

type handle struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	result scheduler.RunResult
	err    error
}

func (e *eng) StartRun(ctx context.Context, req engine.RunRequest) (engine.Handle, error) {
	if req.Scheduler == nil {
		return nil, errors.New("inmem: engine.RunRequest.Scheduler is required")
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	req.Scheduler.RunID = runID

	runCtx, cancel := context.WithCancel(context.Background())
	h := &handle{id: runID, cancel: cancel, done: make(chan struct{})}

	e.mu.Lock()
	e.handles[runID] = h
	e.mu.Unlock()

	go func() {
		defer close(h.done)
		res, err := req.Scheduler.Run(runCtx, req.Task, req.Images)
		h.mu.Lock()
		h.result, h.err = res, err
		h.mu.Unlock()
	}()

	return h, nil
}

func (h *handle) ID() string { return h.id }

func (h *handle) Wait(ctx context.Context) (scheduler.RunResult, error) {
	select {
	case <-ctx.Done():
		return scheduler.RunResult{}, ctx.Err()
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.result, h.err
	}
}

func (h *handle) Cancel(ctx context.Context) error {
	h.cancel()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return nil
	}
}

var _ engine.Engine = (*eng)(nil)

// ErrUnknownRun identifies a run ID the engine never started. The engine
// keeps no table of runs by ID, and none of its methods returns this error.
var ErrUnknownRun = fmt.Errorf("inmem: unknown run")
