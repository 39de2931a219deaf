// Package temporal implements engine.Engine on top of Temporal: each run
// becomes a single workflow execution that drives one activity, which in
// turn owns the actual scheduler.Scheduler.Run call. Scheduler.Run is not
// itself replay-safe (it calls out to Model.Generate, tools, and the
// sandbox), so it cannot run directly inside workflow code per Temporal's
// determinism rules; wrapping the whole run in one activity is the
// simplest boundary that still gives the run Temporal's durability,
// retries, and visibility. Grounded on
// runtime/agent/engine/temporal/engine.go, trimmed from that package's
// general workflow/activity registry down to the one run-shaped workflow
// this repo needs.
package temporal

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/google/uuid"

	"github.com/agentcore/reactor/engine"
	"github.com/agentcore/reactor/scheduler"
)

// WorkflowName identifies the run workflow registered with Temporal.
const WorkflowName = "agentcore_run"

// activityName identifies the run activity registered with Temporal.
const activityName = "agentcore_run_activity"

// runInput is the payload handed from the workflow to the run activity.
// Scheduler is not itself serializable (it carries function fields), so
// Options carries the registry the activity looks it up in instead of the
// scheduler.Scheduler value.
type runInput struct {
	RunID  string
	Task   string
	Images [][]byte
}

// Options configures the Temporal engine adapter.
type Options struct {
	// Client is a pre-configured Temporal client. Required.
	Client client.Client

	// TaskQueue is the queue workers poll and workflows/activities are
	// dispatched on. Required.
	TaskQueue string

	// ActivityStartToClose bounds the run activity's execution time. Zero or
	// negative uses a 24-hour bound.
	ActivityStartToClose time.Duration

	// Registry resolves a RunID's scheduler.Scheduler inside the activity,
	// since scheduler.Scheduler cannot cross the workflow/activity boundary.
	// Required.
	Registry *SchedulerRegistry
}

// SchedulerRegistry maps RunIDs to the scheduler.Scheduler that should
// execute them. A caller registers a scheduler immediately before calling
// StartRun, so the activity (which may run in a different process) can
// look it up when the workflow schedules it.
type SchedulerRegistry struct {
	store map[string]*scheduler.Scheduler
}

// NewSchedulerRegistry returns an empty SchedulerRegistry.
func NewSchedulerRegistry() *SchedulerRegistry {
	return &SchedulerRegistry{store: make(map[string]*scheduler.Scheduler)}
}

// Put registers sc under runID, overwriting any prior entry.
func (r *SchedulerRegistry) Put(runID string, sc *scheduler.Scheduler) {
	r.store[runID] = sc
}

// Take looks up and removes the scheduler registered for runID.
func (r *SchedulerRegistry) Take(runID string) (*scheduler.Scheduler, bool) {
	sc, ok := r.store[runID]
	if ok {
		delete(r.store, runID)
	}
	return sc, ok
}

// Engine implements engine.Engine using Temporal as the durable execution
// backend. Every run maps to one workflow execution driving one activity.
type Engine struct {
	client    client.Client
	taskQueue string
	actOpts   workflow.ActivityOptions
	registry  *SchedulerRegistry
	worker    worker.Worker
}

// New constructs a Temporal engine adapter and registers its workflow and
// activity with a worker for opts.TaskQueue. Call Start to begin polling.
func New(opts Options) (*Engine, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("temporal engine: Client is required")
	}
	if opts.TaskQueue == "" {
		return nil, fmt.Errorf("temporal engine: TaskQueue is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("temporal engine: Registry is required")
	}
	startToClose := opts.ActivityStartToClose
	if startToClose <= 0 {
		startToClose = 24 * time.Hour
	}

	e := &Engine{
		client:    opts.Client,
		taskQueue: opts.TaskQueue,
		registry:  opts.Registry,
		actOpts: workflow.ActivityOptions{
			StartToCloseTimeout: startToClose,
		},
	}

	w := worker.New(opts.Client, opts.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(e.runWorkflow, workflow.RegisterOptions{Name: WorkflowName})
	w.RegisterActivityWithOptions(e.runActivity, activity.RegisterOptions{Name: activityName})
	e.worker = w

	return e, nil
}

// Start begins polling opts.TaskQueue for workflow and activity tasks. It
// blocks until ctx is cancelled or worker.InterruptCh fires.
func (e *Engine) Start(ctx context.Context) error {
	stop := make(chan interface{})
	go func() {
		select {
		case <-ctx.Done():
		case <-worker.InterruptCh():
		}
		close(stop)
	}()
	return e.worker.Run(stop)
}

// Stop gracefully drains and stops the worker.
func (e *Engine) Stop() {
	e.worker.Stop()
}

// runWorkflow is the Temporal workflow function: it executes the run
// activity once (Temporal's own retry policy governs activity-level
// retries; the scheduler's own resilience.Resilient layer governs
// model-call-level retries inside the activity) and returns its result.
func (e *Engine) runWorkflow(ctx workflow.Context, in runInput) (scheduler.RunResult, error) {
	ctx = workflow.WithActivityOptions(ctx, e.actOpts)
	var result scheduler.RunResult
	err := workflow.ExecuteActivity(ctx, activityName, in).Get(ctx, &result)
	return result, err
}

// runActivity looks up the scheduler registered for in.RunID and drives it
// to completion.
func (e *Engine) runActivity(ctx context.Context, in runInput) (scheduler.RunResult, error) {
	sc, ok := e.registry.Take(in.RunID)
	if !ok {
		return scheduler.RunResult{}, fmt.Errorf("temporal engine: no scheduler registered for run %q", in.RunID)
	}
	sc.RunID = in.RunID
	return sc.Run(ctx, in.Task, in.Images)
}

// StartRun starts a new workflow execution for req. req.Scheduler is
// registered with the engine's SchedulerRegistry under the resolved run ID
// before the workflow is dispatched, so the activity (wherever it lands)
// can retrieve it.
func (e *Engine) StartRun(ctx context.Context, req engine.RunRequest) (engine.Handle, error) {
	if req.Scheduler == nil {
		return nil, fmt.Errorf("temporal engine: engine.RunRequest.Scheduler is required")
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	e.registry.Put(runID, req.Scheduler)

	run, err := e.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        runID,
		TaskQueue: e.taskQueue,
	}, WorkflowName, runInput{RunID: runID, Task: req.Task, Images: req.Images})
	if err != nil {
		return nil, fmt.Errorf("temporal engine: start workflow: %w", err)
	}

	return &handle{client: e.client, run: run}, nil
}

type handle struct {
	client client.Client
	run    client.WorkflowRun
}

func (h *handle) ID() string { return h.run.GetID() }

func (h *handle) Wait(ctx context.Context) (scheduler.RunResult, error) {
	var result scheduler.RunResult
	err := h.run.Get(ctx, &result)
	return result, err
}

func (h *handle) Cancel(ctx context.Context) error {
	return h.client.CancelWorkflow(ctx, h.run.GetID(), h.run.GetRunID())
}

var _ engine.Engine = (*Engine)(nil)
