package subagent

import (
	"context"
	"sync"

	"github.com/agentcore/reactor/agenterr"
	"github.com/agentcore/reactor/config"
	"github.com/agentcore/reactor/control"
	"github.com/agentcore/reactor/hooks"
	"github.com/agentcore/reactor/memory"
	"github.com/agentcore/reactor/scheduler"
	"github.com/agentcore/reactor/telemetry"
	"github.com/google/uuid"
)

// ChildSpec bundles everything a ChildFactory needs to build one spawned
// scheduler.Scheduler.
type ChildSpec struct {
	AgentName string
	ModelID   string
	RunID     string
	ParentID  string
	// Bridge lets the child issue user_input/confirmation/sub_agent_query
	// control requests back through the orchestrator's Handler.
	Bridge *control.Bridge
}

// ChildFactory constructs the scheduler that will run one spawned child.
// Implementations typically select a Model by spec.ModelID, reuse the
// parent's tool registry filtered to the allowed set, and install
// spec.Bridge as the child's control bridge.
type ChildFactory func(spec ChildSpec) (*scheduler.Scheduler, error)

// Orchestrator spawns child scheduler runs, enforcing SpawnConfig and
// tracking the active-children count so spawn blocks (rejects, per the
// core's contract) once MaxChildren would be exceeded.
type Orchestrator struct {
	SpawnConfig config.SpawnConfig
	Bus         *hooks.Bus
	NewChild    ChildFactory
	// Handler answers control requests issued by spawned children. Nil
	// means no parent is attached; every child control request fails with
	// agenterr.KindEnvironment (per spec §4.8).
	Handler control.Handler

	// Logger receives spawn rejections and child failures; Tracer wraps
	// every Spawn in a span. Nil defaults to the no-op implementations.
	Logger telemetry.Logger
	Tracer telemetry.Tracer

	mu     sync.Mutex
	active int
}

func (o *Orchestrator) logger() telemetry.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return telemetry.NewNoopLogger()
}

func (o *Orchestrator) tracer() telemetry.Tracer {
	if o.Tracer != nil {
		return o.Tracer
	}
	return telemetry.NewNoopTracer()
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(spawn config.SpawnConfig, bus *hooks.Bus, factory ChildFactory, handler control.Handler) *Orchestrator {
	return &Orchestrator{SpawnConfig: spawn, Bus: bus, NewChild: factory, Handler: handler}
}

// SpawnRequest describes one spawn call.
type SpawnRequest struct {
	AgentName      string
	ModelID        string
	Task           string
	Scope          config.ContextScope
	ParentMemory   *memory.AgentMemory
	ParentTraceID  string
	RequestedTools []string
}

// Spawn creates and runs a child scheduler to completion, applying context
// inheritance per req.Scope, and returns the child's RunResult. It rejects
// (emitting SpawnError and returning agenterr.KindSpawn) when spawning is
// disabled, the model is not in AllowedModels, a requested tool is not in
// AllowedTools, or active-children already equals MaxChildren.
func (o *Orchestrator) Spawn(ctx context.Context, req SpawnRequest) (scheduler.RunResult, error) {
	ctx, span := o.tracer().Start(ctx, "subagent.spawn")
	defer span.End()

	if !o.SpawnConfig.Enabled {
		return o.reject(ctx, req, "sub-agent spawning disabled (max_children=0)")
	}
	if req.ModelID != "" && !o.SpawnConfig.AllowsModel(req.ModelID) {
		return o.reject(ctx, req, "model not in allowed_models: "+req.ModelID)
	}
	for _, t := range req.RequestedTools {
		if !o.SpawnConfig.AllowsTool(t) {
			return o.reject(ctx, req, "tool not in allowed_tools: "+t)
		}
	}

	o.mu.Lock()
	if o.active >= o.SpawnConfig.MaxChildren {
		o.mu.Unlock()
		return o.reject(ctx, req, "max_children exceeded")
	}
	o.active++
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.active--
		o.mu.Unlock()
	}()

	launchID := uuid.NewString()
	childTask, err := ExtractContext(req.Scope.Level, req.ParentMemory, req.Task)
	if err != nil {
		return scheduler.RunResult{}, err
	}

	o.Bus.Publish(ctx, hooks.NewSubAgentLaunchedEvent(uuid.NewString(), launchID, req.AgentName, req.Task, req.ParentTraceID))

	bridge := control.NewBridge(o.Handler, o.Bus, launchID)
	child, err := o.NewChild(ChildSpec{AgentName: req.AgentName, ModelID: req.ModelID, RunID: launchID, ParentID: req.ParentTraceID, Bridge: bridge})
	if err != nil {
		o.Bus.Publish(ctx, hooks.NewSpawnErrorEvent(uuid.NewString(), req.ParentTraceID, req.AgentName, err.Error()))
		return scheduler.RunResult{}, agenterr.Wrap(agenterr.KindSpawn, "subagent: failed to build child", err)
	}
	child.RunID = launchID
	if child.Bus == nil {
		child.Bus = o.Bus
	}

	// Re-publish the child's per-step completions onto the orchestrator's
	// bus as SubAgentProgress, correlated by launch id, so a parent-side
	// subscriber can follow the child without subscribing to its bus.
	progress, perr := child.Bus.Register(hooks.SubscriberFunc(func(ctx context.Context, evt hooks.Event) error {
		if sc, ok := evt.(*hooks.StepCompletedEvent); ok && sc.CorrelationID() == launchID {
			o.Bus.Publish(ctx, hooks.NewSubAgentProgressEvent(uuid.NewString(), launchID, sc.StepNumber, string(sc.Outcome)))
		}
		return nil
	}))
	if perr == nil {
		defer progress.Close()
	}

	result, err := child.Run(ctx, childTask, nil)
	if err != nil {
		span.RecordError(err)
		o.logger().Warn(ctx, "subagent: child run failed", "launch_id", launchID, "agent", req.AgentName, "error", err.Error())
		return result, err
	}
	o.Bus.Publish(ctx, hooks.NewSubAgentCompletedEvent(uuid.NewString(), launchID, result.Outcome, result.Output))
	return result, nil
}

func (o *Orchestrator) reject(ctx context.Context, req SpawnRequest, reason string) (scheduler.RunResult, error) {
	o.logger().Warn(ctx, "subagent: spawn rejected", "agent", req.AgentName, "reason", reason)
	o.Bus.Publish(ctx, hooks.NewSpawnErrorEvent(uuid.NewString(), req.ParentTraceID, req.AgentName, reason))
	return scheduler.RunResult{}, agenterr.New(agenterr.KindSpawn, reason)
}

// ActiveChildren reports the current count of in-flight spawned children.
func (o *Orchestrator) ActiveChildren() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}
