// Package hooks implements the event bus: typed publish/subscribe with
// ordered delivery per event correlation id. Producers are the scheduler,
// tool registry, resilience layer, and sub-agent orchestrator; consumers are
// telemetry exporters, the runlog adapter, and test observers.
//
// Typical usage:
//
//	bus := hooks.NewBus()
//	sub, _ := bus.Register(hooks.SubscriberFunc(func(ctx context.Context, evt hooks.Event) error {
//	    if evt.Type() == hooks.EventStepCompleted {
//	        fmt.Println("step done")
//	    }
//	    return nil
//	}))
//	defer sub.Close()
//	bus.Publish(ctx, &hooks.StepCompletedEvent{...})
package hooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentcore/reactor/telemetry"
)

// EventType enumerates the event catalog. Subscribing by EventType (rather
// than only by concrete Go type) lets a subscriber declare interest with a
// stable string alias.
type EventType string

const (
	EventToolCallRequested  EventType = "tool_call_requested"
	EventToolCallCompleted  EventType = "tool_call_completed"
	EventStepCompleted      EventType = "step_completed"
	EventTaskCompleted      EventType = "task_completed"
	EventEvaluationComplete EventType = "evaluation_completed"
	EventErrorOccurred      EventType = "error_occurred"
	EventRateLimitHit       EventType = "rate_limit_hit"
	EventRetryRequested     EventType = "retry_requested"
	EventFailoverOccurred   EventType = "failover_occurred"
	EventRecoveryCompleted  EventType = "recovery_completed"
	EventSubAgentLaunched   EventType = "sub_agent_launched"
	EventSubAgentProgress   EventType = "sub_agent_progress"
	EventSubAgentCompleted  EventType = "sub_agent_completed"
	EventControlYielded     EventType = "control_yielded"
	EventControlResumed     EventType = "control_resumed"
	EventRunPaused          EventType = "run_paused"
	EventRunResumed         EventType = "run_resumed"
	EventSpawnError         EventType = "spawn_error"
)

// eventTypes is the stable string-alias mapping subscribers can register
// against. New catalog entries must be added here to be addressable by name.
var eventTypes = map[string]EventType{
	string(EventToolCallRequested):  EventToolCallRequested,
	string(EventToolCallCompleted):  EventToolCallCompleted,
	string(EventStepCompleted):      EventStepCompleted,
	string(EventTaskCompleted):      EventTaskCompleted,
	string(EventEvaluationComplete): EventEvaluationComplete,
	string(EventErrorOccurred):      EventErrorOccurred,
	string(EventRateLimitHit):       EventRateLimitHit,
	string(EventRetryRequested):     EventRetryRequested,
	string(EventFailoverOccurred):   EventFailoverOccurred,
	string(EventRecoveryCompleted):  EventRecoveryCompleted,
	string(EventSubAgentLaunched):   EventSubAgentLaunched,
	string(EventSubAgentProgress):   EventSubAgentProgress,
	string(EventSubAgentCompleted):  EventSubAgentCompleted,
	string(EventControlYielded):     EventControlYielded,
	string(EventControlResumed):     EventControlResumed,
	string(EventRunPaused):          EventRunPaused,
	string(EventRunResumed):         EventRunResumed,
	string(EventSpawnError):         EventSpawnError,
}

// ParseEventType resolves a string event-name alias to its EventType. The
// mapping is stable: aliases are the snake_case names listed in the event
// catalog constants above.
func ParseEventType(name string) (EventType, bool) {
	et, ok := eventTypes[name]
	return et, ok
}

// Event is the interface every concrete event type implements. Subscribers
// use a type switch to reach event-specific fields; Type/ID/CreatedAt/
// CorrelationID are common to all variants.
type Event interface {
	Type() EventType
	ID() string
	CreatedAt() time.Time
	// DueAt is non-zero only for events scheduled ahead of time (e.g. a
	// resilience-layer retry announced before it fires).
	DueAt() time.Time
	// CorrelationID groups events that must be delivered in emission order
	// relative to one another: a tool's request id, a sub-agent's launch id,
	// or a run id for run-scoped events.
	CorrelationID() string
}

// baseEvent is embedded by every concrete event struct to satisfy Event's
// common accessors without repeating them.
type baseEvent struct {
	id        string
	createdAt time.Time
	dueAt     time.Time
	corrID    string
}

func (b baseEvent) ID() string            { return b.id }
func (b baseEvent) CreatedAt() time.Time  { return b.createdAt }
func (b baseEvent) DueAt() time.Time      { return b.dueAt }
func (b baseEvent) CorrelationID() string { return b.corrID }

// NewBase constructs the common fields shared by every event variant. id
// should be a fresh unique identifier (callers typically use uuid.NewString()).
func NewBase(id, correlationID string) baseEvent {
	return baseEvent{id: id, createdAt: time.Now(), corrID: correlationID}
}

// WithDueAt returns a copy of b with DueAt set, for scheduled events.
func (b baseEvent) WithDueAt(t time.Time) baseEvent {
	b.dueAt = t
	return b
}

// Subscriber receives events published on a Bus.
type Subscriber interface {
	HandleEvent(ctx context.Context, event Event) error
}

// SubscriberFunc adapts an ordinary function to Subscriber.
type SubscriberFunc func(ctx context.Context, event Event) error

// HandleEvent implements Subscriber by invoking fn.
func (fn SubscriberFunc) HandleEvent(ctx context.Context, event Event) error { return fn(ctx, event) }

// Subscription is returned by Register; Close unregisters the subscriber and
// stops its delivery goroutine. Close is idempotent.
type Subscription struct {
	bus *Bus
	id  uint64
}

// Close unregisters the subscription. Safe to call more than once.
func (s Subscription) Close() {
	if s.bus == nil {
		return
	}
	s.bus.unregister(s.id)
}

const subscriberQueueSize = 256

// subscriberEntry pairs a Subscriber with its private ordered delivery
// queue. One goroutine per subscriber drains the queue, which guarantees
// per-subscriber (and therefore per-correlation-id) delivery order while
// keeping Publish non-blocking for the emitter under normal load. The queue
// channel is never closed: unregistration signals through stop instead, so a
// Publish that snapshotted the entry before Close can still send safely.
type subscriberEntry struct {
	id    uint64
	sub   Subscriber
	queue chan Event
	stop  chan struct{}
	done  chan struct{}
}

// Bus is a typed publish/subscribe event bus. The zero value is not usable;
// construct with NewBus.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriberEntry
	logger telemetry.Logger
}

// Option configures a Bus constructed via NewBus.
type Option func(*Bus)

// WithLogger installs a Logger used to report swallowed subscriber errors
// and dropped events. Defaults to telemetry.NewNoopLogger().
func WithLogger(l telemetry.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// NewBus constructs an empty Bus ready to accept Register/Publish calls.
func NewBus(opts ...Option) *Bus {
	b := &Bus{subs: make(map[uint64]*subscriberEntry), logger: telemetry.NewNoopLogger()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds sub to the bus and starts its delivery goroutine. The
// returned Subscription's Close method must be called to stop the goroutine
// and free resources; it is always safe to call Register/Close concurrently
// with Publish.
func (b *Bus) Register(sub Subscriber) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	entry := &subscriberEntry{id: id, sub: sub, queue: make(chan Event, subscriberQueueSize), stop: make(chan struct{}), done: make(chan struct{})}
	b.subs[id] = entry
	go b.drain(entry)
	return Subscription{bus: b, id: id}, nil
}

// RegisterFor adds sub to the bus filtered to the given event types: only
// matching events are delivered. At least one type is required, and every
// type must name a catalog entry.
func (b *Bus) RegisterFor(sub Subscriber, types ...EventType) (Subscription, error) {
	if len(types) == 0 {
		return Subscription{}, fmt.Errorf("hooks: RegisterFor requires at least one event type")
	}
	want := make(map[EventType]bool, len(types))
	for _, et := range types {
		if _, ok := eventTypes[string(et)]; !ok {
			return Subscription{}, fmt.Errorf("hooks: unknown event type %q", et)
		}
		want[et] = true
	}
	return b.Register(SubscriberFunc(func(ctx context.Context, evt Event) error {
		if !want[evt.Type()] {
			return nil
		}
		return sub.HandleEvent(ctx, evt)
	}))
}

func (b *Bus) unregister(id uint64) {
	b.mu.Lock()
	entry, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()
	if ok {
		close(entry.stop)
	}
}

func (b *Bus) drain(entry *subscriberEntry) {
	defer close(entry.done)
	ctx := context.Background()
	for {
		select {
		case <-entry.stop:
			return
		case evt := <-entry.queue:
			if err := entry.sub.HandleEvent(ctx, evt); err != nil {
				// Delivery failure in a subscriber must never propagate to
				// the emitter; log and swallow.
				b.logger.Warn(ctx, "hooks: subscriber returned error", "event_type", string(evt.Type()), "error", err.Error())
			}
		}
	}
}

// Publish hands evt to every currently-registered subscriber's private
// queue. Publish takes a short critical section only to snapshot the
// subscriber list; subscriber invocation happens asynchronously and outside
// that section, so a slow subscriber cannot stall the emitter or other
// subscribers.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	b.mu.Lock()
	entries := make([]*subscriberEntry, 0, len(b.subs))
	for _, e := range b.subs {
		entries = append(entries, e)
	}
	b.mu.Unlock()

	for _, e := range entries {
		select {
		case <-e.stop:
			// Subscriber closed between the snapshot and this send.
		case e.queue <- evt:
		default:
			b.logger.Warn(ctx, "hooks: subscriber queue full, dropping event", "event_type", string(evt.Type()), "subscriber", e.id)
		}
	}
}
