// Package runlog provides a durable, append-only event log for agent runs,
// separate from the ephemeral fan-out of the hooks event bus (§4.2): the
// bus delivers events to whatever subscribers happen to be registered right
// now and discards them afterward; runlog is the durable audit trail a
// caller can page through after the fact, grounded on
// runtime/agent/runlog.Store.
package runlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agentcore/reactor/hooks"
)

// Event is a single immutable run event appended to the run log. Store
// implementations assign ID when persisting; IDs are opaque,
// monotonically ordered within a run, and suitable for cursor pagination.
type Event struct {
	ID        string
	RunID     string
	Type      hooks.EventType
	Payload   json.RawMessage
	Timestamp time.Time
}

// Page is a forward page of run events, oldest first.
type Page struct {
	Events     []*Event
	NextCursor string
}

// Store is an append-only event store for run introspection. Implementations
// must provide stable ordering within a run; cursor values are store-owned
// and opaque to callers.
type Store interface {
	// Append persists e, assigning its ID. Append must be durable: failures
	// are surfaced to callers rather than silently dropped, unlike the
	// hooks bus's subscriber-error-swallowing contract.
	Append(ctx context.Context, e *Event) error

	// List returns the next forward page of events for runID, starting
	// after cursor (empty to start from the beginning).
	List(ctx context.Context, runID string, cursor string, limit int) (Page, error)
}

// Subscriber adapts a runlog.Store into a hooks.Subscriber, so a Bus can
// persist every event it delivers into the durable log alongside whatever
// ephemeral exporters are also subscribed. Construct one per Bus with
// NewSubscriber and Register it like any other hooks.Subscriber.
type Subscriber struct {
	store Store
}

// NewSubscriber constructs a Subscriber that appends every delivered event
// to store.
func NewSubscriber(store Store) *Subscriber {
	return &Subscriber{store: store}
}

// HandleEvent implements hooks.Subscriber. Marshaling or append failures are
// returned to the bus, which logs and swallows them per the bus's
// delivery-failure contract (§4.2): a runlog outage must never unwind the
// emitting run.
func (s *Subscriber) HandleEvent(ctx context.Context, evt hooks.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	// CorrelationID is a run id for run-scoped events (StepCompleted,
	// TaskCompleted, ...) and a request/launch id for tool-call and
	// sub-agent events; the log stores whichever the emitter used so List
	// callers page by the same id the event bus correlates on.
	return s.store.Append(ctx, &Event{
		RunID:     evt.CorrelationID(),
		Type:      evt.Type(),
		Payload:   payload,
		Timestamp: evt.CreatedAt(),
	})
}
