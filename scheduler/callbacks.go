package scheduler

import (
	"context"

	"github.com/agentcore/reactor/agenterr"
	"github.com/agentcore/reactor/hooks"
)

// Callback receives the typed event it was registered for. The argument is
// the concrete hooks event value; callers type-assert to reach
// variant-specific fields.
type Callback func(ctx context.Context, event hooks.Event) error

// On registers fn for the named event (the string aliases from the hooks
// event catalog, e.g. "step_completed"). Registration against an unknown
// event name, or with a nil callback, fails with a configuration error
// rather than silently never firing. The returned Subscription's Close
// unregisters the callback.
func (s *Scheduler) On(eventName string, fn Callback) (hooks.Subscription, error) {
	if fn == nil {
		return hooks.Subscription{}, agenterr.New(agenterr.KindConfiguration, "scheduler: callback must not be nil")
	}
	et, ok := hooks.ParseEventType(eventName)
	if !ok {
		return hooks.Subscription{}, agenterr.Newf(agenterr.KindConfiguration, "scheduler: unknown event name %q", eventName)
	}
	return s.Bus.RegisterFor(hooks.SubscriberFunc(func(ctx context.Context, evt hooks.Event) error {
		return fn(ctx, evt)
	}), et)
}
