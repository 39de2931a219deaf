// Package control implements the bidirectional cooperative control plane
// between a running agent and its parent: user-input prompts, confirmation
// requests, and sub-agent queries that suspend the running agent until the
// parent (or a registered handler) produces a response.
//
// The source's coroutine-style "child yields, parent resumes" flow is
// modeled here as an explicit request/response exchange (per spec §9design
// notes) rather than a language-level coroutine: Bridge.Yield blocks the
// calling goroutine on a response channel while a Handler — installed by
// whatever owns the parent side, typically a subagent.Orchestrator —
// produces the reply.
package control

import (
	"context"

	"github.com/agentcore/reactor/agenterr"
	"github.com/agentcore/reactor/hooks"
	"github.com/google/uuid"
)

// RequestType discriminates the three control-request shapes.
type RequestType string

const (
	RequestUserInput     RequestType = "user_input"
	RequestConfirmation  RequestType = "confirmation"
	RequestSubAgentQuery RequestType = "sub_agent_query"
)

// Request is a tagged-union value: exactly one group of fields is
// meaningful depending on Type.
type Request struct {
	Type RequestType

	// user_input
	Prompt  string
	Options []string

	// confirmation
	Action       string
	Description  string
	Consequences string
	Reversible   bool

	// sub_agent_query
	AgentName string
	Query     string
}

// Response is what a Handler returns for a yielded Request.
type Response struct {
	Approved bool
	Value    any
}

// Handler produces a Response for a yielded Request. Implementations are
// supplied by whatever sits on the parent side of the control plane: an
// interactive CLI (out of core scope), a policy engine, or a test double.
type Handler interface {
	Handle(ctx context.Context, req Request) (Response, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

// Handle implements Handler by invoking fn.
func (fn HandlerFunc) Handle(ctx context.Context, req Request) (Response, error) { return fn(ctx, req) }

// Bridge is the yield point a running agent calls through. A nil Handler
// means "no parent attached": every Yield call fails with
// agenterr.KindEnvironment, per spec §4.8 ("If no handler is installed,
// requests from the child fail with EnvironmentError{reason:"no parent"}").
type Bridge struct {
	Handler Handler
	Bus     *hooks.Bus
	// RunID names the run this bridge was built for. The ControlYielded/
	// ControlResumed events of one Yield are correlated by a fresh
	// per-request id, not by RunID.
	RunID string
}

// NewBridge constructs a Bridge. handler may be nil.
func NewBridge(handler Handler, bus *hooks.Bus, runID string) *Bridge {
	return &Bridge{Handler: handler, Bus: bus, RunID: runID}
}

// Yield suspends the caller on req: it emits ControlYielded, invokes the
// handler, then emits ControlResumed with the handler's reply.
func (b *Bridge) Yield(ctx context.Context, req Request) (Response, error) {
	if b == nil || b.Handler == nil {
		return Response{}, agenterr.New(agenterr.KindEnvironment, "no parent")
	}
	requestID := uuid.NewString()
	if b.Bus != nil {
		b.Bus.Publish(ctx, hooks.NewControlYieldedEvent(uuid.NewString(), requestID, string(req.Type), promptFor(req)))
	}
	resp, err := b.Handler.Handle(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if b.Bus != nil {
		b.Bus.Publish(ctx, hooks.NewControlResumedEvent(uuid.NewString(), requestID, resp.Approved, resp.Value))
	}
	return resp, nil
}

func promptFor(req Request) string {
	switch req.Type {
	case RequestUserInput:
		return req.Prompt
	case RequestConfirmation:
		return req.Description
	case RequestSubAgentQuery:
		return req.Query
	default:
		return ""
	}
}

// ctxKey is an unexported type so control.ctxKey{} never collides with keys
// defined by other packages sharing a context.Context.
type ctxKey struct{}

// WithBridge returns a copy of ctx carrying bridge, so code running inside a
// run (a tool, the sandbox) can retrieve it via FromContext and issue
// control requests without the scheduler needing a dedicated call path for
// every possible yield site.
func WithBridge(ctx context.Context, bridge *Bridge) context.Context {
	return context.WithValue(ctx, ctxKey{}, bridge)
}

// FromContext retrieves the Bridge installed by WithBridge, if any.
func FromContext(ctx context.Context) (*Bridge, bool) {
	b, ok := ctx.Value(ctxKey{}).(*Bridge)
	return b, ok
}
