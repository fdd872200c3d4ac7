package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskwire/pkg/future"
	"taskwire/pkg/transport"
	"taskwire/pkg/wire"
)

// DefaultBudget is the wall-clock ceiling for one start, bind time included.
// Expiry cancels the returned future, which triggers a best-effort interrupt.
const DefaultBudget = 10 * time.Minute

// ErrMissingEndpoint reports a descriptor without a usable endpoint. No
// connection is attempted.
var ErrMissingEndpoint = errors.New("client: task descriptor needs a network and an address for the remote service")

// Descriptor names one task instance. Immutable once constructed; Params is
// opaque to everything between the caller and the task.
type Descriptor struct {
	ID       string // logical request id; generated when empty
	Type     string // task-type identifier resolved by the remote registry
	Params   []byte
	Meta     map[string]string
	Endpoint transport.Endpoint
}

// Resolver is the connection-manager dependency of the executor.
type Resolver interface {
	Resolve(ctx context.Context, ep transport.Endpoint) *future.Future[transport.Conn]
}

// Executor orchestrates start/interrupt against a remote execution service:
// resolve endpoint, encode request, dispatch, decode response, settle the
// caller's future. Each operation resolves a fresh connection.
type Executor struct {
	resolver Resolver
	runner   future.Executor
	budget   time.Duration
	log      *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithBudget overrides the execution budget. Zero disables it.
func WithBudget(d time.Duration) Option {
	return func(e *Executor) { e.budget = d }
}

// WithRunner overrides the executor listener callbacks run on.
func WithRunner(r future.Executor) Option {
	return func(e *Executor) { e.runner = r }
}

// New returns an Executor dispatching through resolver.
func New(resolver Resolver, opts ...Option) *Executor {
	e := &Executor{
		resolver: resolver,
		runner:   future.Go{},
		budget:   DefaultBudget,
		log:      zap.L().Named("client"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start submits one task and returns the future of its outcome. The future
// settles exactly once: with the decoded response, with an error, or
// cancelled. Cancelling it triggers an interrupt for the same logical id at
// the same endpoint.
func (e *Executor) Start(ctx context.Context, d Descriptor) *future.Future[wire.Response] {
	res := future.New[wire.Response]()

	if !d.Endpoint.Valid() {
		e.log.Error("task descriptor missing endpoint", zap.String("type", d.Type))
		res.Fail(ErrMissingEndpoint)
		return res
	}

	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}
	payload, err := wire.EncodeRequest(wire.Request{
		ID:     id,
		Type:   d.Type,
		Params: d.Params,
		Meta:   d.Meta,
	})
	if err != nil {
		res.Fail(fmt.Errorf("client: encode request: %w", err))
		return res
	}

	e.log.Debug("starting remote task",
		zap.String("id", id),
		zap.String("type", d.Type),
		zap.String("endpoint", d.Endpoint.String()))

	raw := e.execute(ctx, d.Endpoint, startDispatcher(payload))
	raw.Subscribe(func(b []byte, err error) {
		if err != nil {
			res.Fail(err)
			return
		}
		resp, err := wire.DecodeResponse(b)
		if err != nil {
			res.Fail(err)
			return
		}
		res.Complete(resp)
	}, e.runner)

	// External cancellation delegates the interruption to the remote process.
	endpoint := d.Endpoint
	res.OnCancel(func() {
		e.log.Debug("start cancelled, interrupting", zap.String("id", id))
		e.Interrupt(context.Background(), endpoint, id)
	})

	if e.budget > 0 {
		timer := time.AfterFunc(e.budget, func() {
			e.log.Warn("execution budget exceeded", zap.String("id", id), zap.Duration("budget", e.budget))
			res.Cancel()
		})
		res.Subscribe(func(wire.Response, error) { timer.Stop() }, future.Go{})
	}
	return res
}

// Interrupt asks the endpoint to stop the task tracked under id. Best
// effort: "nothing to interrupt" is success, and failures are logged rather
// than escalated, so they can never disturb an already-settled start result.
func (e *Executor) Interrupt(ctx context.Context, ep transport.Endpoint, id string) *future.Future[[]byte] {
	payload, err := wire.EncodeInterrupt(wire.Interrupt{ID: id})
	if err != nil {
		f := future.New[[]byte]()
		f.Fail(err)
		return f
	}
	raw := e.execute(ctx, ep, interruptDispatcher(payload))
	raw.Subscribe(func(_ []byte, err error) {
		if err != nil {
			e.log.Warn("interrupt failed", zap.String("id", id), zap.Error(err))
			return
		}
		e.log.Debug("interrupt acknowledged", zap.String("id", id))
	}, e.runner)
	return raw
}

// execute resolves a fresh connection and runs one dispatch on it, funneling
// every failure into the callback so its future never stays pending.
func (e *Executor) execute(ctx context.Context, ep transport.Endpoint, dispatch Dispatcher) *future.Future[[]byte] {
	cb := NewCallback()
	session := e.resolver.Resolve(ctx, ep)
	session.Subscribe(func(conn transport.Conn, err error) {
		if err != nil {
			e.log.Error("unable to bind to service", zap.String("endpoint", ep.String()), zap.Error(err))
			cb.Failure(err)
			return
		}
		cb.BindConn(conn)
		e.runner.Execute(func() {
			if err := dispatch(conn, cb); err != nil {
				e.log.Error("unable to execute dispatch", zap.Error(err))
				cb.Failure(err)
			}
		})
	}, e.runner)
	return cb.Future()
}
