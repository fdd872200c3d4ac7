// Package binder resolves an endpoint to a live connection. Each resolve is
// an independent bind attempt owning its own state machine; attempts are
// never retried or shared.
package binder

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"taskwire/pkg/future"
	"taskwire/pkg/transport"
)

// State of one bind attempt. Unbound -> Binding -> Bound, or Binding ->
// Failed. Bound -> Disconnected is reachable at any time once the remote
// side drops the connection mid-call.
type State int32

const (
	Unbound State = iota
	Binding
	Bound
	Failed
	Disconnected
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Binding:
		return "binding"
	case Bound:
		return "bound"
	case Failed:
		return "failed"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

var (
	// ErrBindRefused reports that the endpoint could not be reached or the
	// remote side refused the connection.
	ErrBindRefused = errors.New("binder: unable to bind to service")
	// ErrNullBinding reports a transport that returned no usable connection.
	ErrNullBinding = errors.New("binder: transport returned no connection")
	// ErrDisconnected reports a bound connection that died mid-call.
	ErrDisconnected = errors.New("binder: service disconnected")
)

// Binder resolves endpoints through a transport registry.
type Binder struct {
	reg *transport.Registry
	log *zap.Logger
}

// New returns a Binder dialing through reg.
func New(reg *transport.Registry) *Binder {
	return &Binder{reg: reg, log: zap.L().Named("binder")}
}

// Resolve starts one bind attempt and returns the future of its connection.
// A failed bind fails the future with a descriptive error and is never
// retried here; retry policy belongs to the caller. Concurrent resolves to
// the same endpoint are independent and are not de-duplicated.
func (b *Binder) Resolve(ctx context.Context, ep transport.Endpoint) *future.Future[transport.Conn] {
	return b.Bind(ctx, ep).Future()
}

// Bind starts one attempt and returns it so callers can observe its state.
func (b *Binder) Bind(ctx context.Context, ep transport.Endpoint) *Attempt {
	a := &Attempt{fut: future.New[transport.Conn]()}
	go a.bind(ctx, b, ep)
	return a
}

// Attempt is a single bind in flight. All state transitions belong to this
// attempt alone.
type Attempt struct {
	state atomic.Int32
	fut   *future.Future[transport.Conn]
}

// Future returns the eventual connection of this attempt.
func (a *Attempt) Future() *future.Future[transport.Conn] { return a.fut }

// State returns the attempt's current state.
func (a *Attempt) State() State { return State(a.state.Load()) }

func (a *Attempt) bind(ctx context.Context, b *Binder, ep transport.Endpoint) {
	a.state.Store(int32(Binding))
	b.log.Debug("binding", zap.String("endpoint", ep.String()))

	tr, err := b.reg.Get(ep.Network)
	if err != nil {
		a.fail(b, ep, fmt.Errorf("%w: %v", ErrBindRefused, err))
		return
	}
	conn, err := tr.Dial(ctx, ep.Address)
	if err != nil {
		a.fail(b, ep, fmt.Errorf("%w: %v", ErrBindRefused, err))
		return
	}
	if conn == nil {
		a.fail(b, ep, fmt.Errorf("%w: %s", ErrNullBinding, ep))
		return
	}

	a.state.Store(int32(Bound))
	b.log.Debug("bound", zap.String("endpoint", ep.String()))
	a.fut.Complete(&boundConn{Conn: conn, att: a})
}

func (a *Attempt) fail(b *Binder, ep transport.Endpoint, err error) {
	a.state.Store(int32(Failed))
	b.log.Warn("bind failed", zap.String("endpoint", ep.String()), zap.Error(err))
	a.fut.Fail(err)
}

// disconnect flips a bound attempt to Disconnected. Idempotent.
func (a *Attempt) disconnect() {
	a.state.CompareAndSwap(int32(Bound), int32(Disconnected))
}

// boundConn ties connection I/O failures back to the attempt's state.
type boundConn struct {
	transport.Conn
	att *Attempt
}

func (c *boundConn) SendBytes(b []byte) error {
	if err := c.Conn.SendBytes(b); err != nil {
		c.att.disconnect()
		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	return nil
}

func (c *boundConn) RecvBytes() ([]byte, error) {
	out, err := c.Conn.RecvBytes()
	if err != nil {
		c.att.disconnect()
		return nil, fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	return out, nil
}
