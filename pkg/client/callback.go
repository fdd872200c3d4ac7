// Package client submits tasks to a remote execution service and interrupts
// them. One exchange borrows one connection; nothing is pooled.
package client

import (
	"taskwire/pkg/future"
	"taskwire/pkg/transport"
)

// Dispatcher performs exactly one request/reply exchange on a live
// connection and reports the raw reply through the callback. A returned
// error is funneled into the callback by the executor.
type Dispatcher func(conn transport.Conn, cb *Callback) error

// Callback mediates between one remote invocation and the local future of
// its raw byte result. Create one per exchange.
type Callback struct {
	fut *future.Future[[]byte]
}

// NewCallback returns a callback with a pending future.
func NewCallback() *Callback {
	return &Callback{fut: future.New[[]byte]()}
}

// Future returns the eventual raw reply bytes.
func (c *Callback) Future() *future.Future[[]byte] { return c.fut }

// BindConn ties the borrowed connection to the callback's lifetime: the
// connection is closed as soon as the future settles, however it settles.
func (c *Callback) BindConn(conn transport.Conn) {
	c.fut.Subscribe(func([]byte, error) { _ = conn.Close() }, future.Go{})
}

// Success delivers the raw reply. First settle wins.
func (c *Callback) Success(b []byte) bool { return c.fut.Complete(b) }

// Failure delivers an error through the same channel. First settle wins.
func (c *Callback) Failure(err error) bool { return c.fut.Fail(err) }
