// Package future provides a single-assignment result container with
// listener notification, the local half of every dispatch exchange.
package future

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled is the error observed by readers of a cancelled future.
var ErrCancelled = errors.New("future: cancelled")

// State of a future. Transitions are pending -> {resolved|failed|cancelled},
// exactly once; later transition attempts are no-ops.
type State int

const (
	Pending State = iota
	Resolved
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Executor runs listener callbacks off the settling goroutine.
type Executor interface {
	Execute(fn func())
}

// Go runs each callback on its own goroutine.
type Go struct{}

func (Go) Execute(fn func()) { go fn() }

// Inline runs callbacks synchronously on the caller. Intended for tests and
// for chaining steps that are known to be non-blocking.
type Inline struct{}

func (Inline) Execute(fn func()) { fn() }

type listener[T any] struct {
	fn   func(T, error)
	exec Executor
}

// Future is a single-assignment container. Complete, Fail and Cancel race;
// the first caller wins and the rest are ignored. Listeners are notified
// exactly once.
type Future[T any] struct {
	mu        sync.Mutex
	state     State
	val       T
	err       error
	done      chan struct{}
	listeners []listener[T]
	onCancel  []func()
}

// New returns a pending future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Complete resolves the future with a value. Reports whether this call won.
func (f *Future[T]) Complete(v T) bool {
	return f.settle(Resolved, v, nil)
}

// Fail resolves the future with an error. Reports whether this call won.
func (f *Future[T]) Fail(err error) bool {
	var zero T
	if err == nil {
		err = errors.New("future: failed with nil error")
	}
	return f.settle(Failed, zero, err)
}

// Cancel moves the future to the cancelled state and runs any OnCancel hooks.
// Reports whether this call won.
func (f *Future[T]) Cancel() bool {
	var zero T
	return f.settle(Cancelled, zero, ErrCancelled)
}

func (f *Future[T]) settle(s State, v T, err error) bool {
	f.mu.Lock()
	if f.state != Pending {
		f.mu.Unlock()
		return false
	}
	f.state = s
	f.val = v
	f.err = err
	ls := f.listeners
	f.listeners = nil
	hooks := f.onCancel
	f.onCancel = nil
	close(f.done)
	f.mu.Unlock()

	if s == Cancelled {
		for _, h := range hooks {
			h()
		}
	}
	for _, l := range ls {
		f.dispatch(l, v, err)
	}
	return true
}

func (f *Future[T]) dispatch(l listener[T], v T, err error) {
	if l.exec == nil {
		go l.fn(v, err)
		return
	}
	l.exec.Execute(func() { l.fn(v, err) })
}

// Subscribe registers a callback invoked exactly once when the future settles,
// on the given executor. If the future is already settled the callback fires
// immediately. A cancelled future reports ErrCancelled.
func (f *Future[T]) Subscribe(fn func(T, error), exec Executor) {
	f.mu.Lock()
	if f.state == Pending {
		f.listeners = append(f.listeners, listener[T]{fn: fn, exec: exec})
		f.mu.Unlock()
		return
	}
	v, err := f.val, f.err
	f.mu.Unlock()
	f.dispatch(listener[T]{fn: fn, exec: exec}, v, err)
}

// OnCancel registers a hook that runs if (and only if) Cancel wins the race.
// Runs immediately when the future is already cancelled.
func (f *Future[T]) OnCancel(fn func()) {
	f.mu.Lock()
	switch f.state {
	case Pending:
		f.onCancel = append(f.onCancel, fn)
		f.mu.Unlock()
		return
	case Cancelled:
		f.mu.Unlock()
		fn()
		return
	}
	f.mu.Unlock()
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// State returns the current state.
func (f *Future[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Result returns the outcome without blocking. ok is false while pending.
func (f *Future[T]) Result() (v T, err error, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Pending {
		return v, nil, false
	}
	return f.val, f.err, true
}

// Await blocks until the future settles or ctx expires.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
