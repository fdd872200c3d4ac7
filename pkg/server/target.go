package server

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"taskwire/pkg/future"
	"taskwire/pkg/wire"
)

// ErrDuplicateID reports a start for a logical id that is already tracked.
// Callers are expected to generate fresh ids per attempt.
var ErrDuplicateID = errors.New("server: logical id already tracked")

// ReplyChannel is the caller-supplied handle both boundary operations
// deliver their outcome through. Exactly one of Success/Failure fires per
// request; transport faults and task faults share the Failure path.
type ReplyChannel interface {
	Success(b []byte)
	Failure(err error)
}

// Target receives encoded requests from the boundary and executes them.
type Target struct {
	reg    *Registry
	tbl    *pendingTable
	runner future.Executor
	log    *zap.Logger
}

// TargetOption configures a Target.
type TargetOption func(*Target)

// WithRunner overrides the executor completion callbacks run on.
func WithRunner(r future.Executor) TargetOption {
	return func(t *Target) { t.runner = r }
}

// NewTarget returns a Target executing tasks from reg. Each Target owns its
// pending table, so independent server instances can coexist.
func NewTarget(reg *Registry, opts ...TargetOption) *Target {
	t := &Target{
		reg:    reg,
		tbl:    newPendingTable(),
		runner: future.Go{},
		log:    zap.L().Named("server"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Pending reports how many executions are currently tracked.
func (t *Target) Pending() int { return t.tbl.size() }

// StartWork decodes a start request, begins the execution and replies once
// it settles. Requests that cannot start (malformed payload, unknown type,
// duplicate id) fail immediately and never touch the pending table.
func (t *Target) StartWork(request []byte, reply ReplyChannel) {
	req, err := wire.DecodeRequest(request)
	if err != nil {
		reply.Failure(err)
		return
	}
	t.log.Debug("executing work request", zap.String("id", req.ID), zap.String("type", req.Type))

	fut, err := t.executeWorkRequest(req)
	if err != nil {
		t.log.Error("work request rejected", zap.String("id", req.ID), zap.Error(err))
		reply.Failure(err)
		return
	}

	id := req.ID
	fut.Subscribe(func(resp wire.Response, err error) {
		// Removal is unconditional; a second attempt after an interrupt
		// already removed the entry is a no-op.
		defer t.tbl.remove(id)
		if err != nil {
			if errors.Is(err, future.ErrCancelled) {
				t.log.Debug("worker was cancelled", zap.String("id", id))
			}
			reply.Failure(err)
			return
		}
		b, err := wire.EncodeResponse(resp)
		if err != nil {
			reply.Failure(err)
			return
		}
		reply.Success(b)
	}, t.runner)
}

// executeWorkRequest instantiates the task, tracks it and starts it. Every
// error path here happens before the table sees the id.
func (t *Target) executeWorkRequest(req wire.Request) (*future.Future[wire.Response], error) {
	if req.ID == "" {
		return nil, errors.New("server: request missing logical id")
	}

	task, err := t.reg.Create(req.Type)
	if err != nil {
		return nil, err
	}
	runner, ok := task.(Runner)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotRemoteCapable, task)
	}

	fut := future.New[wire.Response]()
	ctx, cancel := context.WithCancel(context.Background())
	if !t.tbl.insert(req.ID, &pending{fut: fut, cancel: cancel}) {
		cancel()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, req.ID)
	}
	t.log.Debug("tracking execution", zap.String("id", req.ID), zap.String("type", req.Type))

	go func() {
		defer cancel()
		resp, err := runner.Run(ctx, req)
		// A late outcome after an interrupt settled the future is dropped.
		if err != nil {
			fut.Fail(err)
			return
		}
		fut.Complete(resp)
	}()
	return fut, nil
}

// Interrupt removes and cancels the execution tracked under the request's
// id. An absent id is success: the task may have finished already or never
// existed on this process.
func (t *Target) Interrupt(request []byte, reply ReplyChannel) {
	in, err := wire.DecodeInterrupt(request)
	if err != nil {
		reply.Failure(err)
		return
	}
	t.log.Debug("interrupting work", zap.String("id", in.ID))

	p := t.tbl.remove(in.ID)
	if p == nil {
		// Nothing to do.
		reply.Success(nil)
		return
	}
	t.runner.Execute(func() {
		p.cancel()
		p.fut.Cancel()
		reply.Success(nil)
	})
}
