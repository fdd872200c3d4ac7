package server

import (
	"context"
	"sync"

	"taskwire/pkg/future"
	"taskwire/pkg/wire"
)

// pending is one tracked in-flight execution.
type pending struct {
	fut    *future.Future[wire.Response]
	cancel context.CancelFunc
}

// pendingTable maps logical ids to in-flight executions. Insert and remove
// happen under a single lock; the executions themselves run outside it.
type pendingTable struct {
	mu sync.Mutex
	m  map[string]*pending
}

func newPendingTable() *pendingTable {
	return &pendingTable{m: make(map[string]*pending)}
}

// insert tracks an execution. Reports false when the id is already tracked.
func (t *pendingTable) insert(id string, p *pending) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.m[id]; ok {
		return false
	}
	t.m[id] = p
	return true
}

// remove untracks and returns the execution for id, or nil if it was never
// tracked or already removed. A second remove for the same id is a no-op.
func (t *pendingTable) remove(id string) *pending {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.m[id]
	delete(t.m, id)
	return p
}

func (t *pendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}
