// Package server hosts the dispatch target: it receives encoded start and
// interrupt requests, tracks one in-flight execution per logical id, and
// replies asynchronously through a caller-supplied reply channel.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskwire/pkg/wire"
)

// Runner is the remote-executable capability. Anything a factory yields must
// implement it to run on this process.
type Runner interface {
	// Run executes the task. ctx is cancelled when the task is interrupted.
	Run(ctx context.Context, req wire.Request) (wire.Response, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, req wire.Request) (wire.Response, error)

func (f RunnerFunc) Run(ctx context.Context, req wire.Request) (wire.Response, error) {
	return f(ctx, req)
}

// Factory creates one task instance per start request. It returns any so
// the capability gate stays with the target, not the registry.
type Factory func() (any, error)

var (
	// ErrUnknownTask reports a task type no factory serves.
	ErrUnknownTask = errors.New("server: unknown task type")
	// ErrNotRemoteCapable reports a factory product that cannot run remotely.
	ErrNotRemoteCapable = errors.New("server: task is not remote-capable")
)

// Registry maps task-type identifiers to factories.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]Factory
}

// NewRegistry returns an empty task registry.
func NewRegistry() *Registry { return &Registry{byType: make(map[string]Factory)} }

// Register adds a factory under a task-type name, replacing any previous one.
func (r *Registry) Register(taskType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[taskType] = f
}

// RegisterRunner registers a factory producing the given RunnerFunc.
func (r *Registry) RegisterRunner(taskType string, fn RunnerFunc) {
	r.Register(taskType, func() (any, error) { return fn, nil })
}

// Create instantiates a task for a type name.
func (r *Registry) Create(taskType string) (any, error) {
	r.mu.RLock()
	f := r.byType[taskType]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, taskType)
	}
	task, err := f()
	if err != nil {
		return nil, fmt.Errorf("server: unable to create an instance of %q: %w", taskType, err)
	}
	if task == nil {
		return nil, fmt.Errorf("server: unable to create an instance of %q", taskType)
	}
	return task, nil
}
