package pkgroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 10

// ErrPanicked wraps the value recovered from a task that panicked.
var ErrPanicked = errors.New("task panicked")

// Manager runs tasks on at most a fixed number of goroutines and keeps the
// errors they return for Wait.
type Manager struct {
	wg    sync.WaitGroup
	slots chan struct{}

	mu   sync.Mutex
	errs []error
}

func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = DefaultMaxGoroutine
	}

	return &Manager{slots: make(chan struct{}, maxGoroutine)}
}

// Go starts f once a slot is free. It blocks while the manager is at capacity
// and reports false if ctx ends first.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) bool {
	select {
	case g.slots <- struct{}{}:
	case <-ctx.Done():
		slog.WarnContext(ctx, "task canceled before start", "because", ctx.Err())
		return false
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() { <-g.slots }()
		defer func() {
			if rvr := recover(); rvr != nil {
				slog.ErrorContext(ctx, "panic occurred in task", "because", rvr, "stack", string(debug.Stack()))
				g.record(fmt.Errorf("%w: %v", ErrPanicked, rvr))
			}
		}()

		if err := f(ctx); err != nil {
			g.record(err)
		}
	}()

	return true
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Wait blocks until every started task returns and joins their errors.
func (g *Manager) Wait() error {
	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()

	return errors.Join(g.errs...)
}
