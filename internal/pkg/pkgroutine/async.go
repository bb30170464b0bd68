package pkgroutine

import (
	"context"
	"errors"
)

// ErrAborted is delivered by Async when the task was not started or panicked.
var ErrAborted = errors.New("task ended without a result")

// Outcome is the completion notice delivered by Async.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Async runs f on the manager and delivers exactly one Outcome on the
// returned channel, which is then closed. The caller never blocks while f
// runs; it selects on the channel alongside whatever else it is doing.
func Async[T any](m *Manager, ctx context.Context, f func(ctx context.Context) (T, error)) <-chan Outcome[T] {
	out := make(chan Outcome[T], 1)

	started := m.Go(ctx, func(ctx context.Context) error {
		delivered := false
		defer func() {
			if !delivered {
				out <- Outcome[T]{Err: ErrAborted}
			}
			close(out)
		}()

		v, err := f(ctx)
		out <- Outcome[T]{Value: v, Err: err}
		delivered = true

		return err
	})
	if !started {
		out <- Outcome[T]{Err: ErrAborted}
		close(out)
	}

	return out
}
