package taskpool

import (
	"context"
)

// terminalAwaiter is the type-erased view of a CompletionHandle[T] that
// Join needs: something that can notify a listener exactly once it
// reaches any terminal state, regardless of what T is.
type terminalAwaiter interface {
	addTerminalListener(func())
}

// Join blocks until every handle has reached a terminal state (value,
// error, or cancellation), or until ctx is done. It returns ctx.Err()
// if the context ends first; the handles themselves are left exactly
// as they were - Join never cancels or otherwise mutates them.
//
// Each handle's arrival is deduplicated by identity: since
// addTerminalListener subscribes through both WhenComplete and
// OnCancel, a handle that somehow satisfies both paths still counts
// once toward the join.
func Join(ctx context.Context, handles ...terminalAwaiter) error {
	if len(handles) == 0 {
		return nil
	}

	remaining := len(handles)
	arrived := make(chan struct{}, len(handles))
	seen := make([]bool, len(handles))

	for i, h := range handles {
		i := i
		h.addTerminalListener(func() {
			if seen[i] {
				return
			}
			seen[i] = true
			arrived <- struct{}{}
		})
	}

	for remaining > 0 {
		select {
		case <-arrived:
			remaining--
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// JoinAll is a convenience wrapper for a homogeneous slice of handles,
// avoiding the caller having to box each one into terminalAwaiter by
// hand.
func JoinAll[T any](ctx context.Context, handles []*CompletionHandle[T]) error {
	boxed := make([]terminalAwaiter, len(handles))
	for i, h := range handles {
		boxed[i] = h
	}
	return Join(ctx, boxed...)
}
