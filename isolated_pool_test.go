package taskpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsolatedPool_SubmitAndComplete(t *testing.T) {
	t.Parallel()

	pool, err := NewIsolatedPool(IsolatedPoolConfig{Name: "t", Max: 2})
	if err != nil {
		t.Fatalf("NewIsolatedPool() error = %v", err)
	}
	defer pool.Shutdown()

	handle := SubmitIsolated(pool, func(arg any) (int, error) {
		return arg.(int) * 2, nil
	}, 21, "test")

	result, err := handle.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if !handle.IsComplete() || handle.IsError() || handle.IsCancelled() {
		t.Errorf("handle state = complete:%v error:%v cancelled:%v", handle.IsComplete(), handle.IsError(), handle.IsCancelled())
	}
}

func TestIsolatedPool_TaskError(t *testing.T) {
	t.Parallel()

	pool, err := NewIsolatedPool(IsolatedPoolConfig{Name: "t", Max: 1})
	if err != nil {
		t.Fatalf("NewIsolatedPool() error = %v", err)
	}
	defer pool.Shutdown()

	wantErr := errors.New("boom")
	handle := SubmitIsolated(pool, func(arg any) (int, error) {
		return 0, wantErr
	}, nil, "test")

	_, err = handle.Wait(context.Background())
	if err == nil || !errors.Is(err, wantErr) {
		t.Fatalf("Wait() error = %v, want wrapping %v", err, wantErr)
	}
	if !handle.IsError() {
		t.Error("IsError() = false, want true")
	}
}

func TestIsolatedPool_PanicIsRecovered(t *testing.T) {
	t.Parallel()

	pool, err := NewIsolatedPool(IsolatedPoolConfig{Name: "t", Max: 1})
	if err != nil {
		t.Fatalf("NewIsolatedPool() error = %v", err)
	}
	defer pool.Shutdown()

	handle := SubmitIsolated(pool, func(arg any) (int, error) {
		panic("kaboom")
	}, nil, "test")

	_, err = handle.Wait(context.Background())
	var taskErr *TaskError
	if !errors.As(err, &taskErr) {
		t.Fatalf("Wait() error = %v, want *TaskError", err)
	}
	if taskErr.Stack == "" {
		t.Error("TaskError.Stack is empty, want a captured stack trace")
	}
}

func TestIsolatedPool_OverflowQueuesBeyondMax(t *testing.T) {
	t.Parallel()

	pool, err := NewIsolatedPool(IsolatedPoolConfig{Name: "t", Max: 2})
	if err != nil {
		t.Fatalf("NewIsolatedPool() error = %v", err)
	}
	defer pool.Shutdown()

	const taskCount = 20
	release := make(chan struct{})
	var completed atomic.Int32

	handles := make([]*CompletionHandle[int], taskCount)
	for i := 0; i < taskCount; i++ {
		handles[i] = SubmitIsolated(pool, func(arg any) (int, error) {
			<-release
			completed.Add(1)
			return arg.(int), nil
		}, i, "test")
	}

	stats := pool.Stats()
	if stats.ActiveWorkers > 2 {
		t.Errorf("ActiveWorkers = %d, want <= 2", stats.ActiveWorkers)
	}
	if stats.QueueDepth == 0 {
		t.Error("QueueDepth = 0, want queued overflow while workers are saturated")
	}

	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := JoinAll(ctx, handles); err != nil {
		t.Fatalf("JoinAll() error = %v", err)
	}
	if got := completed.Load(); got != taskCount {
		t.Errorf("completed = %d, want %d", got, taskCount)
	}
}

func TestIsolatedPool_CancelQueuedTask(t *testing.T) {
	t.Parallel()

	pool, err := NewIsolatedPool(IsolatedPoolConfig{Name: "t", Max: 1})
	if err != nil {
		t.Fatalf("NewIsolatedPool() error = %v", err)
	}
	defer pool.Shutdown()

	release := make(chan struct{})
	blocker := SubmitIsolated(pool, func(arg any) (int, error) {
		<-release
		return 0, nil
	}, nil, "test")

	queued := SubmitIsolated(pool, func(arg any) (int, error) {
		t.Error("cancelled task body must never run")
		return 0, nil
	}, nil, "test")

	if !queued.Cancel() {
		t.Fatal("Cancel() = false, want true for a still-queued task")
	}
	if !queued.IsCancelled() {
		t.Error("IsCancelled() = false after successful Cancel()")
	}

	close(release)
	if _, err := blocker.Wait(context.Background()); err != nil {
		t.Fatalf("blocker.Wait() error = %v", err)
	}

	_, err = queued.Wait(context.Background())
	if !errors.Is(err, ErrTaskCancelled) {
		t.Errorf("Wait() error = %v, want ErrTaskCancelled", err)
	}
}

func TestIsolatedPool_CancelRunningTaskFails(t *testing.T) {
	t.Parallel()

	pool, err := NewIsolatedPool(IsolatedPoolConfig{Name: "t", Max: 1})
	if err != nil {
		t.Fatalf("NewIsolatedPool() error = %v", err)
	}
	defer pool.Shutdown()

	started := make(chan struct{})
	release := make(chan struct{})
	handle := SubmitIsolated(pool, func(arg any) (int, error) {
		close(started)
		<-release
		return 1, nil
	}, nil, "test")

	<-started
	if handle.Cancel() {
		t.Error("Cancel() = true for an already-running task, want false")
	}
	close(release)

	result, err := handle.Wait(context.Background())
	if err != nil || result != 1 {
		t.Errorf("Wait() = (%d, %v), want (1, nil)", result, err)
	}
}

func TestIsolatedPool_SubmitAfterShutdown(t *testing.T) {
	t.Parallel()

	pool, err := NewIsolatedPool(IsolatedPoolConfig{Name: "t", Max: 1})
	if err != nil {
		t.Fatalf("NewIsolatedPool() error = %v", err)
	}
	pool.Shutdown()
	pool.Shutdown() // idempotent

	if _, err := pool.Submit(func(any) (any, error) { return nil, nil }, nil); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Submit() error = %v, want ErrPoolClosed", err)
	}
}

func TestIsolatedPool_CoreWorkersNeverReaped(t *testing.T) {
	t.Parallel()

	pool, err := NewIsolatedPool(IsolatedPoolConfig{
		Name:       "t",
		Max:        2,
		Core:       1,
		KeepActive: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewIsolatedPool() error = %v", err)
	}
	defer pool.Shutdown()

	// The first submission spawns the core worker, the second a reapable
	// one (Max allows two active workers).
	first := SubmitIsolated(pool, func(arg any) (int, error) { return 0, nil }, nil, "test")
	second := SubmitIsolated(pool, func(arg any) (int, error) { return 0, nil }, nil, "test")
	for _, handle := range []*CompletionHandle[int]{first, second} {
		if _, err := handle.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}

	// Give the reaper (1s tick, KeepActive 20ms) time to act on the one
	// reapable worker; the core worker must survive.
	time.Sleep(2500 * time.Millisecond)

	stats := pool.Stats()
	if stats.CoreWorkers != 1 {
		t.Errorf("CoreWorkers = %d, want 1", stats.CoreWorkers)
	}
	if stats.ActiveWorkers != 1 {
		t.Errorf("ActiveWorkers = %d, want 1 (the core worker)", stats.ActiveWorkers)
	}
}
