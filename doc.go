// Package taskpool provides bounded-concurrency task execution for Go
// programs: an isolated worker pool backed by one goroutine per worker
// with no shared mutable state between them, a lightweight in-process
// executor that bounds ordinary goroutine concurrency, and a uniform
// completion handle on top of both.
//
// # Isolated pool
//
//	pool, err := taskpool.NewIsolatedPool(taskpool.IsolatedPoolConfig{
//	    Name: "render", Max: 8, Core: 2, KeepActive: 2 * time.Minute,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Shutdown()
//
//	handle := taskpool.SubmitIsolated(pool, renderEntry, job, "render-job")
//	result, err := handle.Wait(context.Background())
//
// # In-process executor
//
//	exec, _ := taskpool.NewInProcessExecutor(taskpool.ExecutorConfig{MaxSize: 20})
//	handle := taskpool.SubmitInProcess(exec, func() (int, error) {
//	    return doWork()
//	})
//
// # Completion handles and join
//
// Every submission returns a *CompletionHandle[T] regardless of which
// primitive ran the work. Handles support Then/WhenComplete/OnCancel
// subscriptions, a blocking Wait, and cancellation of queued-but-not-
// started work. Join waits for a whole batch of handles to reach a
// terminal state (completed or cancelled).
//
// The package has no dependency on its own submodules (taskpool/metrics,
// taskpool/httpapi, cmd/taskpoold); those are optional collaborators
// that observe a pool or executor through its exported Stats method.
package taskpool
