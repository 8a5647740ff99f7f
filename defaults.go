package taskpool

import "sync"

var (
	defaultPoolOnce sync.Once
	defaultPool     *IsolatedPool

	defaultExecutorOnce sync.Once
	defaultExecutor     *InProcessExecutor
)

// Default returns the process-wide IsolatedPool, built on first use from
// DefaultIsolatedPoolConfig. It is shared by every caller in the process
// and has no corresponding teardown - callers wanting lifecycle control
// should build their own IsolatedPool with NewIsolatedPool instead.
func Default() *IsolatedPool {
	defaultPoolOnce.Do(func() {
		pool, err := NewIsolatedPool(DefaultIsolatedPoolConfig())
		if err != nil {
			// DefaultIsolatedPoolConfig is always valid; a failure here
			// means the package itself is broken.
			panic("taskpool: default configuration failed validation: " + err.Error())
		}
		defaultPool = pool
	})
	return defaultPool
}

// DefaultExecutor returns the process-wide InProcessExecutor, built on
// first use with MaxSize = DefaultExecutorMaxSize.
func DefaultExecutor() *InProcessExecutor {
	defaultExecutorOnce.Do(func() {
		exec, err := NewInProcessExecutor(ExecutorConfig{MaxSize: DefaultExecutorMaxSize})
		if err != nil {
			panic("taskpool: default executor configuration failed validation: " + err.Error())
		}
		defaultExecutor = exec
	})
	return defaultExecutor
}
