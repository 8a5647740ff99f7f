package taskpool

import (
	"fmt"
	"runtime"
	"time"
)

// IsolatedPoolConfig configures a new IsolatedPool. Core and KeepActive
// fall back to DefaultKeepActive / zero core workers when left at their
// zero value, mirroring the spec's documented defaults.
type IsolatedPoolConfig struct {
	// Name prefixes every worker's debug name. Required.
	Name string

	// Max bounds the number of concurrently active workers. Required, > 0.
	Max int

	// Core is the number of workers that are never idle-reaped. Must be
	// between 0 and Max inclusive. Zero means every worker is reapable.
	Core int

	// KeepActive is the idle TTL for non-core workers. Zero is replaced
	// with DefaultKeepActive.
	KeepActive time.Duration
}

// DefaultKeepActive is the idle TTL applied when IsolatedPoolConfig.KeepActive
// is left unset.
const DefaultKeepActive = 120 * time.Second

// Validate checks the configuration and fills in defaults, returning the
// normalized configuration. It never mutates the receiver.
func (c IsolatedPoolConfig) Validate() (IsolatedPoolConfig, error) {
	if c.Name == "" {
		return c, fmt.Errorf("%w: name must not be empty", ErrInvalidConfig)
	}
	if c.Max <= 0 {
		return c, fmt.Errorf("%w: max must be > 0, got %d", ErrInvalidConfig, c.Max)
	}
	if c.Core < 0 || c.Core > c.Max {
		return c, fmt.Errorf("%w: core must be between 0 and max (%d), got %d", ErrInvalidConfig, c.Max, c.Core)
	}
	if c.KeepActive < 0 {
		return c, fmt.Errorf("%w: keepActive must be >= 0, got %v", ErrInvalidConfig, c.KeepActive)
	}
	if c.KeepActive == 0 {
		c.KeepActive = DefaultKeepActive
	}
	return c, nil
}

// DefaultIsolatedPoolConfig returns the configuration used by the
// process-wide default pool: Max = 2x logical CPUs, no core workers,
// DefaultKeepActive idle TTL.
func DefaultIsolatedPoolConfig() IsolatedPoolConfig {
	return IsolatedPoolConfig{
		Name:       "default",
		Max:        2 * runtime.NumCPU(),
		Core:       0,
		KeepActive: DefaultKeepActive,
	}
}

// ExecutorConfig configures a new InProcessExecutor.
type ExecutorConfig struct {
	// MaxSize bounds concurrently in-flight tasks. Zero is replaced with
	// DefaultExecutorMaxSize.
	MaxSize int
}

// DefaultExecutorMaxSize is applied when ExecutorConfig.MaxSize is left
// unset.
const DefaultExecutorMaxSize = 20

// Validate checks the configuration and fills in defaults.
func (c ExecutorConfig) Validate() (ExecutorConfig, error) {
	if c.MaxSize < 0 {
		return c, fmt.Errorf("%w: maxSize must be >= 0, got %d", ErrInvalidConfig, c.MaxSize)
	}
	if c.MaxSize == 0 {
		c.MaxSize = DefaultExecutorMaxSize
	}
	return c, nil
}
