package taskpool

// TaskID identifies a task submitted to an IsolatedPool, unique for the
// lifetime of that pool instance.
type TaskID uint64

// EntryFunc is an isolate-safe unit of work: a function of a single
// serializable argument that produces a result or an error. Closures
// capturing caller-local state are unsupported by convention - see
// SPEC_FULL.md section 6 (entry-point constraint).
type EntryFunc func(argument any) (any, error)

// taskEnvelope is the immutable message handed from an IsolatedPool to a
// worker goroutine. It carries no back-reference to the pool or to the
// handle awaiting its result - only entry and argument cross the
// pool->worker channel, and the ack sent back carries the taskID, the
// result value and, on failure, the error and its stack.
type taskEnvelope struct {
	id         TaskID
	entry      EntryFunc
	argument   any
	debugLabel string
}
