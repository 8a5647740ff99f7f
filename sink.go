package taskpool

// resultSink is the narrow interface an IsolatedPool or InProcessExecutor
// uses to deliver a terminal outcome to whatever is waiting on a task,
// without depending on the CompletionHandle's type parameter. A
// *CompletionHandle[T] satisfies this by type-asserting the delivered
// value back to T.
type resultSink interface {
	deliverValue(v any)
	deliverError(err error, stack string)
	deliverCancelled()
}
