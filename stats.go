package taskpool

import "sync/atomic"

// StatsSnapshot is a point-in-time, read-only view of a pool or
// executor's counters. It is never retained by the source past the
// call that produced it - see SPEC_FULL.md section 4.6.
type StatsSnapshot struct {
	// Worker/slot gauges. CoreWorkers, IdleWorkers, WorkersSpawned and
	// WorkersReaped read zero on an InProcessExecutor, which has no
	// worker concept.
	ActiveWorkers int
	CoreWorkers   int
	IdleWorkers   int
	QueueDepth    int

	// Counters, monotonic for the lifetime of the pool/executor.
	TasksSubmitted int64
	TasksCompleted int64
	TasksFailed    int64
	TasksCancelled int64
	TasksRejected  int64

	WorkersSpawned int64
	WorkersReaped  int64
}

// statsCollector holds the atomic counters shared by IsolatedPool and
// InProcessExecutor. It never blocks a caller and never allocates on
// the hot path, matching the teacher's observability.MetricsCollector
// approach of plain atomics plus a snapshot method.
type statsCollector struct {
	tasksSubmitted atomic.Int64
	tasksCompleted atomic.Int64
	tasksFailed    atomic.Int64
	tasksCancelled atomic.Int64
	tasksRejected  atomic.Int64
	workersSpawned atomic.Int64
	workersReaped  atomic.Int64
}

func (s *statsCollector) recordSubmitted() { s.tasksSubmitted.Add(1) }
func (s *statsCollector) recordRejected()  { s.tasksRejected.Add(1) }
func (s *statsCollector) recordCancelled() { s.tasksCancelled.Add(1) }
func (s *statsCollector) recordSpawned()   { s.workersSpawned.Add(1) }
func (s *statsCollector) recordReaped()    { s.workersReaped.Add(1) }

func (s *statsCollector) recordCompletion(err error) {
	if err != nil {
		s.tasksFailed.Add(1)
		return
	}
	s.tasksCompleted.Add(1)
}

func (s *statsCollector) snapshot() StatsSnapshot {
	return StatsSnapshot{
		TasksSubmitted: s.tasksSubmitted.Load(),
		TasksCompleted: s.tasksCompleted.Load(),
		TasksFailed:    s.tasksFailed.Load(),
		TasksCancelled: s.tasksCancelled.Load(),
		TasksRejected:  s.tasksRejected.Load(),
		WorkersSpawned: s.workersSpawned.Load(),
		WorkersReaped:  s.workersReaped.Load(),
	}
}
