package taskpool

import (
	"runtime/debug"
	"sync"
)

// InProcessExecutor bounds ordinary goroutine concurrency: each task
// runs on its own goroutine for the duration of that one task, rather
// than on a long-lived worker. Submissions beyond MaxSize queue FIFO
// and are picked up as running tasks finish. Unlike IsolatedPool it has
// no worker lifecycle to manage, so it carries no Shutdown - ClearAll
// drops whatever is still queued and lets in-flight goroutines run to
// completion on their own.
type InProcessExecutor struct {
	config ExecutorConfig
	stats  *statsCollector

	mu      sync.Mutex
	active  int
	queue   []*inProcessTask
	handles map[TaskID]resultSink

	nextTaskID uint64
}

// Thunk is a zero-argument unit of work for InProcessExecutor. Unlike
// the isolated variant's EntryFunc, a thunk runs in the caller's own
// process and memory space, so it is free to close over local state
// instead of marshaling an argument across an isolate boundary.
type Thunk func() (any, error)

type inProcessTask struct {
	id    TaskID
	thunk Thunk
}

// NewInProcessExecutor validates cfg and returns a ready executor.
func NewInProcessExecutor(cfg ExecutorConfig) (*InProcessExecutor, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &InProcessExecutor{
		config:  cfg,
		stats:   &statsCollector{},
		handles: make(map[TaskID]resultSink),
	}, nil
}

// Execute submits thunk and returns its TaskID. It runs immediately on
// a fresh goroutine if fewer than MaxSize tasks are in-flight,
// otherwise it queues behind whatever is already queued. Unlike
// IsolatedPool.Submit, Execute never fails: the executor has no closed
// state to reject against.
func (e *InProcessExecutor) Execute(thunk Thunk) TaskID {
	return e.execute(thunk, nil)
}

// ExecuteList submits a batch of thunks in order and returns their
// TaskIDs in the same order. It is equivalent to calling Execute
// repeatedly, except the whole batch is enqueued under one lock
// acquisition so submissions from other goroutines cannot interleave
// within the batch.
func (e *InProcessExecutor) ExecuteList(thunks []Thunk) []TaskID {
	ids := make([]TaskID, len(thunks))
	e.mu.Lock()
	for i, thunk := range thunks {
		ids[i] = e.enqueueLocked(thunk, nil)
	}
	e.mu.Unlock()
	return ids
}

func (e *InProcessExecutor) execute(thunk Thunk, sinkFactory func(TaskID) resultSink) TaskID {
	e.mu.Lock()
	id := e.enqueueLocked(thunk, sinkFactory)
	e.mu.Unlock()
	return id
}

func (e *InProcessExecutor) enqueueLocked(thunk Thunk, sinkFactory func(TaskID) resultSink) TaskID {
	e.nextTaskID++
	id := TaskID(e.nextTaskID)
	task := &inProcessTask{id: id, thunk: thunk}
	if sinkFactory != nil {
		e.handles[id] = sinkFactory(id)
	}
	e.stats.recordSubmitted()

	if e.active < e.config.MaxSize {
		e.startLocked(task)
	} else {
		e.queue = append(e.queue, task)
	}
	return id
}

func (e *InProcessExecutor) startLocked(task *inProcessTask) {
	e.active++
	go e.run(task)
}

func (e *InProcessExecutor) run(task *inProcessTask) {
	var value any
	var err error
	var stack string

	func() {
		defer func() {
			if r := recover(); r != nil {
				stack = string(debug.Stack())
				err = &TaskError{TaskID: uint64(task.id), Err: panicError(r), Stack: stack}
			}
		}()
		value, err = task.thunk()
	}()

	e.mu.Lock()
	e.active--
	e.stats.recordCompletion(err)
	sink, ok := e.handles[task.id]
	if ok {
		delete(e.handles, task.id)
	}
	e.dispatchLocked()
	e.mu.Unlock()

	if ok {
		if err != nil {
			sink.deliverError(err, stack)
		} else {
			sink.deliverValue(value)
		}
	}
}

func (e *InProcessExecutor) dispatchLocked() {
	for len(e.queue) > 0 && e.active < e.config.MaxSize {
		task := e.queue[0]
		e.queue = e.queue[1:]
		e.startLocked(task)
	}
}

// Cancel removes a still-queued task, same contract as
// IsolatedPool.Cancel: once a task has been handed a goroutine it can
// no longer be cancelled.
func (e *InProcessExecutor) Cancel(id TaskID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, task := range e.queue {
		if task.id != id {
			continue
		}
		e.queue = append(e.queue[:i], e.queue[i+1:]...)
		if sink, ok := e.handles[id]; ok {
			delete(e.handles, id)
			sink.deliverCancelled()
		}
		e.stats.recordCancelled()
		return true
	}
	return false
}

// ClearAll drops every queued, not-yet-started task, delivering
// cancellation to any handle registered against it. Tasks already
// running are left to finish; ClearAll never blocks waiting for them.
func (e *InProcessExecutor) ClearAll() {
	e.mu.Lock()
	queued := e.queue
	e.queue = nil
	e.mu.Unlock()

	for _, task := range queued {
		e.mu.Lock()
		sink, ok := e.handles[task.id]
		if ok {
			delete(e.handles, task.id)
		}
		e.mu.Unlock()
		if ok {
			sink.deliverCancelled()
		}
		e.stats.recordCancelled()
	}
}

// ActiveCount returns the number of tasks currently running.
func (e *InProcessExecutor) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Stats returns a point-in-time snapshot of the executor's counters.
// ActiveWorkers mirrors ActiveCount; CoreWorkers, IdleWorkers,
// WorkersSpawned and WorkersReaped read zero, since the executor has no
// persistent worker concept to report on.
func (e *InProcessExecutor) Stats() StatsSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.stats.snapshot()
	snap.ActiveWorkers = e.active
	snap.QueueDepth = len(e.queue)
	return snap
}
