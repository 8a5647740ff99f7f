package taskpool

import (
	"fmt"
	"sync"
)

// IsolatedPool bounds a set of goroutine-backed isolated execution
// contexts (workers) behind a single submission point. Every exported
// method is safe for concurrent use; all pool-owned state is guarded by
// one mutex, and all worker lifecycle events are funneled through a
// single supervisor goroutine reading the shared results channel - see
// SPEC_FULL.md section 4.2.
type IsolatedPool struct {
	config IsolatedPoolConfig
	stats  *statsCollector

	results chan workerMsg
	wg      sync.WaitGroup

	mu sync.Mutex
	// workerOrder tracks worker ids in the order they became ready, so
	// dispatchLocked can hand out queued work by insertion order rather
	// than map iteration order - see SPEC_FULL.md section 4.2.
	workerOrder   []uint64
	workers       map[uint64]*workerRecord
	pendingSpawn  map[uint64]*taskEnvelope
	overflow      []*pendingTask
	handles       map[TaskID]resultSink
	activeWorkers int
	nextTaskID    uint64
	nextWorkerID  uint64
	isShutDown    bool
}

type workerRecord struct {
	w    *worker
	busy bool
}

type pendingTask struct {
	envelope *taskEnvelope
}

// NewIsolatedPool validates cfg and returns a running pool with zero
// workers. Workers are spawned lazily as tasks are submitted.
func NewIsolatedPool(cfg IsolatedPoolConfig) (*IsolatedPool, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	p := &IsolatedPool{
		config:       cfg,
		stats:        &statsCollector{},
		results:      make(chan workerMsg, 32),
		workers:      make(map[uint64]*workerRecord),
		pendingSpawn: make(map[uint64]*taskEnvelope),
		handles:      make(map[TaskID]resultSink),
	}
	go p.supervise()
	return p, nil
}

// Name returns the pool's configured name.
func (p *IsolatedPool) Name() string { return p.config.Name }

// Submit enqueues entry(argument) for execution on a worker and returns
// its TaskID. It never blocks waiting for a worker to become available.
func (p *IsolatedPool) Submit(entry EntryFunc, argument any) (TaskID, error) {
	return p.submit(entry, argument, "", nil)
}

// submit is shared by Submit and the generic SubmitIsolated helper.
// debugLabel is carried on the envelope purely for diagnostics - it
// never affects scheduling - and is logged alongside the task id if the
// task fails. When sinkFactory is non-nil it is invoked with the
// freshly assigned TaskID while the pool's mutex is still held, and the
// resulting resultSink is registered in the same critical section -
// otherwise a worker fast enough to ack before the caller registers its
// handle would find no sink waiting and the result would be silently
// dropped.
func (p *IsolatedPool) submit(entry EntryFunc, argument any, debugLabel string, sinkFactory func(TaskID) resultSink) (TaskID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isShutDown {
		p.stats.recordRejected()
		return 0, ErrPoolClosed
	}

	p.nextTaskID++
	id := TaskID(p.nextTaskID)
	envelope := &taskEnvelope{id: id, entry: entry, argument: argument, debugLabel: debugLabel}
	if sinkFactory != nil {
		p.handles[id] = sinkFactory(id)
	}
	p.stats.recordSubmitted()

	if p.activeWorkers < p.config.Max {
		p.spawnWorkerLocked(envelope)
	} else {
		p.overflow = append(p.overflow, &pendingTask{envelope: envelope})
		p.dispatchLocked()
	}
	return id, nil
}

// Cancel removes a still-queued task from the overflow queue. It
// returns false once the task has been handed to a worker - in-flight
// work is never interrupted, matching the package-wide non-goal of
// preemptive cancellation.
func (p *IsolatedPool) Cancel(id TaskID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, pt := range p.overflow {
		if pt.envelope.id != id {
			continue
		}
		p.overflow = append(p.overflow[:i], p.overflow[i+1:]...)
		if sink, ok := p.handles[id]; ok {
			delete(p.handles, id)
			sink.deliverCancelled()
		}
		p.stats.recordCancelled()
		return true
	}
	return false
}

// Shutdown forcibly terminates every live worker and drops any queued,
// not-yet-started work. A worker mid-task is allowed to finish that one
// task and deliver its result before it observes the shutdown signal -
// Go gives no way to preempt a running goroutine, and the package does
// not try to fake one. Shutdown blocks until every worker has reported
// its own exit. It is idempotent.
//
// A worker spawned just before Shutdown runs may still be in
// pendingSpawn, with no *worker reference yet for this snapshot to
// stop directly - the pool only learns of it when it later announces
// readiness over p.results. handleReadyLocked checks isShutDown and
// retires such a worker on arrival instead of dispatching it, so it
// still flows through the normal msgExit/msgContextExit ->
// handleWorkerGoneLocked path and p.wg.Wait() below accounts for it
// without Shutdown needing its own bookkeeping for pendingSpawn.
//
// The supervisor goroutine started by NewIsolatedPool is deliberately
// never torn down: a worker's self-reap exit (msgExit) and its
// independent context-exit notification (msgContextExit) race each
// other with no ordering guarantee, so there is no safe point at which
// closing the shared results channel couldn't land on a goroutine still
// mid-send. Leaving it draining an empty channel forever costs one
// goroutine per pool, which is the same price the package's documented
// process-wide defaults already pay for the lifetime of the program.
func (p *IsolatedPool) Shutdown() {
	p.mu.Lock()
	if p.isShutDown {
		p.mu.Unlock()
		return
	}
	p.isShutDown = true

	live := make([]*worker, 0, len(p.workers))
	for _, rec := range p.workers {
		live = append(live, rec.w)
	}
	p.overflow = nil
	p.mu.Unlock()

	for _, w := range live {
		w.stop()
	}
	p.wg.Wait()
}

// Stats returns a point-in-time snapshot of the pool's counters and
// worker gauges.
func (p *IsolatedPool) Stats() StatsSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := p.stats.snapshot()
	snap.ActiveWorkers = p.activeWorkers
	for _, rec := range p.workers {
		if rec.w.isCore {
			snap.CoreWorkers++
		}
		if !rec.busy {
			snap.IdleWorkers++
		}
	}
	snap.QueueDepth = len(p.overflow)
	return snap
}

// supervise is the only goroutine that ever reads p.results. It owns
// nothing but the channel itself; every state mutation it triggers goes
// through the same mutex Submit/Cancel/Stats/Shutdown use.
func (p *IsolatedPool) supervise() {
	for msg := range p.results {
		p.mu.Lock()
		switch msg.kind {
		case msgReady:
			p.handleReadyLocked(msg)
		case msgAck:
			p.handleAckLocked(msg)
		case msgExit, msgContextExit:
			p.handleWorkerGoneLocked(msg.workerID)
		}
		p.mu.Unlock()
	}
}

func (p *IsolatedPool) handleReadyLocked(msg workerMsg) {
	rec := &workerRecord{w: msg.worker}
	p.workers[msg.worker.id] = rec
	p.workerOrder = append(p.workerOrder, msg.worker.id)
	envelope, hadPending := p.pendingSpawn[msg.worker.id]
	if hadPending {
		delete(p.pendingSpawn, msg.worker.id)
	}

	if p.isShutDown {
		// Shutdown's live snapshot was taken before this worker announced
		// readiness, so stop() was never called on it directly - retire it
		// here instead of dispatching the envelope it may have been
		// spawned with. It still runs the normal msgExit/msgContextExit ->
		// handleWorkerGoneLocked path, so activeWorkers and p.wg stay
		// correct without Shutdown needing to track pendingSpawn itself.
		msg.worker.stop()
		return
	}

	if hadPending {
		rec.busy = true
		msg.inbound <- envelope
		return
	}
	p.dispatchLocked()
}

func (p *IsolatedPool) handleAckLocked(msg workerMsg) {
	p.stats.recordCompletion(msg.err)

	if rec, ok := p.workers[msg.workerID]; ok {
		rec.busy = false
	}
	if sink, ok := p.handles[msg.taskID]; ok {
		delete(p.handles, msg.taskID)
		if msg.err != nil {
			sink.deliverError(msg.err, msg.stack)
		} else {
			sink.deliverValue(msg.value)
		}
	}
	p.dispatchLocked()
}

// handleWorkerGoneLocked retires a worker exactly once, no matter which
// of the two independent "worker is gone" signals (msgExit, the
// self-reap sentinel, or msgContextExit, the unconditional watcher
// notice) arrives first. The second arrival is a no-op because the
// worker is already absent from the table.
func (p *IsolatedPool) handleWorkerGoneLocked(workerID uint64) {
	if _, ok := p.workers[workerID]; !ok {
		return
	}
	delete(p.workers, workerID)
	delete(p.pendingSpawn, workerID)
	for i, id := range p.workerOrder {
		if id == workerID {
			p.workerOrder = append(p.workerOrder[:i], p.workerOrder[i+1:]...)
			break
		}
	}
	p.activeWorkers--
	p.stats.recordReaped()
	p.wg.Done()
	p.dispatchLocked()
}

// dispatchLocked hands queued work to idle workers first, then spawns
// fresh workers (up to Max) for whatever remains queued. Idle workers
// are chosen in insertion order (p.workerOrder), matching the stable
// tie-break SPEC_FULL.md section 4.2 requires rather than Go's
// randomized map iteration. Called with mu held; every send it
// performs targets a worker's own 1-buffered inbound channel, which is
// never full for a worker this function considers idle.
func (p *IsolatedPool) dispatchLocked() {
	for _, id := range p.workerOrder {
		if len(p.overflow) == 0 {
			break
		}
		rec, ok := p.workers[id]
		if !ok || rec.busy {
			continue
		}
		pt := p.overflow[0]
		p.overflow = p.overflow[1:]
		rec.busy = true
		rec.w.inbound <- pt.envelope
	}

	for len(p.overflow) > 0 && p.activeWorkers < p.config.Max {
		pt := p.overflow[0]
		p.overflow = p.overflow[1:]
		p.spawnWorkerLocked(pt.envelope)
	}
}

// spawnWorkerLocked starts a new worker goroutine seeded with envelope:
// the worker is handed the envelope the instant it announces readiness,
// without a round trip through the overflow queue.
func (p *IsolatedPool) spawnWorkerLocked(envelope *taskEnvelope) {
	p.nextWorkerID++
	id := p.nextWorkerID
	isCore := p.activeWorkers < p.config.Core
	debugName := fmt.Sprintf("%s-worker-%d", p.config.Name, id)

	p.activeWorkers++
	p.stats.recordSpawned()
	p.wg.Add(1)
	p.pendingSpawn[id] = envelope

	newWorker(id, debugName, isCore, p.config.KeepActive, p.results)
}
