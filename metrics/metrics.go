// Package metrics exposes a pool or executor's StatsSnapshot as
// Prometheus metrics. It never touches pool internals directly - every
// value it reports comes from one Stats() call per scrape, so a scrape
// can never block dispatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chainlens/taskpool"
)

// StatsSource is satisfied by *taskpool.IsolatedPool and
// *taskpool.InProcessExecutor.
type StatsSource interface {
	Stats() taskpool.StatsSnapshot
}

// Collector is a prometheus.Collector that reads a StatsSource on every
// scrape rather than mirroring its counters into package-level state,
// so Collect always reports the snapshot as of that scrape.
type Collector struct {
	source StatsSource
	labels prometheus.Labels

	activeWorkers  *prometheus.Desc
	coreWorkers    *prometheus.Desc
	idleWorkers    *prometheus.Desc
	queueDepth     *prometheus.Desc
	tasksSubmitted *prometheus.Desc
	tasksCompleted *prometheus.Desc
	tasksFailed    *prometheus.Desc
	tasksCancelled *prometheus.Desc
	tasksRejected  *prometheus.Desc
	workersSpawned *prometheus.Desc
	workersReaped  *prometheus.Desc
}

// NewCollector returns a Collector reporting source's stats under the
// given pool/executor name as a constant "name" label.
func NewCollector(name string, source StatsSource) *Collector {
	labelNames := []string{"name"}
	labels := prometheus.Labels{"name": name}

	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc("taskpool_"+metric, help, labelNames, nil)
	}

	return &Collector{
		source:         source,
		labels:         labels,
		activeWorkers:  desc("active_workers", "Workers currently alive."),
		coreWorkers:    desc("core_workers", "Workers exempt from idle reaping."),
		idleWorkers:    desc("idle_workers", "Workers alive but not running a task."),
		queueDepth:     desc("queue_depth", "Tasks waiting in the overflow queue."),
		tasksSubmitted: desc("tasks_submitted_total", "Tasks submitted, cumulative."),
		tasksCompleted: desc("tasks_completed_total", "Tasks completed without error, cumulative."),
		tasksFailed:    desc("tasks_failed_total", "Tasks completed with an error, cumulative."),
		tasksCancelled: desc("tasks_cancelled_total", "Tasks cancelled before they started, cumulative."),
		tasksRejected:  desc("tasks_rejected_total", "Submissions rejected by a closed pool, cumulative."),
		workersSpawned: desc("workers_spawned_total", "Workers spawned, cumulative."),
		workersReaped:  desc("workers_reaped_total", "Workers reaped or exited, cumulative."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.activeWorkers
	ch <- c.coreWorkers
	ch <- c.idleWorkers
	ch <- c.queueDepth
	ch <- c.tasksSubmitted
	ch <- c.tasksCompleted
	ch <- c.tasksFailed
	ch <- c.tasksCancelled
	ch <- c.tasksRejected
	ch <- c.workersSpawned
	ch <- c.workersReaped
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Stats()
	name := c.labels["name"]

	ch <- prometheus.MustNewConstMetric(c.activeWorkers, prometheus.GaugeValue, float64(snap.ActiveWorkers), name)
	ch <- prometheus.MustNewConstMetric(c.coreWorkers, prometheus.GaugeValue, float64(snap.CoreWorkers), name)
	ch <- prometheus.MustNewConstMetric(c.idleWorkers, prometheus.GaugeValue, float64(snap.IdleWorkers), name)
	ch <- prometheus.MustNewConstMetric(c.queueDepth, prometheus.GaugeValue, float64(snap.QueueDepth), name)
	ch <- prometheus.MustNewConstMetric(c.tasksSubmitted, prometheus.CounterValue, float64(snap.TasksSubmitted), name)
	ch <- prometheus.MustNewConstMetric(c.tasksCompleted, prometheus.CounterValue, float64(snap.TasksCompleted), name)
	ch <- prometheus.MustNewConstMetric(c.tasksFailed, prometheus.CounterValue, float64(snap.TasksFailed), name)
	ch <- prometheus.MustNewConstMetric(c.tasksCancelled, prometheus.CounterValue, float64(snap.TasksCancelled), name)
	ch <- prometheus.MustNewConstMetric(c.tasksRejected, prometheus.CounterValue, float64(snap.TasksRejected), name)
	ch <- prometheus.MustNewConstMetric(c.workersSpawned, prometheus.CounterValue, float64(snap.WorkersSpawned), name)
	ch <- prometheus.MustNewConstMetric(c.workersReaped, prometheus.CounterValue, float64(snap.WorkersReaped), name)
}

// Register creates a Collector for source and registers it with reg.
func Register(reg *prometheus.Registry, name string, source StatsSource) error {
	return reg.Register(NewCollector(name, source))
}
