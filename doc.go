// Package threadpool is a fixed-size worker pool for Go programs that need to
// run many small deferred jobs on a bounded set of goroutines.
//
// The module is organized as:
//
//   - pkg/worker: the pool itself (New, Submit, Wait, Reset, Close)
//   - config: layered JSON/YAML configuration with THREADPOOL_* overrides
//   - errors: error classification shared by every package
//   - metric: Prometheus registry and the metrics/health HTTP server
//   - health: pool health statuses and the monitor that aggregates them
//   - cmd/threadpool: a driver that loads a pool and reports throughput
//
// Jobs submitted from one goroutine start in submission order. Wait is a
// quiescence checkpoint; Reset drains the queue but keeps the workers. Close
// stops and joins every worker. A panicking job is recovered on its worker and
// handed to the optional fault handler.
package threadpool
