// Package health provides health reporting for worker pools.
//
// The package supports three health states:
//   - Healthy: the pool has its full complement of workers
//   - Degraded: the pool is running but jobs have panicked since creation
//   - Unhealthy: the pool has fewer live workers than configured, or is closed
//
// Status is a value type; Monitor aggregates named Checkers, each of which
// produces a Status on demand. The metrics server exposes the aggregate on
// /health.
//
//	monitor := health.NewMonitor()
//	monitor.Register("pool", pool.Health)
//	status := monitor.AggregateHealth("threadpool")
package health
