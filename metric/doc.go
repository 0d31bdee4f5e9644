// Package metric provides Prometheus metrics collection and the HTTP server
// that exposes them for worker pools.
//
// MetricsRegistry wraps a private prometheus.Registry. It registers a small
// set of core metrics shared by every pool (active pools, lifecycle events,
// job faults) together with the Go runtime and process collectors. Pools add
// their own per-pool gauges, counters and histograms through the
// MetricsRegistrar methods, keyed by owner and metric name so a duplicate
// registration is reported as an invalid error instead of a panic.
//
//	registry := metric.NewMetricsRegistry()
//	pool, err := worker.New(8, worker.WithMetricsRegistry(registry, "ingest"))
//
//	server := metric.NewServer(9090, "/metrics", registry, monitor)
//	go func() {
//	    if err := server.Start(); err != nil {
//	        slog.Error("metrics server failed", "error", err)
//	    }
//	}()
//	defer server.Stop()
//
// The server exposes metrics at the configured path and the aggregated pool
// health as JSON on /health (503 when any pool is unhealthy).
package metric
