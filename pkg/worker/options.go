package worker

import (
	"log/slog"

	"github.com/aeldidi/threadpool/metric"
)

// Option represents a configuration option for the worker pool
type Option func(*Pool)

// WithLogger sets the logger used for lifecycle and fault records.
// The pool adds its own pool_id attribute.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetricsRegistry configures the pool to register metrics with the registry.
// Every metric name starts with prefix and carries a pool label, so several
// pools may share a prefix.
func WithMetricsRegistry(registry *metric.MetricsRegistry, prefix string) Option {
	return func(p *Pool) {
		p.metricsRegistry = registry
		p.metricsPrefix = prefix
	}
}

// WithFaultHandler sets the callback that receives jobs that panicked
func WithFaultHandler(handler FaultHandler) Option {
	return func(p *Pool) {
		p.faultHandler = handler
	}
}
