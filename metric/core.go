package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Pool lifecycle events recorded in PoolEvents
const (
	EventCreated = "created"
	EventReset   = "reset"
	EventClosed  = "closed"
)

// Metrics contains the metrics shared by every pool using the registry
type Metrics struct {
	PoolsActive prometheus.Gauge
	PoolEvents  *prometheus.CounterVec
	JobFaults   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		PoolsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "threadpool",
				Name:      "pools_active",
				Help:      "Number of pools that have been created and not yet closed",
			},
		),

		PoolEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "threadpool",
				Name:      "pool_events_total",
				Help:      "Pool lifecycle events (created, reset, closed)",
			},
			[]string{"event"},
		),

		JobFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "threadpool",
				Name:      "job_faults_total",
				Help:      "Jobs that panicked, by pool",
			},
			[]string{"pool"},
		),
	}
}

// RecordPoolCreated counts a new pool and marks it active
func (c *Metrics) RecordPoolCreated() {
	c.PoolsActive.Inc()
	c.PoolEvents.WithLabelValues(EventCreated).Inc()
}

// RecordPoolReset counts a drain of a pool
func (c *Metrics) RecordPoolReset() {
	c.PoolEvents.WithLabelValues(EventReset).Inc()
}

// RecordPoolClosed counts a shutdown and marks the pool inactive
func (c *Metrics) RecordPoolClosed() {
	c.PoolsActive.Dec()
	c.PoolEvents.WithLabelValues(EventClosed).Inc()
}

// RecordJobFault increments the fault counter for a pool
func (c *Metrics) RecordJobFault(poolID string) {
	c.JobFaults.WithLabelValues(poolID).Inc()
}
