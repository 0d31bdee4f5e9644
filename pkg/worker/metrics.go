package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for worker pool monitoring
type Metrics struct {
	submitted   prometheus.Counter
	executed    prometheus.Counter
	faults      prometheus.Counter
	discarded   prometheus.Counter
	dropped     prometheus.Counter
	jobDuration *prometheus.HistogramVec
}

// initializeMetrics creates the pool's metrics and registers them with the
// registry. Registration failures are logged and leave the pool without
// metrics; they never fail construction.
func (p *Pool) initializeMetrics() {
	prefix := p.metricsPrefix
	labels := prometheus.Labels{"pool": p.id}

	threadsTotal := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        prefix + "_threads_total",
		Help:        "Live worker goroutines",
		ConstLabels: labels,
	}, func() float64 { return float64(p.Stats().Workers) })
	threadsWorking := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        prefix + "_threads_working",
		Help:        "Workers currently executing a job",
		ConstLabels: labels,
	}, func() float64 { return float64(p.Stats().Working) })
	queueLength := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        prefix + "_queue_length",
		Help:        "Jobs waiting in the queue",
		ConstLabels: labels,
	}, func() float64 { return float64(p.queue.len()) })

	m := &Metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        prefix + "_submitted_total",
			Help:        "Total jobs submitted",
			ConstLabels: labels,
		}),
		executed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        prefix + "_executed_total",
			Help:        "Total jobs executed, including faulted ones but not ones that exited their worker",
			ConstLabels: labels,
		}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        prefix + "_faults_total",
			Help:        "Total jobs that panicked",
			ConstLabels: labels,
		}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        prefix + "_discarded_total",
			Help:        "Total queued jobs discarded by reset",
			ConstLabels: labels,
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        prefix + "_dropped_total",
			Help:        "Total jobs submitted after close",
			ConstLabels: labels,
		}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        prefix + "_job_duration_seconds",
			Help:        "Time spent executing jobs",
			ConstLabels: labels,
			Buckets:     []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"status"}),
	}

	registry := p.metricsRegistry
	owner := p.id
	errs := []error{
		registry.RegisterGaugeFunc(owner, prefix+"_threads_total", threadsTotal),
		registry.RegisterGaugeFunc(owner, prefix+"_threads_working", threadsWorking),
		registry.RegisterGaugeFunc(owner, prefix+"_queue_length", queueLength),
		registry.RegisterCounter(owner, prefix+"_submitted_total", m.submitted),
		registry.RegisterCounter(owner, prefix+"_executed_total", m.executed),
		registry.RegisterCounter(owner, prefix+"_faults_total", m.faults),
		registry.RegisterCounter(owner, prefix+"_discarded_total", m.discarded),
		registry.RegisterCounter(owner, prefix+"_dropped_total", m.dropped),
		registry.RegisterHistogramVec(owner, prefix+"_job_duration_seconds", m.jobDuration),
	}
	for _, err := range errs {
		if err != nil {
			p.logger.Warn("Worker pool metrics disabled", "prefix", prefix, "error", err)
			p.unregisterMetrics()
			return
		}
	}

	p.metrics = m
}

func (p *Pool) unregisterMetrics() {
	for _, suffix := range []string{
		"_threads_total", "_threads_working", "_queue_length",
		"_submitted_total", "_executed_total", "_faults_total",
		"_discarded_total", "_dropped_total", "_job_duration_seconds",
	} {
		p.metricsRegistry.Unregister(p.id, p.metricsPrefix+suffix)
	}
	p.metrics = nil
}

func (m *Metrics) observeJob(status string, duration time.Duration) {
	switch status {
	case statusExited:
	case statusFault:
		m.executed.Inc()
		m.faults.Inc()
	default:
		m.executed.Inc()
	}
	m.jobDuration.WithLabelValues(status).Observe(duration.Seconds())
}
