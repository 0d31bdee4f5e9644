// Package worker provides a fixed-size worker pool for deferred jobs
package worker

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aeldidi/threadpool/errors"
	"github.com/aeldidi/threadpool/health"
	"github.com/aeldidi/threadpool/metric"
)

// MaxThreads is the largest worker count New accepts. It matches the Go
// runtime's default OS thread limit (see runtime/debug.SetMaxThreads); a pool
// whose jobs all block in system calls beyond it would crash the process.
const MaxThreads = 10000

// Pool runs submitted jobs on a fixed set of worker goroutines.
//
// threadsTotal and threadsWorking are guarded by countMu, which also backs
// allIdle. countMu may be held while taking the queue mutex, never the
// reverse.
type Pool struct {
	id     string
	size   int
	logger *slog.Logger

	queue *jobQueue
	alive atomic.Bool

	countMu        sync.Mutex
	allIdle        *sync.Cond
	threadsTotal   int
	threadsWorking int

	workers   []*worker
	started   sync.WaitGroup
	exited    sync.WaitGroup
	closeOnce sync.Once

	// Statistics (atomic)
	seq       atomic.Uint64
	submitted atomic.Int64
	executed  atomic.Int64
	faulted   atomic.Int64
	goexits   atomic.Int64
	discarded atomic.Int64
	dropped   atomic.Int64
	lastFault atomic.Pointer[JobFault]

	faultHandler    FaultHandler
	metricsRegistry *metric.MetricsRegistry
	metricsPrefix   string
	metrics         *Metrics
}

// PoolStats represents worker pool statistics
type PoolStats struct {
	Workers     int   `json:"workers"`
	Working     int   `json:"working"`
	QueueLength int   `json:"queue_length"`
	Submitted   int64 `json:"submitted"`
	Executed    int64 `json:"executed"`
	Faulted     int64 `json:"faulted"`
	Exited      int64 `json:"exited"` // jobs that called runtime.Goexit
	Discarded   int64 `json:"discarded"`
	Dropped     int64 `json:"dropped"`
}

// New creates a pool of threadCount workers and returns once every worker is
// live. A negative count is an invalid-configuration error and a count above
// MaxThreads a resource-exhaustion error; in both cases no worker is started.
// A pool of zero workers accepts jobs but never runs them.
func New(threadCount int, opts ...Option) (*Pool, error) {
	if threadCount < 0 {
		return nil, errors.WrapInvalid(ErrInvalidThreadCount, "Pool", "New",
			fmt.Sprintf("validate thread count %d", threadCount))
	}
	if threadCount > MaxThreads {
		return nil, errors.WrapFatal(ErrTooManyThreads, "Pool", "New",
			fmt.Sprintf("reserve %d threads (limit %d)", threadCount, MaxThreads))
	}

	p := &Pool{
		id:     uuid.NewString(),
		size:   threadCount,
		logger: slog.Default(),
		queue:  newJobQueue(),
	}
	p.allIdle = sync.NewCond(&p.countMu)

	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "worker_pool", "pool_id", p.id)

	if p.metricsRegistry != nil && p.metricsPrefix != "" {
		p.initializeMetrics()
	}

	p.alive.Store(true)
	p.workers = make([]*worker, threadCount)
	p.started.Add(threadCount)
	p.exited.Add(threadCount)
	for i := range p.workers {
		w := &worker{id: i, pool: p}
		p.workers[i] = w
		go w.run()
	}
	p.started.Wait()

	if p.metricsRegistry != nil {
		p.metricsRegistry.CoreMetrics().RecordPoolCreated()
	}
	p.logger.Debug("Worker pool started", "threads", threadCount)

	return p, nil
}

// ID returns the identifier attached to the pool's logs and metrics
func (p *Pool) ID() string {
	return p.id
}

// Size returns the number of workers the pool was created with
func (p *Pool) Size() int {
	return p.size
}

// Submit queues fn for execution. It only blocks to take the queue lock and is
// safe for concurrent use. Jobs from a single goroutine start in submission
// order.
//
// Submit must not race with Close. A job submitted after Close has begun is
// dropped and logged. Submit panics with ErrNilJob if fn is nil.
func (p *Pool) Submit(fn func()) {
	if fn == nil {
		panic(ErrNilJob)
	}

	if !p.alive.Load() {
		p.dropped.Add(1)
		if p.metrics != nil {
			p.metrics.dropped.Inc()
		}
		p.logger.Warn("Job submitted to closed pool dropped", "error", ErrPoolClosed)
		return
	}

	p.queue.enqueue(&job{fn: fn, seq: p.seq.Add(1)})

	p.submitted.Add(1)
	if p.metrics != nil {
		p.metrics.submitted.Inc()
	}
}

// Wait blocks until no job is queued and no worker is executing one. It is a
// quiescence checkpoint, not a barrier: jobs submitted concurrently may or may
// not be covered. On a pool with zero workers and pending jobs it never
// returns.
func (p *Pool) Wait() {
	p.countMu.Lock()
	defer p.countMu.Unlock()

	for p.queue.len() != 0 || p.threadsWorking != 0 {
		p.allIdle.Wait()
	}
}

// Reset discards every queued job and waits for jobs already running to
// finish. The workers stay up and the pool can be reused.
func (p *Pool) Reset() {
	discarded := p.queue.clear()
	if discarded > 0 {
		p.discarded.Add(int64(discarded))
		if p.metrics != nil {
			p.metrics.discarded.Add(float64(discarded))
		}
	}

	// the queue may have emptied without any worker going idle
	p.countMu.Lock()
	p.allIdle.Broadcast()
	p.countMu.Unlock()

	p.Wait()

	if p.metricsRegistry != nil {
		p.metricsRegistry.CoreMetrics().RecordPoolReset()
	}
	p.logger.Debug("Worker pool reset", "discarded", discarded)
}

// Close drains the pool, stops every worker and waits for them to exit.
// After Close returns no job runs. Close is idempotent.
func (p *Pool) Close() {
	p.closeOnce.Do(p.shutdown)
}

func (p *Pool) shutdown() {
	start := time.Now()

	p.Reset()

	p.queue.closeWith(func() { p.alive.Store(false) })

	p.countMu.Lock()
	p.allIdle.Broadcast()
	for p.threadsTotal > 0 {
		p.allIdle.Wait()
	}
	p.countMu.Unlock()

	p.exited.Wait()
	p.workers = nil
	p.queue.clear()

	if p.metricsRegistry != nil {
		if p.metrics != nil {
			p.unregisterMetrics()
		}
		p.metricsRegistry.CoreMetrics().RecordPoolClosed()
	}
	p.logger.Debug("Worker pool stopped", "duration", time.Since(start))
}

// Stats returns current pool statistics
func (p *Pool) Stats() PoolStats {
	p.countMu.Lock()
	workers, working := p.threadsTotal, p.threadsWorking
	p.countMu.Unlock()

	return PoolStats{
		Workers:     workers,
		Working:     working,
		QueueLength: p.queue.len(),
		Submitted:   p.submitted.Load(),
		Executed:    p.executed.Load(),
		Faulted:     p.faulted.Load(),
		Exited:      p.goexits.Load(),
		Discarded:   p.discarded.Load(),
		Dropped:     p.dropped.Load(),
	}
}

// Health reports the pool as unhealthy when closed or short of workers, and
// degraded once any job has panicked.
func (p *Pool) Health() health.Status {
	stats := p.Stats()
	metrics := &health.Metrics{
		Workers:     stats.Workers,
		Working:     stats.Working,
		QueueLength: stats.QueueLength,
		Executed:    stats.Executed,
		Faulted:     stats.Faulted,
	}

	var status health.Status
	switch {
	case !p.alive.Load():
		status = health.NewUnhealthy(p.id, "Pool closed")
	case stats.Workers < p.size:
		status = health.NewUnhealthy(p.id,
			fmt.Sprintf("%d of %d workers live", stats.Workers, p.size))
	case stats.Faulted > 0:
		status = health.NewDegraded(p.id, fmt.Sprintf("%d jobs panicked", stats.Faulted))
	default:
		status = health.NewHealthy(p.id, fmt.Sprintf("%d workers live", stats.Workers))
	}

	if fault := p.lastFault.Load(); fault != nil {
		status = status.WithLastError(fault.Error())
	}
	return status.WithMetrics(metrics)
}

func (p *Pool) register() {
	p.countMu.Lock()
	p.threadsTotal++
	p.countMu.Unlock()
	p.started.Done()
}

func (p *Pool) unregister() {
	p.countMu.Lock()
	p.threadsTotal--
	if p.threadsTotal == 0 {
		p.allIdle.Broadcast()
	}
	p.countMu.Unlock()
	p.exited.Done()
}

func (p *Pool) markWorking() {
	p.countMu.Lock()
	p.threadsWorking++
	p.countMu.Unlock()
}

func (p *Pool) markIdle() {
	p.countMu.Lock()
	p.threadsWorking--
	if p.threadsWorking == 0 && p.queue.len() == 0 {
		p.allIdle.Broadcast()
	}
	p.countMu.Unlock()
}
