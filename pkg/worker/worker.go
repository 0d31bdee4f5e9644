package worker

import (
	"runtime/debug"
	"time"

	"github.com/aeldidi/threadpool/errors"
)

// Job outcomes, used as the status label of the duration histogram
const (
	statusSuccess = "success"
	statusFault   = "fault"
	statusExited  = "exited" // runtime.Goexit inside the job
)

// worker is one goroutine serving a pool's queue. It moves between waiting
// and working until the pool is closed.
type worker struct {
	id   int
	pool *Pool
}

func (w *worker) run() {
	p := w.pool
	p.register()

	working := false
	defer func() {
		if working {
			p.markIdle()
		}
		p.unregister()
	}()

	for p.queue.waitForWork(p.alive.Load) {
		// working must be visible before the job leaves the queue, or Wait
		// could observe an empty queue with nobody working mid-handoff
		p.markWorking()
		working = true

		if !p.alive.Load() {
			return
		}

		if j := p.queue.dequeue(); j != nil {
			w.execute(j)
		}

		p.markIdle()
		working = false
	}
}

// execute runs one job, recovering a panic into a JobFault
func (w *worker) execute(j *job) {
	p := w.pool
	start := time.Now()
	completed := false

	defer func() {
		status := statusSuccess
		if r := recover(); r != nil {
			status = statusFault
			p.reportFault(&JobFault{
				PoolID: p.id,
				JobSeq: j.seq,
				Worker: w.id,
				Value:  r,
				Stack:  debug.Stack(),
			})
		} else if !completed {
			// this worker is gone
			status = statusExited
			p.logger.Warn("Job exited its worker goroutine", "job", j.seq, "worker", w.id)
		}

		if status == statusExited {
			p.goexits.Add(1)
		} else {
			p.executed.Add(1)
		}
		if p.metrics != nil {
			p.metrics.observeJob(status, time.Since(start))
		}
	}()

	j.fn()
	completed = true
}

func (p *Pool) reportFault(fault *JobFault) {
	p.faulted.Add(1)
	p.lastFault.Store(fault)

	p.logger.Error("Job panicked",
		"class", errors.Classify(fault).String(),
		"job", fault.JobSeq,
		"worker", fault.Worker,
		"panic", fault.Value,
		"stack", string(fault.Stack))

	if p.metricsRegistry != nil {
		p.metricsRegistry.CoreMetrics().RecordJobFault(p.id)
	}

	if p.faultHandler == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Fault handler panicked", "job", fault.JobSeq, "panic", r)
		}
	}()
	p.faultHandler(fault)
}
