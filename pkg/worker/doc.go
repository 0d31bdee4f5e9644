// Package worker provides a fixed-size pool of goroutines that execute
// deferred jobs.
//
// # Overview
//
// A Pool owns a FIFO job queue and a fixed set of workers. Callers hand it
// zero-argument closures with Submit and later synchronize with Wait (block
// until quiescent), Reset (discard pending jobs, then wait) or Close (drain and
// stop every worker).
//
//	pool, err := worker.New(4, worker.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	var total atomic.Int64
//	for i := 0; i < 100; i++ {
//	    pool.Submit(func() { total.Add(1) })
//	}
//	pool.Wait() // total.Load() == 100
//
// # Ordering
//
// Jobs submitted from a single goroutine start in submission order. With more
// than one worker they may finish in any order. A queued job waits as long as
// every worker is busy; there is no per-job cancellation and no timeout.
//
// # Quiescence
//
// Wait returns once the queue is empty and no worker is executing a job. It is
// a checkpoint, not a barrier: a Submit racing with Wait may land on either
// side of it. Stop producers first when a hard barrier is needed.
//
// # Faults
//
// A job that panics is recovered on its worker. The fault is logged at error
// level with its stack and counted in Stats. A configured FaultHandler then
// receives it. The worker keeps serving the queue.
//
// A job that calls runtime.Goexit takes its worker down with it. It is counted
// as exited rather than executed, and the pool reports itself unhealthy.
//
// # Shutdown
//
// Close discards pending jobs, waits for running ones, stops every worker and
// joins them. Submit must not race with Close; a job submitted after Close has
// begun is dropped with a warning and counted as dropped.
//
// # Metrics
//
// WithMetricsRegistry registers, under the given prefix and a pool label:
//
//	<prefix>_threads_total           live workers
//	<prefix>_threads_working         workers executing a job
//	<prefix>_queue_length            pending jobs
//	<prefix>_submitted_total         jobs submitted
//	<prefix>_executed_total          jobs executed
//	<prefix>_faults_total            jobs that panicked
//	<prefix>_discarded_total         jobs discarded by Reset or Close
//	<prefix>_dropped_total           jobs submitted after Close
//	<prefix>_job_duration_seconds    execution time by status (success, fault, exited)
//
// Statistics are always tracked and available through Stats.
package worker
