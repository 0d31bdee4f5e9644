package worker

import (
	"fmt"

	"github.com/aeldidi/threadpool/errors"
)

// FaultHandler receives jobs that panicked. It runs on the worker goroutine
// that recovered the panic, after the fault has been logged and counted.
type FaultHandler func(*JobFault)

// JobFault describes a job that panicked while executing. The worker that ran
// it recovers, reports the fault and keeps serving the queue.
type JobFault struct {
	PoolID string
	JobSeq uint64 // submission sequence number, starting at 1
	Worker int
	Value  any // value passed to panic
	Stack  []byte
}

// Error implements the error interface
func (f *JobFault) Error() string {
	return fmt.Sprintf("job %d panicked on worker %d: %v", f.JobSeq, f.Worker, f.Value)
}

// Unwrap exposes errors.ErrJobPanicked and, when the job panicked with an
// error value, that error.
func (f *JobFault) Unwrap() []error {
	if err, ok := f.Value.(error); ok {
		return []error{errors.ErrJobPanicked, err}
	}
	return []error{errors.ErrJobPanicked}
}
