package worker

import (
	"fmt"

	"github.com/aeldidi/threadpool/errors"
)

// Sentinel errors for worker pool operations
var (
	// ErrInvalidThreadCount indicates a negative worker count was requested
	ErrInvalidThreadCount = fmt.Errorf("thread count must not be negative: %w", errors.ErrInvalidConfig)

	// ErrTooManyThreads indicates the requested worker count exceeds MaxThreads
	ErrTooManyThreads = fmt.Errorf("thread count exceeds runtime thread limit: %w", errors.ErrResourceExhausted)

	// ErrNilJob indicates a nil function was submitted
	ErrNilJob = fmt.Errorf("job function cannot be nil: %w", errors.ErrInvalidData)

	// ErrPoolClosed indicates a job was submitted after Close
	ErrPoolClosed = fmt.Errorf("worker pool closed: %w", errors.ErrShuttingDown)
)
