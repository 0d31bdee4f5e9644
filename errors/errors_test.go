package errors_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeldidi/threadpool/config"
	"github.com/aeldidi/threadpool/errors"
	"github.com/aeldidi/threadpool/pkg/worker"
)

func TestErrorClass_String(t *testing.T) {
	assert.Equal(t, "transient", errors.ErrorTransient.String())
	assert.Equal(t, "invalid", errors.ErrorInvalid.String())
	assert.Equal(t, "fatal", errors.ErrorFatal.String())
	assert.Equal(t, "unknown", errors.ErrorClass(-1).String())
	assert.Equal(t, "unknown", errors.ErrorClass(7).String())
}

func TestClassify_PoolErrors(t *testing.T) {
	_, negativeErr := worker.New(-1)
	_, tooManyErr := worker.New(worker.MaxThreads + 1)
	_, missingErr := config.NewLoader().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))

	tests := []struct {
		name string
		err  error
		want errors.ErrorClass
	}{
		{"negative thread count", negativeErr, errors.ErrorInvalid},
		{"thread count above ceiling", tooManyErr, errors.ErrorFatal},
		{"nil job", worker.ErrNilJob, errors.ErrorInvalid},
		{"submit after close", worker.ErrPoolClosed, errors.ErrorTransient},
		{"job panicked with a string", &worker.JobFault{Value: "boom"}, errors.ErrorFatal},
		{"job panicked with cancellation", &worker.JobFault{Value: context.Canceled}, errors.ErrorFatal},
		{"missing config file", missingErr, errors.ErrorInvalid},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), errors.ErrorTransient},
		{"unknown error", stderrors.New("something else"), errors.ErrorTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.want, errors.Classify(tt.err))
			assert.Equal(t, tt.want == errors.ErrorTransient, errors.IsTransient(tt.err))
			assert.Equal(t, tt.want == errors.ErrorInvalid, errors.IsInvalid(tt.err))
			assert.Equal(t, tt.want == errors.ErrorFatal, errors.IsFatal(tt.err))
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	assert.Equal(t, errors.ErrorTransient, errors.Classify(nil))
	assert.False(t, errors.IsTransient(nil))
	assert.False(t, errors.IsInvalid(nil))
	assert.False(t, errors.IsFatal(nil))
}

func TestClassify_ExplicitClassWins(t *testing.T) {
	err := errors.WrapTransient(worker.ErrTooManyThreads, "Pool", "New", "reserve threads")

	assert.True(t, errors.IsTransient(err))
	assert.ErrorIs(t, err, errors.ErrResourceExhausted, "sentinel still reachable")

	outer := fmt.Errorf("driver: %w", err)
	assert.True(t, errors.IsTransient(outer))
}

func TestWrap(t *testing.T) {
	err := errors.Wrap(worker.ErrNilJob, "Pool", "Submit", "enqueue job")
	assert.EqualError(t, err, "Pool.Submit: enqueue job failed: "+worker.ErrNilJob.Error())
	assert.ErrorIs(t, err, worker.ErrNilJob)
	assert.True(t, errors.IsInvalid(err), "class follows the wrapped sentinel")

	assert.NoError(t, errors.Wrap(nil, "Pool", "Submit", "enqueue job"))
	assert.NoError(t, errors.WrapInvalid(nil, "Pool", "New", "validate"))
	assert.NoError(t, errors.WrapFatal(nil, "Pool", "New", "validate"))
	assert.NoError(t, errors.WrapTransient(nil, "Pool", "New", "validate"))
}

func TestWrapInvalid_RecordsOperation(t *testing.T) {
	_, err := worker.New(-3)
	require.Error(t, err)

	var ce *errors.ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, errors.ErrorInvalid, ce.Class)
	assert.Equal(t, "Pool", ce.Component)
	assert.Equal(t, "New", ce.Operation)
	assert.Contains(t, err.Error(), "Pool.New: validate thread count -3 failed")
	assert.ErrorIs(t, err, worker.ErrInvalidThreadCount)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestJobFault_UnwrapsPanicError(t *testing.T) {
	fault := &worker.JobFault{JobSeq: 4, Worker: 1, Value: io.ErrUnexpectedEOF}

	assert.ErrorIs(t, fault, errors.ErrJobPanicked)
	assert.ErrorIs(t, fault, io.ErrUnexpectedEOF)
	assert.True(t, errors.IsFatal(fault))
	assert.EqualError(t, fault, "job 4 panicked on worker 1: unexpected EOF")
}
