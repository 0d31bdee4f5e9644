package worker

import (
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeldidi/threadpool/errors"
)

func TestPool_JobPanicRecovered(t *testing.T) {
	faults := make(chan *JobFault, 1)
	pool := newTestPool(t, 1, WithFaultHandler(func(f *JobFault) {
		faults <- f
	}))

	cause := stderrors.New("disk on fire")
	pool.Submit(func() { panic(cause) })

	var ran atomic.Bool
	pool.Submit(func() { ran.Store(true) })
	pool.Wait()

	assert.True(t, ran.Load(), "worker should survive a panicking job")

	var fault *JobFault
	select {
	case fault = <-faults:
	case <-time.After(time.Second):
		t.Fatal("fault handler not called")
	}

	assert.Equal(t, pool.ID(), fault.PoolID)
	assert.Equal(t, uint64(1), fault.JobSeq)
	assert.Equal(t, 0, fault.Worker)
	assert.NotEmpty(t, fault.Stack)
	assert.ErrorIs(t, fault, errors.ErrJobPanicked)
	assert.ErrorIs(t, fault, cause)
	assert.Contains(t, fault.Error(), "disk on fire")

	stats := pool.Stats()
	assert.Equal(t, int64(2), stats.Executed)
	assert.Equal(t, int64(1), stats.Faulted)
	assert.Equal(t, 1, stats.Workers)

	status := pool.Health()
	assert.True(t, status.IsDegraded())
	assert.NotEmpty(t, status.LastError)
}

func TestPool_NonErrorPanicValue(t *testing.T) {
	faults := make(chan *JobFault, 1)
	pool := newTestPool(t, 1, WithFaultHandler(func(f *JobFault) {
		faults <- f
	}))

	pool.Submit(func() { panic("boom") })
	pool.Wait()

	fault := <-faults
	assert.Equal(t, "boom", fault.Value)
	assert.ErrorIs(t, fault, errors.ErrJobPanicked)
	assert.Len(t, fault.Unwrap(), 1)
}

func TestPool_FaultHandlerPanicContained(t *testing.T) {
	pool := newTestPool(t, 1, WithFaultHandler(func(*JobFault) {
		panic("handler broke")
	}))

	pool.Submit(func() { panic("job broke") })
	var ran atomic.Bool
	pool.Submit(func() { ran.Store(true) })
	pool.Wait()

	assert.True(t, ran.Load())
	assert.Equal(t, 1, pool.Stats().Workers)
}

func TestPool_FaultWithoutHandler(t *testing.T) {
	pool := newTestPool(t, 2)

	for i := 0; i < 10; i++ {
		i := i
		pool.Submit(func() {
			if i%2 == 0 {
				panic(i)
			}
		})
	}
	pool.Wait()

	stats := pool.Stats()
	assert.Equal(t, int64(10), stats.Executed)
	assert.Equal(t, int64(5), stats.Faulted)
	require.Equal(t, 2, stats.Workers)
}
