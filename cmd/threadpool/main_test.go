package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeldidi/threadpool/errors"
)

// runUntilCancelled starts run, cancels it after delay and returns its logs.
// It fails the test if run does not return within limit of the cancellation.
func runUntilCancelled(t *testing.T, args []string, delay, limit time.Duration) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	result := make(chan error, 1)
	go func() {
		result <- run(ctx, args, &out)
	}()

	time.Sleep(delay)
	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(limit):
		t.Fatalf("run did not return %v after cancellation", limit)
	}
	return out.String()
}

func TestRun_Completes(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-threads", "2",
		"-jobs", "100",
		"-producers", "3",
		"-log-format", "text",
	}, &out)
	require.NoError(t, err)

	logs := out.String()
	assert.Contains(t, logs, "Run complete")
	assert.Contains(t, logs, "submitted=100")
	assert.Contains(t, logs, "executed=100")
	assert.Contains(t, logs, "health=healthy")
}

func TestRun_Faults(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-threads", "2",
		"-jobs", "50",
		"-producers", "1",
		"-fail-every", "10",
		"-log-format", "text",
	}, &out)
	require.NoError(t, err)

	logs := out.String()
	assert.Contains(t, logs, "faulted=5")
	assert.Contains(t, logs, "health=degraded")
	assert.Contains(t, logs, "Job panicked")
}

func TestRun_RateLimited(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-threads", "1",
		"-jobs", "20",
		"-producers", "2",
		"-rate", "1000",
		"-log-format", "text",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "executed=20")
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, []string{"-threads", "1", "-jobs", "1000", "-log-format", "text"}, &out)
	require.NoError(t, err)

	logs := out.String()
	assert.Contains(t, logs, "Run interrupted")
	assert.Contains(t, logs, "submitted=0")
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  thread_count: 3\nlog:\n  format: text\n"), 0600))

	var out bytes.Buffer
	err := run(context.Background(), []string{"-config", path, "-jobs", "10"}, &out)
	require.NoError(t, err)

	logs := out.String()
	assert.Contains(t, logs, "threads=3")
	assert.Contains(t, logs, "executed=10")
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &out))
	assert.Equal(t, "threadpool version "+Version+"\n", out.String())
}

func TestRun_InvalidConfiguration(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-log-level", "loud"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	err = run(context.Background(), []string{"-producers", "0"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid flags")
}

func TestRun_CancelledDuringWait(t *testing.T) {
	logs := runUntilCancelled(t,
		[]string{"-threads", "0", "-jobs", "10", "-log-format", "text"},
		100*time.Millisecond, 3*time.Second)

	assert.Contains(t, logs, "Run interrupted")
	assert.Contains(t, logs, "submitted=10")
	assert.Contains(t, logs, "discarded=10")
	assert.Contains(t, logs, "executed=0")
}

func TestRun_CancelledWithSlowJobs(t *testing.T) {
	start := time.Now()
	logs := runUntilCancelled(t,
		[]string{"-threads", "1", "-jobs", "20", "-work", "200ms", "-log-format", "text"},
		100*time.Millisecond, 3*time.Second)

	// only the job already running finishes
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Contains(t, logs, "Run interrupted")
	assert.Contains(t, logs, "executed=1")
	assert.Contains(t, logs, "discarded=19")
}

func TestExitCode(t *testing.T) {
	flagErr := run(context.Background(), []string{"-producers", "0"}, &bytes.Buffer{})
	require.Error(t, flagErr)
	assert.Equal(t, 2, exitCode(flagErr))

	parseErr := run(context.Background(), []string{"-bogus"}, &bytes.Buffer{})
	require.Error(t, parseErr)
	assert.Equal(t, 2, exitCode(parseErr))

	poolErr := run(context.Background(), []string{"-threads", "20000", "-jobs", "1"}, &bytes.Buffer{})
	require.Error(t, poolErr)
	assert.True(t, errors.IsFatal(poolErr))
	assert.Equal(t, 1, exitCode(poolErr))

	assert.Equal(t, 1, exitCode(stderrors.New("disk full")))
}
