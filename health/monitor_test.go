package health

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name string
		subs []Status
		want string
	}{
		{"no pools", nil, "healthy"},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, "healthy"},
		{"one degraded", []Status{NewHealthy("a", ""), NewDegraded("b", "")}, "degraded"},
		{"unhealthy wins", []Status{NewDegraded("a", ""), NewUnhealthy("b", "")}, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("system", tt.subs)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, "system", got.Component)
			assert.Len(t, got.SubStatuses, len(tt.subs))
		})
	}
}

func TestMonitor_RegisterAndCheck(t *testing.T) {
	monitor := NewMonitor()
	monitor.Register("pool-a", func() Status { return NewHealthy("ignored", "ok") })

	status, ok := monitor.Check("pool-a")
	require.True(t, ok)
	assert.Equal(t, "pool-a", status.Component, "component name comes from registration")
	assert.True(t, status.IsHealthy())

	_, ok = monitor.Check("missing")
	assert.False(t, ok)

	monitor.Remove("pool-a")
	assert.Equal(t, 0, monitor.Count())
}

func TestMonitor_AggregateHealthOrdered(t *testing.T) {
	monitor := NewMonitor()
	monitor.Register("b", func() Status { return NewDegraded("", "faults") })
	monitor.Register("a", func() Status { return NewHealthy("", "ok") })

	status := monitor.AggregateHealth("threadpool")

	assert.True(t, status.IsDegraded())
	require.Len(t, status.SubStatuses, 2)
	assert.Equal(t, "a", status.SubStatuses[0].Component)
	assert.Equal(t, "b", status.SubStatuses[1].Component)
}

func TestMonitor_ConcurrentAccess(t *testing.T) {
	monitor := NewMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			monitor.Register("pool", func() Status { return NewHealthy("", "") })
		}()
		go func() {
			defer wg.Done()
			_ = monitor.AggregateHealth("threadpool")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, monitor.Count())
}
