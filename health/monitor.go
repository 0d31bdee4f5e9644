package health

import (
	"sort"
	"sync"
)

// Checker produces the current health of one component
type Checker func() Status

// Monitor aggregates the health of named components in a thread-safe manner
type Monitor struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewMonitor creates a new health monitor
func NewMonitor() *Monitor {
	return &Monitor{
		checkers: make(map[string]Checker),
	}
}

// Register adds or replaces the checker for a named component
func (m *Monitor) Register(name string, checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkers[name] = checker
}

// Remove removes a component from monitoring
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.checkers, name)
}

// Check runs the checker for a named component
func (m *Monitor) Check(name string) (Status, bool) {
	m.mu.RLock()
	checker, exists := m.checkers[name]
	m.mu.RUnlock()

	if !exists {
		return Status{}, false
	}
	return m.run(name, checker), true
}

// AggregateHealth runs every checker and aggregates the results.
// Sub-statuses are ordered by component name.
func (m *Monitor) AggregateHealth(systemName string) Status {
	m.mu.RLock()
	names := make([]string, 0, len(m.checkers))
	for name := range m.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]Checker, len(m.checkers))
	for name, checker := range m.checkers {
		checkers[name] = checker
	}
	m.mu.RUnlock()

	sort.Strings(names)

	subStatuses := make([]Status, 0, len(names))
	for _, name := range names {
		subStatuses = append(subStatuses, m.run(name, checkers[name]))
	}

	return Aggregate(systemName, subStatuses)
}

// Count returns the number of components being monitored
func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.checkers)
}

func (m *Monitor) run(name string, checker Checker) Status {
	status := checker()
	status.Component = name
	return status
}
