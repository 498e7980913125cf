package monitoring

import (
	"sync"
	"time"
)

// Monitor keeps a snapshot of service health for the status endpoint.
// Counters can be reset by an operator; component statuses survive a
// reset because they are only written at startup.
type Monitor struct {
	counters     map[string]interface{}
	components   map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
	resetAt      time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	now := time.Now()
	return &Monitor{
		counters:   make(map[string]interface{}),
		components: make(map[string]interface{}),
		startTime:  now,
		resetAt:    now,
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.counters[name] = value
}

// IncrementMetric adds delta to an integer metric, starting from zero
func (m *Monitor) IncrementMetric(name string, delta int) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	current, _ := m.counters[name].(int)
	m.counters[name] = current + delta
}

// GetMetric returns a single counter or component field
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	if value, exists := m.counters[name]; exists {
		return value, true
	}
	value, exists := m.components[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Create a copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.counters)+len(m.components)+2)
	for k, v := range m.components {
		metrics[k] = v
	}
	for k, v := range m.counters {
		metrics[k] = v
	}

	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()
	metrics["counters_since"] = m.resetAt.Format(time.RFC3339)

	return metrics
}

// Reset clears the counters and returns the values they held
func (m *Monitor) Reset() map[string]interface{} {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	previous := m.counters
	m.counters = make(map[string]interface{})
	m.resetAt = time.Now()
	return previous
}

// RecordComponentStatus records the health fields of a dependency such as
// the database or the language model, prefixed with its name
func (m *Monitor) RecordComponentStatus(component string, fields map[string]interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	prefix := component + "_"
	for k, v := range fields {
		m.components[prefix+k] = v
	}
	m.components[prefix+"last_checked"] = time.Now().Format(time.RFC3339)
}
