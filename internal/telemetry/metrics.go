// Package telemetry provides metrics collection and reporting
// for monitoring the reverse-vector search loop and its oracle calls.
package telemetry

import (
	"fmt"
	"sync"
	"time"
)

// MetricsCollector provides a thread-safe interface for collecting
// application metrics for monitoring and troubleshooting.
type MetricsCollector struct {
	counters   map[string]int64
	gauges     map[string]float64
	timers     map[string][]time.Duration
	latestTime map[string]time.Time
	mu         sync.RWMutex
}

// Metric names for the oracle adapter and search controller.
const (
	// Oracle call counts
	MetricEmbedCalls   = "oracle.embed.calls"
	MetricProposeCalls = "oracle.propose.calls"

	// Success/failure metrics
	MetricOracleCallsSuccess = "oracle.calls.success"
	MetricOracleCallsFailure = "oracle.calls.failure"

	// Retry metrics
	MetricRetryAttempts = "oracle.retry_attempts"
	MetricRetrySuccess  = "oracle.retry_success"

	// Response times
	MetricResponseTimeEmbed   = "oracle.response_time.embed"
	MetricResponseTimePropose = "oracle.response_time.propose"

	// Oracle health
	MetricOracleHealthEmbed   = "oracle.health.embed"
	MetricOracleHealthPropose = "oracle.health.propose"

	// Search loop state
	MetricGuessesMade = "search.guesses_made"
	MetricCostSpent   = "search.cost_spent"
	MetricBestError   = "search.best_error"
)

// NewMetricsCollector creates a new MetricsCollector instance
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		timers:     make(map[string][]time.Duration),
		latestTime: make(map[string]time.Time),
	}
}

// IncrementCounter increments a named counter by the specified amount
func (m *MetricsCollector) IncrementCounter(name string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[name] += amount
}

// SetGauge sets a named gauge to the specified value
func (m *MetricsCollector) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gauges[name] = value
}

// RecordTimer records a duration for the specified timer
func (m *MetricsCollector) RecordTimer(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timers[name] = append(m.timers[name], duration)

	// Limit the number of stored durations to avoid unbounded growth
	if len(m.timers[name]) > 100 {
		m.timers[name] = m.timers[name][1:]
	}
}

// RecordTimestamp records the current time for the specified event
func (m *MetricsCollector) RecordTimestamp(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latestTime[name] = time.Now()
}

// GetCounter retrieves the current value of a counter
func (m *MetricsCollector) GetCounter(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.counters[name]
}

// GetGauge retrieves the current value of a gauge
func (m *MetricsCollector) GetGauge(name string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.gauges[name]
}

// GetTimerAverage returns the average of all recorded durations for a timer
func (m *MetricsCollector) GetTimerAverage(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	durations := m.timers[name]
	if len(durations) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}

// Snapshot returns a flat map of all counters and gauges, suitable for
// logging at the end of a search session.
func (m *MetricsCollector) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.counters)+len(m.gauges))
	for k, v := range m.counters {
		out[k] = fmt.Sprintf("%d", v)
	}
	for k, v := range m.gauges {
		out[k] = fmt.Sprintf("%g", v)
	}
	return out
}

// Reset clears all collected metrics
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters = make(map[string]int64)
	m.gauges = make(map[string]float64)
	m.timers = make(map[string][]time.Duration)
	m.latestTime = make(map[string]time.Time)
}
