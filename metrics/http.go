package metrics

import (
	"sync"
	"time"
)

// endpointStats aggregates one endpoint's request traffic.
type endpointStats struct {
	requests   int64
	durationMS int64
	errors     int64
}

// HTTPCollector aggregates transport-level stats for the Terminal's REST
// port, keyed by "METHOD /path". A transport failure carries status 0 and
// counts as an error without a status code.
type HTTPCollector struct {
	mu        sync.RWMutex
	endpoints map[string]*endpointStats
	statuses  map[int]int64
}

// NewHTTPCollector creates an empty collector.
func NewHTTPCollector() *HTTPCollector {
	return &HTTPCollector{
		endpoints: make(map[string]*endpointStats),
		statuses:  make(map[int]int64),
	}
}

// RecordRequest records one completed HTTP exchange.
func (m *HTTPCollector) RecordRequest(method, path string, statusCode int, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := method + " " + path
	st := m.endpoints[key]
	if st == nil {
		st = &endpointStats{}
		m.endpoints[key] = st
	}
	st.requests++
	st.durationMS += duration.Milliseconds()
	if err != nil {
		st.errors++
	}
	if statusCode > 0 {
		m.statuses[statusCode]++
	}
}

// GetMetrics returns a snapshot of the collected values.
func (m *HTTPCollector) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64, len(m.endpoints))
	durations := make(map[string]int64, len(m.endpoints))
	errCounts := make(map[string]int64)
	var totalRequests, totalErrors int64
	for key, st := range m.endpoints {
		counts[key] = st.requests
		durations[key] = st.durationMS
		totalRequests += st.requests
		totalErrors += st.errors
		if st.errors > 0 {
			errCounts[key] = st.errors
		}
	}

	statuses := make(map[int]int64, len(m.statuses))
	for code, n := range m.statuses {
		statuses[code] = n
	}

	return map[string]interface{}{
		"request_counts":       counts,
		"request_durations_ms": durations,
		"error_counts":         errCounts,
		"status_codes":         statuses,
		"total_requests":       totalRequests,
		"total_errors":         totalErrors,
	}
}

// Reset discards all collected values.
func (m *HTTPCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.endpoints = make(map[string]*endpointStats)
	m.statuses = make(map[int]int64)
}
