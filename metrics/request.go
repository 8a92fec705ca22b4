// Package metrics provides lightweight collectors for the request and
// stream clients, plus Prometheus exporters over the same counters.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// RequestCollector collects control-socket session metrics.
type RequestCollector struct {
	requestsSent      atomic.Int64
	responsesReceived atomic.Int64
	bytesWritten      atomic.Int64
	bytesRead         atomic.Int64
	errors            atomic.Int64
	timeouts          atomic.Int64

	// Per-operation request counts, keyed by message type name.
	mu            sync.RWMutex
	requestCounts map[string]int64

	// Latency tracking
	latencies       []time.Duration
	maxLatencyCount int
}

// NewRequestCollector creates a new request metrics collector.
func NewRequestCollector() *RequestCollector {
	return &RequestCollector{
		requestCounts:   make(map[string]int64),
		maxLatencyCount: 1000, // keep last 1000 latency samples
		latencies:       make([]time.Duration, 0, 1000),
	}
}

// RecordRequest records one request written to the Terminal.
func (m *RequestCollector) RecordRequest(op string, bytes int) {
	m.requestsSent.Add(1)
	m.bytesWritten.Add(int64(bytes))

	m.mu.Lock()
	m.requestCounts[op]++
	m.mu.Unlock()
}

// RecordResponse records one fully read response.
func (m *RequestCollector) RecordResponse(bytes int, latency time.Duration) {
	m.responsesReceived.Add(1)
	m.bytesRead.Add(int64(bytes))
	m.recordLatency(latency)
}

// RecordError records a failed request.
func (m *RequestCollector) RecordError(timeout bool) {
	m.errors.Add(1)
	if timeout {
		m.timeouts.Add(1)
	}
}

func (m *RequestCollector) recordLatency(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) >= m.maxLatencyCount {
		m.latencies = m.latencies[1:]
	}
	m.latencies = append(m.latencies, latency)
}

// GetMetrics returns current metrics as a map.
func (m *RequestCollector) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := make(map[string]interface{})
	metrics["requests_sent"] = m.requestsSent.Load()
	metrics["responses_received"] = m.responsesReceived.Load()
	metrics["bytes_written"] = m.bytesWritten.Load()
	metrics["bytes_read"] = m.bytesRead.Load()
	metrics["errors"] = m.errors.Load()
	metrics["timeouts"] = m.timeouts.Load()

	counts := make(map[string]int64, len(m.requestCounts))
	for k, v := range m.requestCounts {
		counts[k] = v
	}
	metrics["request_counts"] = counts

	if len(m.latencies) > 0 {
		var sum time.Duration
		min := m.latencies[0]
		max := m.latencies[0]
		for _, lat := range m.latencies {
			sum += lat
			if lat < min {
				min = lat
			}
			if lat > max {
				max = lat
			}
		}
		metrics["avg_latency_ms"] = float64(sum.Milliseconds()) / float64(len(m.latencies))
		metrics["min_latency_ms"] = min.Milliseconds()
		metrics["max_latency_ms"] = max.Milliseconds()
		metrics["latency_samples"] = len(m.latencies)
	}

	return metrics
}

// Reset resets all metrics to zero.
func (m *RequestCollector) Reset() {
	m.requestsSent.Store(0)
	m.responsesReceived.Store(0)
	m.bytesWritten.Store(0)
	m.bytesRead.Store(0)
	m.errors.Store(0)
	m.timeouts.Store(0)

	m.mu.Lock()
	m.requestCounts = make(map[string]int64)
	m.latencies = make([]time.Duration, 0, m.maxLatencyCount)
	m.mu.Unlock()
}
