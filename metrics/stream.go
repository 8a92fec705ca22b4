package metrics

import (
	"sync"
	"sync/atomic"
)

// StreamCollector collects stream-socket session metrics.
type StreamCollector struct {
	framesReceived  atomic.Int64
	bytesReceived   atomic.Int64
	eventsDelivered atomic.Int64
	eventsDropped   atomic.Int64
	decodeErrors    atomic.Int64
	acksReceived    atomic.Int64

	activeSessions atomic.Int32
	totalSessions  atomic.Int64

	// Per-tag frame counts, keyed by stream message type name.
	mu          sync.RWMutex
	frameCounts map[string]int64
}

// NewStreamCollector creates a new stream metrics collector.
func NewStreamCollector() *StreamCollector {
	return &StreamCollector{
		frameCounts: make(map[string]int64),
	}
}

// RecordFrame records one decoded frame.
func (m *StreamCollector) RecordFrame(tag string, bytes int) {
	m.framesReceived.Add(1)
	m.bytesReceived.Add(int64(bytes))

	m.mu.Lock()
	m.frameCounts[tag]++
	m.mu.Unlock()
}

// RecordEvent records one event delivered to the consumer.
func (m *StreamCollector) RecordEvent() {
	m.eventsDelivered.Add(1)
}

// RecordDrop records an event dropped by a slow consumer.
func (m *StreamCollector) RecordDrop() {
	m.eventsDropped.Add(1)
}

// RecordDecodeError records a frame that failed to decode.
func (m *StreamCollector) RecordDecodeError() {
	m.decodeErrors.Add(1)
}

// RecordAck records a subscription acknowledgement.
func (m *StreamCollector) RecordAck() {
	m.acksReceived.Add(1)
}

// RecordSession records a stream session state change.
func (m *StreamCollector) RecordSession(connected bool) {
	if connected {
		m.activeSessions.Add(1)
		m.totalSessions.Add(1)
	} else {
		m.activeSessions.Add(-1)
	}
}

// GetMetrics returns current metrics as a map.
func (m *StreamCollector) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := make(map[string]interface{})
	metrics["frames_received"] = m.framesReceived.Load()
	metrics["bytes_received"] = m.bytesReceived.Load()
	metrics["events_delivered"] = m.eventsDelivered.Load()
	metrics["events_dropped"] = m.eventsDropped.Load()
	metrics["decode_errors"] = m.decodeErrors.Load()
	metrics["acks_received"] = m.acksReceived.Load()
	metrics["active_sessions"] = m.activeSessions.Load()
	metrics["total_sessions"] = m.totalSessions.Load()

	counts := make(map[string]int64, len(m.frameCounts))
	for k, v := range m.frameCounts {
		counts[k] = v
	}
	metrics["frame_counts"] = counts

	return metrics
}

// Reset resets all metrics to zero.
func (m *StreamCollector) Reset() {
	m.framesReceived.Store(0)
	m.bytesReceived.Store(0)
	m.eventsDelivered.Store(0)
	m.eventsDropped.Store(0)
	m.decodeErrors.Store(0)
	m.acksReceived.Store(0)
	m.totalSessions.Store(0)

	m.mu.Lock()
	m.frameCounts = make(map[string]int64)
	m.mu.Unlock()
}
