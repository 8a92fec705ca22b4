package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// fanoutWindow is how many recent fan-out latency samples are retained.
const fanoutWindow = 1000

// WSCollector collects bridge fan-out metrics: messages written to
// WebSocket clients, drops on slow clients, and connection churn.
type WSCollector struct {
	messagesSent    atomic.Int64
	bytesSent       atomic.Int64
	messagesDropped atomic.Int64
	errors          atomic.Int64

	activeConnections   atomic.Int32
	totalConnections    atomic.Int64
	rejectedConnections atomic.Int64

	// Fan-out latency ring: stream event arrival to write completion,
	// last fanoutWindow samples.
	mu     sync.Mutex
	ring   [fanoutWindow]time.Duration
	next   int
	filled int
}

// NewWSCollector creates an empty collector.
func NewWSCollector() *WSCollector {
	return &WSCollector{}
}

// RecordMessageSent records a message written to a client.
func (w *WSCollector) RecordMessageSent(bytes int) {
	w.messagesSent.Add(1)
	w.bytesSent.Add(int64(bytes))
}

// RecordMessageDropped records a message dropped on a slow client.
func (w *WSCollector) RecordMessageDropped() {
	w.messagesDropped.Add(1)
}

// RecordError records an error.
func (w *WSCollector) RecordError() {
	w.errors.Add(1)
}

// RecordConnection records a client connection state change.
func (w *WSCollector) RecordConnection(connected bool) {
	if connected {
		w.activeConnections.Add(1)
		w.totalConnections.Add(1)
	} else {
		w.activeConnections.Add(-1)
	}
}

// RecordRejected records a client turned away at the connection cap.
func (w *WSCollector) RecordRejected() {
	w.rejectedConnections.Add(1)
}

// RecordFanout records the latency of one event's fan-out.
func (w *WSCollector) RecordFanout(latency time.Duration) {
	w.mu.Lock()
	w.ring[w.next] = latency
	w.next = (w.next + 1) % fanoutWindow
	if w.filled < fanoutWindow {
		w.filled++
	}
	w.mu.Unlock()
}

// GetMetrics returns a snapshot of the collected values. Latency keys are
// present only once at least one fan-out has been recorded.
func (w *WSCollector) GetMetrics() map[string]interface{} {
	metrics := map[string]interface{}{
		"messages_sent":        w.messagesSent.Load(),
		"bytes_sent":           w.bytesSent.Load(),
		"messages_dropped":     w.messagesDropped.Load(),
		"errors":               w.errors.Load(),
		"active_connections":   w.activeConnections.Load(),
		"total_connections":    w.totalConnections.Load(),
		"rejected_connections": w.rejectedConnections.Load(),
	}

	w.mu.Lock()
	n := w.filled
	var sum, lo, hi time.Duration
	for i := 0; i < n; i++ {
		lat := w.ring[i]
		sum += lat
		if i == 0 || lat < lo {
			lo = lat
		}
		if lat > hi {
			hi = lat
		}
	}
	w.mu.Unlock()

	if n > 0 {
		metrics["avg_fanout_ms"] = float64(sum.Milliseconds()) / float64(n)
		metrics["min_fanout_ms"] = lo.Milliseconds()
		metrics["max_fanout_ms"] = hi.Milliseconds()
		metrics["latency_samples"] = n
	}
	return metrics
}

// Reset discards counters and latency samples. The active connection
// gauge tracks live clients and survives a reset.
func (w *WSCollector) Reset() {
	w.messagesSent.Store(0)
	w.bytesSent.Store(0)
	w.messagesDropped.Store(0)
	w.errors.Store(0)
	w.totalConnections.Store(0)
	w.rejectedConnections.Store(0)

	w.mu.Lock()
	w.next, w.filled = 0, 0
	w.mu.Unlock()
}
