// Package limiter provides client-side pacing for the Terminal's REST port
// and admission control for the WebSocket bridge.
package limiter

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Bridge defaults. A single Terminal stream fans out to every bridge
// client, so the cap bounds fan-out work, not Terminal load.
const (
	MaxClients = 64
)

// ConnectionLimiter bounds the number of concurrent bridge clients.
type ConnectionLimiter struct {
	maxClients int

	activeClients atomic.Int32
	clients       map[string]struct{}
	mu            sync.Mutex
}

// NewConnectionLimiter creates a limiter with the default client cap.
func NewConnectionLimiter() *ConnectionLimiter {
	return NewConnectionLimiterWithLimit(MaxClients)
}

// NewConnectionLimiterWithLimit creates a limiter with a custom client cap.
func NewConnectionLimiterWithLimit(maxClients int) *ConnectionLimiter {
	return &ConnectionLimiter{
		maxClients: maxClients,
		clients:    make(map[string]struct{}),
	}
}

// Acquire claims a client slot. Returns an error when the cap is reached.
func (cl *ConnectionLimiter) Acquire(clientID string) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if len(cl.clients) >= cl.maxClients {
		return fmt.Errorf("max clients reached (%d/%d)", len(cl.clients), cl.maxClients)
	}
	if _, exists := cl.clients[clientID]; exists {
		return fmt.Errorf("client %s already registered", clientID)
	}

	cl.clients[clientID] = struct{}{}
	cl.activeClients.Add(1)
	return nil
}

// Release frees a client slot.
func (cl *ConnectionLimiter) Release(clientID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.clients[clientID]; exists {
		delete(cl.clients, clientID)
		cl.activeClients.Add(-1)
	}
}

// Count returns the current number of registered clients.
func (cl *ConnectionLimiter) Count() int {
	return int(cl.activeClients.Load())
}

// GetStats returns current limiter statistics
func (cl *ConnectionLimiter) GetStats() map[string]interface{} {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	return map[string]interface{}{
		"active_clients": len(cl.clients),
		"max_clients":    cl.maxClients,
	}
}

// Reset drops every registered client and zeroes the gauge.
func (cl *ConnectionLimiter) Reset() {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.activeClients.Store(0)
	cl.clients = make(map[string]struct{})
}
