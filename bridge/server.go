// Package bridge re-publishes a stream session's events to WebSocket
// clients as JSON. It exists for consumers that can't speak the
// Terminal's binary stream protocol: browser dashboards, notebooks,
// anything with a WebSocket client.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/thetafeed/theta-go/internal/limiter"
	"github.com/thetafeed/theta-go/metrics"
	"github.com/thetafeed/theta-go/stream"
)

// Server fans stream events out to WebSocket clients.
type Server struct {
	cfg      *Config
	log      zerolog.Logger
	metrics  *metrics.WSCollector
	limiter  *limiter.ConnectionLimiter
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[string]*conn
	closed bool
}

// NewServer creates a bridge server.
func NewServer(opts ...Option) *Server {
	s := &Server{
		cfg:   DefaultConfig(),
		log:   zerolog.Nop(),
		conns: make(map[string]*conn),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = limiter.NewConnectionLimiterWithLimit(s.cfg.MaxClients)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  s.cfg.ReadBufferSize,
		WriteBufferSize: s.cfg.WriteBufferSize,
		// The bridge serves tooling on the operator's own machine; origin
		// policy belongs to whatever fronts it in other deployments.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return s
}

// ServeHTTP upgrades a client and starts its read and write loops.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != s.cfg.Path {
		http.NotFound(w, r)
		return
	}

	id := xid.New().String()
	if err := s.limiter.Acquire(id); err != nil {
		if s.metrics != nil {
			s.metrics.RecordRejected()
		}
		s.log.Warn().Str("remote", r.RemoteAddr).Err(err).Msg("bridge client rejected")
		http.Error(w, "client limit reached", http.StatusServiceUnavailable)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.limiter.Release(id)
		if s.metrics != nil {
			s.metrics.RecordError()
		}
		s.log.Warn().Str("remote", r.RemoteAddr).Err(err).Msg("bridge upgrade failed")
		return
	}

	c := newConn(id, ws, s)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.limiter.Release(id)
		ws.Close()
		return
	}
	s.conns[id] = c
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordConnection(true)
	}
	s.log.Info().Str("client", id).Str("remote", r.RemoteAddr).Msg("bridge client connected")

	go c.writeLoop(s.remove)
	go c.readLoop()
}

// remove is the writer's exit hook: deregister, release the slot, close
// the books on the client.
func (s *Server) remove(c *conn) {
	s.mu.Lock()
	delete(s.conns, c.id)
	s.mu.Unlock()

	s.limiter.Release(c.id)
	if s.metrics != nil {
		s.metrics.RecordConnection(false)
	}
	s.log.Info().Str("client", c.id).Msg("bridge client disconnected")
}

// Broadcast marshals one event and queues it on every client. Clients
// whose queues are full are disconnected rather than allowed to stall
// the tape for everyone else.
func (s *Server) Broadcast(m stream.Msg) {
	start := time.Now()

	data, err := EncodeMsg(&m)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordError()
		}
		s.log.Error().Err(err).Str("type", m.Type.String()).Msg("bridge event marshal failed")
		return
	}

	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if !c.send(data) {
			if s.metrics != nil {
				s.metrics.RecordMessageDropped()
			}
			s.log.Warn().Str("client", c.id).Msg("bridge client too slow, disconnecting")
			c.stop()
		}
	}

	if s.metrics != nil {
		s.metrics.RecordFanout(time.Since(start))
	}
}

// Pump broadcasts every event from a stream session until the channel
// closes. Run it on its own goroutine next to Serve.
func (s *Server) Pump(events <-chan stream.Msg) {
	for m := range events {
		s.Broadcast(m)
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Serve listens on addr until ctx is cancelled, then closes every client
// and shuts the listener down.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", addr).Str("path", s.cfg.Path).Msg("bridge listening")

	select {
	case <-ctx.Done():
		s.shutdown()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("bridge listen on %s: %w", addr, err)
		}
		return nil
	}
}

// shutdown stops accepting clients and asks every writer to close.
func (s *Server) shutdown() {
	s.mu.Lock()
	s.closed = true
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.stop()
	}
}
