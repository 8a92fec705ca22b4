package bridge

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/thetafeed/theta-go/metrics"
)

// Config holds bridge server settings.
type Config struct {
	// Path is the upgrade endpoint.
	Path string
	// MaxClients caps concurrent WebSocket clients.
	MaxClients int
	// SendBuffer is the per-client event queue. A client whose queue
	// fills is disconnected: on a live tape it would never catch up.
	SendBuffer int

	// WriteTimeout bounds each socket write.
	WriteTimeout time.Duration
	// PingInterval is how often clients are pinged.
	PingInterval time.Duration
	// PongWait is the read deadline, refreshed by pongs.
	PongWait time.Duration

	ReadBufferSize  int
	WriteBufferSize int
}

// DefaultConfig returns settings for a bridge on the local machine.
func DefaultConfig() *Config {
	return &Config{
		Path:            "/stream",
		MaxClients:      64,
		SendBuffer:      256,
		WriteTimeout:    10 * time.Second,
		PingInterval:    10 * time.Second,
		PongWait:        40 * time.Second,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithConfig replaces the whole configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithPath sets the upgrade endpoint.
func WithPath(path string) Option {
	return func(s *Server) {
		s.cfg.Path = path
	}
}

// WithMaxClients caps concurrent clients.
func WithMaxClients(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.cfg.MaxClients = n
		}
	}
}

// WithSendBuffer sets the per-client event queue size.
func WithSendBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.cfg.SendBuffer = n
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(log *zerolog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = *log
		}
	}
}

// WithMetrics attaches a bridge metrics collector.
func WithMetrics(collector *metrics.WSCollector) Option {
	return func(s *Server) {
		s.metrics = collector
	}
}
