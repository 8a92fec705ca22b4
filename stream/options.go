package stream

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/thetafeed/theta-go/metrics"
	"github.com/thetafeed/theta-go/middleware"
)

// Config holds configuration for a stream session.
type Config struct {
	// Terminal stream endpoint. The Terminal listens on loopback only.
	Host string
	Port int

	// ConnectTimeout bounds a single dial attempt.
	ConnectTimeout time.Duration

	// ConnectAttempts and RetryDelay govern the connect retry loop.
	ConnectAttempts int
	RetryDelay      time.Duration

	// ReadTimeout is the per-read deadline. The Terminal pings every few
	// seconds, so a quiet tape still produces traffic well inside this
	// window.
	ReadTimeout time.Duration

	// VerifyTimeout is the default deadline for Verify.
	VerifyTimeout time.Duration

	// EventBuffer is the capacity of the Events channel. When the buffer is
	// full the receiver blocks, applying backpressure to the socket.
	EventBuffer int
}

// DefaultConfig returns the configuration for a local Terminal with stock
// ports.
func DefaultConfig() *Config {
	return &Config{
		Host:            "127.0.0.1",
		Port:            10000,
		ConnectTimeout:  5 * time.Second,
		ConnectAttempts: 15,
		RetryDelay:      1 * time.Second,
		ReadTimeout:     10 * time.Second,
		VerifyTimeout:   5 * time.Second,
		EventBuffer:     1024,
	}
}

// Option is a functional option for configuring a Session.
type Option func(*Session)

// WithConfig replaces the whole configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Session) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithHost sets the Terminal host.
func WithHost(host string) Option {
	return func(s *Session) {
		s.cfg.Host = host
	}
}

// WithPort sets the stream port.
func WithPort(port int) Option {
	return func(s *Session) {
		s.cfg.Port = port
	}
}

// WithEventBuffer sets the Events channel capacity.
func WithEventBuffer(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.cfg.EventBuffer = n
		}
	}
}

// WithVerifyTimeout sets the default Verify deadline.
func WithVerifyTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.cfg.VerifyTimeout = d
	}
}

// WithHandler switches the session to callback mode: the handler runs on
// the receiver goroutine for every event and the Events channel stays
// empty. A slow handler stalls the socket read loop.
func WithHandler(h Handler) Option {
	return func(s *Session) {
		s.handler = h
	}
}

// WithLogger sets a zerolog logger. The default discards everything.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.log = *logger
		}
	}
}

// WithMetrics attaches a stream metrics collector.
func WithMetrics(collector *metrics.StreamCollector) Option {
	return func(s *Session) {
		s.metrics = collector
	}
}

// WithMiddleware installs a frame middleware chain, applied to every raw
// frame before decoding.
func WithMiddleware(m middleware.FrameMiddleware) Option {
	return func(s *Session) {
		s.middleware = m
	}
}
