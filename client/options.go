package client

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/thetafeed/theta-go/metrics"
)

// Config holds configuration for a control-socket session.
type Config struct {
	// Terminal endpoint. The Terminal listens on loopback only.
	Host string
	Port int

	// ConnectTimeout bounds a single dial attempt.
	ConnectTimeout time.Duration

	// ConnectAttempts and RetryDelay govern the connect retry loop.
	ConnectAttempts int
	RetryDelay      time.Duration

	// RequestTimeout is the read deadline for one response (header + body).
	RequestTimeout time.Duration

	// Version is sent in the connect handshake.
	Version string
}

// DefaultConfig returns the configuration for a local Terminal with stock
// ports.
func DefaultConfig() *Config {
	return &Config{
		Host:            "127.0.0.1",
		Port:            11000,
		ConnectTimeout:  5 * time.Second,
		ConnectAttempts: 15,
		RetryDelay:      1 * time.Second,
		RequestTimeout:  60 * time.Second,
		Version:         Version,
	}
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithConfig replaces the whole configuration.
func WithConfig(cfg *Config) Option {
	return func(c *Client) {
		if cfg != nil {
			c.cfg = cfg
		}
	}
}

// WithHost sets the Terminal host.
func WithHost(host string) Option {
	return func(c *Client) {
		c.cfg.Host = host
	}
}

// WithPort sets the control port.
func WithPort(port int) Option {
	return func(c *Client) {
		c.cfg.Port = port
	}
}

// WithTimeout sets the per-request read deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.cfg.RequestTimeout = d
	}
}

// WithVersion overrides the version string sent in the handshake.
func WithVersion(v string) Option {
	return func(c *Client) {
		c.cfg.Version = v
	}
}

// WithLogger sets a zerolog logger. The default discards everything.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = *logger
		}
	}
}

// WithRateLimit paces requests toward the Terminal. Useful when iterating
// over large contract grids, where the Terminal's own queue is easy to
// flood.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithMetrics attaches a request metrics collector.
func WithMetrics(collector *metrics.RequestCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}
