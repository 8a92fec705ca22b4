package rest

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/thetafeed/theta-go/internal/limiter"
	"github.com/thetafeed/theta-go/metrics"
	"github.com/thetafeed/theta-go/utils"
)

// clientConfig holds configuration for the REST client
type clientConfig struct {
	httpClient  *http.Client
	rateLimiter *limiter.HTTPRateLimiter
	breaker     *gobreaker.CircuitBreaker
	logger      *zerolog.Logger
	metrics     *metrics.RequestCollector
}

// Option is a functional option for configuring the REST client
type Option func(*clientConfig)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(cfg *clientConfig) {
		cfg.httpClient = client
	}
}

// WithRateLimiter enables rate limiting with a custom rate limiter.
// If nil is passed, creates a rate limiter with the default pacing.
func WithRateLimiter(rateLimiter *limiter.HTTPRateLimiter) Option {
	return func(cfg *clientConfig) {
		if rateLimiter == nil {
			cfg.rateLimiter = limiter.NewHTTPRateLimiter()
		} else {
			cfg.rateLimiter = rateLimiter
		}
	}
}

// WithDefaultRateLimiter enables rate limiting with the default pacing.
func WithDefaultRateLimiter() Option {
	return WithRateLimiter(nil)
}

// WithBreaker trips the client open after consecutive Terminal failures,
// which keeps a dead Terminal from absorbing the full request timeout on
// every call.
func WithBreaker(settings gobreaker.Settings) Option {
	return func(cfg *clientConfig) {
		if settings.Name == "" {
			settings.Name = "theta-rest"
		}
		cfg.breaker = gobreaker.NewCircuitBreaker(settings)
	}
}

// DefaultBreakerSettings returns breaker settings suited to a local
// Terminal: open after five consecutive failures, probe again after ten
// seconds.
func DefaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:    "theta-rest",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// WithLogger sets a zerolog logger for debug logging of API responses.
func WithLogger(logger *zerolog.Logger) Option {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// WithMetrics attaches a request metrics collector.
func WithMetrics(collector *metrics.RequestCollector) Option {
	return func(cfg *clientConfig) {
		cfg.metrics = collector
	}
}

// LocalHTTPClient creates an HTTP client tuned for the loopback Terminal:
// a small connection pool and a generous overall timeout for large hist
// pulls.
func LocalHTTPClient() *http.Client {
	c := utils.LoopbackHTTPClient()
	c.Timeout = 120 * time.Second
	return c
}
