package utils

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/thetafeed/theta-go/middleware"
)

// HTTPClientConfig collects the transport knobs that matter when talking
// to the Terminal: how many connections to keep toward a single host and
// how long to wait at each stage of a request.
type HTTPClientConfig struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration

	DialTimeout           time.Duration
	KeepAlive             time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	ExpectContinueTimeout time.Duration

	InsecureSkipVerify bool
}

// DefaultConfig is the baseline profile the other presets start from.
func DefaultConfig() *HTTPClientConfig {
	return &HTTPClientConfig{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       10,
		IdleConnTimeout:       90 * time.Second,
		DialTimeout:           30 * time.Second,
		KeepAlive:             30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// LoopbackConfig tunes the baseline for the Terminal's REST port on the
// local machine. The only peer is a process on loopback, so the pool is
// small and dialing is quick, but the response header timeout is long:
// a cold history request can sit while the Terminal pulls from upstream.
func LoopbackConfig() *HTTPClientConfig {
	c := DefaultConfig()
	c.MaxIdleConns = 8
	c.MaxIdleConnsPerHost = 8
	c.MaxConnsPerHost = 8
	c.DialTimeout = 5 * time.Second
	c.TLSHandshakeTimeout = 5 * time.Second
	c.ResponseHeaderTimeout = 60 * time.Second
	c.ExpectContinueTimeout = 500 * time.Millisecond
	return c
}

// BulkConfig tunes the baseline for large transfers: Terminal
// distribution downloads and multi-year historical pulls, where the
// server may spend minutes assembling a response.
func BulkConfig() *HTTPClientConfig {
	c := DefaultConfig()
	c.MaxIdleConns = 4
	c.MaxIdleConnsPerHost = 2
	c.MaxConnsPerHost = 2
	c.IdleConnTimeout = 120 * time.Second
	c.KeepAlive = 60 * time.Second
	c.TLSHandshakeTimeout = 15 * time.Second
	c.ResponseHeaderTimeout = 5 * time.Minute
	return c
}

// NewHTTPClient builds a client whose transport follows config. A nil
// config means DefaultConfig.
func NewHTTPClient(config *HTTPClientConfig) *http.Client {
	if config == nil {
		config = DefaultConfig()
	}

	dialer := &net.Dialer{
		Timeout:   config.DialTimeout,
		KeepAlive: config.KeepAlive,
	}

	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          config.MaxIdleConns,
			MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
			MaxConnsPerHost:       config.MaxConnsPerHost,
			IdleConnTimeout:       config.IdleConnTimeout,
			TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
			ResponseHeaderTimeout: config.ResponseHeaderTimeout,
			ExpectContinueTimeout: config.ExpectContinueTimeout,
			TLSClientConfig:       &tls.Config{InsecureSkipVerify: config.InsecureSkipVerify},
		},
	}
}

// DefaultHTTPClient returns a client with the baseline profile.
func DefaultHTTPClient() *http.Client {
	return NewHTTPClient(DefaultConfig())
}

// LoopbackHTTPClient returns a client tuned for the local Terminal.
func LoopbackHTTPClient() *http.Client {
	return NewHTTPClient(LoopbackConfig())
}

// BulkHTTPClient returns a client tuned for large transfers.
func BulkHTTPClient() *http.Client {
	return NewHTTPClient(BulkConfig())
}

// WithMiddleware wraps client's transport in the given round-tripper
// middleware, outermost first. A client with no transport set gets the
// default one as the base.
func WithMiddleware(client *http.Client, wrappers ...func(http.RoundTripper) http.RoundTripper) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	client.Transport = middleware.ChainRoundTrippers(base, wrappers...)
	return client
}
