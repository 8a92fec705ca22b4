package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"
)

// RoundTripperFunc adapts a plain function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// ChainRoundTrippers wraps transport in the given middleware. The first
// wrapper ends up outermost, so it sees the request first and the
// response last.
func ChainRoundTrippers(transport http.RoundTripper, wrappers ...func(http.RoundTripper) http.RoundTripper) http.RoundTripper {
	rt := transport
	for i := len(wrappers) - 1; i >= 0; i-- {
		rt = wrappers[i](rt)
	}
	return rt
}

// RateLimitRoundTripper paces requests with a token bucket. The Terminal's
// REST port serves one small thread pool; flooding it degrades every
// in-flight request, not just yours.
func RateLimitRoundTripper(rps float64, burst int) func(http.RoundTripper) http.RoundTripper {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(req)
		})
	}
}

// LoggingRoundTripper logs each request line and its outcome with the
// round-trip duration. A nil logger falls back to the process default.
func LoggingRoundTripper(logger *log.Logger) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = log.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			method, path := req.Method, req.URL.Path
			logger.Printf("[HTTP] --> %s %s", method, path)

			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)

			if err != nil {
				logger.Printf("[HTTP] <-- %s %s [ERROR] %v (%v)", method, path, err, elapsed)
			} else {
				logger.Printf("[HTTP] <-- %s %s [%d] (%v)", method, path, resp.StatusCode, elapsed)
			}
			return resp, err
		})
	}
}

// RecoveryRoundTripper converts a panic anywhere below it in the chain
// into an error return, so a bug in a wrapper cannot take down the
// caller's goroutine.
func RecoveryRoundTripper(logger *log.Logger) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = log.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (resp *http.Response, err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				logger.Printf("[PANIC] http round trip %s %s: %v\n%s", req.Method, req.URL.Path, r, debug.Stack())
				resp, err = nil, fmt.Errorf("panic recovered: %v", r)
			}()
			return next.RoundTrip(req)
		})
	}
}
