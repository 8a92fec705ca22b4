package utils

import (
	"net/http"
	"time"

	"github.com/thetafeed/theta-go/metrics"
	"github.com/thetafeed/theta-go/middleware"
)

// MetricsRoundTripper records request statistics into an HTTPCollector.
// It backs the CLI's --stats output; the Prometheus exporters in the
// metrics package serve the export path.
func MetricsRoundTripper(collector *metrics.HTTPCollector) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			collector.RecordRequest(req.Method, req.URL.Path, status, time.Since(start), err)
			return resp, err
		})
	}
}
