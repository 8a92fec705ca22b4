// Package rest accesses the Terminal's HTTP port, exposing the same
// historical, listing, and snapshot surface as the socket client. Both
// transports funnel rows through the same table assembly, so a series
// fetched here matches the binary decode cell for cell.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/internal/limiter"
	"github.com/thetafeed/theta-go/metrics"
	"github.com/thetafeed/theta-go/tick"
)

// DefaultBaseURL is the Terminal's REST listener on the local machine.
const DefaultBaseURL = "http://127.0.0.1:25510"

// Client issues requests against the Terminal's REST port. Unlike the
// socket client it holds no session state, so a Client is safe for
// concurrent use.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *limiter.HTTPRateLimiter
	breaker     *gobreaker.CircuitBreaker
	log         zerolog.Logger
	metrics     *metrics.RequestCollector
}

// NewClient creates a REST client for the Terminal at baseURL. An empty
// baseURL selects the default local listener.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = LocalHTTPClient()
	}

	log := zerolog.Nop()
	if cfg.logger != nil {
		log = *cfg.logger
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  cfg.httpClient,
		rateLimiter: cfg.rateLimiter,
		breaker:     cfg.breaker,
		log:         log,
		metrics:     cfg.metrics,
	}, nil
}

// GetRateLimiterStats returns current rate limiter statistics.
// Returns nil if rate limiting is not enabled.
func (c *Client) GetRateLimiterStats() map[string]interface{} {
	if c.rateLimiter == nil {
		return nil
	}
	return c.rateLimiter.GetStats()
}

// GetRateLimiter returns the underlying rate limiter.
// Returns nil if rate limiting is not enabled.
func (c *Client) GetRateLimiter() *limiter.HTTPRateLimiter {
	return c.rateLimiter
}

// get fetches a Terminal endpoint relative to the base URL.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.getURL(ctx, u, path)
}

// getURL fetches an absolute URL. The endpoint path is kept separate so
// continuation pages are paced and labeled like the request that started
// them.
func (c *Client) getURL(ctx context.Context, rawURL, endpoint string) (*envelope, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx, endpoint); err != nil {
			return nil, fmt.Errorf("%w: rate limit: %v", theta.ErrTimeout, err)
		}
	}

	start := time.Now()
	if c.metrics != nil {
		c.metrics.RecordRequest(endpoint, 0)
	}

	run := func() (*envelope, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: build request: %v", theta.ErrConnection, err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, httpError(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, httpError(err)
		}

		// The Terminal reports its own errors inside the envelope and may
		// pair them with a non-200 status, so the body is decoded first and
		// the status only matters when no envelope came back.
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("%w: request returned status %d", theta.ErrConnection, resp.StatusCode)
			}
			return nil, fmt.Errorf("%w: response envelope: %v", theta.ErrParse, err)
		}

		if c.metrics != nil {
			c.metrics.RecordResponse(len(body), time.Since(start))
		}
		c.log.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Int("bytes", len(body)).
			Dur("latency", time.Since(start)).
			Msg("rest response")
		return &env, nil
	}

	var env *envelope
	var err error
	if c.breaker != nil {
		var v interface{}
		v, err = c.breaker.Execute(func() (interface{}, error) { return run() })
		if err == nil {
			env = v.(*envelope)
		} else if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: circuit breaker: %v", theta.ErrConnection, err)
		}
	} else {
		env, err = run()
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordError(errors.Is(err, theta.ErrTimeout))
		}
		return nil, err
	}

	// Header-reported errors are valid Terminal responses; they never
	// count toward the breaker.
	if err := env.Header.check(); err != nil {
		return nil, err
	}
	return env, nil
}

// table fetches a table endpoint and follows continuation pages until the
// Terminal reports the series complete.
func (c *Client) table(ctx context.Context, path string, query url.Values) (*tick.Table, error) {
	env, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	format := env.Header.Format
	pages := []json.RawMessage{env.Response}
	for morePages(env.Header.NextPage) {
		next, err := url.Parse(env.Header.NextPage)
		if err != nil {
			return nil, fmt.Errorf("%w: next page %q: %v", theta.ErrParse, env.Header.NextPage, err)
		}
		env, err = c.getURL(ctx, env.Header.NextPage, next.Path)
		if err != nil {
			return nil, err
		}
		pages = append(pages, env.Response)
	}
	return buildTable(format, pages...)
}

func morePages(next string) bool {
	return next != "" && !strings.EqualFold(next, "null")
}

func httpError(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", theta.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", theta.ErrConnection, err)
}

// HistOption retrieves a historical option series.
func (c *Client) HistOption(ctx context.Context, req theta.OptionReq, p HistParams) (*tick.Table, error) {
	t, err := c.table(ctx, "/hist/option/"+strings.ToLower(req.String()), p.values())
	if err != nil {
		return nil, fmt.Errorf("hist option failed: %w", err)
	}
	return t, nil
}

// HistStock retrieves a historical stock series.
func (c *Client) HistStock(ctx context.Context, req theta.StockReq, p HistParams) (*tick.Table, error) {
	t, err := c.table(ctx, "/hist/stock/"+strings.ToLower(req.String()), p.values())
	if err != nil {
		return nil, fmt.Errorf("hist stock failed: %w", err)
	}
	return t, nil
}

// OptionAtTime retrieves the option data in effect at a time-of-day over
// a date range.
func (c *Client) OptionAtTime(ctx context.Context, req theta.OptionReq, p AtTimeParams) (*tick.Table, error) {
	t, err := c.table(ctx, "/at_time/option/"+strings.ToLower(req.String()), p.values())
	if err != nil {
		return nil, fmt.Errorf("option at time failed: %w", err)
	}
	return t, nil
}

// StockAtTime retrieves the stock data in effect at a time-of-day over a
// date range.
func (c *Client) StockAtTime(ctx context.Context, req theta.StockReq, p AtTimeParams) (*tick.Table, error) {
	t, err := c.table(ctx, "/at_time/stock/"+strings.ToLower(req.String()), p.values())
	if err != nil {
		return nil, fmt.Errorf("stock at time failed: %w", err)
	}
	return t, nil
}

// LastOption retrieves the most recent tick for an option contract.
func (c *Client) LastOption(ctx context.Context, req theta.OptionReq, p LastParams) (*tick.Table, error) {
	t, err := c.table(ctx, "/last/option/"+strings.ToLower(req.String()), p.values())
	if err != nil {
		return nil, fmt.Errorf("last option failed: %w", err)
	}
	return t, nil
}

// LastStock retrieves the most recent tick for a stock.
func (c *Client) LastStock(ctx context.Context, req theta.StockReq, root string) (*tick.Table, error) {
	q := url.Values{}
	q.Set("root", root)
	t, err := c.table(ctx, "/last/stock/"+strings.ToLower(req.String()), q)
	if err != nil {
		return nil, fmt.Errorf("last stock failed: %w", err)
	}
	return t, nil
}

// Expirations lists the expirations the Terminal knows for an option root.
func (c *Client) Expirations(ctx context.Context, root string) ([]time.Time, error) {
	q := url.Values{}
	q.Set("root", root)
	env, err := c.get(ctx, "/list/expirations", q)
	if err != nil {
		return nil, fmt.Errorf("list expirations failed: %w", err)
	}
	dates, err := decodeDates(env.Response)
	if err != nil {
		return nil, fmt.Errorf("list expirations failed: %w", err)
	}
	return dates, nil
}

// Strikes lists the strikes traded for a root and expiration.
func (c *Client) Strikes(ctx context.Context, root string, exp time.Time) ([]theta.Strike, error) {
	q := url.Values{}
	q.Set("root", root)
	q.Set("exp", strconv.Itoa(theta.DateToInt(exp)))
	env, err := c.get(ctx, "/list/strikes", q)
	if err != nil {
		return nil, fmt.Errorf("list strikes failed: %w", err)
	}
	strikes, err := decodeStrikes(env.Response)
	if err != nil {
		return nil, fmt.Errorf("list strikes failed: %w", err)
	}
	return strikes, nil
}

// Roots lists the roots available for a security type.
func (c *Client) Roots(ctx context.Context, sec theta.SecurityType) ([]string, error) {
	q := url.Values{}
	q.Set("sec", string(sec))
	env, err := c.get(ctx, "/list/roots", q)
	if err != nil {
		return nil, fmt.Errorf("list roots failed: %w", err)
	}
	roots, err := decodeStrings(env.Response)
	if err != nil {
		return nil, fmt.Errorf("list roots failed: %w", err)
	}
	return roots, nil
}

// OptionDates lists the dates with stored data for an option contract and
// request type.
func (c *Client) OptionDates(ctx context.Context, req theta.OptionReq, p DatesParams) ([]time.Time, error) {
	env, err := c.get(ctx, "/list/dates/option/"+strings.ToLower(req.String()), p.values())
	if err != nil {
		return nil, fmt.Errorf("list option dates failed: %w", err)
	}
	dates, err := decodeDates(env.Response)
	if err != nil {
		return nil, fmt.Errorf("list option dates failed: %w", err)
	}
	return dates, nil
}

// StockDates lists the dates with stored data for a stock and request
// type.
func (c *Client) StockDates(ctx context.Context, req theta.StockReq, root string) ([]time.Time, error) {
	q := url.Values{}
	q.Set("root", root)
	env, err := c.get(ctx, "/list/dates/stock/"+strings.ToLower(req.String()), q)
	if err != nil {
		return nil, fmt.Errorf("list stock dates failed: %w", err)
	}
	dates, err := decodeDates(env.Response)
	if err != nil {
		return nil, fmt.Errorf("list stock dates failed: %w", err)
	}
	return dates, nil
}
