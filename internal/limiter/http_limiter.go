package limiter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Terminal REST pacing. The REST port is loopback, but every hist request
// fans out to Theta Data's servers through the Terminal's single upstream
// connection; pacing here keeps one greedy caller from starving it.
const (
	// Hist APIs: full historical pulls, the heavy path
	HistAPIsPerSecond = 8
	HistAPIsPerMinute = 240

	// List APIs: roots/expirations/strikes/dates, served from Terminal cache
	ListAPIsPerSecond = 20

	// Snapshot APIs: at-time and last lookups
	SnapshotAPIsPerSecond = 10
)

// EndpointCategory groups REST endpoints that share a pacing budget.
type EndpointCategory int

const (
	CategoryHist EndpointCategory = iota
	CategoryList
	CategorySnapshot
)

var categoryNames = [...]string{"Hist", "List", "Snapshot"}

func (c EndpointCategory) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// HTTPRateLimiter paces requests against the Terminal's REST port by
// endpoint category. Hist carries a second cap over a sliding minute,
// mirroring the upstream quota, so a burst-heavy backfill fails locally
// instead of drawing 472s from the Terminal.
type HTTPRateLimiter struct {
	histPerSecond *rate.Limiter
	histPerMinute *slidingWindowCounter
	list          *rate.Limiter
	snap          *rate.Limiter

	mu         sync.RWMutex
	categories map[string]EndpointCategory
}

// NewHTTPRateLimiter creates a rate limiter with the default pacing.
func NewHTTPRateLimiter() *HTTPRateLimiter {
	return &HTTPRateLimiter{
		histPerSecond: rate.NewLimiter(rate.Limit(HistAPIsPerSecond), HistAPIsPerSecond),
		histPerMinute: newSlidingWindowCounter(HistAPIsPerMinute, time.Minute),
		list:          rate.NewLimiter(rate.Limit(ListAPIsPerSecond), ListAPIsPerSecond),
		snap:          rate.NewLimiter(rate.Limit(SnapshotAPIsPerSecond), SnapshotAPIsPerSecond),

		categories: map[string]EndpointCategory{
			"/hist/":    CategoryHist,
			"/list/":    CategoryList,
			"/at_time/": CategorySnapshot,
			"/last/":    CategorySnapshot,
		},
	}
}

// SetEndpointCategory customizes the category for an endpoint prefix.
func (rl *HTTPRateLimiter) SetEndpointCategory(prefix string, category EndpointCategory) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.categories[prefix] = category
}

// Wait blocks until the request is allowed under the category's limits.
// Returns an error if the context is cancelled first.
func (rl *HTTPRateLimiter) Wait(ctx context.Context, endpoint string) error {
	switch rl.categorizeEndpoint(endpoint) {
	case CategoryHist:
		if err := rl.histPerSecond.Wait(ctx); err != nil {
			return fmt.Errorf("hist API rate limit (per-second): %w", err)
		}
		if !rl.histPerMinute.allow() {
			return fmt.Errorf("hist API rate limit exceeded (%d req/min)", HistAPIsPerMinute)
		}
		return nil
	case CategoryList:
		return rl.list.Wait(ctx)
	default:
		return rl.snap.Wait(ctx)
	}
}

// Allow checks if a request is allowed without blocking.
func (rl *HTTPRateLimiter) Allow(endpoint string) error {
	switch rl.categorizeEndpoint(endpoint) {
	case CategoryHist:
		if !rl.histPerSecond.Allow() {
			return fmt.Errorf("hist API rate limit exceeded (%d req/sec)", HistAPIsPerSecond)
		}
		if !rl.histPerMinute.allow() {
			return fmt.Errorf("hist API rate limit exceeded (%d req/min)", HistAPIsPerMinute)
		}
		return nil
	case CategoryList:
		if !rl.list.Allow() {
			return fmt.Errorf("list API rate limit exceeded (%d req/sec)", ListAPIsPerSecond)
		}
		return nil
	default:
		if !rl.snap.Allow() {
			return fmt.Errorf("snapshot API rate limit exceeded (%d req/sec)", SnapshotAPIsPerSecond)
		}
		return nil
	}
}

// categorizeEndpoint maps a path to its budget. Unknown paths pace as
// snapshots, the middle-weight category.
func (rl *HTTPRateLimiter) categorizeEndpoint(endpoint string) EndpointCategory {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	for prefix, category := range rl.categories {
		if strings.HasPrefix(endpoint, prefix) {
			return category
		}
	}
	return CategorySnapshot
}

// GetStats snapshots the configured limits and minute-window usage.
func (rl *HTTPRateLimiter) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"hist_apis": map[string]interface{}{
			"per_second_limit": HistAPIsPerSecond,
			"per_minute_limit": HistAPIsPerMinute,
			"per_minute_used":  rl.histPerMinute.count(),
		},
		"list_apis": map[string]interface{}{
			"per_second_limit": ListAPIsPerSecond,
		},
		"snapshot_apis": map[string]interface{}{
			"per_second_limit": SnapshotAPIsPerSecond,
		},
	}
}

// slidingWindowCounter counts events over a trailing window. The token
// bucket alone would let a caller spend a minute's quota in bursts; the
// upstream quota is a hard count, so this mirrors it exactly.
type slidingWindowCounter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
}

func newSlidingWindowCounter(limit int, window time.Duration) *slidingWindowCounter {
	return &slidingWindowCounter{limit: limit, window: window}
}

// allow records the event and reports whether the window had room.
func (swc *slidingWindowCounter) allow() bool {
	swc.mu.Lock()
	defer swc.mu.Unlock()

	now := time.Now()
	swc.expire(now)
	if len(swc.stamps) >= swc.limit {
		return false
	}
	swc.stamps = append(swc.stamps, now)
	return true
}

// count reports how many events sit inside the window right now.
func (swc *slidingWindowCounter) count() int {
	swc.mu.Lock()
	defer swc.mu.Unlock()
	swc.expire(time.Now())
	return len(swc.stamps)
}

// expire drops stamps older than the window. Stamps arrive in order, so
// everything before the first survivor goes in one reslice.
func (swc *slidingWindowCounter) expire(now time.Time) {
	cutoff := now.Add(-swc.window)
	i := 0
	for i < len(swc.stamps) && !swc.stamps[i].After(cutoff) {
		i++
	}
	swc.stamps = swc.stamps[i:]
}
