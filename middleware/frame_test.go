package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordLogger captures Printf output for assertions.
type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

// recordCollector counts frame middleware measurements.
type recordCollector struct {
	frames  int
	bytes   int
	errors  int
	latency time.Duration
}

func (c *recordCollector) RecordFrameProcessed(bytes int, latency time.Duration) {
	c.frames++
	c.bytes += bytes
	c.latency += latency
}

func (c *recordCollector) RecordFrameError() {
	c.errors++
}

// TestChainFrameMiddleware verifies the first middleware runs outermost.
func TestChainFrameMiddleware(t *testing.T) {
	var order []string
	tag := func(name string) FrameMiddleware {
		return func(next FrameHandler) FrameHandler {
			return func(ctx context.Context, frame []byte) error {
				order = append(order, name)
				return next(ctx, frame)
			}
		}
	}
	handler := func(ctx context.Context, frame []byte) error {
		order = append(order, "handler")
		return nil
	}

	chained := ChainFrameMiddleware(tag("outer"), tag("inner"))(handler)
	require.NoError(t, chained(context.Background(), []byte{1}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

// TestFrameLoggingMiddleware verifies log lines for both outcomes, and
// that a nil logger is a passthrough.
func TestFrameLoggingMiddleware(t *testing.T) {
	log := &recordLogger{}
	frame := []byte{23, 0, 1, 2}

	ok := FrameLoggingMiddleware(log)(func(ctx context.Context, frame []byte) error {
		return nil
	})
	require.NoError(t, ok(context.Background(), frame))
	require.Len(t, log.lines, 1)
	assert.Contains(t, log.lines[0], "frame 23 (4 bytes) processed")

	failing := FrameLoggingMiddleware(log)(func(ctx context.Context, frame []byte) error {
		return errors.New("boom")
	})
	require.Error(t, failing(context.Background(), frame))
	require.Len(t, log.lines, 2)
	assert.Contains(t, log.lines[1], "failed: boom")

	called := false
	passthrough := FrameLoggingMiddleware(nil)(func(ctx context.Context, frame []byte) error {
		called = true
		return nil
	})
	require.NoError(t, passthrough(context.Background(), frame))
	assert.True(t, called)
}

// TestFrameMetricsMiddleware verifies byte counts and error counts reach
// the collector.
func TestFrameMetricsMiddleware(t *testing.T) {
	collector := &recordCollector{}
	mw := FrameMetricsMiddleware(collector)

	require.NoError(t, mw(func(ctx context.Context, frame []byte) error {
		return nil
	})(context.Background(), []byte{1, 2, 3}))

	require.Error(t, mw(func(ctx context.Context, frame []byte) error {
		return errors.New("boom")
	})(context.Background(), []byte{1, 2, 3, 4, 5}))

	assert.Equal(t, 2, collector.frames)
	assert.Equal(t, 8, collector.bytes)
	assert.Equal(t, 1, collector.errors)

	// A nil collector leaves the handler untouched.
	called := false
	require.NoError(t, FrameMetricsMiddleware(nil)(func(ctx context.Context, frame []byte) error {
		called = true
		return nil
	})(context.Background(), []byte{1}))
	assert.True(t, called)
}

// TestFrameRecoveryMiddleware verifies a panicking handler surfaces as an
// error instead of unwinding the session goroutine.
func TestFrameRecoveryMiddleware(t *testing.T) {
	log := &recordLogger{}
	mw := FrameRecoveryMiddleware(log)

	err := mw(func(ctx context.Context, frame []byte) error {
		panic("bad callback")
	})(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic recovered: bad callback")
	require.Len(t, log.lines, 1)
	assert.Contains(t, log.lines[0], "bad callback")

	// Normal errors pass through untouched.
	want := errors.New("boom")
	err = mw(func(ctx context.Context, frame []byte) error {
		return want
	})(context.Background(), []byte{1})
	assert.Same(t, want, err)
}
