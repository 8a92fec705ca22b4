package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// Logger is a generic interface for logging that's compatible with stdlib
// log.Logger and can be adapted to other logging frameworks.
type Logger interface {
	Printf(format string, v ...interface{})
}

// FrameHandler handles one raw stream frame. The frame buffer is pooled
// and reused after the handler returns; implementations must copy any
// bytes they keep.
type FrameHandler func(ctx context.Context, frame []byte) error

// FrameMiddleware wraps a stream frame handler.
type FrameMiddleware func(FrameHandler) FrameHandler

// FrameMetricsCollector is the sink for frame middleware measurements.
type FrameMetricsCollector interface {
	RecordFrameProcessed(bytes int, latency time.Duration)
	RecordFrameError()
}

// ChainFrameMiddleware composes multiple middleware functions.
// Middleware is applied in order: first middleware is outermost.
func ChainFrameMiddleware(middlewares ...FrameMiddleware) FrameMiddleware {
	return func(handler FrameHandler) FrameHandler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}

// FrameLoggingMiddleware logs stream frames as they are processed.
func FrameLoggingMiddleware(logger Logger) FrameMiddleware {
	if logger == nil {
		return func(next FrameHandler) FrameHandler {
			return next
		}
	}

	return func(next FrameHandler) FrameHandler {
		return func(ctx context.Context, frame []byte) error {
			start := time.Now()

			err := next(ctx, frame)

			duration := time.Since(start)
			if err != nil {
				logger.Printf("[STREAM] frame %d (%d bytes) failed: %v (%v)", frame[0], len(frame), err, duration)
			} else {
				logger.Printf("[STREAM] frame %d (%d bytes) processed (%v)", frame[0], len(frame), duration)
			}

			return err
		}
	}
}

// FrameMetricsMiddleware measures frame processing.
func FrameMetricsMiddleware(collector FrameMetricsCollector) FrameMiddleware {
	if collector == nil {
		return func(next FrameHandler) FrameHandler {
			return next
		}
	}

	return func(next FrameHandler) FrameHandler {
		return func(ctx context.Context, frame []byte) error {
			start := time.Now()

			err := next(ctx, frame)

			collector.RecordFrameProcessed(len(frame), time.Since(start))
			if err != nil {
				collector.RecordFrameError()
			}

			return err
		}
	}
}

// FrameRecoveryMiddleware converts a panicking handler into an error. The
// stream session treats the error as fatal, so a panicking callback tears
// the session down instead of the process.
func FrameRecoveryMiddleware(logger Logger) FrameMiddleware {
	return func(next FrameHandler) FrameHandler {
		return func(ctx context.Context, frame []byte) (err error) {
			defer func() {
				if r := recover(); r != nil {
					if logger != nil {
						logger.Printf("[STREAM PANIC] recovered: %v\n%s", r, debug.Stack())
					}
					err = fmt.Errorf("panic recovered: %v", r)
				}
			}()

			return next(ctx, frame)
		}
	}
}
