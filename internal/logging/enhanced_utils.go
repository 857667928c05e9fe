package logging

import (
	"context"
	"time"

	poolerrors "sqlxpool/internal/errors"
)

// EnhancedLogger wraps the base structured Logger with operation timing
// and error-context helpers used by the pool and config packages.
type EnhancedLogger struct {
	Logger
	component string
}

// NewEnhancedLogger creates an enhanced logger for a component.
func NewEnhancedLogger(component string) *EnhancedLogger {
	baseLogger := NewLogger(INFO)
	return &EnhancedLogger{
		Logger:    baseLogger.WithComponent(component),
		component: component,
	}
}

// NewNoOpEnhancedLogger creates an enhanced logger that discards every
// message, for tests that drive the pool's monitor and eviction paths
// hard enough that the default logger would otherwise flood stdout.
func NewNoOpEnhancedLogger(component string) *EnhancedLogger {
	return &EnhancedLogger{
		Logger:    NewNoOpLogger(),
		component: component,
	}
}

// WithContext creates a logger carrying the trace ID found in ctx, if any.
func (l *EnhancedLogger) WithContext(ctx context.Context) *EnhancedLogger {
	traceID := getTraceIDFromContext(ctx)
	return &EnhancedLogger{
		Logger:    l.Logger.WithTraceID(traceID),
		component: l.component,
	}
}

// WithError logs err, unpacking category/retryable/operation context when
// err is a *poolerrors.EnhancedError.
func (l *EnhancedLogger) WithError(err error) *EnhancedLogger {
	if err == nil {
		return l
	}

	if enhancedErr, ok := err.(*poolerrors.EnhancedError); ok {
		l.Error("enhanced error occurred",
			"error", err.Error(),
			"category", string(enhancedErr.GetCategory()),
			"retryable", enhancedErr.IsRetryable(),
			"component", enhancedErr.Context.Component,
			"operation", enhancedErr.Context.Operation,
		)
	} else {
		l.Error("error occurred", "error", err.Error())
	}

	return l
}

// LogOperation logs the start and completion of fn, including duration.
func (l *EnhancedLogger) LogOperation(operation string, fn func() error) error {
	startTime := time.Now()
	l.Debug("starting operation", "operation", operation)

	err := fn()
	duration := time.Since(startTime)

	if err != nil {
		l.Error("operation failed",
			"operation", operation,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return err
	}

	l.Debug("operation completed",
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

// LogSlowOperation logs a slow-operation warning with the duration, the
// expected duration, and their ratio. It does not compare the two itself.
func (l *EnhancedLogger) LogSlowOperation(operation string, duration, expected time.Duration) {
	l.Warn("slow operation detected",
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
		"expected_ms", expected.Milliseconds(),
		"slowdown_factor", float64(duration)/float64(expected),
	)
}

func getTraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// Component logger instances shared across the pool core and its
// supporting packages.
var (
	PoolLogger    = NewEnhancedLogger("pool")
	MonitorLogger = NewEnhancedLogger("monitor")
	DriverLogger  = NewEnhancedLogger("driver")
	ConfigLogger  = NewEnhancedLogger("config")
)

// GetComponentLogger returns an enhanced logger for an arbitrary component
// name, for callers outside the predefined set above.
func GetComponentLogger(component string) *EnhancedLogger {
	return NewEnhancedLogger(component)
}
