package errors

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCategory classifies errors for handling/logging strategies.
type ErrorCategory string

const (
	ErrorCategoryRetryable  ErrorCategory = "retryable"
	ErrorCategoryPermanent  ErrorCategory = "permanent"
	ErrorCategoryResource   ErrorCategory = "resource"
	ErrorCategoryTimeout    ErrorCategory = "timeout"
	ErrorCategoryValidation ErrorCategory = "validation"
)

// ErrorContext provides additional context for debugging.
type ErrorContext struct {
	Operation  string                 `json:"operation"`
	Component  string                 `json:"component"`
	TraceID    string                 `json:"trace_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Category   ErrorCategory          `json:"category"`
	Retryable  bool                   `json:"retryable"`
}

// EnhancedError wraps an error with production-ready context.
type EnhancedError struct {
	Err     error        `json:"error"`
	Context ErrorContext `json:"context"`
}

func (e *EnhancedError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Context.Component, e.Context.Operation, e.Err.Error())
}

func (e *EnhancedError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if error can be retried.
func (e *EnhancedError) IsRetryable() bool {
	return e.Context.Retryable
}

// GetCategory returns the error category.
func (e *EnhancedError) GetCategory() ErrorCategory {
	return e.Context.Category
}

// NewEnhancedError creates a new enhanced error with context.
func NewEnhancedError(err error, component, operation string, category ErrorCategory) *EnhancedError {
	return &EnhancedError{
		Err: err,
		Context: ErrorContext{
			Operation:  operation,
			Component:  component,
			Category:   category,
			Retryable:  category == ErrorCategoryRetryable || category == ErrorCategoryTimeout,
			Timestamp:  time.Now(),
			StackTrace: getStackTrace(),
		},
	}
}

// WithContext adds trace ID information from ctx to the error.
func (e *EnhancedError) WithContext(ctx context.Context) *EnhancedError {
	if traceID := getTraceID(ctx); traceID != "" {
		e.Context.TraceID = traceID
	}
	return e
}

// WithMetadata adds metadata to the error.
func (e *EnhancedError) WithMetadata(key string, value interface{}) *EnhancedError {
	if e.Context.Metadata == nil {
		e.Context.Metadata = make(map[string]interface{})
	}
	e.Context.Metadata[key] = value
	return e
}

// WrapDriverError wraps an error surfaced from a driver.Conn operation
// (connect/close/health) with operation context. This never changes what
// the pool itself returns to its caller — per the pool's propagation
// policy, driver errors are surfaced synchronously and untranslated; this
// wrapper only feeds the structured logger at the pool's edges.
func WrapDriverError(err error, operation string) error {
	if err == nil {
		return nil
	}

	category := ErrorCategoryPermanent
	if isTemporaryError(err) {
		category = ErrorCategoryRetryable
	}

	return NewEnhancedError(err, "driver", operation, category)
}

// WrapValidationError wraps validation errors.
func WrapValidationError(err error, field string) error {
	if err == nil {
		return nil
	}

	enhanced := NewEnhancedError(err, "validation", "field_validation", ErrorCategoryValidation)
	enhanced.WithMetadata("field", field)
	return enhanced
}

// WrapTimeoutError wraps timeout errors.
func WrapTimeoutError(err error, operation string, timeout time.Duration) error {
	if err == nil {
		return nil
	}

	enhanced := NewEnhancedError(err, "timeout", operation, ErrorCategoryTimeout)
	enhanced.WithMetadata("timeout_duration", timeout.String())
	return enhanced
}

// getStackTrace captures the current stack trace.
func getStackTrace() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

func getTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value("trace_id").(string); ok {
		return traceID
	}
	return ""
}

// isTemporaryError recognizes common transient-failure wording surfaced by
// database/sql drivers (connection refused, deadline exceeded, etc).
func isTemporaryError(err error) bool {
	msg := strings.ToLower(err.Error())
	temporaryPatterns := []string{
		"connection refused",
		"timeout",
		"temporary failure",
		"service unavailable",
		"deadline exceeded",
		"broken pipe",
		"connection reset",
	}

	for _, pattern := range temporaryPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}

	return false
}
