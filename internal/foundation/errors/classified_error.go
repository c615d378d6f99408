package errors

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
)

// ClassifiedError is an error with a category, a severity, a retry strategy
// and structured context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// Error formats the error as "[category:severity] message: cause".
func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory      { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity      { return e.severity }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string              { return e.message }
func (e *ClassifiedError) Context() ErrorContext        { return e.context }

// CanRetry reports whether repeating the operation may succeed.
func (e *ClassifiedError) CanRetry() bool {
	return e.retry == RetryBackoff || e.retry == RetryRateLimit
}

// IsFatal reports whether the error must abort the build.
func (e *ClassifiedError) IsFatal() bool { return e.severity == SeverityFatal }

// LogAttrs returns the category and context as log attributes, context keys
// sorted.
func (e *ClassifiedError) LogAttrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(e.context)+2)
	attrs = append(attrs, slog.String("category", string(e.category)))
	if e.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	for _, k := range e.context.Keys() {
		attrs = append(attrs, slog.Any(k, e.context[k]))
	}
	return attrs
}

// AsClassified finds the outermost ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stdErrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether the outermost ClassifiedError in the chain has
// the category.
func HasCategory(err error, category ErrorCategory) bool {
	ce, ok := AsClassified(err)
	return ok && ce.category == category
}

// HasSeverity reports whether the outermost ClassifiedError in the chain has
// the severity.
func HasSeverity(err error, severity ErrorSeverity) bool {
	ce, ok := AsClassified(err)
	return ok && ce.severity == severity
}
