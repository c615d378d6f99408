package errors

import (
	"maps"
	"slices"
)

// ErrorCategory groups errors by what went wrong, which decides how the CLI
// reports them and which exit code it uses.
type ErrorCategory string

const (
	// Problems with the operator's inputs.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"
	CategoryNotFound   ErrorCategory = "not_found"

	// Collectors, remote sources and object storage.
	CategoryNetwork  ErrorCategory = "network"
	CategoryExternal ErrorCategory = "external"

	// Producing the website.
	CategoryBuild      ErrorCategory = "build"
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryCache      ErrorCategory = "cache"

	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Aborts the build
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // The build continues degraded
)

// RetryStrategy tells retry.Policy whether an operation is worth repeating.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryRateLimit  RetryStrategy = "rate_limit"
	RetryUserAction RetryStrategy = "user" // e.g. a bad API key
)

// ErrorContext holds structured details (path, url, item, status...).
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	value, ok := c[key].(string)
	return value, ok
}

// Keys returns the context keys in sorted order.
func (c ErrorContext) Keys() []string {
	return slices.Sorted(maps.Keys(c))
}
