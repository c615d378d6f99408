package errors

import "maps"

// ErrorBuilder assembles a ClassifiedError. The zero severity is
// SeverityError and the zero retry strategy is RetryNever.
type ErrorBuilder struct {
	draft ClassifiedError
}

// NewError starts an error of the given category.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{draft: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
	}}
}

// WrapError starts an error of the given category caused by err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.draft.cause = err
	return b
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.draft.severity = severity
	return b
}

func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.draft.retry = strategy
	return b
}

// WithContext attaches a structured detail; a repeated key overwrites.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.draft.context = b.draft.context.Set(key, value)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder     { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder   { return b.WithSeverity(SeverityWarning) }
func (b *ErrorBuilder) Retryable() *ErrorBuilder { return b.WithRetry(RetryBackoff) }
func (b *ErrorBuilder) RateLimit() *ErrorBuilder { return b.WithRetry(RetryRateLimit) }

// Build returns the error. The builder may keep being used afterwards
// without affecting errors already built.
func (b *ErrorBuilder) Build() *ClassifiedError {
	ce := b.draft
	ce.context = maps.Clone(b.draft.context)
	if ce.context == nil {
		ce.context = ErrorContext{}
	}
	return &ce
}

// Shorthands per category. Input problems abort the build, remote failures
// are worth retrying.

func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// AuthError is for rejected credentials; retrying cannot fix those.
func AuthError(message string) *ErrorBuilder {
	return NewError(CategoryAuth, message).WithRetry(RetryUserAction)
}

func NotFoundError(message string) *ErrorBuilder {
	return NewError(CategoryNotFound, message)
}

func NetworkError(message string) *ErrorBuilder {
	return NewError(CategoryNetwork, message).Retryable()
}

func ExternalError(message string) *ErrorBuilder {
	return NewError(CategoryExternal, message).Retryable()
}

func BuildError(message string) *ErrorBuilder {
	return NewError(CategoryBuild, message).Fatal()
}

func RenderError(message string) *ErrorBuilder {
	return NewError(CategoryRender, message).Fatal()
}

func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}

func CacheError(message string) *ErrorBuilder {
	return NewError(CategoryCache, message)
}

func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
