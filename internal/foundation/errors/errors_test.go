package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	err := NewError(CategoryBuild, "render index").Build()
	assert.Equal(t, CategoryBuild, err.Category())
	assert.Equal(t, SeverityError, err.Severity())
	assert.Equal(t, RetryNever, err.RetryStrategy())
	assert.Equal(t, "[build:error] render index", err.Error())
	assert.False(t, err.CanRetry())
}

func TestWrapErrorKeepsCause(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := WrapError(cause, CategoryNetwork, "fetch data").
		Retryable().
		WithContext("url", "https://example.org/data.yml").
		Build()

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[network:error] fetch data: connection reset", err.Error())
	assert.True(t, err.CanRetry())

	url, ok := err.Context().GetString("url")
	require.True(t, ok)
	assert.Equal(t, "https://example.org/data.yml", url)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *ClassifiedError
		category ErrorCategory
		fatal    bool
		retry    bool
	}{
		{"config", ConfigError("x").Build(), CategoryConfig, true, false},
		{"validation", ValidationError("x").Build(), CategoryValidation, true, false},
		{"auth", AuthError("x").Build(), CategoryAuth, false, false},
		{"not found", NotFoundError("x").Build(), CategoryNotFound, false, false},
		{"network", NetworkError("x").Build(), CategoryNetwork, false, true},
		{"external", ExternalError("x").Build(), CategoryExternal, false, true},
		{"rate limited", ExternalError("x").RateLimit().Build(), CategoryExternal, false, true},
		{"build", BuildError("x").Build(), CategoryBuild, true, false},
		{"render", RenderError("x").Build(), CategoryRender, true, false},
		{"filesystem", FileSystemError("x").Build(), CategoryFileSystem, false, false},
		{"cache", CacheError("x").Build(), CategoryCache, false, false},
		{"internal", InternalError("x").Build(), CategoryInternal, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category())
			assert.Equal(t, tt.fatal, tt.err.IsFatal())
			assert.Equal(t, tt.retry, tt.err.CanRetry())
		})
	}
	assert.Equal(t, RetryUserAction, AuthError("bad key").Build().RetryStrategy())
}

func TestChainHelpersUseOutermost(t *testing.T) {
	inner := NotFoundError("logo not found").Build()
	outer := WrapError(inner, CategoryBuild, "prepare logo").Warning().Build()
	wrapped := fmt.Errorf("stage prepare_logos: %w", outer)

	ce, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Same(t, outer, ce)
	assert.True(t, HasCategory(wrapped, CategoryBuild))
	assert.False(t, HasCategory(wrapped, CategoryNotFound))
	assert.True(t, HasSeverity(wrapped, SeverityWarning))
	assert.False(t, HasCategory(stdErrors.New("plain"), CategoryBuild))
}

func TestErrorContextKeysSorted(t *testing.T) {
	var c ErrorContext
	c = c.Set("url", "u").Set("item", "Kubernetes").Set("path", "p")
	assert.Equal(t, []string{"item", "path", "url"}, c.Keys())

	_, ok := c.GetString("missing")
	assert.False(t, ok)
	_, ok = ErrorContext(nil).Get("x")
	assert.False(t, ok)
}

func TestLogAttrs(t *testing.T) {
	err := NetworkError("fetch").WithContext("url", "u").WithContext("attempt", 2).Build()
	attrs := err.LogAttrs()
	require.Len(t, attrs, 4)
	assert.Equal(t, "category", attrs[0].Key)
	assert.Equal(t, "retryable", attrs[1].Key)
	assert.Equal(t, "attempt", attrs[2].Key)
	assert.Equal(t, "url", attrs[3].Key)
}

func TestBuilderReuseDoesNotLeakContext(t *testing.T) {
	b := NotFoundError("logo missing").WithContext("logo", "a.svg")
	first := b.Build()
	second := b.WithContext("logo", "b.svg").Build()

	logo, _ := first.Context().GetString("logo")
	assert.Equal(t, "a.svg", logo)
	logo, _ = second.Context().GetString("logo")
	assert.Equal(t, "b.svg", logo)
}
