package retry

import (
	"context"
	stdErrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/foundation/errors"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffExponential, p.Mode)
	assert.Equal(t, 500*time.Millisecond, p.Initial)
	assert.Equal(t, 10*time.Second, p.Max)
	assert.Equal(t, 3, p.MaxRetries)
	require.NoError(t, p.Validate())
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, 2*time.Second, p.Initial)
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)
}

func TestFromConfig(t *testing.T) {
	one := 1
	p := FromConfig(config.RetryConfig{Backoff: "Linear", Initial: time.Second, Max: 4 * time.Second, MaxRetries: &one})
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
	assert.Equal(t, time.Second, p.Initial)
	assert.Equal(t, 1, p.MaxRetries)

	defaults := FromConfig(config.RetryConfig{})
	assert.Equal(t, DefaultPolicy(), defaults)
}

// TestDelayModes ensures fixed, linear, exponential behave and respect cap.
func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for i := 1; i <= 3; i++ {
		assert.Equal(t, 100*time.Millisecond, fixed.Delay(i))
	}

	linear := NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	assert.Equal(t, 100*time.Millisecond, linear.Delay(1))
	assert.Equal(t, 200*time.Millisecond, linear.Delay(2))
	assert.Equal(t, 250*time.Millisecond, linear.Delay(3))

	exp := NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5)
	assert.Equal(t, 50*time.Millisecond, exp.Delay(1))
	assert.Equal(t, 100*time.Millisecond, exp.Delay(2))
	assert.Equal(t, 160*time.Millisecond, exp.Delay(3))
	assert.Equal(t, 160*time.Millisecond, exp.Delay(40))

	assert.Zero(t, exp.Delay(0))
	assert.Zero(t, exp.Delay(-1))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	assert.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func TestUnknownModeFallsBack(t *testing.T) {
	p := NewPolicy("weird", 250*time.Millisecond, 500*time.Millisecond, 1)
	assert.Equal(t, config.RetryBackoffExponential, p.Mode)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.NetworkError("flaky").Build()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.AuthError("bad token").Build()
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsRetries(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.NetworkError("down").Build()
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoUnclassifiedNotRetried(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return stdErrors.New("plain")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoCanceledDuringBackoff(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 2)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.NetworkError("down").Build()
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.HasCategory(err, errors.CategoryNetwork))
	assert.Equal(t, 1, calls)
}

func TestNoRetrySingleAttempt(t *testing.T) {
	p := NoRetry()
	assert.Zero(t, p.MaxRetries)
	require.NoError(t, p.Validate())
}
