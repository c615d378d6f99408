// Package retry implements the backoff policy used by the HTTP fetchers of the
// external data collectors and the remote source loader.
package retry

import (
	"fmt"
	"time"

	"github.com/bayoss/landscape2/internal/config"
)

const (
	defaultInitial    = 500 * time.Millisecond
	defaultMax        = 10 * time.Second
	defaultMaxRetries = 3
)

// Policy says how many times a failed request is repeated and how long to
// wait before each repetition.
type Policy struct {
	Mode       config.RetryBackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int // repetitions after the first attempt
}

func DefaultPolicy() Policy {
	return Policy{
		Mode:       config.RetryBackoffExponential,
		Initial:    defaultInitial,
		Max:        defaultMax,
		MaxRetries: defaultMaxRetries,
	}
}

// NoRetry makes a single attempt. Tests use it against failing fakes.
func NoRetry() Policy {
	return Policy{Mode: config.RetryBackoffFixed, Initial: defaultInitial, Max: defaultMax}
}

// FromConfig reads the retry section of the build configuration. An unset
// max_retries keeps the default.
func FromConfig(rc config.RetryConfig) Policy {
	maxRetries := -1
	if rc.MaxRetries != nil {
		maxRetries = *rc.MaxRetries
	}
	return NewPolicy(config.NormalizeRetryBackoff(rc.Backoff), rc.Initial, rc.Max, maxRetries)
}

// NewPolicy overlays the given values on DefaultPolicy. Non-positive
// durations, a negative maxRetries and unknown modes are ignored, and
// Initial never exceeds Max.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if _, known := growth[mode]; known {
		p.Mode = mode
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	p.Initial = min(p.Initial, p.Max)
	return p
}

// growth maps the n-th retry (n >= 1) to its delay, capped at ceiling.
var growth = map[config.RetryBackoffMode]func(initial, ceiling time.Duration, n int) time.Duration{
	config.RetryBackoffFixed: func(initial, ceiling time.Duration, _ int) time.Duration {
		return min(initial, ceiling)
	},
	config.RetryBackoffLinear: func(initial, ceiling time.Duration, n int) time.Duration {
		if time.Duration(n) > ceiling/initial {
			return ceiling
		}
		return min(initial*time.Duration(n), ceiling)
	},
	config.RetryBackoffExponential: func(initial, ceiling time.Duration, n int) time.Duration {
		d := initial
		for i := 1; i < n && d < ceiling; i++ {
			d *= 2
		}
		return min(d, ceiling)
	},
}

// Delay is the wait before retry n (1-based). It is zero for n <= 0 and
// never above Max.
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 || p.Initial <= 0 {
		return 0
	}
	grow, ok := growth[p.Mode]
	if !ok {
		grow = growth[config.RetryBackoffExponential]
	}
	return grow(p.Initial, p.Max, n)
}

// Validate rejects policies that cannot be applied.
func (p Policy) Validate() error {
	switch {
	case p.Initial <= 0:
		return fmt.Errorf("retry initial delay must be positive, got %s", p.Initial)
	case p.Max <= 0:
		return fmt.Errorf("retry max delay must be positive, got %s", p.Max)
	case p.MaxRetries < 0:
		return fmt.Errorf("retry count cannot be negative, got %d", p.MaxRetries)
	}
	return nil
}
