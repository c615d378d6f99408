package config

import (
	"slices"
	"strings"
	"time"
)

// RetryBackoffMode names how the delay between retries grows.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var backoffModes = []RetryBackoffMode{RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential}

// RetryConfig is the `retry:` section, applied to every request sent to
// Crunchbase, GitHub and remote sources.
type RetryConfig struct {
	Backoff    string        `yaml:"backoff,omitempty"`
	Initial    time.Duration `yaml:"initial,omitempty"`
	Max        time.Duration `yaml:"max,omitempty"`
	MaxRetries *int          `yaml:"max_retries,omitempty"` // nil keeps the default
}

// NormalizeRetryBackoff maps user input such as " Linear" to a mode. Unknown
// values map to "".
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	mode := RetryBackoffMode(strings.ToLower(strings.TrimSpace(raw)))
	if slices.Contains(backoffModes, mode) {
		return mode
	}
	return ""
}
