// Package config holds the build configuration, its YAML loader and the
// process-scoped credentials read from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bayoss/landscape2/internal/foundation/errors"
)

// DefaultCacheTTL is how long cached external responses stay fresh.
const DefaultCacheTTL = 7 * 24 * time.Hour

// BuildConfig represents the inputs of a landscape build.
type BuildConfig struct {
	DataSource     string        `yaml:"data_source"`
	SettingsSource string        `yaml:"settings_source"`
	Logos          LogosSource   `yaml:"logos"`
	CacheDir       string        `yaml:"cache_dir,omitempty"`
	CacheTTL       time.Duration `yaml:"cache_ttl,omitempty"`
	OutputDir      string        `yaml:"output_dir"`
	// LogoConcurrency overrides the logo stage concurrency; 0 uses min(NumCPU, 20).
	LogoConcurrency int          `yaml:"logo_concurrency,omitempty"`
	Retry           RetryConfig  `yaml:"retry,omitempty"`
	Notify          NotifyConfig `yaml:"notify,omitempty"`
	MetricsFile     string       `yaml:"metrics_file,omitempty"`
}

// LogosSource points at the location logos are read from. Exactly one of
// Path (local directory) or URL (base URL) must be set.
type LogosSource struct {
	Path string `yaml:"path,omitempty"`
	URL  string `yaml:"url,omitempty"`
}

// NotifyConfig configures the optional build notification publisher.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Enabled reports whether build notifications should be published.
func (n NotifyConfig) Enabled() bool { return n.NATSURL != "" }

// Load reads a YAML build configuration file. Environment variables referenced
// in the file (${VAR}) are expanded before parsing.
func Load(configPath string) (*BuildConfig, error) {
	// #nosec G304 - configuration path is provided by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "read configuration file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	var cfg BuildConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse configuration file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	// Relative local paths are resolved against the configuration file location.
	base := filepath.Dir(configPath)
	cfg.DataSource = resolveRef(base, cfg.DataSource)
	cfg.SettingsSource = resolveRef(base, cfg.SettingsSource)
	cfg.Logos.Path = resolveRef(base, cfg.Logos.Path)

	return &cfg, nil
}

// ApplyDefaults fills unset optional fields.
func (c *BuildConfig) ApplyDefaults() {
	if c.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.CacheDir = filepath.Join(dir, "landscape2")
		} else {
			c.CacheDir = filepath.Join(os.TempDir(), "landscape2-cache")
		}
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.Notify.NATSURL != "" && c.Notify.Subject == "" {
		c.Notify.Subject = "landscape.build"
	}
}

// Validate checks that every required input is present and consistent.
func (c *BuildConfig) Validate() error {
	switch {
	case c.DataSource == "":
		return errors.ConfigError("data source is required").Build()
	case c.SettingsSource == "":
		return errors.ConfigError("settings source is required").Build()
	case c.OutputDir == "":
		return errors.ConfigError("output directory is required").Build()
	case c.Logos.Path == "" && c.Logos.URL == "":
		return errors.ConfigError("a logos source (path or url) is required").Build()
	case c.Logos.Path != "" && c.Logos.URL != "":
		return errors.ConfigError("logos source must be either a path or an url, not both").Build()
	}
	if c.LogoConcurrency < 0 {
		return errors.ConfigError("logo concurrency must not be negative").Build()
	}
	if mode := c.Retry.Backoff; mode != "" && NormalizeRetryBackoff(mode) == "" {
		return errors.ConfigError(fmt.Sprintf("unknown retry backoff mode %q", mode)).Build()
	}
	return nil
}

func resolveRef(base, ref string) string {
	if ref == "" || IsURL(ref) || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(base, ref)
}
