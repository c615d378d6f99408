package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayoss/landscape2/internal/foundation/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LANDSCAPE_TEST_OUTPUT", "/srv/site")
	writeFile(t, filepath.Join(dir, "landscape.build.yml"), `
data_source: data.yml
settings_source: https://example.com/settings.yml
logos:
  path: hosted_logos
output_dir: ${LANDSCAPE_TEST_OUTPUT}
cache_ttl: 24h
retry:
  backoff: linear
  max_retries: 0
notify:
  nats_url: nats://localhost:4222
`)

	cfg, err := Load(filepath.Join(dir, "landscape.build.yml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data.yml"), cfg.DataSource)
	assert.Equal(t, "https://example.com/settings.yml", cfg.SettingsSource)
	assert.Equal(t, filepath.Join(dir, "hosted_logos"), cfg.Logos.Path)
	assert.Equal(t, "/srv/site", cfg.OutputDir)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	require.NotNil(t, cfg.Retry.MaxRetries)
	assert.Equal(t, 0, *cfg.Retry.MaxRetries)

	cfg.ApplyDefaults()
	assert.NotEmpty(t, cfg.CacheDir)
	assert.Equal(t, "landscape.build", cfg.Notify.Subject)
	assert.True(t, cfg.Notify.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	writeFile(t, path, "data_source: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestValidate(t *testing.T) {
	valid := func() BuildConfig {
		return BuildConfig{
			DataSource:     "data.yml",
			SettingsSource: "settings.yml",
			OutputDir:      "out",
			Logos:          LogosSource{Path: "logos"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *BuildConfig)
		ok     bool
	}{
		{"valid", func(*BuildConfig) {}, true},
		{"missing data", func(c *BuildConfig) { c.DataSource = "" }, false},
		{"missing settings", func(c *BuildConfig) { c.SettingsSource = "" }, false},
		{"missing output", func(c *BuildConfig) { c.OutputDir = "" }, false},
		{"missing logos", func(c *BuildConfig) { c.Logos = LogosSource{} }, false},
		{"both logos", func(c *BuildConfig) { c.Logos.URL = "https://example.com/logos" }, false},
		{"bad backoff", func(c *BuildConfig) { c.Retry.Backoff = "random" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := BuildConfig{CacheDir: "/tmp/c", CacheTTL: time.Hour}
	cfg.ApplyDefaults()
	assert.Equal(t, "/tmp/c", cfg.CacheDir)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.False(t, cfg.Notify.Enabled())
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/data.yml"))
	assert.True(t, IsURL("http://example.com"))
	assert.False(t, IsURL("data.yml"))
	assert.False(t, IsURL("/abs/data.yml"))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// Missing file is not an error.
	require.NoError(t, LoadEnvFile())

	const key = "LANDSCAPE_TEST_ENV_FILE_VAR"
	t.Setenv(key, "placeholder")
	require.NoError(t, os.Unsetenv(key))
	t.Setenv(GithubTokensEnv, "from-env")

	writeFile(t, filepath.Join(dir, ".env"), key+"=loaded\n"+GithubTokensEnv+"=from-file\n")
	require.NoError(t, LoadEnvFile())

	assert.Equal(t, "loaded", os.Getenv(key))
	assert.Equal(t, "from-env", os.Getenv(GithubTokensEnv), "existing variables must not be overridden")
}
