package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/source"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		env     string
		verbose bool
		want    slog.Level
	}{
		{"", false, slog.LevelInfo},
		{"", true, slog.LevelDebug},
		{"warn", false, slog.LevelWarn},
		{"ERROR", false, slog.LevelError},
		{"error", true, slog.LevelDebug},
		{"bogus", false, slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(LogLevelEnv, tt.env)
			assert.Equal(t, tt.want, parseLogLevel(tt.verbose))
		})
	}
}

func TestAfterApplyReadsLogLevelFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(LogLevelEnv+"=warn\n"), 0o600))
	t.Chdir(dir)
	t.Setenv(LogLevelEnv, "")
	require.NoError(t, os.Unsetenv(LogLevelEnv))

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	require.NoError(t, (&CLI{}).AfterApply())
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelWarn))
}

func TestResolveConfigFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "landscape.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
data_source: data.yml
settings_source: settings.yml
logos:
  path: logos
output_dir: out
cache_ttl: 1h
`), 0o600))

	cfg, err := resolveConfig(&CLI{Config: cfgPath}, BuildFlags{
		OutputDir: "/tmp/site",
		LogosURL:  "https://logos.example.org",
		CacheTTL:  2 * time.Hour,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data.yml"), cfg.DataSource)
	assert.Equal(t, "/tmp/site", cfg.OutputDir)
	assert.Equal(t, "https://logos.example.org", cfg.Logos.URL)
	assert.Empty(t, cfg.Logos.Path, "the logos flag replaces the whole logos source")
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL)
	assert.NotEmpty(t, cfg.CacheDir)
}

func TestResolveConfigWithoutFile(t *testing.T) {
	_, err := resolveConfig(&CLI{}, BuildFlags{DataSource: "data.yml"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	cfg, err := resolveConfig(&CLI{}, BuildFlags{
		DataSource:     "data.yml",
		SettingsSource: "settings.yml",
		LogosPath:      "logos",
		OutputDir:      "out",
	})
	require.NoError(t, err)
	assert.Equal(t, "logos", cfg.Logos.Path)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.yml")
	settings := filepath.Join(dir, "settings.yml")
	require.NoError(t, os.WriteFile(data, []byte(`
landscape:
  - name: Members
    subcategories:
      - name: Gold
        items:
          - name: Acme
            homepage_url: https://acme.example
            logo: acme.svg
`), 0o600))
	require.NoError(t, os.WriteFile(settings, []byte("foundation: F\nurl: https://f.example\nmembers_category: Members\n"), 0o600))

	n, err := validate(context.Background(), source.New(nil), data, settings)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, os.WriteFile(settings, []byte("foundation: F\nurl: https://f.example\nmembers_category: Sponsors\n"), 0o600))
	_, err = validate(context.Background(), source.New(nil), data, settings)
	assert.Error(t, err)

	_, err = validate(context.Background(), source.New(nil), filepath.Join(dir, "missing.yml"), "")
	assert.Error(t, err)
}

func TestCLIParsesCommands(t *testing.T) {
	tests := []struct {
		args    []string
		command string
	}{
		{[]string{"build", "--data", "d.yml", "--settings", "s.yml", "--logos-path", "logos", "-o", "out"}, "build"},
		{[]string{"validate", "--data", "d.yml"}, "validate"},
		{[]string{"watch", "--quiet", "1s"}, "watch"},
		{[]string{"schedule", "--cron", "0 * * * *"}, "schedule"},
		{[]string{"deploy", "s3", "--bucket", "b", "--content-dir", "out"}, "deploy s3"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
			require.NoError(t, err)
			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.command, ctx.Command())
		})
	}
}

func TestCLIRejectsBothLogoSources(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	_, err = parser.Parse([]string{"build", "--logos-path", "a", "--logos-url", "https://b"})
	assert.Error(t, err)
}
