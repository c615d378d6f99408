// Package commands implements the landscape CLI subcommands.
package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/bayoss/landscape2/internal/build"
	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/metrics"
	"github.com/bayoss/landscape2/internal/notify"
)

// LogLevelEnv overrides the log level picked by --verbose.
const LogLevelEnv = "LANDSCAPE_LOG_LEVEL"

// Global context passed to subcommands if we need to share global state later.
type Global struct{}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Build configuration file (YAML). Flags override its values." type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build the landscape website"`
	Validate ValidateCmd `cmd:"" help:"Validate the landscape data and settings files"`
	Watch    WatchCmd    `cmd:"" help:"Build, then rebuild whenever local inputs change"`
	Schedule ScheduleCmd `cmd:"" help:"Rebuild the landscape website on a cron schedule"`
	Deploy   DeployCmd   `cmd:"" help:"Deploy a built landscape website"`
}

// AfterApply runs after flag parsing: it loads .env, then sets up logging
// once so LANDSCAPE_LOG_LEVEL may come from either source.
func (c *CLI) AfterApply() error {
	err := config.LoadEnvFile()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)})))
	return err
}

// parseLogLevel returns debug when verbose is set, otherwise the level named
// by LANDSCAPE_LOG_LEVEL, defaulting to info.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// BuildFlags are the build inputs settable from the command line.
type BuildFlags struct {
	DataSource     string        `name:"data" help:"Landscape data file (path or URL)"`
	SettingsSource string        `name:"settings" help:"Landscape settings file (path or URL)"`
	LogosPath      string        `name:"logos-path" help:"Local directory containing the logos" xor:"logos"`
	LogosURL       string        `name:"logos-url" help:"Base URL the logos are fetched from" xor:"logos"`
	CacheDir       string        `name:"cache-dir" help:"Cache directory"`
	CacheTTL       time.Duration `name:"cache-ttl" help:"How long cached external data stays fresh"`
	OutputDir      string        `name:"output" short:"o" help:"Output directory"`
	MetricsFile    string        `name:"metrics-file" help:"Write Prometheus metrics to this textfile after each build"`
}

// resolveConfig loads the configuration file, if any, and applies the flags
// on top of it.
func resolveConfig(root *CLI, f BuildFlags) (*config.BuildConfig, error) {
	cfg := &config.BuildConfig{}
	if root.Config != "" {
		loaded, err := config.Load(root.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	override(&cfg.DataSource, f.DataSource)
	override(&cfg.SettingsSource, f.SettingsSource)
	if f.LogosPath != "" || f.LogosURL != "" {
		cfg.Logos = config.LogosSource{Path: f.LogosPath, URL: f.LogosURL}
	}
	override(&cfg.CacheDir, f.CacheDir)
	override(&cfg.OutputDir, f.OutputDir)
	override(&cfg.MetricsFile, f.MetricsFile)
	if f.CacheTTL > 0 {
		cfg.CacheTTL = f.CacheTTL
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// service is a build.Service plus the resources it holds.
type service struct {
	*build.Builder
	registry  *prom.Registry
	publisher *notify.Publisher
	metrics   string
}

// newService wires the builder with the optional metrics recorder and build
// notifier configured in cfg.
func newService(cfg *config.BuildConfig) (*service, error) {
	s := &service{metrics: cfg.MetricsFile}
	var opts []build.Option
	if cfg.MetricsFile != "" {
		s.registry = prom.NewRegistry()
		opts = append(opts, build.WithRecorder(metrics.NewPrometheusRecorder(s.registry)))
	}
	if cfg.Notify.Enabled() {
		p, err := notify.Connect(cfg.Notify)
		if err != nil {
			return nil, err
		}
		s.publisher = p
		opts = append(opts, build.WithNotifier(p))
	}
	s.Builder = build.New(opts...)
	return s, nil
}

// Run runs a build and refreshes the metrics textfile.
func (s *service) Run(ctx context.Context, cfg *config.BuildConfig) (*build.Report, error) {
	report, err := s.Builder.Run(ctx, cfg)
	if s.registry != nil {
		if werr := metrics.WriteTextfile(s.metrics, s.registry); werr != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(s.metrics), logfields.Error(werr))
		}
	}
	return report, err
}

func (s *service) Close() {
	if s.publisher != nil {
		s.publisher.Close()
	}
}
