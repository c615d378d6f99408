package build

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bayoss/landscape2/internal/assets"
	"github.com/bayoss/landscape2/internal/cache"
	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/crunchbase"
	"github.com/bayoss/landscape2/internal/github"
	"github.com/bayoss/landscape2/internal/httpapi"
	"github.com/bayoss/landscape2/internal/landscape"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/logos"
	"github.com/bayoss/landscape2/internal/metrics"
	"github.com/bayoss/landscape2/internal/observability"
	"github.com/bayoss/landscape2/internal/retry"
	"github.com/bayoss/landscape2/internal/source"
)

// Service runs builds. Both the one-shot build command and the daemon modes
// go through it.
type Service interface {
	Run(ctx context.Context, cfg *config.BuildConfig) (*Report, error)
}

// LogoResolver turns a logo reference into a normalized logo.
type LogoResolver interface {
	Resolve(ctx context.Context, ref string) (*logos.Logo, error)
}

// CrunchbaseCollector collects organization data keyed by Crunchbase URL.
type CrunchbaseCollector interface {
	Collect(ctx context.Context, urls []string) (map[string]*landscape.CrunchbaseData, error)
}

// GithubCollector collects repository data keyed by repository URL.
type GithubCollector interface {
	Collect(ctx context.Context, urls []string) (map[string]*landscape.GithubData, error)
}

// Notifier is told about every finished build, successful or not.
type Notifier interface {
	Notify(ctx context.Context, r *Report) error
}

// Builder is the default Service.
type Builder struct {
	assets   assets.Provider
	fetcher  landscape.Fetcher
	recorder metrics.Recorder
	lookup   config.LookupFunc
	notifier Notifier
	stages   []StageDef

	newLogoResolver func(cfg *config.BuildConfig, store cache.Store) (LogoResolver, error)
	newCrunchbase   func(cfg *config.BuildConfig, store cache.Store, apiKey string) CrunchbaseCollector
	newGithub       func(cfg *config.BuildConfig, store cache.Store, tokens []string) GithubCollector
}

// Option customizes a Builder.
type Option func(*Builder)

// WithAssets replaces the embedded web bundle.
func WithAssets(p assets.Provider) Option { return func(b *Builder) { b.assets = p } }

// WithFetcher replaces the data and settings fetcher.
func WithFetcher(f landscape.Fetcher) Option { return func(b *Builder) { b.fetcher = f } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(b *Builder) { b.recorder = r } }

// WithEnv sets the lookup used to read credentials.
func WithEnv(lookup config.LookupFunc) Option { return func(b *Builder) { b.lookup = lookup } }

// WithNotifier sets the build notifier.
func WithNotifier(n Notifier) Option { return func(b *Builder) { b.notifier = n } }

// WithLogoResolver replaces the logo resolver factory.
func WithLogoResolver(f func(cfg *config.BuildConfig, store cache.Store) (LogoResolver, error)) Option {
	return func(b *Builder) { b.newLogoResolver = f }
}

// WithCrunchbase replaces the Crunchbase collector factory.
func WithCrunchbase(f func(cfg *config.BuildConfig, store cache.Store, apiKey string) CrunchbaseCollector) Option {
	return func(b *Builder) { b.newCrunchbase = f }
}

// WithGithub replaces the GitHub collector factory.
func WithGithub(f func(cfg *config.BuildConfig, store cache.Store, tokens []string) GithubCollector) Option {
	return func(b *Builder) { b.newGithub = f }
}

// New creates a Builder wired to the real collaborators.
func New(opts ...Option) *Builder {
	b := &Builder{
		assets:   assets.Embedded(),
		recorder: metrics.NoopRecorder{},
		stages:   defaultStages(),
		newLogoResolver: func(cfg *config.BuildConfig, store cache.Store) (LogoResolver, error) {
			return logos.NewResolver(logos.SourceFromConfig(cfg.Logos), store, newClient(cfg, ""))
		},
		newCrunchbase: func(cfg *config.BuildConfig, store cache.Store, apiKey string) CrunchbaseCollector {
			return crunchbase.New(store, apiKey, crunchbase.WithClient(newClient(cfg, crunchbase.DefaultAPIURL)))
		},
		newGithub: func(cfg *config.BuildConfig, store cache.Store, tokens []string) GithubCollector {
			return github.New(store, tokens, github.WithClient(newClient(cfg, github.DefaultAPIURL,
				httpapi.WithHeader("Accept", "application/vnd.github+json"),
				httpapi.WithHeader("X-GitHub-Api-Version", "2022-11-28"))))
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func newClient(cfg *config.BuildConfig, baseURL string, opts ...httpapi.Option) *httpapi.Client {
	opts = append([]httpapi.Option{httpapi.WithRetry(retry.FromConfig(cfg.Retry))}, opts...)
	return httpapi.New(baseURL, opts...)
}

// Run executes one build with cfg. The returned report is non-nil whenever
// the configuration is valid, including when the build fails.
func (b *Builder) Run(ctx context.Context, cfg *config.BuildConfig) (*Report, error) {
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)
	report := newReport(buildID)

	fetcher := b.fetcher
	if fetcher == nil {
		fetcher = source.New(newClient(&c, ""))
	}

	bs := &buildState{
		builder:  b,
		cfg:      &c,
		fetcher:  fetcher,
		recorder: b.recorder,
		report:   report,
	}
	defer bs.close()

	observability.InfoContext(ctx, "Building landscape website", logfields.Path(c.OutputDir))
	err := runStages(ctx, bs, b.stages)

	report.finish()
	report.deriveOutcome()
	b.recorder.ObserveBuildDuration(report.Duration())
	b.recorder.IncBuildOutcome(report.Outcome.metricLabel())

	if err != nil {
		observability.ErrorContext(ctx, "Landscape build failed", logfields.Error(err),
			slog.String("summary", report.Summary()))
	} else {
		observability.InfoContext(ctx, "Landscape website built", slog.String("summary", report.Summary()))
	}

	if b.notifier != nil {
		if nerr := b.notifier.Notify(context.WithoutCancel(ctx), report); nerr != nil {
			observability.WarnContext(ctx, "Build notification failed", logfields.Error(nerr))
		}
	}
	return report, err
}
