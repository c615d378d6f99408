package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/crunchbase"
	"github.com/bayoss/landscape2/internal/github"
	"github.com/bayoss/landscape2/internal/landscape"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/metrics"
	"github.com/bayoss/landscape2/internal/observability"
	"github.com/bayoss/landscape2/internal/parallel"
)

// stageCollectExternal reads the credentials and runs both collectors
// concurrently. The first collector failure fails the stage and cancels the
// other collector.
func stageCollectExternal(ctx context.Context, bs *buildState) error {
	creds := config.ReadCredentials(bs.builder.lookup)
	observability.DebugContext(ctx, "Credentials read",
		slog.Bool("crunchbase_api_key", creds.HasCrunchbaseAPIKey()),
		slog.Int("github_tokens", len(creds.GithubTokens)))

	cb := bs.builder.newCrunchbase(bs.cfg, bs.cache, creds.CrunchbaseAPIKey)
	gh := bs.builder.newGithub(bs.cfg, bs.cache, creds.GithubTokens)
	cbURLs := bs.data.CrunchbaseURLs()
	ghURLs := bs.data.RepositoryURLs()

	cbData, ghData, err := parallel.Join2(ctx,
		timed(bs.recorder, crunchbase.Name, func(ctx context.Context) (map[string]*landscape.CrunchbaseData, error) {
			return cb.Collect(ctx, cbURLs)
		}),
		timed(bs.recorder, github.Name, func(ctx context.Context) (map[string]*landscape.GithubData, error) {
			return gh.Collect(ctx, ghURLs)
		}),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCollect, err)
	}

	bs.crunchbaseData = cbData
	bs.githubData = ghData
	bs.report.CrunchbaseOrganizations = len(cbData)
	bs.report.GithubRepositories = len(ghData)
	return nil
}

func timed[T any](rec metrics.Recorder, name string, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		ctx = observability.WithCollector(ctx, name)
		t0 := time.Now()
		v, err := fn(ctx)
		d := time.Since(t0)
		rec.ObserveCollectorDuration(name, d, err == nil)
		if err == nil {
			observability.InfoContext(ctx, "External data collected",
				logfields.DurationMS(float64(d.Microseconds())/1000))
		}
		return v, err
	}
}
