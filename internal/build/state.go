package build

import (
	"log/slog"

	"github.com/bayoss/landscape2/internal/cache"
	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/datasets"
	"github.com/bayoss/landscape2/internal/landscape"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/metrics"
)

// buildState is owned by a single Run and threaded through the stages.
type buildState struct {
	builder  *Builder
	cfg      *config.BuildConfig
	fetcher  landscape.Fetcher
	recorder metrics.Recorder
	report   *Report

	cache    *cache.Cache
	data     *landscape.Data
	settings *landscape.Settings

	crunchbaseData map[string]*landscape.CrunchbaseData
	githubData     map[string]*landscape.GithubData
	datasets       *datasets.Datasets
}

func (bs *buildState) close() {
	if bs.cache == nil {
		return
	}
	if err := bs.cache.Close(); err != nil {
		slog.Warn("Failed to close cache", logfields.Error(err))
	}
	bs.cache = nil
}
