package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bayoss/landscape2/internal/assets"
	"github.com/bayoss/landscape2/internal/cache"
	"github.com/bayoss/landscape2/internal/datasets"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/logos"
	"github.com/bayoss/landscape2/internal/observability"
)

func stageCheckAssets(_ context.Context, bs *buildState) error {
	if err := assets.Check(bs.builder.assets); err != nil {
		return fmt.Errorf("%w: %w", ErrAssets, err)
	}
	return nil
}

// stageSetupOutput creates the output directory and its data and logos
// subdirectories. Existing content is left untouched.
func stageSetupOutput(ctx context.Context, bs *buildState) error {
	out := bs.cfg.OutputDir
	for _, dir := range []string{out, filepath.Join(out, datasets.Dir), filepath.Join(out, logos.Dir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
				Fatal().
				WithContext("path", dir).
				Build()
		}
	}
	observability.DebugContext(ctx, "Output directory ready", logfields.Path(out))
	return nil
}

func stageOpenCache(ctx context.Context, bs *buildState) error {
	c, err := cache.Open(bs.cfg.CacheDir, bs.cfg.CacheTTL)
	if err != nil {
		return err
	}
	bs.cache = c
	observability.DebugContext(ctx, "Cache opened", logfields.Path(bs.cfg.CacheDir))
	return nil
}
