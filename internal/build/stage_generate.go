package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bayoss/landscape2/internal/assets"
	"github.com/bayoss/landscape2/internal/datasets"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/observability"
	"github.com/bayoss/landscape2/internal/render"
)

// stageGenerate merges the collected data, writes the datasets, renders the
// index document and copies the static web assets.
func stageGenerate(ctx context.Context, bs *buildState) error {
	bs.data.AddCrunchbaseData(bs.crunchbaseData)
	bs.data.AddGithubData(bs.githubData)

	ds := datasets.New(bs.data, bs.settings)
	if err := ds.Write(bs.cfg.OutputDir); err != nil {
		return fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	bs.datasets = ds

	tmpl, err := bs.builder.assets.Read(assets.IndexFile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	r, err := render.New(tmpl)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	index, err := r.Index(ds, bs.settings)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	indexPath := filepath.Join(bs.cfg.OutputDir, assets.IndexFile)
	if err := os.WriteFile(indexPath, index, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrGenerate, errors.WrapError(err, errors.CategoryFileSystem, "failed to write index").
			Fatal().
			WithContext("path", indexPath).
			Build())
	}

	n, err := assets.Copy(bs.builder.assets, bs.cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	bs.report.AssetsCopied = n
	observability.DebugContext(ctx, "Web assets copied", logfields.Count(n))
	return nil
}
