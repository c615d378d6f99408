package build

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bayoss/landscape2/internal/landscape"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/logos"
	"github.com/bayoss/landscape2/internal/observability"
	"github.com/bayoss/landscape2/internal/parallel"
)

// stagePrepareLogos resolves every item logo with bounded concurrency and
// writes it to the logos directory named by its digest. Item logo fields are
// only updated after every task finished: the logo reference on success, empty
// on any failure. Failures never abort the build; they are reported as a
// warning listing the degraded items.
func stagePrepareLogos(ctx context.Context, bs *buildState) error {
	limit := bs.cfg.LogoConcurrency
	if limit <= 0 {
		limit = parallel.Budget()
	}
	bs.recorder.SetLogoConcurrency(limit)

	dir := filepath.Join(bs.cfg.OutputDir, logos.Dir)
	resolver, rerr := bs.builder.newLogoResolver(bs.cfg, bs.cache)
	if rerr != nil {
		observability.ErrorContext(ctx, "Logo resolver unavailable", logfields.Error(rerr))
	}

	results := parallel.MapBounded(ctx, bs.data.Items, limit,
		func(it landscape.Item) uuid.UUID { return it.ID },
		func(ctx context.Context, it landscape.Item) (string, error) {
			if rerr != nil {
				return "", rerr
			}
			logo, err := resolver.Resolve(ctx, it.Logo)
			if err != nil {
				return "", err
			}
			if err := writeLogo(dir, logo); err != nil {
				return "", err
			}
			return logo.Ref(), nil
		})

	var degraded []string
	for i := range bs.data.Items {
		item := &bs.data.Items[i]
		r, ok := results[item.ID]
		if ok && r.Err == nil {
			item.Logo = r.Value
			bs.recorder.IncLogoResult(true)
			continue
		}
		err := errNoLogoResult
		if ok {
			err = r.Err
		}
		observability.ErrorContext(ctx, "Error preparing logo",
			logfields.Item(item.Name), logfields.Logo(item.Logo), logfields.Error(err))
		item.Logo = ""
		degraded = append(degraded, item.Name)
		bs.recorder.IncLogoResult(false)
	}

	bs.report.LogosPrepared = len(bs.data.Items) - len(degraded)
	bs.report.DegradedLogos = degraded
	if len(degraded) > 0 {
		observability.WarnContext(ctx, "Some logos could not be prepared",
			logfields.Count(len(degraded)), logfields.Items(degraded))
		return NewWarnStageError(StagePrepareLogos,
			fmt.Errorf("%d of %d logos could not be prepared", len(degraded), len(bs.data.Items)))
	}
	return nil
}

var errNoLogoResult = stdErrors.New("logo task produced no result")

// writeLogo writes the logo through a temporary file and a rename, so tasks
// writing the same digest concurrently never expose a partial file.
func writeLogo(dir string, logo *logos.Logo) error {
	tmp, err := os.CreateTemp(dir, ".logo-*")
	if err != nil {
		return fmt.Errorf("create logo file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(logo.SVG); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write logo file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close logo file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod logo file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, logo.FileName())); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename logo file: %w", err)
	}
	return nil
}
