package build

import (
	"context"
	"fmt"

	"github.com/bayoss/landscape2/internal/landscape"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/observability"
)

func stageLoad(ctx context.Context, bs *buildState) error {
	data, err := landscape.LoadData(ctx, bs.fetcher, bs.cfg.DataSource)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	settings, err := landscape.LoadSettings(ctx, bs.fetcher, bs.cfg.SettingsSource)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	bs.data = data
	bs.settings = settings
	bs.report.Items = len(data.Items)
	observability.InfoContext(ctx, "Landscape loaded", logfields.Count(len(data.Items)))
	return nil
}

func stageEnrich(_ context.Context, bs *buildState) error {
	if err := bs.data.AddFeaturedItemsData(bs.settings); err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if err := bs.data.AddMemberSubcategory(bs.settings.MembersCategory); err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return nil
}
