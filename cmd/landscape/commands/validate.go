package commands

import (
	"context"
	"fmt"

	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/landscape"
	"github.com/bayoss/landscape2/internal/source"
)

// ValidateCmd implements the 'validate' command: it loads and checks the
// data and settings files without building anything.
type ValidateCmd struct {
	DataSource     string `name:"data" help:"Landscape data file (path or URL)"`
	SettingsSource string `name:"settings" help:"Landscape settings file (path or URL)"`
}

func (v *ValidateCmd) Run(_ *Global, _ *CLI) error {
	if v.DataSource == "" && v.SettingsSource == "" {
		return errors.ConfigError("nothing to validate: pass --data and/or --settings").Build()
	}
	n, err := validate(context.Background(), source.New(nil), v.DataSource, v.SettingsSource)
	if err != nil {
		return err
	}
	if v.DataSource != "" {
		fmt.Printf("Landscape data is valid (%d items)\n", n)
	}
	if v.SettingsSource != "" {
		fmt.Println("Landscape settings are valid")
	}
	return nil
}

// validate loads the given inputs and applies the settings to the data, the
// way a build would. It returns the number of items.
func validate(ctx context.Context, f landscape.Fetcher, dataRef, settingsRef string) (int, error) {
	var (
		data     *landscape.Data
		settings *landscape.Settings
		err      error
	)
	if dataRef != "" {
		if data, err = landscape.LoadData(ctx, f, dataRef); err != nil {
			return 0, err
		}
	}
	if settingsRef != "" {
		if settings, err = landscape.LoadSettings(ctx, f, settingsRef); err != nil {
			return 0, err
		}
	}
	if data == nil {
		return 0, nil
	}
	if settings != nil {
		if err := data.AddFeaturedItemsData(settings); err != nil {
			return 0, err
		}
		if err := data.AddMemberSubcategory(settings.MembersCategory); err != nil {
			return 0, err
		}
	}
	return len(data.Items), nil
}
