package landscape

import (
	"context"

	"gopkg.in/yaml.v3"

	"github.com/bayoss/landscape2/internal/foundation/errors"
)

// Featured item rule fields.
const (
	FeaturedFieldProject     = "project"
	FeaturedFieldSubcategory = "subcategory"
	FeaturedFieldCategory    = "category"
)

// Settings configures how the landscape is presented.
type Settings struct {
	Foundation      string             `yaml:"foundation" json:"foundation"`
	URL             string             `yaml:"url" json:"url"`
	Description     string             `yaml:"description" json:"-"`
	MembersCategory string             `yaml:"members_category" json:"members_category,omitempty"`
	FeaturedItems   []FeaturedItemRule `yaml:"featured_items" json:"-"`
	Colors          *Colors            `yaml:"colors" json:"colors,omitempty"`
}

// FeaturedItemRule marks items featured when Field matches one of the options.
type FeaturedItemRule struct {
	Field   string                   `yaml:"field"`
	Options []FeaturedItemRuleOption `yaml:"options"`
}

// FeaturedItemRuleOption is one value of a featured rule.
type FeaturedItemRuleOption struct {
	Value string `yaml:"value"`
	Order *int   `yaml:"order"`
	Label string `yaml:"label"`
}

// Colors are the theme colors used by the web application.
type Colors struct {
	Color1 string `yaml:"color1" json:"color1,omitempty"`
	Color2 string `yaml:"color2" json:"color2,omitempty"`
	Color3 string `yaml:"color3" json:"color3,omitempty"`
	Color4 string `yaml:"color4" json:"color4,omitempty"`
	Color5 string `yaml:"color5" json:"color5,omitempty"`
}

// LoadSettings fetches and parses the settings file at ref.
func LoadSettings(ctx context.Context, f Fetcher, ref string) (*Settings, error) {
	raw, err := f.Get(ctx, ref)
	if err != nil {
		return nil, fetchError(err, "failed to read landscape settings", ref)
	}
	return ParseSettings(raw)
}

// ParseSettings parses and validates settings YAML.
func ParseSettings(raw []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid landscape settings").Fatal().Build()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the required settings.
func (s *Settings) Validate() error {
	if s.Foundation == "" {
		return errors.ValidationError("settings: foundation is required").Build()
	}
	if s.URL == "" {
		return errors.ValidationError("settings: url is required").Build()
	}
	return nil
}
