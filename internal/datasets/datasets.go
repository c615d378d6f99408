// Package datasets builds the JSON views of a landscape consumed by the web
// application: base (embedded in the index document and written to
// data/base.json) and full (data/full.json).
package datasets

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/landscape"
)

// Dir is the datasets directory inside the output tree.
const Dir = "data"

// File names inside Dir.
const (
	BaseFile = "base.json"
	FullFile = "full.json"
)

// Datasets groups the generated views.
type Datasets struct {
	Base *Base
	Full *Full
}

// Base is the lightweight view needed to render the landscape.
type Base struct {
	Foundation      string               `json:"foundation"`
	URL             string               `json:"url"`
	MembersCategory string               `json:"members_category,omitempty"`
	Colors          *landscape.Colors    `json:"colors,omitempty"`
	Categories      []landscape.Category `json:"categories"`
	Items           []BaseItem           `json:"items"`
}

// BaseItem is the per-item part of Base.
type BaseItem struct {
	ID                uuid.UUID           `json:"id"`
	Name              string              `json:"name"`
	NormalizedName    string              `json:"normalized_name"`
	Category          string              `json:"category"`
	Subcategory       string              `json:"subcategory"`
	Logo              string              `json:"logo"`
	Project           string              `json:"project,omitempty"`
	Featured          *landscape.Featured `json:"featured,omitempty"`
	MemberSubcategory string              `json:"member_subcategory,omitempty"`
}

// Full carries every item with its collected data.
type Full struct {
	Items []FullItem `json:"items"`
}

// FullItem is the per-item part of Full.
type FullItem struct {
	ID                uuid.UUID                 `json:"id"`
	Name              string                    `json:"name"`
	Category          string                    `json:"category"`
	Subcategory       string                    `json:"subcategory"`
	HomepageURL       string                    `json:"homepage_url"`
	Logo              string                    `json:"logo"`
	Description       string                    `json:"description,omitempty"`
	Project           string                    `json:"project,omitempty"`
	Twitter           string                    `json:"twitter_url,omitempty"`
	CrunchbaseURL     string                    `json:"crunchbase_url,omitempty"`
	CrunchbaseData    *landscape.CrunchbaseData `json:"crunchbase_data,omitempty"`
	Repositories      []Repository              `json:"repositories,omitempty"`
	Featured          *landscape.Featured       `json:"featured,omitempty"`
	MemberSubcategory string                    `json:"member_subcategory,omitempty"`
	Extra             map[string]any            `json:"extra,omitempty"`
}

// Repository is a repository of a FullItem.
type Repository struct {
	URL        string                `json:"url"`
	Primary    bool                  `json:"primary,omitempty"`
	GithubData *landscape.GithubData `json:"github_data,omitempty"`
}

// New builds both views. Item order follows d.Items.
func New(d *landscape.Data, s *landscape.Settings) *Datasets {
	fold := cases.Fold()

	base := &Base{
		Foundation:      s.Foundation,
		URL:             s.URL,
		MembersCategory: s.MembersCategory,
		Colors:          s.Colors,
		Categories:      d.Categories,
		Items:           make([]BaseItem, 0, len(d.Items)),
	}
	full := &Full{Items: make([]FullItem, 0, len(d.Items))}

	for _, it := range d.Items {
		base.Items = append(base.Items, BaseItem{
			ID:                it.ID,
			Name:              it.Name,
			NormalizedName:    fold.String(it.Name),
			Category:          it.Category,
			Subcategory:       it.Subcategory,
			Logo:              it.Logo,
			Project:           it.Project,
			Featured:          it.Featured,
			MemberSubcategory: it.MemberSubcategory,
		})

		fi := FullItem{
			ID:                it.ID,
			Name:              it.Name,
			Category:          it.Category,
			Subcategory:       it.Subcategory,
			HomepageURL:       it.HomepageURL,
			Logo:              it.Logo,
			Description:       it.Description,
			Project:           it.Project,
			Twitter:           it.Twitter,
			CrunchbaseURL:     it.CrunchbaseURL,
			CrunchbaseData:    it.CrunchbaseData,
			Featured:          it.Featured,
			MemberSubcategory: it.MemberSubcategory,
			Extra:             it.Extra,
		}
		for _, r := range it.Repositories {
			fi.Repositories = append(fi.Repositories, Repository{URL: r.URL, Primary: r.Primary, GithubData: r.GithubData})
		}
		full.Items = append(full.Items, fi)
	}

	return &Datasets{Base: base, Full: full}
}

// Write stores base.json and full.json in outputDir/data.
func (ds *Datasets) Write(outputDir string) error {
	dir := filepath.Join(outputDir, Dir)
	for _, f := range []struct {
		name string
		v    any
	}{{BaseFile, ds.Base}, {FullFile, ds.Full}} {
		name, v := f.name, f.v
		raw, err := json.Marshal(v)
		if err != nil {
			return errors.WrapError(err, errors.CategoryBuild, "failed to encode dataset").
				WithContext("dataset", name).
				Build()
		}
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, raw, 0o644); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write dataset").
				Fatal().
				WithContext("path", p).
				Build()
		}
	}
	return nil
}
