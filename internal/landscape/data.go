package landscape

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bayoss/landscape2/internal/foundation/errors"
)

// Fetcher reads the content behind a source reference (path or URL).
type Fetcher interface {
	Get(ctx context.Context, ref string) ([]byte, error)
}

// Data is the landscape loaded from the data file. Items keep document order.
type Data struct {
	Categories []Category
	Items      []Item
}

// Category is a top level grouping with its subcategory names in document order.
type Category struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

// Item is one landscape entry. ID is assigned at load time and never changes.
type Item struct {
	ID                uuid.UUID
	Name              string
	Category          string
	Subcategory       string
	HomepageURL       string
	Logo              string
	Description       string
	Project           string
	Twitter           string
	CrunchbaseURL     string
	Repositories      []Repository
	Extra             map[string]any
	Featured          *Featured
	MemberSubcategory string
	CrunchbaseData    *CrunchbaseData
}

// Repository is a code repository attached to an item.
type Repository struct {
	URL        string
	Primary    bool
	GithubData *GithubData
}

// Featured holds the featured rendering hints derived from settings.
type Featured struct {
	Order *int   `json:"order,omitempty"`
	Label string `json:"label,omitempty"`
}

// PrimaryRepositoryURL returns the URL of the primary repository, if any.
func (i *Item) PrimaryRepositoryURL() string {
	for _, r := range i.Repositories {
		if r.Primary {
			return r.URL
		}
	}
	return ""
}

type rawData struct {
	Landscape []rawCategory `yaml:"landscape"`
}

type rawCategory struct {
	Name          string           `yaml:"name"`
	Subcategories []rawSubcategory `yaml:"subcategories"`
}

type rawSubcategory struct {
	Name  string    `yaml:"name"`
	Items []rawItem `yaml:"items"`
}

type rawItem struct {
	Name            string         `yaml:"name"`
	HomepageURL     string         `yaml:"homepage_url"`
	Logo            string         `yaml:"logo"`
	RepoURL         string         `yaml:"repo_url"`
	AdditionalRepos []rawRepo      `yaml:"additional_repos"`
	Crunchbase      string         `yaml:"crunchbase"`
	Description     string         `yaml:"description"`
	Project         string         `yaml:"project"`
	Twitter         string         `yaml:"twitter"`
	Extra           map[string]any `yaml:"extra"`
}

type rawRepo struct {
	RepoURL string `yaml:"repo_url"`
}

// LoadData fetches and parses the landscape data file at ref.
func LoadData(ctx context.Context, f Fetcher, ref string) (*Data, error) {
	raw, err := f.Get(ctx, ref)
	if err != nil {
		return nil, fetchError(err, "failed to read landscape data", ref)
	}
	d, err := ParseData(raw)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// fetchError wraps a failed source read. The cause's category is kept so a
// network failure is not reported as bad input; unclassified causes are
// filesystem errors.
func fetchError(err error, msg, ref string) error {
	category := errors.CategoryFileSystem
	if ce, ok := errors.AsClassified(err); ok {
		category = ce.Category()
	}
	return errors.WrapError(err, category, msg).Fatal().WithContext("source", ref).Build()
}

// ParseData parses landscape data YAML and flattens it into items.
func ParseData(raw []byte) (*Data, error) {
	var doc rawData
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid landscape data").Fatal().Build()
	}

	d := &Data{}
	for ci, rc := range doc.Landscape {
		if rc.Name == "" {
			return nil, invalidData("category name is required", "category_index", ci).Build()
		}
		cat := Category{Name: rc.Name}
		for si, rs := range rc.Subcategories {
			if rs.Name == "" {
				return nil, invalidData("subcategory name is required", "category", rc.Name).
					WithContext("subcategory_index", si).
					Build()
			}
			cat.Subcategories = append(cat.Subcategories, rs.Name)
			for ii, ri := range rs.Items {
				item, err := newItem(rc.Name, rs.Name, ri)
				if err != nil {
					return nil, err.WithContext("item_index", ii).Build()
				}
				d.Items = append(d.Items, item)
			}
		}
		d.Categories = append(d.Categories, cat)
	}
	return d, nil
}

func newItem(category, subcategory string, ri rawItem) (Item, *errors.ErrorBuilder) {
	where := fmt.Sprintf("%s / %s", category, subcategory)
	switch {
	case ri.Name == "":
		return Item{}, invalidData(fmt.Sprintf("item name is required (%s)", where), "subcategory", where)
	case ri.HomepageURL == "":
		return Item{}, invalidData(fmt.Sprintf("item %q: homepage_url is required", ri.Name), "item", ri.Name)
	case ri.Logo == "":
		return Item{}, invalidData(fmt.Sprintf("item %q: logo is required", ri.Name), "item", ri.Name)
	}

	item := Item{
		ID:            uuid.New(),
		Name:          ri.Name,
		Category:      category,
		Subcategory:   subcategory,
		HomepageURL:   ri.HomepageURL,
		Logo:          ri.Logo,
		Description:   ri.Description,
		Project:       ri.Project,
		Twitter:       ri.Twitter,
		CrunchbaseURL: ri.Crunchbase,
		Extra:         ri.Extra,
	}
	if ri.RepoURL != "" {
		item.Repositories = append(item.Repositories, Repository{URL: ri.RepoURL, Primary: true})
	}
	for _, r := range ri.AdditionalRepos {
		if r.RepoURL != "" {
			item.Repositories = append(item.Repositories, Repository{URL: r.RepoURL})
		}
	}
	return item, nil
}

func invalidData(msg, key string, value any) *errors.ErrorBuilder {
	return errors.ValidationError(msg).WithContext(key, value)
}

// Category returns the category with the given name.
func (d *Data) Category(name string) (Category, bool) {
	for _, c := range d.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
