// Package crunchbase collects organization data for the items of a landscape
// from the Crunchbase v4 API.
package crunchbase

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/bayoss/landscape2/internal/cache"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/httpapi"
	"github.com/bayoss/landscape2/internal/landscape"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/observability"
	"github.com/bayoss/landscape2/internal/parallel"
)

// Name identifies the collector in logs and metrics.
const Name = "crunchbase"

// DefaultAPIURL is the Crunchbase v4 API root.
const DefaultAPIURL = "https://api.crunchbase.com/api/v4"

// DefaultConcurrency bounds concurrent organization requests.
const DefaultConcurrency = 4

const cacheKeyPrefix = "crunchbase:"

var orgURL = regexp.MustCompile(`^https?://(?:www\.)?crunchbase\.com/organization/([^/?#]+)/?$`)

var fieldIDs = strings.Join([]string{
	"name", "short_description", "website_url", "location_identifiers", "company_type",
	"linkedin", "twitter", "num_employees_enum", "stock_exchange_symbol", "stock_symbol",
	"funding_total", "categories",
}, ",")

// Collector fetches organizations. Cached entries are always used; uncached
// ones are fetched only when an API key is configured.
type Collector struct {
	client      *httpapi.Client
	store       cache.Store
	apiKey      string
	concurrency int
}

// Option customizes a Collector.
type Option func(*Collector)

// WithClient replaces the API client.
func WithClient(c *httpapi.Client) Option {
	return func(col *Collector) { col.client = c }
}

// WithConcurrency sets the number of concurrent requests.
func WithConcurrency(n int) Option {
	return func(col *Collector) {
		if n > 0 {
			col.concurrency = n
		}
	}
}

// New creates a collector. apiKey may be empty.
func New(store cache.Store, apiKey string, opts ...Option) *Collector {
	c := &Collector{
		store:       store,
		apiKey:      apiKey,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = httpapi.New(DefaultAPIURL)
	}
	return c
}

// Permalink extracts the organization permalink from a Crunchbase URL.
func Permalink(u string) (string, bool) {
	m := orgURL.FindStringSubmatch(u)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Collect returns organization data keyed by Crunchbase URL. Organizations
// that cannot be fetched are logged and left out; an authentication failure
// fails the whole collection.
func (c *Collector) Collect(ctx context.Context, urls []string) (map[string]*landscape.CrunchbaseData, error) {
	ctx = observability.WithCollector(ctx, Name)
	out := make(map[string]*landscape.CrunchbaseData, len(urls))

	var pending []string
	for _, u := range urls {
		if data, ok := c.cached(ctx, u); ok {
			out[u] = data
			continue
		}
		pending = append(pending, u)
	}

	if len(pending) == 0 {
		return out, nil
	}
	if c.apiKey == "" {
		observability.WarnContext(ctx, "Crunchbase API key not provided, using cached data only",
			logfields.Count(len(pending)))
		return out, nil
	}

	results := parallel.MapBounded(ctx, pending, c.concurrency,
		func(u string) string { return u },
		c.fetch)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, u := range pending {
		r := results[u]
		if r.Err == nil {
			out[u] = r.Value
			continue
		}
		if errors.HasCategory(r.Err, errors.CategoryAuth) {
			return nil, errors.WrapError(r.Err, errors.CategoryAuth, "crunchbase authentication failed").
				Fatal().
				Build()
		}
		observability.WarnContext(ctx, "Skipping organization", logfields.URL(u), logfields.Error(r.Err))
	}
	return out, nil
}

func (c *Collector) cached(ctx context.Context, u string) (*landscape.CrunchbaseData, bool) {
	if c.store == nil {
		return nil, false
	}
	raw, ok, err := c.store.Get(ctx, cacheKeyPrefix+u)
	if err != nil || !ok {
		return nil, false
	}
	var data landscape.CrunchbaseData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false
	}
	return &data, true
}

func (c *Collector) fetch(ctx context.Context, u string) (*landscape.CrunchbaseData, error) {
	permalink, ok := Permalink(u)
	if !ok {
		return nil, errors.ValidationError("invalid crunchbase url").
			WithSeverity(errors.SeverityError).
			WithContext("url", u).
			Build()
	}

	req, err := c.client.NewRequest(ctx, "/entities/organizations/"+url.PathEscape(permalink), url.Values{
		"field_ids": {fieldIDs},
		"user_key":  {c.apiKey},
	})
	if err != nil {
		return nil, err
	}

	var resp organizationResponse
	if err := c.client.DoJSON(ctx, req, &resp); err != nil {
		return nil, err
	}
	data := resp.Properties.toData()

	if c.store != nil {
		if raw, err := json.Marshal(data); err == nil {
			if err := c.store.Put(ctx, cacheKeyPrefix+u, raw); err != nil {
				observability.WarnContext(ctx, "Crunchbase cache store failed", logfields.URL(u), logfields.Error(err))
			}
		}
	}
	return data, nil
}
