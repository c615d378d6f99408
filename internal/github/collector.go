// Package github collects repository data for the items of a landscape from
// the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"sync/atomic"

	"github.com/bayoss/landscape2/internal/cache"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/httpapi"
	"github.com/bayoss/landscape2/internal/landscape"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/observability"
	"github.com/bayoss/landscape2/internal/parallel"
)

// Name identifies the collector in logs and metrics.
const Name = "github"

// DefaultAPIURL is the GitHub REST API root.
const DefaultAPIURL = "https://api.github.com"

const cacheKeyPrefix = "github:"

var repoURL = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// Collector fetches repositories, spreading requests over the configured
// tokens round-robin with one request in flight per token.
type Collector struct {
	client *httpapi.Client
	store  cache.Store
	tokens []string
	next   atomic.Uint64
}

// Option customizes a Collector.
type Option func(*Collector)

// WithClient replaces the API client.
func WithClient(c *httpapi.Client) Option {
	return func(col *Collector) { col.client = c }
}

// New creates a collector. tokens may be empty.
func New(store cache.Store, tokens []string, opts ...Option) *Collector {
	c := &Collector{store: store, tokens: tokens}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = httpapi.New(DefaultAPIURL,
			httpapi.WithHeader("Accept", "application/vnd.github+json"),
			httpapi.WithHeader("X-GitHub-Api-Version", "2022-11-28"))
	}
	return c
}

// ParseRepoURL splits a GitHub repository URL into owner and name.
func ParseRepoURL(u string) (owner, repo string, ok bool) {
	m := repoURL.FindStringSubmatch(u)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// Collect returns repository data keyed by repository URL. Repositories that
// cannot be fetched are logged and left out; invalid credentials fail the
// whole collection.
func (c *Collector) Collect(ctx context.Context, urls []string) (map[string]*landscape.GithubData, error) {
	ctx = observability.WithCollector(ctx, Name)
	out := make(map[string]*landscape.GithubData, len(urls))

	var pending []string
	for _, u := range urls {
		if _, _, ok := ParseRepoURL(u); !ok {
			observability.DebugContext(ctx, "Ignoring non GitHub repository", logfields.URL(u))
			continue
		}
		if data, ok := c.cached(ctx, u); ok {
			out[u] = data
			continue
		}
		pending = append(pending, u)
	}

	if len(pending) == 0 {
		return out, nil
	}
	if len(c.tokens) == 0 {
		observability.WarnContext(ctx, "GitHub tokens not provided, using cached data only",
			logfields.Count(len(pending)))
		return out, nil
	}

	results := parallel.MapBounded(ctx, pending, len(c.tokens),
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
		if httpapi.StatusCode(r.Err) == http.StatusUnauthorized {
			return nil, errors.WrapError(r.Err, errors.CategoryAuth, "github authentication failed").
				Fatal().
				Build()
		}
		observability.WarnContext(ctx, "Skipping repository", logfields.URL(u), logfields.Error(r.Err))
	}
	return out, nil
}

func (c *Collector) token() string {
	n := c.next.Add(1) - 1
	return c.tokens[n%uint64(len(c.tokens))]
}

func (c *Collector) cached(ctx context.Context, u string) (*landscape.GithubData, bool) {
	if c.store == nil {
		return nil, false
	}
	raw, ok, err := c.store.Get(ctx, cacheKeyPrefix+u)
	if err != nil || !ok {
		return nil, false
	}
	var data landscape.GithubData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false
	}
	return &data, true
}

func (c *Collector) fetch(ctx context.Context, u string) (*landscape.GithubData, error) {
	owner, name, _ := ParseRepoURL(u)
	token := c.token()

	var repo repository
	if err := c.get(ctx, "/repos/"+owner+"/"+name, token, &repo); err != nil {
		return nil, err
	}
	var languages map[string]int64
	if err := c.get(ctx, "/repos/"+owner+"/"+name+"/languages", token, &languages); err != nil {
		return nil, err
	}

	data := repo.toData(u)
	data.Languages = languages

	if c.store != nil {
		if raw, err := json.Marshal(data); err == nil {
			if err := c.store.Put(ctx, cacheKeyPrefix+u, raw); err != nil {
				observability.WarnContext(ctx, "GitHub cache store failed", logfields.URL(u), logfields.Error(err))
			}
		}
	}
	return data, nil
}

func (c *Collector) get(ctx context.Context, endpoint, token string, out any) error {
	req, err := c.client.NewRequest(ctx, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.client.DoJSON(ctx, req, out)
}
