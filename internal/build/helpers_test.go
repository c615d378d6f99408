package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/bayoss/landscape2/internal/assets"
	"github.com/bayoss/landscape2/internal/cache"
	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/landscape"
	"github.com/bayoss/landscape2/internal/logos"
)

const testData = `
landscape:
  - name: Orchestration
    subcategories:
      - name: Scheduling
        items:
          - name: Kubernetes
            homepage_url: https://kubernetes.io
            logo: kubernetes.svg
            repo_url: https://github.com/kubernetes/kubernetes
            crunchbase: https://www.crunchbase.com/organization/cncf
            project: graduated
          - name: Nomad
            homepage_url: https://nomadproject.io
            logo: nomad.svg
            repo_url: https://github.com/hashicorp/nomad
            crunchbase: https://www.crunchbase.com/organization/hashicorp
          - name: Volcano
            homepage_url: https://volcano.sh
            logo: volcano.svg
  - name: Members
    subcategories:
      - name: Gold
        items:
          - name: HashiCorp
            homepage_url: https://hashicorp.com
            logo: hashicorp.svg
            crunchbase: https://www.crunchbase.com/organization/hashicorp
`

const testSettings = `
foundation: CNCF
url: https://landscape.example.org
description: "The **test** landscape"
members_category: Members
featured_items:
  - field: project
    options:
      - value: graduated
        order: 1
`

var testLogos = map[string]string{
	"kubernetes.svg": `<svg viewBox="0 0 1 1"><circle r="1"/></svg>`,
	"nomad.svg":      `<svg viewBox="0 0 1 1"><rect width="1"/></svg>`,
	"volcano.svg":    `<?xml version="1.0"?><svg viewBox="0 0 1 1"><path d="M0 0"/></svg>`,
	"hashicorp.svg":  `<svg viewBox="0 0 1 1"><rect width="1"/></svg>`, // same content as nomad
}

func testAssets() assets.Provider {
	return assets.FromFS(fstest.MapFS{
		"index.html":     {Data: []byte(`<html><title>{{ .Foundation }}</title><script type="application/json">{{ .Base }}</script></html>`)},
		".keep":          {Data: nil},
		"assets/app.css": {Data: []byte("body{}")},
		"assets/app.js":  {Data: []byte("void 0")},
	})
}

type fixture struct {
	dir string
	cfg *config.BuildConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	logoDir := filepath.Join(dir, "logos")
	require.NoError(t, os.MkdirAll(logoDir, 0o755))
	for name, content := range testLogos {
		require.NoError(t, os.WriteFile(filepath.Join(logoDir, name), []byte(content), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.yml"), []byte(testData), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yml"), []byte(testSettings), 0o600))

	return &fixture{
		dir: dir,
		cfg: &config.BuildConfig{
			DataSource:     filepath.Join(dir, "data.yml"),
			SettingsSource: filepath.Join(dir, "settings.yml"),
			Logos:          config.LogosSource{Path: logoDir},
			CacheDir:       filepath.Join(dir, "cache"),
			OutputDir:      filepath.Join(dir, "out"),
		},
	}
}

func (f *fixture) out(parts ...string) string {
	return filepath.Join(append([]string{f.cfg.OutputDir}, parts...)...)
}

type fakeCrunchbase struct {
	collect func(ctx context.Context, urls []string) (map[string]*landscape.CrunchbaseData, error)
}

func (f fakeCrunchbase) Collect(ctx context.Context, urls []string) (map[string]*landscape.CrunchbaseData, error) {
	if f.collect == nil {
		return map[string]*landscape.CrunchbaseData{}, nil
	}
	return f.collect(ctx, urls)
}

type fakeGithub struct {
	collect func(ctx context.Context, urls []string) (map[string]*landscape.GithubData, error)
}

func (f fakeGithub) Collect(ctx context.Context, urls []string) (map[string]*landscape.GithubData, error) {
	if f.collect == nil {
		return map[string]*landscape.GithubData{}, nil
	}
	return f.collect(ctx, urls)
}

type resolverFunc func(ctx context.Context, ref string) (*logos.Logo, error)

func (f resolverFunc) Resolve(ctx context.Context, ref string) (*logos.Logo, error) {
	return f(ctx, ref)
}

func withFakeCollectors(cb fakeCrunchbase, gh fakeGithub) []Option {
	return []Option{
		WithCrunchbase(func(*config.BuildConfig, cache.Store, string) CrunchbaseCollector { return cb }),
		WithGithub(func(*config.BuildConfig, cache.Store, []string) GithubCollector { return gh }),
	}
}

func newTestBuilder(extra ...Option) *Builder {
	opts := append([]Option{
		WithAssets(testAssets()),
		WithEnv(func(string) (string, bool) { return "", false }),
	}, withFakeCollectors(fakeCrunchbase{}, fakeGithub{})...)
	return New(append(opts, extra...)...)
}
