package logos

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayoss/landscape2/internal/cache"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/httpapi"
	"github.com/bayoss/landscape2/internal/retry"
)

const testSVG = `<svg viewBox="0 0 1 1"><rect/></svg>`

func TestSourceValidate(t *testing.T) {
	assert.Error(t, Source{}.Validate())
	assert.Error(t, Source{Path: "a", URL: "https://x"}.Validate())
	assert.Error(t, Source{URL: "ftp://x"}.Validate())
	assert.NoError(t, Source{Path: "logos"}.Validate())
	assert.NoError(t, Source{URL: "https://x/logos"}.Validate())
}

func TestResolveLocal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.svg"), []byte("<?xml version=\"1.0\"?>\n"+testSVG), 0o600))

	r, err := NewResolver(Source{Path: dir}, cache.NewMemory(), nil)
	require.NoError(t, err)

	logo, err := r.Resolve(context.Background(), "a.svg")
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(testSVG))
	assert.Equal(t, hex.EncodeToString(sum[:]), logo.Digest)
	assert.Equal(t, testSVG, string(logo.SVG))
	assert.Equal(t, "logos/"+logo.Digest+".svg", logo.Ref())
}

func TestResolveLocalErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.svg"), []byte("<html></html>"), 0o600))
	r, err := NewResolver(Source{Path: dir}, nil, nil)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "missing.svg")
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	_, err = r.Resolve(context.Background(), "bad.svg")
	require.ErrorIs(t, err, ErrNotSVG)

	_, err = r.Resolve(context.Background(), "../etc/passwd")
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = r.Resolve(context.Background(), "")
	assert.Error(t, err)
}

func TestResolveRemoteUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/logos/a.svg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(testSVG))
	}))
	defer srv.Close()

	store := cache.NewMemory()
	client := httpapi.New("", httpapi.WithRetry(retry.NoRetry()))
	r, err := NewResolver(Source{URL: srv.URL + "/logos"}, store, client)
	require.NoError(t, err)

	first, err := r.Resolve(context.Background(), "a.svg")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "a.svg")
	require.NoError(t, err)

	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, int32(1), hits.Load(), "second resolve served from cache")
	assert.Equal(t, 1, store.Len())

	_, err = r.Resolve(context.Background(), "missing.svg")
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}
