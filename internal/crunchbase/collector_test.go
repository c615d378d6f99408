package crunchbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayoss/landscape2/internal/cache"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/httpapi"
	"github.com/bayoss/landscape2/internal/landscape"
	"github.com/bayoss/landscape2/internal/retry"
)

const (
	acmeURL  = "https://www.crunchbase.com/organization/acme"
	otherURL = "https://www.crunchbase.com/organization/other"
)

func newServer(t *testing.T, hits *atomic.Int32, status map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("user_key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		permalink := strings.TrimPrefix(r.URL.Path, "/entities/organizations/")
		if code, ok := status[permalink]; ok {
			w.WriteHeader(code)
			return
		}
		_, _ = w.Write([]byte(`{"properties":{
			"name":"` + permalink + `",
			"short_description":"Builds things",
			"website_url":{"value":"https://` + permalink + `.io"},
			"location_identifiers":[{"location_type":"city","value":"Berlin"},{"location_type":"country","value":"Germany"}],
			"num_employees_enum":"c_00101_00250",
			"funding_total":{"value_usd":1500000},
			"categories":[{"value":"Software"}]
		}}`))
	}))
}

func newCollector(srv *httptest.Server, store cache.Store, key string) *Collector {
	return New(store, key, WithClient(httpapi.New(srv.URL, httpapi.WithRetry(retry.NoRetry()))))
}

func TestPermalink(t *testing.T) {
	p, ok := Permalink("https://www.crunchbase.com/organization/cloud-native-computing-foundation")
	assert.True(t, ok)
	assert.Equal(t, "cloud-native-computing-foundation", p)

	_, ok = Permalink("https://example.com/organization/x")
	assert.False(t, ok)
}

func TestCollectFetchesAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits, nil)
	defer srv.Close()

	store := cache.NewMemory()
	c := newCollector(srv, store, "key")

	data, err := c.Collect(context.Background(), []string{acmeURL})
	require.NoError(t, err)
	require.Contains(t, data, acmeURL)

	org := data[acmeURL]
	assert.Equal(t, "acme", org.Name)
	assert.Equal(t, "https://acme.io", org.HomepageURL)
	assert.Equal(t, "Berlin", org.City)
	assert.Equal(t, "Germany", org.Country)
	require.NotNil(t, org.NumEmployeesMin)
	assert.Equal(t, int64(101), *org.NumEmployeesMin)
	assert.Equal(t, int64(250), *org.NumEmployeesMax)
	assert.Equal(t, int64(1500000), *org.Funding)
	assert.Equal(t, []string{"Software"}, org.Categories)

	_, err = c.Collect(context.Background(), []string{acmeURL})
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second collection served from cache")
}

func TestCollectWithoutKeyUsesCacheOnly(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits, nil)
	defer srv.Close()

	store := cache.NewMemory()
	raw, err := json.Marshal(&landscape.CrunchbaseData{Name: "Acme"})
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), cacheKeyPrefix+acmeURL, raw))

	data, err := newCollector(srv, store, "").Collect(context.Background(), []string{acmeURL, otherURL})
	require.NoError(t, err)
	assert.Len(t, data, 1)
	assert.Equal(t, "Acme", data[acmeURL].Name)
	assert.Equal(t, int32(0), hits.Load())
}

func TestCollectSkipsFailedOrganizations(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits, map[string]int{"other": http.StatusNotFound})
	defer srv.Close()

	data, err := newCollector(srv, nil, "key").Collect(context.Background(),
		[]string{acmeURL, otherURL, "https://example.com/not-crunchbase"})
	require.NoError(t, err)
	assert.Len(t, data, 1)
	assert.Contains(t, data, acmeURL)
}

func TestCollectAuthFailureIsFatal(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits, nil)
	defer srv.Close()

	_, err := newCollector(srv, nil, "wrong").Collect(context.Background(), []string{acmeURL})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryAuth))
	assert.True(t, errors.HasSeverity(err, errors.SeverityFatal))
}

func TestCollectCancelled(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits, nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newCollector(srv, nil, "key").Collect(ctx, []string{acmeURL})
	require.ErrorIs(t, err, context.Canceled)
}
