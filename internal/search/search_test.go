package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharma_ruche/internal/catalog"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
)

type fakeES struct {
	mu    sync.Mutex
	bulks []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bulks = append(f.bulks, string(body))
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"took":1,"errors":false,"items":[]}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_id":"PR-SDR-250","_source":{"name":{"ar":"","fr":"Miel de Jujubier","en":"Sidr"},"price":4500,"category":"Honey"}}]}}`)
	default:
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	}
}

func newElastic(t *testing.T) (*Elastic, *fakeES) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewElastic(es, "products"), fake
}

func TestElasticSyncDeletesStale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e, fake := newElastic(t)

	require.NoError(t, e.Sync(ctx, catalog.InitialProducts))
	require.NoError(t, e.Sync(ctx, catalog.InitialProducts[:1]))

	require.Len(t, fake.bulks, 2)
	assert.Equal(t, 6, strings.Count(fake.bulks[0], "\n"))
	assert.Contains(t, fake.bulks[1], `"delete":{"_id":"PR-SDR-250"`)
	assert.Contains(t, fake.bulks[1], `"delete":{"_id":"PR-POL-100"`)

	require.NoError(t, e.Sync(ctx, nil))
	require.NoError(t, e.Sync(ctx, nil))
	assert.Len(t, fake.bulks, 3)
}

func TestElasticSearch(t *testing.T) {
	t.Parallel()

	e, _ := newElastic(t)
	total, prods, err := e.Search(context.Background(), "jujubier", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, prods, 1)
	assert.Equal(t, "PR-SDR-250", prods[0].ID)
	assert.Equal(t, int64(4500), prods[0].Price)
}

func TestLocalSearch(t *testing.T) {
	t.Parallel()

	s := Local{Products: func() []models.Product { return catalog.InitialProducts }}
	cases := []struct {
		q    string
		want []string
	}{
		{"HONEY", []string{"PR-EUC-500", "PR-SDR-250"}},
		{"pollen", []string{"PR-POL-100"}},
		{"عسل", []string{"PR-EUC-500", "PR-SDR-250"}},
		{"supplements", []string{"PR-POL-100"}},
		{"", []string{"PR-EUC-500", "PR-SDR-250", "PR-POL-100"}},
		{"caviar", nil},
	}
	for _, tc := range cases {
		total, prods, err := s.Search(context.Background(), tc.q, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(len(tc.want)), total, tc.q)
		var ids []string
		for _, p := range prods {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, tc.want, ids, tc.q)
	}

	total, prods, err := s.Search(context.Background(), "", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, prods, 1)
	_, prods, err = s.Search(context.Background(), "", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, prods)
}

type failing struct{}

func (failing) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	return 0, nil, errors.New("cluster red")
}

func TestFallback(t *testing.T) {
	t.Parallel()

	s := Fallback{Primary: failing{}, Secondary: Local{Products: func() []models.Product { return catalog.InitialProducts }}}
	total, _, err := s.Search(context.Background(), "pollen", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestIndexedDocumentShape(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(catalog.InitialProducts[0])
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Contains(t, doc, "name")
	assert.Contains(t, doc["name"], "fr")
}
