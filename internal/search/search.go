// Package search finds products by text.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

// Elastic keeps an index in step with the product catalog.
type Elastic struct {
	ES    *elasticsearch.Client
	Index string

	mu      sync.Mutex
	indexed map[string]struct{}
}

func NewElastic(es *elasticsearch.Client, index string) *Elastic {
	return &Elastic{ES: es, Index: index, indexed: map[string]struct{}{}}
}

// Sync indexes every product and deletes ones no longer present.
func (e *Elastic) Sync(ctx context.Context, products []models.Product) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	current := make(map[string]struct{}, len(products))
	for _, p := range products {
		current[p.ID] = struct{}{}
		if err := enc.Encode(map[string]any{"index": map[string]any{"_index": e.Index, "_id": p.ID}}); err != nil {
			return err
		}
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	for id := range e.indexed {
		if _, ok := current[id]; ok {
			continue
		}
		if err := enc.Encode(map[string]any{"delete": map[string]any{"_index": e.Index, "_id": id}}); err != nil {
			return err
		}
	}
	if buf.Len() == 0 {
		return nil
	}

	res, err := e.ES.Bulk(
		bytes.NewReader(buf.Bytes()),
		e.ES.Bulk.WithContext(ctx),
		e.ES.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("bulk index %s: %s", res.Status(), body)
	}

	var r struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("bulk index response: %w", err)
	}
	if r.Errors {
		return fmt.Errorf("bulk index: some items failed")
	}

	e.indexed = current
	return nil
}

// SyncHook adapts Sync to a live view snapshot hook.
func (e *Elastic) SyncHook(ctx context.Context, products []models.Product) {
	if err := e.Sync(ctx, products); err != nil {
		logging.FromContext(ctx).Warn("search_sync_failed", "error", err)
	}
}

func (e *Elastic) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name.*^2", "description.*", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}

	res, err := e.ES.Search(
		e.ES.Search.WithContext(ctx),
		e.ES.Search.WithIndex(e.Index),
		e.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string         `json:"_id"`
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
		if prods[i].ID == "" {
			prods[i].ID = hit.ID
		}
	}
	return r.Hits.Total.Value, prods, nil
}

// Local searches an in-memory product list with case-insensitive
// substring matching.
type Local struct {
	Products func() []models.Product
}

func (s Local) Search(_ context.Context, query string, from, size int) (int64, []models.Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	var hits []models.Product
	for _, p := range s.Products() {
		if q == "" || matches(p, q) {
			hits = append(hits, p)
		}
	}
	total := int64(len(hits))
	if from >= len(hits) {
		return total, []models.Product{}, nil
	}
	end := min(from+size, len(hits))
	return total, hits[from:end], nil
}

func matches(p models.Product, q string) bool {
	for _, s := range []string{
		p.Name.AR, p.Name.FR, p.Name.EN,
		p.Description.AR, p.Description.FR, p.Description.EN,
		p.Category,
	} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// Fallback tries Primary and answers from Secondary when it fails.
type Fallback struct {
	Primary   Searcher
	Secondary Searcher
}

func (f Fallback) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	total, prods, err := f.Primary.Search(ctx, query, from, size)
	if err == nil {
		return total, prods, nil
	}
	logging.FromContext(ctx).Warn("search_fallback", "error", err)
	return f.Secondary.Search(ctx, query, from, size)
}
