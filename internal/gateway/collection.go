package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

// Spec names a collection and its snapshot order. Fix, when set, fills
// in defaults on documents read from the store.
type Spec[T any] struct {
	Name string
	Less func(a, b T) bool
	Fix  func(T) T
}

// DocCollection maps T to and from backend documents through JSON.
type DocCollection[T any] struct {
	backend Backend
	spec    Spec[T]
}

func NewCollection[T any](b Backend, spec Spec[T]) *DocCollection[T] {
	return &DocCollection[T]{backend: b, spec: spec}
}

func (c *DocCollection[T]) Name() string {
	return c.spec.Name
}

func (c *DocCollection[T]) Subscribe(ctx context.Context) (*Feed[T], error) {
	feed, fctx := NewFeed[T](ctx)
	raw, err := c.backend.Watch(fctx, c.spec.Name)
	if err != nil {
		feed.Stop()
		return nil, fmt.Errorf("watch %s: %w", c.spec.Name, err)
	}

	go func() {
		defer raw.Stop()
		l := logging.FromContext(fctx).With("collection", c.spec.Name)
		for {
			docs, err := raw.Next(fctx)
			if err != nil {
				if fctx.Err() != nil || errors.Is(err, ErrFeedClosed) {
					return
				}
				l.Warn("feed_error", "error", err)
				feed.Fail(err)
				continue
			}
			feed.Publish(c.decodeAll(fctx, docs))
		}
	}()

	return feed, nil
}

func (c *DocCollection[T]) decodeAll(ctx context.Context, docs []Document) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decode[T](d)
		if err != nil {
			logging.FromContext(ctx).Warn("document_skipped", "collection", c.spec.Name, "id", d.ID, "error", err)
			continue
		}
		if c.spec.Fix != nil {
			v = c.spec.Fix(v)
		}
		out = append(out, v)
	}
	if c.spec.Less != nil {
		sort.SliceStable(out, func(i, j int) bool { return c.spec.Less(out[i], out[j]) })
	}
	return out
}

func (c *DocCollection[T]) Create(ctx context.Context, doc T) (string, error) {
	fields, err := encode(doc)
	if err != nil {
		return "", err
	}
	id, err := c.backend.Add(ctx, c.spec.Name, fields)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", c.spec.Name, err)
	}
	return id, nil
}

func (c *DocCollection[T]) Update(ctx context.Context, id string, patch Patch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	delete(fields, "id")
	if err := c.backend.Merge(ctx, c.spec.Name, id, fields); err != nil {
		return fmt.Errorf("update %s/%s: %w", c.spec.Name, id, err)
	}
	return nil
}

func (c *DocCollection[T]) Delete(ctx context.Context, id string) error {
	if err := c.backend.Remove(ctx, c.spec.Name, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.spec.Name, id, err)
	}
	return nil
}

// encode drops id and createdAt. Both are assigned by the store.
func encode[T any](doc T) (map[string]any, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	delete(fields, "id")
	delete(fields, "createdAt")
	return fields, nil
}

func decode[T any](d Document) (T, error) {
	var v T
	fields := make(map[string]any, len(d.Fields)+1)
	for k, val := range d.Fields {
		fields[k] = val
	}
	fields["id"] = d.ID
	b, err := json.Marshal(fields)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, err
	}
	return v, nil
}
