// Package gateway is the storefront's view of the remote document store:
// ordered live snapshots per collection plus create, merge-update and
// delete by id. Backends live in subpackages.
package gateway

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("document not found")
	ErrFeedClosed = errors.New("feed closed")
)

const (
	Products  = "products"
	Orders    = "orders"
	Feedbacks = "feedbacks"
)

// Patch is a partial update. Only the returned fields are merged.
type Patch interface {
	Fields() map[string]any
}

type Collection[T any] interface {
	Subscribe(ctx context.Context) (*Feed[T], error)
	Create(ctx context.Context, doc T) (string, error)
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
}

// Document is a stored document in its untyped form. Fields never carry
// the id.
type Document struct {
	ID     string
	Fields map[string]any
}

// Backend stores untyped documents. Add stamps createdAt with the store's
// clock.
type Backend interface {
	Watch(ctx context.Context, collection string) (*Feed[Document], error)
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Merge(ctx context.Context, collection, id string, fields map[string]any) error
	Remove(ctx context.Context, collection, id string) error
}
