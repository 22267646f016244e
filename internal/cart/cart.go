// Package cart is the session cart. It is persisted to local storage after
// every change and is not safe for concurrent use.
package cart

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Skotchmaster/pharma_ruche/internal/localstore"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

const StorageKey = "cart"

type Engine struct {
	store localstore.Store
	items []models.CartItem
}

func New(store localstore.Store) *Engine {
	return &Engine{store: store, items: []models.CartItem{}}
}

// Restore loads the cart saved under StorageKey. Missing or corrupt data
// gives an empty cart.
func Restore(ctx context.Context, store localstore.Store) *Engine {
	e := New(store)
	raw, err := store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			logging.FromContext(ctx).Warn("cart_restore_failed", "reason", "read", "error", err)
		}
		return e
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logging.FromContext(ctx).Warn("cart_restore_failed", "reason", "corrupt", "error", err)
		return e
	}
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 || e.index(it.ID) >= 0 {
			continue
		}
		e.items = append(e.items, it)
	}
	return e
}

func (e *Engine) Add(ctx context.Context, p models.Product) {
	if i := e.index(p.ID); i >= 0 {
		e.items[i].Quantity++
	} else {
		e.items = append(e.items, models.CartItem{Product: p, Quantity: 1})
	}
	e.persist(ctx)
}

func (e *Engine) Remove(ctx context.Context, productID string) {
	i := e.index(productID)
	if i < 0 {
		return
	}
	e.items = append(e.items[:i], e.items[i+1:]...)
	e.persist(ctx)
}

// UpdateQuantity adds delta to an entry's quantity, never going below 1.
func (e *Engine) UpdateQuantity(ctx context.Context, productID string, delta int) {
	i := e.index(productID)
	if i < 0 {
		return
	}
	e.items[i].Quantity = max(1, e.items[i].Quantity+delta)
	e.persist(ctx)
}

func (e *Engine) Clear(ctx context.Context) {
	e.items = []models.CartItem{}
	e.persist(ctx)
}

// Items returns a copy in insertion order.
func (e *Engine) Items() []models.CartItem {
	out := make([]models.CartItem, len(e.items))
	copy(out, e.items)
	return out
}

func (e *Engine) Total() int64 {
	return Total(e.items)
}

// Count is the number of units, as shown on the cart badge.
func (e *Engine) Count() int {
	n := 0
	for _, it := range e.items {
		n += it.Quantity
	}
	return n
}

func (e *Engine) IsEmpty() bool {
	return len(e.items) == 0
}

func Total(items []models.CartItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.LineTotal()
	}
	return sum
}

func (e *Engine) index(productID string) int {
	for i := range e.items {
		if e.items[i].ID == productID {
			return i
		}
	}
	return -1
}

// persist logs write failures and keeps the in-memory state.
func (e *Engine) persist(ctx context.Context) {
	data, err := json.Marshal(e.items)
	if err != nil {
		logging.FromContext(ctx).Error("cart_persist_failed", "reason", "encode", "error", err)
		return
	}
	if err := e.store.Set(ctx, StorageKey, string(data)); err != nil {
		logging.FromContext(ctx).Warn("cart_persist_failed", "reason", "write", "error", err)
	}
}
