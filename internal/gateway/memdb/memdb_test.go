package memdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
)

func TestStoreCRUDAndWatch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := New()
	feed, err := s.Watch(ctx, "orders")
	require.NoError(t, err)
	defer feed.Stop()

	first, err := feed.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, first)

	id, err := s.Add(ctx, "orders", map[string]any{"status": "pending", "total": 10})
	require.NoError(t, err)
	snap, err := feed.Next(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, id, snap[0].ID)
	assert.Contains(t, snap[0].Fields, "createdAt")

	require.NoError(t, s.Merge(ctx, "orders", id, map[string]any{"status": "delivered"}))
	snap, err = feed.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "delivered", snap[0].Fields["status"])
	assert.Equal(t, 10, snap[0].Fields["total"])

	require.ErrorIs(t, s.Merge(ctx, "orders", "missing", map[string]any{"a": 1}), gateway.ErrNotFound)
	require.ErrorIs(t, s.Remove(ctx, "orders", "missing"), gateway.ErrNotFound)

	require.NoError(t, s.Remove(ctx, "orders", id))
	snap, err = feed.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
	assert.Equal(t, 0, s.Len("orders"))
}

func TestWatchUnregistersOnStop(t *testing.T) {
	t.Parallel()

	s := New()
	feed, err := s.Watch(context.Background(), "products")
	require.NoError(t, err)
	feed.Stop()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.subs["products"]) == 0
	}, time.Second, 5*time.Millisecond)

	_, err = feed.Next(context.Background())
	require.ErrorIs(t, err, gateway.ErrFeedClosed)
}
