package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/internal/gateway/memdb"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
)

func runService(t *testing.T) (*Service, *memdb.Store) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := memdb.New()
	svc := NewService(gateway.NewCollections(store).Products)
	go func() { _ = svc.View.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, svc.View.WaitReady(waitCtx))
	return svc, store
}

func waitLen(t *testing.T, svc *Service, n int) []models.Product {
	t.Helper()
	var list []models.Product
	require.Eventually(t, func() bool {
		list = svc.List()
		return len(list) == n
	}, 2*time.Second, 5*time.Millisecond)
	return list
}

func TestListFallsBackBeforeFirstSnapshot(t *testing.T) {
	t.Parallel()

	svc := NewService(gateway.NewCollections(memdb.New()).Products)
	list := svc.List()
	require.Len(t, list, 3)
	assert.Equal(t, "PR-EUC-500", list[0].ID)

	p, err := svc.Get("PR-POL-100")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), p.Price)
}

func TestListUsesCachedProductsBeforeFirstSnapshot(t *testing.T) {
	t.Parallel()

	svc := NewService(gateway.NewCollections(memdb.New()).Products)
	svc.View.SetFallback([]models.Product{{ID: "cached", Name: models.I18nText{EN: "Miel"}, Price: 900}})

	list := svc.List()
	require.Len(t, list, 1)
	assert.Equal(t, "cached", list[0].ID)
	assert.Equal(t, models.DefaultCategory, list[0].Category)
	assert.Equal(t, PlaceholderImage, list[0].Image)

	_, err := svc.Get("PR-POL-100")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got := Normalize(models.Product{Price: -2500, Image: "  ", Category: ""})
	assert.Equal(t, int64(2500), got.Price)
	assert.Equal(t, PlaceholderImage, got.Image)
	assert.Equal(t, models.DefaultCategory, got.Category)

	img, cat, price := "", " ", int64(-7)
	patch := NormalizePatch(models.ProductPatch{Image: &img, Category: &cat, Price: &price})
	assert.Equal(t, PlaceholderImage, *patch.Image)
	assert.Equal(t, models.DefaultCategory, *patch.Category)
	assert.Equal(t, int64(7), *patch.Price)
	assert.Equal(t, "", img)
}

func TestCRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := runService(t)
	assert.Empty(t, svc.List())

	_, err := svc.Create(ctx, models.Product{Price: 10})
	require.ErrorIs(t, err, ErrValidation)

	p, err := svc.Create(ctx, models.Product{Name: models.I18nText{FR: "Propolis"}, Price: -900, Category: "Hive Products"})
	require.NoError(t, err)
	assert.Equal(t, int64(900), p.Price)
	assert.Equal(t, PlaceholderImage, p.Image)

	list := waitLen(t, svc, 1)
	assert.Equal(t, p.ID, list[0].ID)

	price := int64(950)
	require.NoError(t, svc.Patch(ctx, p.ID, models.ProductPatch{Price: &price}))
	require.Eventually(t, func() bool {
		got, err := svc.Get(p.ID)
		return err == nil && got.Price == 950 && got.Category == "Hive Products"
	}, 2*time.Second, 5*time.Millisecond)

	require.ErrorIs(t, svc.Patch(ctx, p.ID, models.ProductPatch{}), ErrValidation)
	require.ErrorIs(t, svc.Patch(ctx, "missing", models.ProductPatch{Price: &price}), ErrNotFound)
	blank := models.I18nText{}
	require.ErrorIs(t, svc.Patch(ctx, p.ID, models.ProductPatch{Name: &blank}), ErrValidation)

	require.NoError(t, svc.Delete(ctx, p.ID))
	require.ErrorIs(t, svc.Delete(ctx, p.ID), ErrNotFound)
	waitLen(t, svc, 0)
	_, err = svc.Get(p.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSeedIfEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	unloaded := NewService(gateway.NewCollections(memdb.New()).Products)
	n, err := unloaded.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	svc, store := runService(t)
	n, err = svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, store.Len(gateway.Products))

	list := waitLen(t, svc, 3)
	assert.Equal(t, []int64{1200, 2800, 4500}, []int64{list[0].Price, list[1].Price, list[2].Price})

	n, err = svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeedIfEmptyConcurrentCallsSeedOnce(t *testing.T) {
	t.Parallel()

	svc, store := runService(t)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SeedIfEmpty(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, store.Len(gateway.Products))
}
