// Package catalog manages products on top of the products collection.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("product not found")
)

type Service struct {
	Products gateway.Collection[models.Product]
	View     *gateway.LiveView[models.Product]

	seedMu sync.Mutex
	seeded bool
}

func NewService(products gateway.Collection[models.Product]) *Service {
	return &Service{
		Products: products,
		View:     gateway.NewLiveView(products),
	}
}

// List returns the live catalog ordered by price. Before the first
// snapshot, and while the feed is failing without one, it returns the
// view fallback (products cached by an earlier run) or InitialProducts.
func (s *Service) List() []models.Product {
	snap, loaded := s.View.Snapshot()
	if loaded {
		return snap
	}
	if len(snap) > 0 {
		out := make([]models.Product, 0, len(snap))
		for _, p := range snap {
			out = append(out, Normalize(p))
		}
		return out
	}
	out := make([]models.Product, len(InitialProducts))
	copy(out, InitialProducts)
	return out
}

func (s *Service) Get(id string) (models.Product, error) {
	for _, p := range s.List() {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Normalize applies the product form defaults.
func Normalize(p models.Product) models.Product {
	p.Image = strings.TrimSpace(p.Image)
	if p.Image == "" {
		p.Image = PlaceholderImage
	}
	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		p.Category = models.DefaultCategory
	}
	if p.Price < 0 {
		p.Price = -p.Price
	}
	return p
}

func NormalizePatch(p models.ProductPatch) models.ProductPatch {
	if p.Image != nil {
		img := strings.TrimSpace(*p.Image)
		if img == "" {
			img = PlaceholderImage
		}
		p.Image = &img
	}
	if p.Category != nil {
		cat := strings.TrimSpace(*p.Category)
		if cat == "" {
			cat = models.DefaultCategory
		}
		p.Category = &cat
	}
	if p.Price != nil && *p.Price < 0 {
		price := -*p.Price
		p.Price = &price
	}
	return p
}

func (s *Service) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if p.Name.IsZero() {
		return models.Product{}, fmt.Errorf("%w: name required", ErrValidation)
	}
	p = Normalize(p)
	id, err := s.Products.Create(ctx, p)
	if err != nil {
		return models.Product{}, err
	}
	p.ID = id
	logging.FromContext(ctx).Info("product_created", "product_id", id, "price", p.Price)
	return p, nil
}

func (s *Service) Patch(ctx context.Context, id string, patch models.ProductPatch) error {
	if patch.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if patch.Name != nil && patch.Name.IsZero() {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if err := s.Products.Update(ctx, id, NormalizePatch(patch)); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return nil
}

// SeedIfEmpty creates InitialProducts when the live catalog has loaded and
// is empty. It seeds at most once per Service and returns how many
// products were created.
func (s *Service) SeedIfEmpty(ctx context.Context) (int, error) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	if s.seeded {
		return 0, nil
	}
	snap, loaded := s.View.Snapshot()
	if !loaded {
		return 0, nil
	}
	if len(snap) > 0 {
		s.seeded = true
		return 0, nil
	}

	n := 0
	for _, p := range InitialProducts {
		if _, err := s.Products.Create(ctx, p); err != nil {
			return n, fmt.Errorf("seed %s: %w", p.ID, err)
		}
		n++
	}
	s.seeded = true
	logging.FromContext(ctx).Info("catalog_seeded", "count", n)
	return n, nil
}
