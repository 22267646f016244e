// Package session holds the per-visitor storefront state: language, cart,
// panel flags and the order awaiting feedback.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Skotchmaster/pharma_ruche/internal/cart"
	"github.com/Skotchmaster/pharma_ruche/internal/feedback"
	"github.com/Skotchmaster/pharma_ruche/internal/i18n"
	"github.com/Skotchmaster/pharma_ruche/internal/localstore"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/internal/order"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

const LanguageKey = "lang"

var ErrNoRecentOrder = errors.New("no order awaiting feedback")

// Storefront is one visitor's state. Every method holds the lock until it
// returns, so intents on the same session never interleave.
type Storefront struct {
	mu sync.Mutex

	id       string
	store    localstore.Store
	orders   *order.Manager
	feedback *feedback.Recorder
	now      func() time.Time

	lang        i18n.Language
	cart        *cart.Engine
	cartOpen    bool
	successOpen bool
	recent      *models.Order

	// lastSeen is unix nanoseconds. It is read without mu so a sweep never
	// waits on a session busy placing an order.
	lastSeen atomic.Int64
}

// View is the JSON form of a Storefront.
type View struct {
	ID          string            `json:"id"`
	Language    i18n.Language     `json:"language"`
	Dir         string            `json:"dir"`
	Items       []models.CartItem `json:"items"`
	Total       int64             `json:"total"`
	Count       int               `json:"count"`
	CartOpen    bool              `json:"cartOpen"`
	SuccessOpen bool              `json:"successOpen"`
	RecentOrder *models.Order     `json:"recentOrder,omitempty"`
}

func (s *Storefront) ID() string { return s.id }

func (s *Storefront) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Storefront) viewLocked() View {
	return View{
		ID:          s.id,
		Language:    s.lang,
		Dir:         i18n.Dir(s.lang),
		Items:       s.cart.Items(),
		Total:       s.cart.Total(),
		Count:       s.cart.Count(),
		CartOpen:    s.cartOpen,
		SuccessOpen: s.successOpen,
		RecentOrder: s.recent,
	}
}

func (s *Storefront) Language() i18n.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

func (s *Storefront) SetLanguage(ctx context.Context, lang i18n.Language) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.lang = lang
	if err := s.store.Set(ctx, LanguageKey, string(lang)); err != nil {
		logging.FromContext(ctx).Warn("session_persist_failed", "key", LanguageKey, "error", err)
	}
	return s.viewLocked()
}

func (s *Storefront) AddToCart(ctx context.Context, p models.Product) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.cart.Add(ctx, p)
	return s.viewLocked()
}

func (s *Storefront) RemoveFromCart(ctx context.Context, productID string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.cart.Remove(ctx, productID)
	return s.viewLocked()
}

func (s *Storefront) UpdateQuantity(ctx context.Context, productID string, delta int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.cart.UpdateQuantity(ctx, productID, delta)
	return s.viewLocked()
}

func (s *Storefront) OpenCart() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.cartOpen = true
	return s.viewLocked()
}

func (s *Storefront) CloseCart() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.cartOpen = false
	return s.viewLocked()
}

// Checkout places the cart as an order. An empty cart is ignored and returns
// a nil order with no error. On success the cart panel closes and the
// feedback prompt opens for the new order.
func (s *Storefront) Checkout(ctx context.Context, details models.ShippingDetails) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	o, err := s.orders.PlaceOrder(ctx, s.cart, details)
	if errors.Is(err, order.ErrEmptyCart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.cartOpen = false
	s.successOpen = true
	s.recent = o
	return o, nil
}

// SubmitFeedback records feedback for the order placed last in this session
// and closes the prompt.
func (s *Storefront) SubmitFeedback(ctx context.Context, rating int, comment string) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.recent == nil {
		return nil, ErrNoRecentOrder
	}

	fb, err := s.feedback.Submit(ctx, *s.recent, rating, comment, s.lang)
	if err != nil {
		return nil, err
	}

	s.successOpen = false
	s.recent = nil
	return fb, nil
}

func (s *Storefront) DismissFeedback() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.successOpen = false
	s.recent = nil
	return s.viewLocked()
}

func (s *Storefront) idleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Storefront) touch() {
	s.lastSeen.Store(s.now().UnixNano())
}
