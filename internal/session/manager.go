package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharma_ruche/internal/cart"
	"github.com/Skotchmaster/pharma_ruche/internal/feedback"
	"github.com/Skotchmaster/pharma_ruche/internal/i18n"
	"github.com/Skotchmaster/pharma_ruche/internal/localstore"
	"github.com/Skotchmaster/pharma_ruche/internal/order"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

// Manager owns every live Storefront, keyed by session id. Carts and
// language survive an evicted session through the local store.
type Manager struct {
	Store    localstore.Store
	Orders   *order.Manager
	Feedback *feedback.Recorder
	Now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Storefront
}

func NewManager(store localstore.Store, orders *order.Manager, fb *feedback.Recorder) *Manager {
	return &Manager{
		Store:    store,
		Orders:   orders,
		Feedback: fb,
		Now:      time.Now,
		sessions: map[string]*Storefront{},
	}
}

// Open returns the session for id, restoring it from the local store when it
// is not in memory. An empty or malformed id starts a new session with
// language lang.
func (m *Manager) Open(ctx context.Context, id string, lang i18n.Language) *Storefront {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}

	scoped := localstore.WithPrefix(m.Store, "session:"+id+":")
	if saved, err := scoped.Get(ctx, LanguageKey); err == nil {
		if l, ok := i18n.Parse(saved); ok {
			lang = l
		}
	} else if !errors.Is(err, localstore.ErrNotFound) {
		logging.FromContext(ctx).Warn("session_restore_failed", "key", LanguageKey, "error", err)
	}

	s := &Storefront{
		id:       id,
		store:    scoped,
		orders:   m.Orders,
		feedback: m.Feedback,
		now:      m.Now,
		lang:     lang,
		cart:     cart.Restore(ctx, scoped),
	}
	s.touch()
	m.sessions[id] = s
	return s
}

// Get returns an in-memory session without restoring it.
func (m *Manager) Get(id string) (*Storefront, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
// Their persisted cart stays in the local store.
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := m.Now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
