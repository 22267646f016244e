package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

const DefaultRetryDelay = 2 * time.Second

// LiveView keeps the latest snapshot of one collection in memory.
type LiveView[T any] struct {
	coll Collection[T]

	// RetryDelay spaces resubscription attempts after Subscribe fails or the
	// feed closes.
	RetryDelay time.Duration

	mu       sync.RWMutex
	snap     []T
	fallback []T
	loaded   bool
	err      error
	hooks    []func(context.Context, []T)
	ready    chan struct{}
	once     sync.Once
}

func NewLiveView[T any](coll Collection[T]) *LiveView[T] {
	return &LiveView[T]{coll: coll, RetryDelay: DefaultRetryDelay, ready: make(chan struct{})}
}

// SetFallback sets what Snapshot returns until the first snapshot arrives.
func (v *LiveView[T]) SetFallback(items []T) {
	v.mu.Lock()
	v.fallback = append([]T(nil), items...)
	v.mu.Unlock()
}

// OnSnapshot registers fn to run after every new snapshot. Register hooks
// before Run.
func (v *LiveView[T]) OnSnapshot(fn func(context.Context, []T)) {
	v.mu.Lock()
	v.hooks = append(v.hooks, fn)
	v.mu.Unlock()
}

// Run consumes the collection feed until ctx is done. A failed Subscribe or
// a feed closed by the backend is retried after RetryDelay.
func (v *LiveView[T]) Run(ctx context.Context) error {
	l := logging.FromContext(ctx)
	for {
		feed, err := v.coll.Subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.Warn("live_view_subscribe_failed", "error", err)
			v.setErr(err)
		} else {
			v.consume(ctx, feed)
			feed.Stop()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(v.retryDelay()):
		}
	}
}

// consume returns when ctx is done or the feed closes.
func (v *LiveView[T]) consume(ctx context.Context, feed *Feed[T]) {
	l := logging.FromContext(ctx)
	for {
		snap, err := feed.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrFeedClosed) {
				return
			}
			l.Warn("live_view_error", "error", err)
			v.setErr(err)
			continue
		}

		v.mu.Lock()
		v.snap = snap
		v.loaded = true
		v.err = nil
		hooks := append([]func(context.Context, []T){}, v.hooks...)
		v.mu.Unlock()
		v.once.Do(func() { close(v.ready) })

		for _, h := range hooks {
			h(ctx, snap)
		}
	}
}

func (v *LiveView[T]) retryDelay() time.Duration {
	if v.RetryDelay <= 0 {
		return DefaultRetryDelay
	}
	return v.RetryDelay
}

func (v *LiveView[T]) setErr(err error) {
	v.mu.Lock()
	v.err = err
	v.mu.Unlock()
}

// Snapshot returns a copy of the latest snapshot and whether one arrived.
// Before that it returns the fallback.
func (v *LiveView[T]) Snapshot() ([]T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	src := v.snap
	if !v.loaded {
		src = v.fallback
	}
	out := make([]T, len(src))
	copy(out, src)
	return out, v.loaded
}

// Err is the last subscribe or feed error, cleared by the next snapshot.
func (v *LiveView[T]) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.err
}

// Ready is closed once the first snapshot has been stored.
func (v *LiveView[T]) Ready() <-chan struct{} {
	return v.ready
}

// WaitReady blocks until the first snapshot or ctx is done.
func (v *LiveView[T]) WaitReady(ctx context.Context) error {
	select {
	case <-v.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
