package gateway

import "context"

// Feed is a cancellable sequence of full snapshots. A reader that falls
// behind only sees the most recent snapshot.
type Feed[T any] struct {
	updates chan []T
	errs    chan error
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewFeed returns a feed and the context its producer should run under.
// The context is cancelled by Stop or by the parent.
func NewFeed[T any](parent context.Context) (*Feed[T], context.Context) {
	ctx, cancel := context.WithCancel(parent)
	return &Feed[T]{
		updates: make(chan []T, 1),
		errs:    make(chan error, 1),
		ctx:     ctx,
		cancel:  cancel,
	}, ctx
}

// Publish replaces any snapshot the reader has not consumed yet.
func (f *Feed[T]) Publish(snap []T) {
	for {
		select {
		case <-f.ctx.Done():
			return
		case f.updates <- snap:
			return
		default:
		}
		select {
		case <-f.updates:
		default:
		}
	}
}

// Fail reports a transient error. Only the latest error is kept.
func (f *Feed[T]) Fail(err error) {
	for {
		select {
		case <-f.ctx.Done():
			return
		case f.errs <- err:
			return
		default:
		}
		select {
		case <-f.errs:
		default:
		}
	}
}

// Next blocks until a snapshot or an error is available. Errors are
// transient unless they are ErrFeedClosed or a context error.
func (f *Feed[T]) Next(ctx context.Context) ([]T, error) {
	if f.ctx.Err() != nil {
		return nil, ErrFeedClosed
	}
	select {
	case snap := <-f.updates:
		return snap, nil
	default:
	}
	select {
	case snap := <-f.updates:
		return snap, nil
	case err := <-f.errs:
		return nil, err
	case <-f.ctx.Done():
		return nil, ErrFeedClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Feed[T]) Stop() {
	f.cancel()
}

func (f *Feed[T]) Done() <-chan struct{} {
	return f.ctx.Done()
}
