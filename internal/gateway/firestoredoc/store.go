// Package firestoredoc backs the gateway with Cloud Firestore collections.
package firestoredoc

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

type Store struct {
	Client     *firestore.Client
	RetryDelay time.Duration
}

// Open connects to project. An empty credentialsFile uses application
// default credentials or FIRESTORE_EMULATOR_HOST.
func Open(ctx context.Context, project, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Store{Client: client, RetryDelay: 2 * time.Second}, nil
}

func (s *Store) Close() error {
	return s.Client.Close()
}

func (s *Store) Watch(ctx context.Context, collection string) (*gateway.Feed[gateway.Document], error) {
	feed, fctx := gateway.NewFeed[gateway.Document](ctx)
	go s.listen(fctx, feed, collection)
	return feed, nil
}

// listen resubscribes after every listener failure until ctx is done.
func (s *Store) listen(ctx context.Context, feed *gateway.Feed[gateway.Document], collection string) {
	l := logging.FromContext(ctx).With("collection", collection)
	for {
		it := s.Client.Collection(collection).Snapshots(ctx)
		err := s.drain(it, feed)
		it.Stop()
		if ctx.Err() != nil {
			return
		}
		l.Warn("firestore_listener_failed", "error", err)
		feed.Fail(err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryDelay()):
		}
	}
}

func (s *Store) drain(it *firestore.QuerySnapshotIterator, feed *gateway.Feed[gateway.Document]) error {
	for {
		snap, err := it.Next()
		if err != nil {
			return err
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			return err
		}
		out := make([]gateway.Document, 0, len(docs))
		for _, d := range docs {
			out = append(out, gateway.Document{ID: d.Ref.ID, Fields: d.Data()})
		}
		feed.Publish(out)
	}
}

func (s *Store) retryDelay() time.Duration {
	if s.RetryDelay <= 0 {
		return 2 * time.Second
	}
	return s.RetryDelay
}

func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	doc := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc["createdAt"] = firestore.ServerTimestamp

	ref, _, err := s.Client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *Store) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := s.Client.Collection(collection).Doc(id).Update(ctx, updates(fields))
	return mapErr(err)
}

func (s *Store) Remove(ctx context.Context, collection, id string) error {
	_, err := s.Client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	return mapErr(err)
}

func updates(fields map[string]any) []firestore.Update {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		out = append(out, firestore.Update{Path: k, Value: fields[k]})
	}
	return out
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", gateway.ErrNotFound, err)
	}
	return err
}
