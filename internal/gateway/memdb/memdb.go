// Package memdb is an in-process document backend.
package memdb

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
)

type Store struct {
	Now func() time.Time

	mu    sync.Mutex
	docs  map[string]map[string]map[string]any
	order map[string][]string
	subs  map[string]map[*gateway.Feed[gateway.Document]]struct{}
}

func New() *Store {
	return &Store{
		Now:   func() time.Time { return time.Now().UTC() },
		docs:  map[string]map[string]map[string]any{},
		order: map[string][]string{},
		subs:  map[string]map[*gateway.Feed[gateway.Document]]struct{}{},
	}
}

func (s *Store) Watch(ctx context.Context, collection string) (*gateway.Feed[gateway.Document], error) {
	feed, fctx := gateway.NewFeed[gateway.Document](ctx)

	s.mu.Lock()
	if s.subs[collection] == nil {
		s.subs[collection] = map[*gateway.Feed[gateway.Document]]struct{}{}
	}
	s.subs[collection][feed] = struct{}{}
	feed.Publish(s.snapshotLocked(collection))
	s.mu.Unlock()

	go func() {
		<-fctx.Done()
		s.mu.Lock()
		delete(s.subs[collection], feed)
		s.mu.Unlock()
	}()
	return feed, nil
}

func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	doc := copyFields(fields)
	doc["createdAt"] = s.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[collection] == nil {
		s.docs[collection] = map[string]map[string]any{}
	}
	s.docs[collection][id] = doc
	s.order[collection] = append(s.order[collection], id)
	s.broadcastLocked(collection)
	return id, nil
}

// Put stores a document under a caller chosen id.
func (s *Store) Put(collection, id string, fields map[string]any) {
	doc := copyFields(fields)
	if _, ok := doc["createdAt"]; !ok {
		doc["createdAt"] = s.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[collection] == nil {
		s.docs[collection] = map[string]map[string]any{}
	}
	if _, exists := s.docs[collection][id]; !exists {
		s.order[collection] = append(s.order[collection], id)
	}
	s.docs[collection][id] = doc
	s.broadcastLocked(collection)
}

func (s *Store) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.docs[collection][id]
	if !ok {
		return gateway.ErrNotFound
	}
	next := copyFields(cur)
	for k, v := range fields {
		next[k] = v
	}
	s.docs[collection][id] = next
	s.broadcastLocked(collection)
	return nil
}

func (s *Store) Remove(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[collection][id]; !ok {
		return gateway.ErrNotFound
	}
	delete(s.docs[collection], id)
	ids := s.order[collection]
	for i, v := range ids {
		if v == id {
			s.order[collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	s.broadcastLocked(collection)
	return nil
}

// Len reports how many documents a collection holds.
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[collection])
}

func (s *Store) Get(collection, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[collection][id]
	if !ok {
		return nil, false
	}
	return copyFields(d), true
}

func (s *Store) snapshotLocked(collection string) []gateway.Document {
	ids := s.order[collection]
	out := make([]gateway.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, gateway.Document{ID: id, Fields: s.docs[collection][id]})
	}
	return out
}

func (s *Store) broadcastLocked(collection string) {
	if len(s.subs[collection]) == 0 {
		return
	}
	snap := s.snapshotLocked(collection)
	for f := range s.subs[collection] {
		f.Publish(snap)
	}
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
