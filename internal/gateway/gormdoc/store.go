// Package gormdoc stores gateway documents as JSON rows through gorm.
package gormdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

type DocumentRow struct {
	Collection string    `gorm:"primaryKey;size:64"`
	ID         string    `gorm:"primaryKey;size:64"`
	Data       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (DocumentRow) TableName() string { return "documents" }

// Notifier is told about every committed write, e.g. to fan it out to
// other instances.
type Notifier interface {
	Notify(ctx context.Context, kind, collection, id string) error
}

type Store struct {
	DB       *gorm.DB
	Notifier Notifier
	// Resync reloads watched collections periodically. Zero disables it.
	Resync time.Duration
	Now    func() time.Time

	mu   sync.Mutex
	subs map[string]map[*gateway.Feed[gateway.Document]]struct{}
}

func New(db *gorm.DB) *Store {
	return &Store{
		DB:   db,
		Now:  func() time.Time { return time.Now().UTC() },
		subs: map[string]map[*gateway.Feed[gateway.Document]]struct{}{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DocumentRow{})
}

func (s *Store) Watch(ctx context.Context, collection string) (*gateway.Feed[gateway.Document], error) {
	feed, fctx := gateway.NewFeed[gateway.Document](ctx)

	docs, err := s.load(fctx, collection)
	if err != nil {
		feed.Stop()
		return nil, err
	}
	feed.Publish(docs)

	s.mu.Lock()
	if s.subs[collection] == nil {
		s.subs[collection] = map[*gateway.Feed[gateway.Document]]struct{}{}
	}
	s.subs[collection][feed] = struct{}{}
	s.mu.Unlock()

	go s.watchLoop(fctx, feed, collection)
	return feed, nil
}

func (s *Store) watchLoop(ctx context.Context, feed *gateway.Feed[gateway.Document], collection string) {
	defer func() {
		s.mu.Lock()
		delete(s.subs[collection], feed)
		s.mu.Unlock()
	}()

	if s.Resync <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(s.Resync)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			docs, err := s.load(ctx, collection)
			if err != nil {
				if ctx.Err() == nil {
					feed.Fail(err)
				}
				continue
			}
			feed.Publish(docs)
		}
	}
}

// Refresh reloads a collection and pushes it to local subscribers.
func (s *Store) Refresh(ctx context.Context, collection string) error {
	s.mu.Lock()
	feeds := make([]*gateway.Feed[gateway.Document], 0, len(s.subs[collection]))
	for f := range s.subs[collection] {
		feeds = append(feeds, f)
	}
	s.mu.Unlock()
	if len(feeds) == 0 {
		return nil
	}

	docs, err := s.load(ctx, collection)
	if err != nil {
		for _, f := range feeds {
			f.Fail(err)
		}
		return err
	}
	for _, f := range feeds {
		f.Publish(docs)
	}
	return nil
}

func (s *Store) load(ctx context.Context, collection string) ([]gateway.Document, error) {
	var rows []DocumentRow
	if err := s.DB.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}

	l := logging.FromContext(ctx)
	out := make([]gateway.Document, 0, len(rows))
	for _, r := range rows {
		var fields map[string]any
		if err := json.Unmarshal([]byte(r.Data), &fields); err != nil {
			l.Warn("document_corrupt", "collection", collection, "id", r.ID, "error", err)
			continue
		}
		out = append(out, gateway.Document{ID: r.ID, Fields: fields})
	}
	return out, nil
}

func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	now := s.Now()
	doc := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc["createdAt"] = now

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	row := DocumentRow{
		Collection: collection,
		ID:         uuid.NewString(),
		Data:       string(data),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}

	s.changed(ctx, "created", collection, row.ID)
	return row.ID, nil
}

func (s *Store) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DocumentRow
		if err := tx.Scopes(forUpdate).Where("collection = ? AND id = ?", collection, id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gateway.ErrNotFound
			}
			return err
		}

		var doc map[string]any
		if err := json.Unmarshal([]byte(row.Data), &doc); err != nil || doc == nil {
			doc = map[string]any{}
		}
		for k, v := range fields {
			doc[k] = v
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}

		return tx.Model(&DocumentRow{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]any{"data": string(data), "updated_at": s.Now()}).Error
	})
	if err != nil {
		return err
	}

	s.changed(ctx, "updated", collection, id)
	return nil
}

// forUpdate locks the row read by Merge until the transaction ends, so
// concurrent merges of different fields both survive. SQLite has no row
// locks; its write transactions are already serialized.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return tx
}

func (s *Store) Remove(ctx context.Context, collection, id string) error {
	res := s.DB.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&DocumentRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gateway.ErrNotFound
	}

	s.changed(ctx, "deleted", collection, id)
	return nil
}

func (s *Store) changed(ctx context.Context, kind, collection, id string) {
	l := logging.FromContext(ctx)
	if err := s.Refresh(context.WithoutCancel(ctx), collection); err != nil {
		l.Warn("refresh_failed", "collection", collection, "error", err)
	}
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, kind, collection, id); err != nil {
		l.Warn("notify_failed", "collection", collection, "id", id, "error", err)
	}
}
