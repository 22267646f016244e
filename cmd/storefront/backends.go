package main

import (
	"context"
	"time"

	"github.com/Skotchmaster/pharma_ruche/internal/catalog"
	"github.com/Skotchmaster/pharma_ruche/internal/changefeed"
	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/internal/gateway/firestoredoc"
	"github.com/Skotchmaster/pharma_ruche/internal/gateway/gormdoc"
	"github.com/Skotchmaster/pharma_ruche/internal/gateway/memdb"
	"github.com/Skotchmaster/pharma_ruche/internal/localstore"
	"github.com/Skotchmaster/pharma_ruche/internal/search"
	"github.com/Skotchmaster/pharma_ruche/pkg/config"
	"github.com/Skotchmaster/pharma_ruche/pkg/db"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

func openBackend(ctx context.Context, cfg config.Config, origin string) (gateway.Backend, func(), error) {
	l := logging.FromContext(ctx)

	switch cfg.StoreBackend {
	case "memory":
		return memdb.New(), func() {}, nil

	case "firestore":
		config.MustNonEmpty(cfg.FirestoreProject, "FIRESTORE_PROJECT")
		fs, err := firestoredoc.Open(ctx, cfg.FirestoreProject, cfg.FirestoreCredentials)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {
			if err := fs.Close(); err != nil {
				l.Error("firestore_close_error", "error", err)
			}
		}, nil
	}

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := gormdoc.Migrate(gdb); err != nil {
		return nil, nil, err
	}
	store := gormdoc.New(gdb)
	store.Resync = cfg.ResyncInterval

	closers := []func(){func() {
		if sqlDB, err := gdb.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				l.Error("db_close_error", "error", err)
			}
		}
	}}

	refresh := func(ctx context.Context, ev changefeed.Event) {
		if err := store.Refresh(ctx, ev.Collection); err != nil {
			logging.FromContext(ctx).Warn("changefeed_refresh_failed", "collection", ev.Collection, "error", err)
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		prod := changefeed.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, origin)
		store.Notifier = prod

		cons := changefeed.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, origin)
		go func() {
			err := cons.Run(ctx, refresh)
			if err != nil && ctx.Err() == nil {
				l.Error("changefeed_consumer_stopped", "error", err)
			}
		}()

		closers = append(closers, func() {
			if err := prod.Close(); err != nil {
				l.Error("kafka_close_error", "error", err)
			}
			if err := cons.Close(); err != nil {
				l.Error("kafka_close_error", "error", err)
			}
		})
		l.Info("changefeed_enabled", "transport", "kafka", "topic", cfg.KafkaTopic, "origin", origin)
	} else if cfg.DBDriver == "postgres" {
		pg := changefeed.NewPGNotify(gdb, cfg.DatabaseURL, origin)
		store.Notifier = pg
		go func() {
			err := pg.Run(ctx, []string{gateway.Products, gateway.Orders, gateway.Feedbacks}, refresh)
			if err != nil && ctx.Err() == nil {
				l.Error("changefeed_listener_stopped", "error", err)
			}
		}()
		l.Info("changefeed_enabled", "transport", "postgres", "channel", pg.Channel, "origin", origin)
	}

	return store, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}

func openLocalStore(ctx context.Context, cfg config.Config) (localstore.Store, func(), error) {
	l := logging.FromContext(ctx)

	switch cfg.LocalStore {
	case "memory":
		return localstore.NewMemory(), func() {}, nil

	case "redis":
		r, err := localstore.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 30*24*time.Hour)
		if err != nil {
			return nil, nil, err
		}
		return r, func() {
			if err := r.Close(); err != nil {
				l.Error("redis_close_error", "error", err)
			}
		}, nil
	}

	gdb, err := db.Open(ctx, "sqlite", cfg.LocalStorePath)
	if err != nil {
		return nil, nil, err
	}
	g, err := localstore.NewGorm(gdb)
	if err != nil {
		return nil, nil, err
	}

	go purgeLocal(ctx, g)

	return g, func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}

// purgeLocal drops carts untouched for 30 days.
func purgeLocal(ctx context.Context, g *localstore.Gorm) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := g.Purge(ctx, time.Now().Add(-30*24*time.Hour))
			if err != nil {
				logging.FromContext(ctx).Warn("local_purge_failed", "error", err)
				continue
			}
			if n > 0 {
				logging.FromContext(ctx).Info("local_purged", "count", n)
			}
		}
	}
}

// openSearch prefers Elasticsearch and answers from the in-memory catalog
// when it is not configured or fails.
func openSearch(ctx context.Context, cfg config.Config, cat *catalog.Service) search.Searcher {
	local := search.Local{Products: cat.List}
	if cfg.ESURL == "" {
		return local
	}

	es, err := search.NewClient(search.ClientConfig{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
	if err != nil {
		logging.FromContext(ctx).Warn("elasticsearch_unavailable", "error", err)
		return local
	}

	idx := search.NewElastic(es, cfg.ESIndex)
	cat.View.OnSnapshot(idx.SyncHook)
	return search.Fallback{Primary: idx, Secondary: local}
}
