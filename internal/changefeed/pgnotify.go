package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

const DefaultChannel = "storefront_documents"

// PGNotify sends change events with pg_notify on the documents database and
// listens for them on a dedicated lib/pq connection.
type PGNotify struct {
	DB      *gorm.DB
	DSN     string
	Channel string
	origin  string
}

func NewPGNotify(db *gorm.DB, dsn, origin string) *PGNotify {
	return &PGNotify{DB: db, DSN: dsn, Channel: DefaultChannel, origin: origin}
}

func (p *PGNotify) Notify(ctx context.Context, kind, collection, id string) error {
	data, err := json.Marshal(newEvent(kind, collection, id, p.origin))
	if err != nil {
		return fmt.Errorf("pg notify: json.Marshal failed: %w", err)
	}
	if err := p.DB.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", p.Channel, string(data)).Error; err != nil {
		return fmt.Errorf("pg notify: %w", err)
	}
	return nil
}

// Run hands events from other instances to handle until ctx is done. A nil
// notification means the listener reconnected and events may have been
// missed, so handle gets one event per known collection with an empty id.
func (p *PGNotify) Run(ctx context.Context, collections []string, handle func(context.Context, Event)) error {
	l := logging.FromContext(ctx).With("component", "changefeed", "channel", p.Channel)

	listener := pq.NewListener(p.DSN, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.Warn("pg_listener_event", "event", int(ev), "error", err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(p.Channel); err != nil {
		return fmt.Errorf("pg listen %s: %w", p.Channel, err)
	}

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					l.Warn("pg_listener_ping_failed", "error", err)
				}
			}()
		case n := <-listener.Notify:
			if n == nil {
				for _, c := range collections {
					handle(ctx, Event{Type: c + "_resync", Collection: c, At: time.Now().UTC()})
				}
				continue
			}
			ev, ok := decode([]byte(n.Extra), p.origin)
			if !ok {
				continue
			}
			handle(ctx, ev)
		}
	}
}
