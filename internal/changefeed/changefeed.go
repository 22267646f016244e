// Package changefeed carries document change events between storefront
// instances over Kafka or PostgreSQL LISTEN/NOTIFY.
package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

type Event struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Origin     string    `json:"origin"`
	At         time.Time `json:"at"`
}

type Producer struct {
	writer *kafka.Writer
	origin string
}

func NewProducer(brokers []string, topic, origin string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
		origin: origin,
	}
}

func (p *Producer) PublishEvent(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

// Notify publishes a change of collection/id, keyed by collection.
func (p *Producer) Notify(ctx context.Context, kind, collection, id string) error {
	return p.PublishEvent(ctx, collection, newEvent(kind, collection, id, p.origin))
}

func newEvent(kind, collection, id, origin string) Event {
	return Event{
		Type:       collection + "_" + kind,
		Collection: collection,
		ID:         id,
		Origin:     origin,
		At:         time.Now().UTC(),
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

type Consumer struct {
	reader *kafka.Reader
	origin string
}

// NewConsumer joins a group private to this instance so every instance
// sees every event. New groups start at the newest offset.
func NewConsumer(brokers []string, topic, origin string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     "storefront-" + origin,
			StartOffset: kafka.LastOffset,
			MinBytes:    1,
			MaxBytes:    1 << 20,
			MaxWait:     time.Second,
		}),
		origin: origin,
	}
}

// Run hands events from other instances to handle until ctx is done.
func (c *Consumer) Run(ctx context.Context, handle func(context.Context, Event)) error {
	l := logging.FromContext(ctx).With("component", "changefeed")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			l.Warn("changefeed_read_failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		ev, ok := decode(m.Value, c.origin)
		if !ok {
			continue
		}
		handle(ctx, ev)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// decode drops malformed events and events this instance produced.
func decode(raw []byte, origin string) (Event, bool) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil || ev.Collection == "" {
		return Event{}, false
	}
	if ev.Origin == origin {
		return Event{}, false
	}
	return ev, true
}
