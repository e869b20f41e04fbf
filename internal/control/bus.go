// Package control carries catalog change notifications (tickers added or
// removed, market calendars edited) from whatever administers the catalog
// to the running rustlersvc, so it can reconfigure without a restart.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Subject is the single subject every control Event is published to; Type
// distinguishes the kind of change within it.
const Subject = "rustlers.control"

// Bus wraps a NATS connection scoped to catalog change notifications.
type Bus struct {
	conn *nats.Conn

	mu   sync.Mutex
	subs []*nats.Subscription
}

// Config holds the connection parameters for a Bus.
type Config struct {
	URL            string
	Name           string
	ReconnectWait  time.Duration
	MaxReconnects  int
	ConnectTimeout time.Duration
}

// Connect dials NATS and returns a ready Bus.
func Connect(cfg Config) (*Bus, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.ConnectTimeout),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("control: connecting to nats: %w", err)
	}

	return &Bus{conn: conn}, nil
}

// Publish marshals and publishes event to the control subject.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("control: marshaling event: %w", err)
	}
	return b.conn.Publish(Subject, payload)
}

// Subscribe registers handler for every Event published to the control
// subject. The returned function cancels the subscription.
func (b *Bus) Subscribe(handler func(Event)) (func(), error) {
	sub, err := b.conn.Subscribe(Subject, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, fmt.Errorf("control: subscribing: %w", err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return func() { _ = sub.Unsubscribe() }, nil
}

// Close unsubscribes every handler and closes the connection.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil
	b.conn.Close()
}
