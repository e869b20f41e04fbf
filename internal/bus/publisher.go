package bus

import (
	"context"
	"fmt"

	"github.com/corraldata/rustlers/internal/quote"
	"github.com/redis/go-redis/v9"
)

// Publisher writes quotes to Redis: an HSET snapshot under the quote's bus
// key followed by a PUBLISH of its wire message on that same key as a
// channel name. The HSET always lands before the PUBLISH, so any
// subscriber woken by the notification can immediately HGETALL a
// consistent snapshot — happens-before ordering, not a transaction.
type Publisher struct {
	rdb *redis.Client
	opt *options
}

// NewPublisher wraps an existing Redis client. It does not own the
// client's lifecycle; call rdb.Close() independently.
func NewPublisher(rdb *redis.Client, opts ...Option) *Publisher {
	return &Publisher{rdb: rdb, opt: newOptions(opts...)}
}

// Publish snapshots q's fields into a Redis hash and notifies subscribers
// of the new wire-format message. The HSET is issued first; by the time
// PUBLISH delivers, the hash is already visible to a concurrent HGETALL.
func (p *Publisher) Publish(ctx context.Context, q quote.Quote) error {
	key := p.opt.namespaced(q.BusKey())

	fields := q.ToBusVal()
	args := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f[0], f[1])
	}

	if err := p.rdb.HSet(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("bus: hset %s: %w", key, err)
	}

	if err := p.rdb.Publish(ctx, key, q.AsMessage()).Err(); err != nil {
		return fmt.Errorf("bus: publish %s: %w", key, err)
	}

	return nil
}
