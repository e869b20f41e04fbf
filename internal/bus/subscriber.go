package bus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/corraldata/rustlers/internal/quote"
	"github.com/redis/go-redis/v9"
)

// Subscriber lazily PSUBSCRIBEs to a Redis pattern on first Stream call,
// then fans every decoded quote out to every live caller's channel. The
// underlying PSUBSCRIBE connection is shared; callers each get their own
// bounded, lag-skipping view over it.
type Subscriber struct {
	rdb    *redis.Client
	opt    *options
	logger *slog.Logger

	mu          sync.Mutex
	started     bool
	broadcaster *broadcaster[quote.Quote]
	cancel      context.CancelFunc
}

// NewSubscriber wraps an existing Redis client. It does not own the
// client's lifecycle; call rdb.Close() independently.
func NewSubscriber(rdb *redis.Client, logger *slog.Logger, opts ...Option) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{rdb: rdb, opt: newOptions(opts...), logger: logger}
}

// Stream returns a receive channel of decoded quotes and an unsubscribe
// function the caller must invoke when done listening. The first call
// starts the background PSUBSCRIBE drain loop; subsequent calls share it.
func (s *Subscriber) Stream(ctx context.Context) (<-chan quote.Quote, func()) {
	s.mu.Lock()
	if !s.started {
		s.started = true
		s.broadcaster = newBroadcaster[quote.Quote]()
		bgCtx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		go s.drain(bgCtx)
	}
	b := s.broadcaster
	s.mu.Unlock()

	return b.subscribe()
}

// Close stops the background drain loop and terminates every outstanding
// subscriber sequence. Safe to call even if Stream was never called.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Subscriber) drain(ctx context.Context) {
	pubsub := s.rdb.PSubscribe(ctx, s.opt.matchPattern())
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				s.broadcaster.close()
				return
			}
			q, err := quote.FromMessage(msg.Payload)
			if err != nil {
				s.logger.Debug("dropping malformed quote payload", "channel", msg.Channel, "error", err)
				continue
			}
			s.broadcaster.send(q)
		case <-ctx.Done():
			s.broadcaster.close()
			return
		}
	}
}
