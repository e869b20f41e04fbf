// Package mockfeed is a rustler.Rustler that needs no upstream at all: a
// ticking goroutine invents a quote for every tracked ticker on a fixed
// interval. Useful for local development and tests that shouldn't depend
// on a live exchange connection.
package mockfeed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/corraldata/rustlers/internal/quote"
	"github.com/corraldata/rustlers/internal/rustler"
)

// Generator produces the next price for a ticker, given its previous
// quote (nil on the first tick). The default generator is a small random
// walk seeded from a base price.
type Generator func(t quote.Ticker, prev *quote.Quote) quote.Quote

// Config configures a Rustler.
type Config struct {
	Name      string
	Interval  time.Duration
	Generator Generator
}

// Rustler is the mock feed adapter. It embeds rustler.Base for the
// bookkeeping fields and implements Connect/Disconnect/OnAdd/OnDelete to
// satisfy rustler.Rustler.
type Rustler struct {
	rustler.Base

	interval  time.Duration
	generator Generator

	// mu guards active/last. The ticking goroutine reads them without
	// going through rustlerjar's Handle lock, so they're kept as the
	// adapter's own state rather than read back from Base.Tickers() —
	// Base's map is only safe to touch while Handle.Use holds its lock,
	// which the background goroutine doesn't.
	mu       sync.Mutex
	active   map[string]quote.Ticker
	last     map[string]quote.Quote
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// New creates a mockfeed Rustler. Interval defaults to one second and
// Generator to defaultGenerator when unset.
func New(cfg Config) *Rustler {
	name := cfg.Name
	if name == "" {
		name = "mockfeed"
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	generator := cfg.Generator
	if generator == nil {
		generator = defaultGenerator
	}

	return &Rustler{
		Base:      rustler.NewBase(name),
		interval:  interval,
		generator: generator,
		active:    make(map[string]quote.Ticker),
		last:      make(map[string]quote.Quote),
	}
}

func (r *Rustler) Connect(ctx context.Context) error {
	if r.IsConnectedOrConnecting() {
		return nil
	}

	r.SetStatus(rustler.StatusConnecting)
	r.shutdown = make(chan struct{})

	r.wg.Add(1)
	go r.tick()

	r.SetStatus(rustler.StatusConnected)
	return nil
}

func (r *Rustler) Disconnect(ctx context.Context) error {
	if r.IsDisconnectedOrDisconnecting() {
		return nil
	}

	r.SetStatus(rustler.StatusDisconnecting)
	close(r.shutdown)
	r.wg.Wait()
	r.SetStatus(rustler.StatusDisconnected)
	return nil
}

func (r *Rustler) OnAdd(ctx context.Context, tickers []quote.Ticker) error {
	r.mu.Lock()
	for _, t := range tickers {
		r.active[t.Key()] = t
	}
	r.mu.Unlock()
	return nil
}

func (r *Rustler) OnDelete(ctx context.Context, tickers []quote.Ticker) error {
	r.mu.Lock()
	for _, t := range tickers {
		delete(r.active, t.Key())
		delete(r.last, t.Key())
	}
	r.mu.Unlock()
	return nil
}

func (r *Rustler) tick() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.emit()
		case <-r.shutdown:
			return
		}
	}
}

// emit sends the next quote for every active ticker, blocking on a full
// channel so back-pressure throttles the ticker rather than dropping
// quotes; a concurrent shutdown still unblocks it.
func (r *Rustler) emit() {
	sender := r.MsgSender()
	if sender == nil {
		return
	}

	r.mu.Lock()
	next := make([]quote.Quote, 0, len(r.active))
	for key, t := range r.active {
		prev, ok := r.last[key]
		var prevPtr *quote.Quote
		if ok {
			prevPtr = &prev
		}
		q := r.generator(t, prevPtr)
		r.last[key] = q
		next = append(next, q)
	}
	r.mu.Unlock()

	for _, q := range next {
		select {
		case sender <- rustler.Msg{Quote: q}:
		case <-r.shutdown:
			return
		}
	}
}

func defaultGenerator(t quote.Ticker, prev *quote.Quote) quote.Quote {
	base := 100.0
	if prev != nil {
		base = prev.Price
	}

	drift := (rand.Float64() - 0.5) * base * 0.002
	price := base + drift
	if price <= 0 {
		price = base
	}

	changePercent := 0.0
	if prev != nil && prev.Price != 0 {
		changePercent = (price - prev.Price) / prev.Price * 100
	}

	return quote.Quote{
		Symbol:        t.Symbol,
		Market:        t.Market,
		Price:         price,
		ChangePercent: changePercent,
		Time:          time.Now().UnixMilli(),
		MarketHours:   quote.Regular,
	}
}
