// Package rustlersvc supervises the rustler fleet: it loads the catalog,
// schedules each market's start/stop according to its trading calendar,
// and forwards every quote a rustler produces to the bus.
package rustlersvc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corraldata/rustlers/internal/catalog"
	"github.com/corraldata/rustlers/internal/control"
	"github.com/corraldata/rustlers/internal/quote"
	"github.com/corraldata/rustlers/internal/rustler"
	"github.com/corraldata/rustlers/internal/rustlerjar"
	"github.com/corraldata/rustlers/internal/scheduler"
	"github.com/corraldata/rustlers/pkg/breaker"
)

// channelCapacity bounds the mpsc-style channel every rustler's message
// sender feeds into. A slow bus never blocks a rustler's own read loop
// past this many buffered quotes.
const channelCapacity = 100

// Publisher is the bus-facing dependency Service publishes quotes
// through. *bus.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, q quote.Quote) error
}

// Config wires a Service's collaborators.
type Config struct {
	Catalog   catalog.Reader
	Rustlers  *rustlerjar.Jar
	Publisher Publisher
	Breaker   *breaker.Breaker

	// Control, if non-nil, is subscribed for catalog change notifications
	// so the service can reconfigure a running rustler without a restart.
	Control *control.Bus

	Scheduler *scheduler.Scheduler
	Logger    *slog.Logger
}

// Service manages the rustlers and orchestrates their execution: loading
// the catalog, scheduling each market's start/stop jobs, and forwarding
// every quote produced back to the bus.
type Service struct {
	catalog   catalog.Reader
	rustlers  *rustlerjar.Jar
	publisher Publisher
	breaker   *breaker.Breaker
	control   *control.Bus
	sched     *scheduler.Scheduler
	logger    *slog.Logger
}

// New creates a Service from cfg, defaulting an absent Scheduler/Logger.
func New(cfg Config) *Service {
	sched := cfg.Scheduler
	if sched == nil {
		sched = scheduler.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		catalog:   cfg.Catalog,
		rustlers:  cfg.Rustlers,
		publisher: cfg.Publisher,
		breaker:   cfg.Breaker,
		control:   cfg.Control,
		sched:     sched,
		logger:    logger,
	}
}

// Start loads markets from the catalog and schedules the corresponding
// rustler for each, then blocks forwarding every produced quote to the
// bus until ctx is canceled or the internal channel closes.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("starting rustlers")

	markets, err := s.catalog.AllMarketsWithTickers(ctx)
	if err != nil {
		return fmt.Errorf("rustlersvc: loading markets: %w", err)
	}
	if len(markets) == 0 {
		return ErrNoMarkets
	}

	msgs := make(chan rustler.Msg, channelCapacity)

	for _, mt := range markets {
		if err := s.scheduleRustlerFor(ctx, mt, msgs); err != nil {
			s.logger.Warn("failed to schedule rustler", "market", mt.Market.ShortName, "error", err)
		}
	}

	if s.control != nil {
		unsubscribe, err := s.control.Subscribe(s.handleControlEvent)
		if err != nil {
			s.logger.Warn("failed to subscribe to control bus", "error", err)
		} else {
			defer unsubscribe()
		}
	}

	return s.forward(ctx, msgs)
}

// Restart always returns ErrRestartNotSupported. It does not stop any
// rustler, cancel any scheduled job or re-read the catalog.
func (s *Service) Restart(ctx context.Context) error {
	return ErrRestartNotSupported
}

// scheduleRustlerFor gets the rustler responsible for a market and starts
// it, either immediately or on a schedule derived from the market's
// trading calendar. It also schedules the rustler's stop at the end of
// trading hours when the market defines one.
func (s *Service) scheduleRustlerFor(ctx context.Context, mt catalog.MarketTickers, sender chan<- rustler.Msg) error {
	market := mt.Market

	handle, ok := s.rustlers.Get(market.ShortName)
	if !ok {
		s.logger.Warn("no rustler found for market", "market", market.ShortName)
		return nil
	}

	if err := handle.Use(func(r rustler.Rustler) error {
		s.logger.Info("setting message sender for rustler", "rustler", r.Name())
		r.SetMsgSender(sender)
		return nil
	}); err != nil {
		return err
	}

	rules, err := GetScheduleRulesFor(market)
	if err != nil {
		return fmt.Errorf("getting schedule rules for %q: %w", market.ShortName, err)
	}

	startName := "start-rustler-" + market.ShortName
	stopName := "end-rustler-" + market.ShortName

	if rules != nil {
		startHandle := s.sched.Schedule(startName, func(ctx context.Context) error {
			s.startRustlerFor(ctx, handle, mt.Tickers)
			return nil
		}, rules.Start)

		stopHandle := s.sched.Schedule(stopName, func(ctx context.Context) error {
			s.stopRustlerFor(ctx, handle, mt.Tickers)
			return nil
		}, rules.Stop)

		s.logger.Info("scheduled next execution for start job",
			"job", startName, "market", market.ShortName, "next_run", startHandle.NextRun())
		s.logger.Info("scheduled next execution for stop job",
			"job", stopName, "market", market.ShortName, "next_run", stopHandle.NextRun())
	} else {
		s.logger.Info("no schedule rules found for market, running continuously", "market", market.ShortName)
	}

	if ShouldBeRunningNow(rules) {
		s.logger.Info("starting rustler right away", "job", startName)
		s.startRustlerFor(ctx, handle, mt.Tickers)
	}

	return nil
}

// startRustlerFor connects the rustler behind handle (if not already) and
// adds tickers to it. Failures are logged, not propagated: a scheduled
// job firing late or failing once shouldn't tear down the whole service.
func (s *Service) startRustlerFor(ctx context.Context, handle *rustlerjar.Handle, tickers []quote.Ticker) {
	_ = handle.Use(func(r rustler.Rustler) error {
		if err := rustler.Start(ctx, r); err != nil {
			s.logger.Warn("failed to start rustler", "rustler", r.Name(), "error", err)
			return nil
		}

		if len(tickers) == 0 {
			return nil
		}

		s.logger.Info("rustler started for market", "rustler", r.Name())
		if err := rustler.Add(ctx, r, tickers); err != nil {
			s.logger.Warn("failed to add tickers to rustler", "rustler", r.Name(), "error", err)
			return nil
		}
		s.logger.Info("tickers added to rustler", "rustler", r.Name(), "tickers", len(tickers))
		return nil
	})
}

// stopRustlerFor removes tickers from the rustler behind handle. If other
// markets still use the same rustler, or if tickers is empty, the
// rustler keeps running for whatever tickers remain.
func (s *Service) stopRustlerFor(ctx context.Context, handle *rustlerjar.Handle, tickers []quote.Ticker) {
	if len(tickers) == 0 {
		return
	}

	_ = handle.Use(func(r rustler.Rustler) error {
		if err := rustler.Delete(ctx, r, tickers); err != nil {
			s.logger.Warn("failed to remove tickers from rustler", "rustler", r.Name(), "error", err)
			return nil
		}
		s.logger.Info("tickers removed from rustler", "rustler", r.Name(), "tickers", len(tickers))
		return nil
	})
}

// forward drains msgs, publishing every quote through the breaker-wrapped
// publisher until ctx is canceled or msgs closes.
func (s *Service) forward(ctx context.Context, msgs <-chan rustler.Msg) error {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return ErrRustlersStopped
			}
			s.publish(ctx, msg.Quote)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Service) publish(ctx context.Context, q quote.Quote) {
	err := s.breaker.Execute(ctx, func() error {
		return s.publisher.Publish(ctx, q)
	})
	if err != nil {
		s.logger.Warn("failed to publish quote", "symbol", q.Symbol, "market", q.Market, "error", err)
	}
}

// handleControlEvent reacts to a catalog change without requiring a
// restart: a newly added or removed ticker is routed straight to the
// owning rustler. A market's calendar changing isn't handled live yet —
// see Restart.
func (s *Service) handleControlEvent(event control.Event) {
	switch event.Type {
	case control.EventTypeTickerAdded:
		s.handleTickerChange(event, true)
	case control.EventTypeTickerRemoved:
		s.handleTickerChange(event, false)
	case control.EventTypeMarketUpdated:
		data, err := control.ParseEventData[control.MarketUpdatedData](&event)
		if err != nil {
			s.logger.Warn("failed to parse market.updated event", "error", err)
			return
		}
		s.logger.Warn("market calendar changed, rescheduling requires a restart",
			"market", data.MarketShortName)
	default:
		s.logger.Debug("ignoring unknown control event", "type", event.Type)
	}
}

func (s *Service) handleTickerChange(event control.Event, added bool) {
	data, err := control.ParseEventData[control.TickerChangedData](&event)
	if err != nil {
		s.logger.Warn("failed to parse ticker change event", "error", err)
		return
	}

	handle, ok := s.rustlers.Get(data.MarketShortName)
	if !ok {
		s.logger.Warn("no rustler found for market", "market", data.MarketShortName)
		return
	}

	t := quote.Ticker{Symbol: data.Symbol, Market: data.MarketShortName, QuoteAsset: data.QuoteAsset}
	ctx := context.Background()

	_ = handle.Use(func(r rustler.Rustler) error {
		if added {
			if err := rustler.Add(ctx, r, []quote.Ticker{t}); err != nil {
				s.logger.Warn("failed to add ticker from control event", "rustler", r.Name(), "error", err)
			}
			return nil
		}
		if err := rustler.Delete(ctx, r, []quote.Ticker{t}); err != nil {
			s.logger.Warn("failed to remove ticker from control event", "rustler", r.Name(), "error", err)
		}
		return nil
	})
}
