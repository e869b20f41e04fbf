package rustler

import (
	"context"
	"time"

	"github.com/corraldata/rustlers/internal/quote"
)

// Accessor exposes a rustler's bookkeeping fields: status, run/stop
// timestamps, options, its ticker set, and its outgoing message sender.
// Base implements this for any concrete rustler that embeds it.
type Accessor interface {
	Name() string

	Status() Status
	SetStatus(Status)
	IsConnecting() bool
	IsConnected() bool
	IsDisconnecting() bool
	IsDisconnected() bool
	IsConnectedOrConnecting() bool
	IsDisconnectedOrDisconnecting() bool

	NextRun() time.Time
	SetNextRun(time.Time)
	NextStop() *time.Time
	SetNextStop(*time.Time)
	LastRun() *time.Time
	SetLastRun(*time.Time)
	LastStop() *time.Time
	SetLastStop(*time.Time)
	LastUpdate() *time.Time
	SetLastUpdate(*time.Time)

	Opts() Opts
	SetOpts(Opts)

	Tickers() map[string]quote.Ticker
	SetTicker(quote.Ticker)
	RemoveTicker(key string) (quote.Ticker, bool)

	MsgSender() chan<- Msg
	SetMsgSender(chan<- Msg)
}

// Rustler is a data-source adapter: a named collaborator that connects to
// a quote source, tracks a set of tickers it rustles quotes for, and
// forwards decoded quotes to its message sender.
//
// Connect/Disconnect/OnAdd/OnDelete are the only methods a concrete
// adapter must implement; Start/Add/Delete (the composite operations) are
// package-level functions that call back into this interface, since Go
// has no default interface methods to hang them off of.
type Rustler interface {
	Accessor

	// Connect opens the connection to the data source. After it returns
	// successfully the rustler's status must be StatusConnected.
	Connect(ctx context.Context) error
	// Disconnect closes the connection and releases resources. After it
	// returns successfully the rustler's status must be StatusDisconnected.
	// Called automatically once the ticker set becomes empty.
	Disconnect(ctx context.Context) error
	// OnAdd is called after tickers have been newly added, so the
	// implementation can start rustling quotes for them.
	OnAdd(ctx context.Context, tickers []quote.Ticker) error
	// OnDelete is called after tickers have been removed, so the
	// implementation can stop rustling quotes for them.
	OnDelete(ctx context.Context, tickers []quote.Ticker) error
}

// Base provides the bookkeeping field storage shared by every rustler
// implementation. Embed it in a concrete adapter struct and implement
// Connect/Disconnect/OnAdd/OnDelete to satisfy Rustler.
type Base struct {
	name string

	status Status

	nextRun  time.Time
	nextStop *time.Time

	lastRun    *time.Time
	lastStop   *time.Time
	lastUpdate *time.Time

	opts Opts

	tickers map[string]quote.Ticker

	msgSender chan<- Msg
}

// NewBase creates the shared state for a rustler named name, with default
// options.
func NewBase(name string) Base {
	return Base{
		name:    name,
		opts:    DefaultOpts(),
		tickers: make(map[string]quote.Ticker),
	}
}

func (b *Base) Name() string { return b.name }

func (b *Base) Status() Status { return b.status }

// SetStatus updates the status and runs the bookkeeping that the original
// handle_status_change default method performed: stamping last-stop on
// disconnect, last-run on connect.
func (b *Base) SetStatus(status Status) {
	b.status = status
	switch status {
	case StatusDisconnected:
		now := time.Now()
		b.lastStop = &now
	case StatusConnected:
		now := time.Now()
		b.lastRun = &now
	}
}

func (b *Base) IsConnecting() bool    { return b.status == StatusConnecting }
func (b *Base) IsConnected() bool     { return b.status == StatusConnected }
func (b *Base) IsDisconnecting() bool { return b.status == StatusDisconnecting }
func (b *Base) IsDisconnected() bool  { return b.status == StatusDisconnected }

func (b *Base) IsConnectedOrConnecting() bool {
	return b.IsConnected() || b.IsConnecting()
}

func (b *Base) IsDisconnectedOrDisconnecting() bool {
	return b.IsDisconnected() || b.IsDisconnecting()
}

func (b *Base) NextRun() time.Time        { return b.nextRun }
func (b *Base) SetNextRun(t time.Time)    { b.nextRun = t }
func (b *Base) NextStop() *time.Time      { return b.nextStop }
func (b *Base) SetNextStop(t *time.Time)  { b.nextStop = t }
func (b *Base) LastRun() *time.Time       { return b.lastRun }
func (b *Base) SetLastRun(t *time.Time)   { b.lastRun = t }
func (b *Base) LastStop() *time.Time      { return b.lastStop }
func (b *Base) SetLastStop(t *time.Time)  { b.lastStop = t }
func (b *Base) LastUpdate() *time.Time      { return b.lastUpdate }
func (b *Base) SetLastUpdate(t *time.Time)  { b.lastUpdate = t }

func (b *Base) Opts() Opts          { return b.opts }
func (b *Base) SetOpts(opts Opts)   { b.opts = opts }

// Tickers returns the live map of tickers keyed by Ticker.Key(). Callers
// must not mutate it; use SetTicker/RemoveTicker instead.
func (b *Base) Tickers() map[string]quote.Ticker { return b.tickers }

func (b *Base) SetTicker(t quote.Ticker) {
	b.tickers[t.Key()] = t
}

func (b *Base) RemoveTicker(key string) (quote.Ticker, bool) {
	t, ok := b.tickers[key]
	if ok {
		delete(b.tickers, key)
	}
	return t, ok
}

func (b *Base) MsgSender() chan<- Msg { return b.msgSender }

func (b *Base) SetMsgSender(sender chan<- Msg) { b.msgSender = sender }
