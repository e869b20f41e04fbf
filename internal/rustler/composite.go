package rustler

import (
	"context"

	"github.com/corraldata/rustlers/internal/quote"
)

// Start brings r up according to its options: connects it first unless
// ConnectOnStart is false or it's already connected/connecting.
func Start(ctx context.Context, r Rustler) error {
	opts := r.Opts()
	if opts.ConnectOnStart && !r.IsConnectedOrConnecting() {
		return r.Connect(ctx)
	}
	return nil
}

// Add registers newTickers with r, connecting it first if configured to
// and necessary, then notifying r.OnAdd with only the tickers that were
// actually new (tickers already tracked are silently skipped).
func Add(ctx context.Context, r Rustler, newTickers []quote.Ticker) error {
	var added []quote.Ticker
	for _, t := range newTickers {
		if _, exists := r.Tickers()[t.Key()]; exists {
			continue
		}
		r.SetTicker(t)
		added = append(added, t)
	}

	if r.Opts().ConnectOnAdd && !r.IsConnectedOrConnecting() {
		if err := r.Connect(ctx); err != nil {
			return err
		}
	}

	if len(added) > 0 {
		return r.OnAdd(ctx, added)
	}
	return nil
}

// Delete removes tickers from r, notifying r.OnDelete with only the
// tickers that were actually removed, and disconnecting r if the ticker
// set ends up empty.
func Delete(ctx context.Context, r Rustler, tickers []quote.Ticker) error {
	var removed []quote.Ticker
	for _, t := range tickers {
		if rt, ok := r.RemoveTicker(t.Key()); ok {
			removed = append(removed, rt)
		}
	}

	if len(r.Tickers()) == 0 && !r.IsDisconnectedOrDisconnecting() {
		if err := r.Disconnect(ctx); err != nil {
			return err
		}
	}

	if len(removed) > 0 {
		return r.OnDelete(ctx, removed)
	}
	return nil
}
