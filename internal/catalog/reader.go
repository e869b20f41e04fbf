// Package catalog is the read-only side of the markets/tickers catalog:
// which markets exist, their trading calendar, and which tickers belong
// to them. Nothing here writes to the catalog; registration/editing is
// someone else's concern.
package catalog

import (
	"context"

	"github.com/corraldata/rustlers/internal/quote"
)

// Reader loads markets and their tickers from wherever the catalog is
// kept.
type Reader interface {
	// AllMarketsWithTickers returns every market alongside the tickers
	// currently registered under it.
	AllMarketsWithTickers(ctx context.Context) ([]MarketTickers, error)
}

// MarketTickers pairs a market with the tickers currently cataloged
// under it.
type MarketTickers struct {
	Market  quote.Market
	Tickers []quote.Ticker
}
