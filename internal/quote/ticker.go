package quote

import "fmt"

// Ticker is the identity of a tradable instrument within a market.
type Ticker struct {
	Symbol     string
	Market     string
	QuoteAsset string // optional, empty when not applicable
}

// Key returns the ticker's registry key: "{market}:{symbol}".
func (t Ticker) Key() string {
	return fmt.Sprintf("%s:%s", t.Market, t.Symbol)
}

// Equal compares two tickers by (symbol, market) identity.
func (t Ticker) Equal(other Ticker) bool {
	return t.Symbol == other.Symbol && t.Market == other.Market
}

// FromCatalog builds a Ticker from catalog rows, resolving the effective
// market name: PubName if present, otherwise ShortName.
func FromCatalog(symbol, quoteAsset string, m Market) Ticker {
	return Ticker{
		Symbol:     symbol,
		Market:     m.EffectiveName(),
		QuoteAsset: quoteAsset,
	}
}
