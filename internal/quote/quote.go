// Package quote defines the wire-level value types shared by the bus and
// the gateway: Quote, Ticker, Market and the session-phase label used to
// decorate a Quote.
package quote

import "fmt"

// MarketHours labels the trading session a Quote was observed in.
type MarketHours uint8

const (
	Pre MarketHours = iota
	Regular
	Post
	Extended
)

func (h MarketHours) String() string {
	switch h {
	case Pre:
		return "pre"
	case Regular:
		return "regular"
	case Post:
		return "post"
	case Extended:
		return "extended"
	default:
		return "regular"
	}
}

// Quote is a point-in-time observation of a ticker's price.
type Quote struct {
	Symbol        string      `json:"symbol"`
	Market        string      `json:"market"`
	Price         float64     `json:"price"`
	ChangePercent float64     `json:"change_percent"`
	Time          int64       `json:"time"`
	MarketHours   MarketHours `json:"market_hours"`
}

// BusKey returns the unprefixed bus key for this quote: quote:{market}:{symbol}.
func (q Quote) BusKey() string {
	return fmt.Sprintf("quote:%s:%s", q.Market, q.Symbol)
}

// ToBusVal returns the ordered field list written by HSET for this quote.
func (q Quote) ToBusVal() [][2]string {
	return [][2]string{
		{"symbol", q.Symbol},
		{"market", q.Market},
		{"price", formatFloat(q.Price)},
		{"market_hours", fmt.Sprintf("%d", uint8(q.MarketHours))},
		{"time", fmt.Sprintf("%d", q.Time)},
		{"change_percent", formatFloat(q.ChangePercent)},
	}
}

// BelongsTo reports whether the quote originated from the given ticker's
// (symbol, market) identity.
func (q Quote) BelongsTo(t Ticker) bool {
	return q.Symbol == t.Symbol && q.Market == t.Market
}

// Equal compares two quotes by (symbol, market) identity, matching the
// source's PartialEq<Quote> for Quote.
func (q Quote) Equal(other Quote) bool {
	return q.Symbol == other.Symbol && q.Market == other.Market
}
