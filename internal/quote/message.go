package quote

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// delimiter separates the six fields of an on-wire Quote message.
const delimiter = "¦"

// AsMessage encodes q as "symbol¦market¦price¦change_percent¦time¦market_hours".
func (q Quote) AsMessage() string {
	return strings.Join([]string{
		q.Symbol,
		q.Market,
		formatFloat(q.Price),
		formatFloat(q.ChangePercent),
		strconv.FormatInt(q.Time, 10),
		strconv.FormatUint(uint64(q.MarketHours), 10),
	}, delimiter)
}

// FromMessage decodes a Quote from its on-wire message form. A payload that
// does not split into exactly six parts, or whose numeric parts fail to
// parse, is a decode error — never a panic.
func FromMessage(msg string) (Quote, error) {
	parts := strings.Split(msg, delimiter)
	if len(parts) != 6 {
		return Quote{}, fmt.Errorf("quote: expected 6 fields, got %d", len(parts))
	}

	price, err := parseFloat(parts[2])
	if err != nil {
		return Quote{}, fmt.Errorf("quote: invalid price %q: %w", parts[2], err)
	}

	changePercent, err := parseFloat(parts[3])
	if err != nil {
		return Quote{}, fmt.Errorf("quote: invalid change_percent %q: %w", parts[3], err)
	}

	t, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil {
		return Quote{}, fmt.Errorf("quote: invalid time %q: %w", parts[4], err)
	}

	mh, err := strconv.ParseUint(parts[5], 10, 8)
	if err != nil {
		return Quote{}, fmt.Errorf("quote: invalid market_hours %q: %w", parts[5], err)
	}

	return Quote{
		Symbol:        parts[0],
		Market:        parts[1],
		Price:         price,
		ChangePercent: changePercent,
		Time:          t,
		MarketHours:   MarketHours(mh),
	}, nil
}

// formatFloat and parseFloat round-trip a float64 through shopspring/decimal
// rather than strconv directly, matching the pack's convention for any
// price-like value crossing a wire (pkg/decimal, pkg/orderbook in the
// teacher). decimal.NewFromFloat uses the shortest round-tripping decimal
// representation, so this is identity for any finite, non-NaN float.
func formatFloat(f float64) string {
	return decimal.NewFromFloat(f).String()
}

func parseFloat(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
