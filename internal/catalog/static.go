package catalog

import "context"

// StaticReader is a fixed, in-memory Reader for tests and local
// development without a database.
type StaticReader struct {
	entries []MarketTickers
}

// NewStaticReader wraps a fixed set of market/ticker pairs.
func NewStaticReader(entries ...MarketTickers) *StaticReader {
	return &StaticReader{entries: entries}
}

func (r *StaticReader) AllMarketsWithTickers(ctx context.Context) ([]MarketTickers, error) {
	return r.entries, nil
}
