package catalog_test

import (
	"context"
	"testing"

	"github.com/corraldata/rustlers/internal/catalog"
	"github.com/corraldata/rustlers/internal/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticReaderReturnsConfiguredEntries(t *testing.T) {
	mkt := quote.Market{ShortName: "BINANCE"}
	ticker := quote.FromCatalog("BTCUSDT", "USDT", mkt)

	reader := catalog.NewStaticReader(catalog.MarketTickers{Market: mkt, Tickers: []quote.Ticker{ticker}})

	got, err := reader.AllMarketsWithTickers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BINANCE", got[0].Market.ShortName)
	assert.Equal(t, []quote.Ticker{ticker}, got[0].Tickers)
}

func TestStaticReaderEmpty(t *testing.T) {
	reader := catalog.NewStaticReader()
	got, err := reader.AllMarketsWithTickers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
