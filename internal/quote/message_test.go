package quote_test

import (
	"testing"

	"github.com/corraldata/rustlers/internal/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoundTrip(t *testing.T) {
	cases := []quote.Quote{
		{Symbol: "BTCUSDT", Market: "BINANCE", Price: 50000.0, ChangePercent: 0.0, Time: 198798798798, MarketHours: quote.Regular},
		{Symbol: "AAPL", Market: "NASDAQ", Price: 172.35, ChangePercent: -1.28, Time: 1, MarketHours: quote.Pre},
		{Symbol: "X", Market: "Y", Price: 0, ChangePercent: 0, Time: 0, MarketHours: quote.Extended},
	}

	for _, q := range cases {
		t.Run(q.Symbol, func(t *testing.T) {
			decoded, err := quote.FromMessage(q.AsMessage())
			require.NoError(t, err)
			assert.Equal(t, q, decoded)
		})
	}
}

func TestFromMessageRejectsWrongFieldCount(t *testing.T) {
	t.Run("too few fields", func(t *testing.T) {
		_, err := quote.FromMessage("BTCUSDT¦BINANCE¦50000¦0¦1")
		assert.Error(t, err)
	})

	t.Run("too many fields", func(t *testing.T) {
		_, err := quote.FromMessage("BTCUSDT¦BINANCE¦50000¦0¦1¦1¦extra")
		assert.Error(t, err)
	})
}

func TestFromMessageRejectsUnparseableNumbers(t *testing.T) {
	_, err := quote.FromMessage("BTCUSDT¦BINANCE¦notaprice¦0¦1¦1")
	assert.Error(t, err)
}

func TestBelongsTo(t *testing.T) {
	q := quote.Quote{Symbol: "BTCUSDT", Market: "BINANCE"}
	ticker := quote.Ticker{Symbol: "BTCUSDT", Market: "BINANCE"}
	other := quote.Ticker{Symbol: "ETHUSDT", Market: "BINANCE"}

	assert.True(t, q.BelongsTo(ticker))
	assert.False(t, q.BelongsTo(other))
}
