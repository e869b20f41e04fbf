package rustlerjar_test

import (
	"context"
	"testing"

	"github.com/corraldata/rustlers/internal/quote"
	"github.com/corraldata/rustlers/internal/rustler"
	"github.com/corraldata/rustlers/internal/rustlerjar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRustler struct {
	rustler.Base
}

func newStub(name string) *stubRustler {
	return &stubRustler{Base: rustler.NewBase(name)}
}

func (s *stubRustler) Connect(ctx context.Context) error    { s.SetStatus(rustler.StatusConnected); return nil }
func (s *stubRustler) Disconnect(ctx context.Context) error { s.SetStatus(rustler.StatusDisconnected); return nil }
func (s *stubRustler) OnAdd(ctx context.Context, tickers []quote.Ticker) error    { return nil }
func (s *stubRustler) OnDelete(ctx context.Context, tickers []quote.Ticker) error { return nil }

func TestJarSharesOneRustlerAcrossMarkets(t *testing.T) {
	shared := newStub("exchange-a")
	other := newStub("exchange-b")

	jar := rustlerjar.NewBuilder().
		Register(shared, "NYSE", "NASDAQ").
		Register(other, "BINANCE").
		Build()

	nyse, ok := jar.Get("NYSE")
	require.True(t, ok)
	nasdaq, ok := jar.Get("NASDAQ")
	require.True(t, ok)
	binance, ok := jar.Get("BINANCE")
	require.True(t, ok)

	assert.Same(t, nyse, nasdaq)
	assert.NotSame(t, nyse, binance)
}

func TestJarGetUnknownMarketReturnsFalse(t *testing.T) {
	jar := rustlerjar.NewBuilder().Build()
	_, ok := jar.Get("UNKNOWN")
	assert.False(t, ok)
}

func TestHandleUseKeepsStateAcrossCalls(t *testing.T) {
	jar := rustlerjar.NewBuilder().Register(newStub("x"), "X").Build()
	h, ok := jar.Get("X")
	require.True(t, ok)

	err := h.Use(func(r rustler.Rustler) error {
		return r.Connect(context.Background())
	})
	require.NoError(t, err)

	err = h.Use(func(r rustler.Rustler) error {
		assert.True(t, r.IsConnected())
		return nil
	})
	require.NoError(t, err)
}
