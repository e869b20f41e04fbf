package rustler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/corraldata/rustlers/internal/quote"
	"github.com/corraldata/rustlers/internal/rustler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRustler is a minimal Rustler used to exercise the composite
// operations without a real data source.
type fakeRustler struct {
	rustler.Base
	connectCalls    int
	disconnectCalls int
	onAddCalls      [][]quote.Ticker
	onDeleteCalls   [][]quote.Ticker
	connectErr      error
}

func newFake() *fakeRustler {
	f := &fakeRustler{Base: rustler.NewBase("fake")}
	return f
}

func (f *fakeRustler) Connect(ctx context.Context) error {
	f.connectCalls++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.SetStatus(rustler.StatusConnected)
	return nil
}

func (f *fakeRustler) Disconnect(ctx context.Context) error {
	f.disconnectCalls++
	f.SetStatus(rustler.StatusDisconnected)
	return nil
}

func (f *fakeRustler) OnAdd(ctx context.Context, tickers []quote.Ticker) error {
	f.onAddCalls = append(f.onAddCalls, tickers)
	return nil
}

func (f *fakeRustler) OnDelete(ctx context.Context, tickers []quote.Ticker) error {
	f.onDeleteCalls = append(f.onDeleteCalls, tickers)
	return nil
}

func tkr(symbol, market string) quote.Ticker {
	return quote.Ticker{Symbol: symbol, Market: market}
}

func TestStartConnectsWhenConfiguredAndDisconnected(t *testing.T) {
	f := newFake()
	require.NoError(t, rustler.Start(context.Background(), f))
	assert.Equal(t, 1, f.connectCalls)
	assert.True(t, f.IsConnected())
}

func TestStartSkipsConnectWhenAlreadyConnected(t *testing.T) {
	f := newFake()
	f.SetStatus(rustler.StatusConnected)
	require.NoError(t, rustler.Start(context.Background(), f))
	assert.Equal(t, 0, f.connectCalls)
}

func TestStartSkipsConnectWhenDisabled(t *testing.T) {
	f := newFake()
	f.SetOpts(rustler.Opts{ConnectOnStart: false, ConnectOnAdd: true})
	require.NoError(t, rustler.Start(context.Background(), f))
	assert.Equal(t, 0, f.connectCalls)
}

func TestAddSkipsDuplicateTickersAndOnlyNotifiesNewOnes(t *testing.T) {
	f := newFake()
	btc := tkr("BTCUSDT", "BINANCE")
	eth := tkr("ETHUSDT", "BINANCE")

	require.NoError(t, rustler.Add(context.Background(), f, []quote.Ticker{btc}))
	require.NoError(t, rustler.Add(context.Background(), f, []quote.Ticker{btc, eth}))

	require.Len(t, f.onAddCalls, 2)
	assert.Equal(t, []quote.Ticker{btc}, f.onAddCalls[0])
	assert.Equal(t, []quote.Ticker{eth}, f.onAddCalls[1])
	assert.Len(t, f.Tickers(), 2)
}

func TestAddPropagatesConnectError(t *testing.T) {
	f := newFake()
	f.connectErr = errors.New("boom")
	err := rustler.Add(context.Background(), f, []quote.Ticker{tkr("X", "Y")})
	assert.Error(t, err)
	assert.Empty(t, f.onAddCalls)
}

func TestDeleteDisconnectsWhenTickerSetBecomesEmpty(t *testing.T) {
	f := newFake()
	btc := tkr("BTCUSDT", "BINANCE")
	require.NoError(t, rustler.Add(context.Background(), f, []quote.Ticker{btc}))

	require.NoError(t, rustler.Delete(context.Background(), f, []quote.Ticker{btc}))

	assert.Equal(t, 1, f.disconnectCalls)
	assert.True(t, f.IsDisconnected())
	require.Len(t, f.onDeleteCalls, 1)
	assert.Equal(t, []quote.Ticker{btc}, f.onDeleteCalls[0])
}

func TestDeleteKeepsRunningWhenOtherTickersRemain(t *testing.T) {
	f := newFake()
	btc := tkr("BTCUSDT", "BINANCE")
	eth := tkr("ETHUSDT", "BINANCE")
	require.NoError(t, rustler.Add(context.Background(), f, []quote.Ticker{btc, eth}))

	require.NoError(t, rustler.Delete(context.Background(), f, []quote.Ticker{btc}))

	assert.Equal(t, 0, f.disconnectCalls)
	assert.Len(t, f.Tickers(), 1)
}

func TestDeleteIgnoresTickersNotTracked(t *testing.T) {
	f := newFake()
	require.NoError(t, rustler.Delete(context.Background(), f, []quote.Ticker{tkr("GHOST", "X")}))
	assert.Empty(t, f.onDeleteCalls)
	assert.Equal(t, 0, f.disconnectCalls)
}

func TestSetStatusStampsTimestamps(t *testing.T) {
	f := newFake()
	assert.Nil(t, f.LastRun())
	f.SetStatus(rustler.StatusConnected)
	assert.NotNil(t, f.LastRun())

	assert.Nil(t, f.LastStop())
	f.SetStatus(rustler.StatusDisconnected)
	assert.NotNil(t, f.LastStop())
}
