package control_test

import (
	"testing"

	"github.com/corraldata/rustlers/internal/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventRoundTripsData(t *testing.T) {
	data := control.TickerChangedData{MarketShortName: "BINANCE", Symbol: "BTCUSDT"}
	event, err := control.NewEvent(control.EventTypeTickerAdded, data, control.EventMetadata{Source: "catalog-admin"})
	require.NoError(t, err)

	assert.Equal(t, control.EventTypeTickerAdded, event.Type)
	assert.NotEqual(t, [16]byte{}, event.ID)

	got, err := control.ParseEventData[control.TickerChangedData](event)
	require.NoError(t, err)
	assert.Equal(t, data, *got)
}

func TestParseEventDataDecodesMarketUpdated(t *testing.T) {
	event, err := control.NewEvent(control.EventTypeMarketUpdated, control.MarketUpdatedData{MarketShortName: "NYSE"}, control.EventMetadata{})
	require.NoError(t, err)

	got, err := control.ParseEventData[control.MarketUpdatedData](event)
	require.NoError(t, err)
	assert.Equal(t, "NYSE", got.MarketShortName)
}
