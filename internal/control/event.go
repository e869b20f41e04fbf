package control

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Catalog change event types. A rustlersvc subscribed to these can react
// to catalog edits without needing Restart.
const (
	EventTypeTickerAdded   = "ticker.added"
	EventTypeTickerRemoved = "ticker.removed"
	EventTypeMarketUpdated = "market.updated"
)

// Event is the envelope every catalog change is wrapped in before it goes
// out on the control bus.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Metadata  EventMetadata   `json:"metadata"`
}

// EventMetadata carries provenance for an Event, useful for tracing which
// catalog write triggered a given reconfiguration.
type EventMetadata struct {
	Source        string `json:"source"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// TickerChangedData is the payload for EventTypeTickerAdded/Removed.
type TickerChangedData struct {
	MarketShortName string `json:"market_short_name"`
	Symbol          string `json:"symbol"`
	QuoteAsset      string `json:"quote_asset,omitempty"`
}

// MarketUpdatedData is the payload for EventTypeMarketUpdated.
type MarketUpdatedData struct {
	MarketShortName string `json:"market_short_name"`
}

// NewEvent builds an Event, marshaling data into its Data field.
func NewEvent(eventType string, data interface{}, metadata EventMetadata) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      payload,
		Metadata:  metadata,
	}, nil
}

// ParseEventData unmarshals an Event's Data into T.
func ParseEventData[T any](event *Event) (*T, error) {
	var data T
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
