package gateway

import "encoding/json"

// EventDispatcher handles an inbound client frame. The default
// SubscriptionDispatcher understands "subscribe"/"unsubscribe"; callers
// can supply their own to extend or replace that behavior.
type EventDispatcher interface {
	Dispatch(client *Client, frame Frame)
}

// Error codes carried in an errorPayload's ErrorCode field.
const (
	ErrCodeInvalidPayload uint16 = 1
	ErrCodeUnknownEvent   uint16 = 2
)

// errorPayload is the documented "error" frame shape.
type errorPayload struct {
	ErrorCode uint16 `json:"errorCode"`
	Msg       string `json:"msg"`
}

// subscribeRequest is the payload for "subscribe"/"unsubscribe" frames.
type subscribeRequest struct {
	Market string `json:"market"`
	Symbol string `json:"symbol"`
}

func (r subscribeRequest) tickerKey() string {
	return r.Market + ":" + r.Symbol
}

// SubscriptionDispatcher routes "subscribe" and "unsubscribe" events to a
// client's own subscription set. Unknown events are acknowledged with an
// "error" frame rather than silently dropped.
type SubscriptionDispatcher struct{}

func (SubscriptionDispatcher) Dispatch(client *Client, frame Frame) {
	switch frame.Event {
	case "subscribe":
		var req subscribeRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			client.Send("error", errorPayload{ErrorCode: ErrCodeInvalidPayload, Msg: "invalid subscribe payload"})
			return
		}
		client.Subscribe(req.tickerKey())
		client.Send("subscribed", req)

	case "unsubscribe":
		var req subscribeRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			client.Send("error", errorPayload{ErrorCode: ErrCodeInvalidPayload, Msg: "invalid unsubscribe payload"})
			return
		}
		client.Unsubscribe(req.tickerKey())
		client.Send("unsubscribed", req)

	default:
		client.Send("error", errorPayload{ErrorCode: ErrCodeUnknownEvent, Msg: "unknown event: " + frame.Event})
	}
}
