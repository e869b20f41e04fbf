package gateway

import "encoding/json"

// Frame is the wire shape every WebSocket message is wrapped in, both
// inbound (client requests) and outbound (quote pushes, acks, errors).
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func newFrame(event string, data interface{}) (Frame, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: event, Data: payload}, nil
}
