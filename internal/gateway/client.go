package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// outgoing serializes writes to a single WebSocket connection: the write
// pump and the ping ticker both write through it, and gorilla/websocket
// connections are not safe for concurrent writers.
type outgoing struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (o *outgoing) writeJSON(v interface{}) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_ = o.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return o.conn.WriteJSON(v)
}

func (o *outgoing) writeControl(messageType int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conn.WriteControl(messageType, nil, time.Now().Add(writeWait))
}

// Client is one connected WebSocket session.
type Client struct {
	ID uuid.UUID

	conn *websocket.Conn
	out  *outgoing

	send chan Frame
	done chan struct{}
	once sync.Once

	subsMu sync.RWMutex
	subs   map[string]struct{}
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New(),
		conn: conn,
		out:  &outgoing{conn: conn},
		send: make(chan Frame, sendBuffer),
		done: make(chan struct{}),
		subs: make(map[string]struct{}),
	}
}

// Send queues a frame for delivery. It never blocks the caller; if the
// client's outgoing buffer is full, the frame is dropped.
func (c *Client) Send(event string, data interface{}) {
	frame, err := newFrame(event, data)
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// Close terminates the client's pumps. Safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Subscribe adds tickerKey to this client's subscription set.
func (c *Client) Subscribe(tickerKey string) {
	c.subsMu.Lock()
	c.subs[tickerKey] = struct{}{}
	c.subsMu.Unlock()
}

// Unsubscribe removes tickerKey from this client's subscription set.
func (c *Client) Unsubscribe(tickerKey string) {
	c.subsMu.Lock()
	delete(c.subs, tickerKey)
	c.subsMu.Unlock()
}

// IsSubscribed reports whether this client currently wants tickerKey.
func (c *Client) IsSubscribed(tickerKey string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	_, ok := c.subs[tickerKey]
	return ok
}

func (c *Client) readPump(dispatch func(*Client, Frame)) {
	defer c.Close()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// Malformed payload: skip it, the socket stays open.
			continue
		}
		dispatch(c, frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.Close()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.out.writeJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.out.writeControl(websocket.PingMessage); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
