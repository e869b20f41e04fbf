// Package wsfeed is a rustler.Rustler that dials a WebSocket endpoint and
// turns its frames into quotes. The wire protocol of any specific
// exchange is out of scope here — callers supply a FrameParser (and
// optionally Subscribe/UnsubscribeEncoders); this package only handles
// the dial/reconnect/read-pump plumbing around it.
package wsfeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/corraldata/rustlers/internal/quote"
	"github.com/corraldata/rustlers/internal/rustler"
	"github.com/gorilla/websocket"
)

// FrameParser decodes one upstream WebSocket message into zero or more
// quotes. A frame that carries no quote (a heartbeat, an ack) should
// return a nil slice and a nil error.
type FrameParser func(raw []byte) ([]quote.Quote, error)

// SubscribeEncoder builds the upstream message to send when tickers are
// added (or nil/false to send nothing for this adapter).
type SubscribeEncoder func(tickers []quote.Ticker) (msg interface{}, ok bool)

// Config configures a Rustler.
type Config struct {
	Name string
	URL  string

	FrameParser        FrameParser
	SubscribeEncoder   SubscribeEncoder
	UnsubscribeEncoder SubscribeEncoder

	DialTimeout   time.Duration
	ReconnectWait time.Duration
}

// Rustler dials Config.URL and forwards parsed quotes to its message
// sender, reconnecting with backoff if the connection drops while still
// wanted.
type Rustler struct {
	rustler.Base

	url                string
	parse              FrameParser
	subscribeEncoder   SubscribeEncoder
	unsubscribeEncoder SubscribeEncoder
	dialTimeout        time.Duration
	reconnectWait      time.Duration

	connMu sync.Mutex
	conn   *websocket.Conn

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// New creates a wsfeed Rustler. Name defaults to "wsfeed", DialTimeout
// to 10s, ReconnectWait to 2s. Without a FrameParser, every upstream
// frame is read and discarded, so no quote is ever emitted.
func New(cfg Config) *Rustler {
	name := cfg.Name
	if name == "" {
		name = "wsfeed"
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	reconnectWait := cfg.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}

	return &Rustler{
		Base:               rustler.NewBase(name),
		url:                cfg.URL,
		parse:              cfg.FrameParser,
		subscribeEncoder:   cfg.SubscribeEncoder,
		unsubscribeEncoder: cfg.UnsubscribeEncoder,
		dialTimeout:        dialTimeout,
		reconnectWait:      reconnectWait,
	}
}

func (r *Rustler) Connect(ctx context.Context) error {
	if r.IsConnectedOrConnecting() {
		return nil
	}

	r.SetStatus(rustler.StatusConnecting)

	conn, err := r.dial()
	if err != nil {
		r.SetStatus(rustler.StatusDisconnected)
		return fmt.Errorf("wsfeed: dialing %s: %w", r.url, err)
	}

	r.connMu.Lock()
	r.conn = conn
	r.connMu.Unlock()

	r.shutdown = make(chan struct{})
	r.wg.Add(1)
	go r.readLoop()

	r.SetStatus(rustler.StatusConnected)
	return nil
}

func (r *Rustler) Disconnect(ctx context.Context) error {
	if r.IsDisconnectedOrDisconnecting() {
		return nil
	}

	r.SetStatus(rustler.StatusDisconnecting)
	close(r.shutdown)

	r.connMu.Lock()
	if r.conn != nil {
		_ = r.conn.Close()
	}
	r.connMu.Unlock()

	r.wg.Wait()
	r.SetStatus(rustler.StatusDisconnected)
	return nil
}

func (r *Rustler) OnAdd(ctx context.Context, tickers []quote.Ticker) error {
	return r.sendEncoded(r.subscribeEncoder, tickers)
}

func (r *Rustler) OnDelete(ctx context.Context, tickers []quote.Ticker) error {
	return r.sendEncoded(r.unsubscribeEncoder, tickers)
}

func (r *Rustler) sendEncoded(encoder SubscribeEncoder, tickers []quote.Ticker) error {
	if encoder == nil {
		return nil
	}

	msg, ok := encoder(tickers)
	if !ok {
		return nil
	}

	r.connMu.Lock()
	conn := r.conn
	r.connMu.Unlock()
	if conn == nil {
		return fmt.Errorf("wsfeed: not connected")
	}

	r.connMu.Lock()
	defer r.connMu.Unlock()
	return conn.WriteJSON(msg)
}

func (r *Rustler) dial() (*websocket.Conn, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: r.dialTimeout}
	conn, _, err := dialer.Dial(r.url, nil)
	return conn, err
}

func (r *Rustler) readLoop() {
	defer r.wg.Done()

	for {
		conn := r.currentConn()
		if conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-r.shutdown:
				return
			default:
			}
			if !r.reconnect() {
				return
			}
			continue
		}

		if r.parse == nil {
			continue
		}
		quotes, err := r.parse(raw)
		if err != nil {
			continue
		}
		r.emit(quotes)
	}
}

func (r *Rustler) currentConn() *websocket.Conn {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	return r.conn
}

// reconnect waits reconnectWait, then redials, replacing the live
// connection. Returns false if the rustler was told to stop meanwhile.
func (r *Rustler) reconnect() bool {
	select {
	case <-time.After(r.reconnectWait):
	case <-r.shutdown:
		return false
	}

	conn, err := r.dial()
	if err != nil {
		return true // try again on the next loop iteration
	}

	r.connMu.Lock()
	if r.conn != nil {
		_ = r.conn.Close()
	}
	r.conn = conn
	r.connMu.Unlock()

	return true
}

// emit forwards quotes to the rustler's message sender, blocking when the
// channel is full so a slow publisher throttles this read loop rather than
// silently losing quotes. A concurrent shutdown still unblocks it.
func (r *Rustler) emit(quotes []quote.Quote) {
	sender := r.MsgSender()
	if sender == nil {
		return
	}
	for _, q := range quotes {
		select {
		case sender <- rustler.Msg{Quote: q}:
		case <-r.shutdown:
			return
		}
	}
}
