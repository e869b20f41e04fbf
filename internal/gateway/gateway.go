// Package gateway exposes the quote stream to external clients over
// WebSocket: clients connect, subscribe to tickers by market/symbol, and
// receive a push for every matching quote published on the bus.
package gateway

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/corraldata/rustlers/internal/bus"
	"github.com/corraldata/rustlers/internal/quote"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandshakePredicate decides whether an incoming connection may be
// upgraded. Returning false rejects the connection; the gateway itself
// does not dictate how the check is done (bearer token, API key, IP
// allowlist, ...).
type HandshakePredicate func(r *http.Request) bool

// Config configures a Server.
type Config struct {
	// Handshake, if non-nil, gates every upgrade attempt.
	Handshake HandshakePredicate
	// Dispatcher routes inbound client frames. Defaults to
	// SubscriptionDispatcher when nil.
	Dispatcher EventDispatcher
}

// Server is the WebSocket gateway: an accept loop wired to gin, fanning
// quotes out to whichever connected clients are subscribed to them.
type Server struct {
	router     *gin.Engine
	upgrader   websocket.Upgrader
	handshake  HandshakePredicate
	dispatcher EventDispatcher

	mu      sync.RWMutex
	clients map[string]*Client

	totalClients atomic.Uint64
}

// NewServer builds a Server and wires its routes.
func NewServer(cfg Config) *Server {
	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = SubscriptionDispatcher{}
	}

	s := &Server{
		router: gin.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		handshake:  cfg.Handshake,
		dispatcher: dispatcher,
		clients:    make(map[string]*Client),
	}

	s.router.Use(gin.Recovery())
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/ws", s.handleWebSocket)

	return s
}

// Router exposes the underlying gin engine, e.g. for tests or for adding
// further routes before Start.
func (s *Server) Router() *gin.Engine { return s.router }

// Start runs the HTTP server, blocking until it exits.
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// CurrentClients returns the number of presently connected clients.
func (s *Server) CurrentClients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// TotalClients returns the number of clients accepted since the server
// started. It only grows, unlike CurrentClients.
func (s *Server) TotalClients() uint64 {
	return s.totalClients.Load()
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"current_clients": s.CurrentClients(),
		"total_clients":   s.TotalClients(),
	})
}

func (s *Server) handleWebSocket(c *gin.Context) {
	if s.handshake != nil && !s.handshake(c.Request) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := newClient(conn)

	s.mu.Lock()
	s.clients[client.ID.String()] = client
	s.mu.Unlock()
	s.totalClients.Add(1)

	go client.writePump()
	go func() {
		client.readPump(s.dispatcher.Dispatch)
		s.mu.Lock()
		delete(s.clients, client.ID.String())
		s.mu.Unlock()
	}()
}

// BroadcastQuote pushes q as a "quote" frame to every client subscribed
// to its ticker key.
func (s *Server) BroadcastQuote(q quote.Quote) {
	key := q.Market + ":" + q.Symbol

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, client := range s.clients {
		if client.IsSubscribed(key) {
			client.Send("quote", q)
		}
	}
}

// ServeQuotes drains sub and broadcasts every received quote until ctx is
// canceled. Run it in its own goroutine.
func (s *Server) ServeQuotes(ctx context.Context, sub *bus.Subscriber) {
	quotes, unsubscribe := sub.Stream(ctx)
	defer unsubscribe()

	for {
		select {
		case q, ok := <-quotes:
			if !ok {
				return
			}
			s.BroadcastQuote(q)
		case <-ctx.Done():
			return
		}
	}
}
