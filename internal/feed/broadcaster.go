// Package feed streams notified buys to websocket clients.
package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rickgao/dex-buybot/internal/metrics"
	"github.com/rickgao/dex-buybot/internal/model"
)

// MessageTypeBuy tags buy events on the wire.
const MessageTypeBuy = "buy"

// Message is the JSON frame sent to clients.
type Message struct {
	Type string    `json:"type"`
	Data model.Buy `json:"data"`
}

// Broadcaster fans buy events out to connected websocket clients.
type Broadcaster struct {
	clients      map[*websocket.Conn]struct{}
	mu           sync.Mutex
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	closed       bool

	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewBroadcaster creates a broadcaster. m may be nil.
func NewBroadcaster(writeTimeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Broadcaster{
		clients:      make(map[*websocket.Conn]struct{}),
		upgrader:     websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		writeTimeout: writeTimeout,
		metrics:      m,
		logger:       logger.With("component", "feed"),
	}
}

// Record sends a buy to every client. Clients that fail a write are dropped.
func (b *Broadcaster) Record(buy model.Buy) {
	msg, err := json.Marshal(Message{Type: MessageTypeBuy, Data: buy})
	if err != nil {
		b.logger.Error("failed to marshal buy", "tx_hash", buy.TxHash, "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for c := range b.clients {
		c.SetWriteDeadline(time.Now().Add(b.writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			b.logger.Debug("websocket write error", "remote", c.RemoteAddr().String(), "error", err)
			c.Close()
			delete(b.clients, c)
		}
	}
	b.metrics.SetFeedClients(len(b.clients))
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Handler returns an http.HandlerFunc to accept websocket connections.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			b.logger.Warn("websocket upgrade error", "error", err)
			return
		}

		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			conn.Close()
			return
		}
		b.clients[conn] = struct{}{}
		b.metrics.SetFeedClients(len(b.clients))
		b.mu.Unlock()

		b.logger.Debug("feed client connected", "remote", r.RemoteAddr)

		// Read loop detects client disconnects; incoming frames are ignored.
		go func() {
			defer b.remove(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

// Close disconnects all clients and rejects new ones.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for c := range b.clients {
		c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		c.Close()
		delete(b.clients, c)
	}
	b.metrics.SetFeedClients(0)
}

func (b *Broadcaster) remove(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.clients, conn)
	b.metrics.SetFeedClients(len(b.clients))
	b.mu.Unlock()
	conn.Close()
}
