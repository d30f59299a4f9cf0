package feed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rickgao/dex-buybot/internal/model"
)

// Subscriber errors
var (
	ErrAlreadyClosed   = errors.New("already closed")
	ErrStaleConnection = errors.New("connection stale (no pong)")
)

// SubscriberConfig holds settings for a feed subscriber.
type SubscriberConfig struct {
	URL          string // ws:// or wss:// address of the feed endpoint
	BufferSize   int
	PingInterval time.Duration
	PingTimeout  time.Duration // No pong for this long marks the connection stale
	WriteTimeout time.Duration
}

// DefaultSubscriberConfig returns defaults for the given feed URL.
func DefaultSubscriberConfig(url string) SubscriberConfig {
	return SubscriberConfig{
		URL:          url,
		BufferSize:   100,
		PingInterval: 30 * time.Second,
		PingTimeout:  90 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Subscriber is a websocket client of a buy feed.
type Subscriber struct {
	cfg    SubscriberConfig
	logger *slog.Logger

	conn *websocket.Conn

	buys   chan model.Buy
	errors chan error
	done   chan struct{}

	mu       sync.RWMutex
	lastPong time.Time
	closed   bool
}

// NewSubscriber creates a subscriber. Call Connect to start receiving.
func NewSubscriber(cfg SubscriberConfig, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultSubscriberConfig(cfg.URL)
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = def.PingTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	return &Subscriber{
		cfg:    cfg,
		logger: logger.With("component", "feed_subscriber"),
		buys:   make(chan model.Buy, cfg.BufferSize),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
}

// Connect dials the feed and starts the read and keepalive loops.
func (s *Subscriber) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrAlreadyClosed
	}
	s.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.lastPong = time.Now()
	s.mu.Unlock()

	conn.SetPongHandler(func(string) error {
		s.mu.Lock()
		s.lastPong = time.Now()
		s.mu.Unlock()
		return nil
	})

	go s.readLoop()
	go s.keepaliveLoop()

	s.logger.Debug("feed connected", "url", s.cfg.URL)
	return nil
}

// Buys returns the channel of received buys. It is closed when the read loop exits.
func (s *Subscriber) Buys() <-chan model.Buy {
	return s.buys
}

// Errors returns the channel of connection errors.
func (s *Subscriber) Errors() <-chan error {
	return s.errors
}

// Close gracefully closes the connection.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.mu.Unlock()

	close(s.done)

	if conn == nil {
		return nil
	}
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return conn.Close()
}

func (s *Subscriber) readLoop() {
	defer close(s.buys)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.report(err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("failed to decode feed message", "error", err)
			continue
		}
		if msg.Type != MessageTypeBuy {
			continue
		}

		select {
		case s.buys <- msg.Data:
		case <-s.done:
			return
		default:
			s.logger.Warn("buy buffer full, dropping", "tx_hash", msg.Data.TxHash)
		}
	}
}

// keepaliveLoop pings the server and reports a stale connection.
func (s *Subscriber) keepaliveLoop() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				s.logger.Debug("failed to send ping", "error", err)
			}

			s.mu.RLock()
			last := s.lastPong
			s.mu.RUnlock()

			if time.Since(last) > s.cfg.PingTimeout {
				s.logger.Warn("no pong received, connection stale",
					"last_pong", last,
					"timeout", s.cfg.PingTimeout,
				)
				s.report(ErrStaleConnection)
				return
			}
		}
	}
}

func (s *Subscriber) report(err error) {
	select {
	case s.errors <- err:
	default:
	}
}
