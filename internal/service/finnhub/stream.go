package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"StockSage/internal/domain/models"
	applogger "StockSage/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream delivers realtime trades over the Finnhub WebSocket. It owns its
// reconnect loop: a dropped connection is re-dialed after reconnectDelay
// and the symbol subscriptions are replayed.
type Stream struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *applogger.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	ticks  chan models.Tick
	cancel context.CancelFunc
	done   chan struct{}
}

// NewStream creates a Finnhub market stream.
func NewStream(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) *Stream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
		ticks:          make(chan models.Tick, 1024),
		done:           make(chan struct{}),
	}
}

// Start connects and launches the read and ping loops.
func (s *Stream) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if err := s.connect(ctx); err != nil {
		cancel()
		return err
	}

	go s.pingLoop(ctx)
	go s.readLoop(ctx)

	return nil
}

// Ticks returns the tick channel. It is closed when the stream stops.
func (s *Stream) Ticks() <-chan models.Tick {
	return s.ticks
}

// Close tears the stream down.
func (s *Stream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Stream) connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("finnhub connect: %w", err)
	}

	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(msg); err != nil {
			_ = conn.Close()
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.log.Info("finnhub stream connected", applogger.Int("symbols", len(s.symbols)))
	return nil
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

func (s *Stream) readLoop(ctx context.Context) {
	defer close(s.ticks)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()

		if conn == nil {
			if !s.reconnect(ctx) {
				return
			}
			continue
		}

		_, b, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("finnhub read error, reconnecting", applogger.Error(err))
			_ = conn.Close()
			s.mu.Lock()
			s.conn = nil
			s.mu.Unlock()
			continue
		}

		var m wsMessage
		if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
			continue
		}

		for _, d := range m.Data {
			tick := models.Tick{
				Symbol:    d.S,
				Timestamp: d.T / 1000,
				Price:     d.P,
				Volume:    d.V,
			}
			select {
			case s.ticks <- tick:
			default:
				// drop on backpressure
			}
		}
	}
}

func (s *Stream) reconnect(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(s.reconnectDelay):
	}
	if err := s.connect(ctx); err != nil {
		s.log.Error("finnhub reconnect failed", applogger.Error(err))
	}
	return true
}

func (s *Stream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.conn != nil {
				_ = s.conn.WriteMessage(websocket.PingMessage, nil)
			}
			s.mu.Unlock()
		}
	}
}
