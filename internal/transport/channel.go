package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"
)

// Channel is the duplex real-time connection to the chat backend. It emits a
// join event on open, delivers inbound events to a single handler, and does
// not reconnect on its own: after a drop the owner decides whether to dial
// again.
type Channel struct {
	url       string
	sessionID string
	logger    *slog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	handler func(Envelope)

	connected atomic.Bool
}

// NewChannel creates a channel for the given websocket URL and session.
func NewChannel(url, sessionID string, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		url:       url,
		sessionID: sessionID,
		logger:    logger,
	}
}

// OnMessage registers the inbound event handler. Must be called before
// Connect; events arriving with no handler are dropped.
func (c *Channel) OnMessage(handler func(Envelope)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// Connect dials the backend, announces the session with a join event, and
// starts the read loop. Intended to be called once per controller mount.
func (c *Channel) Connect(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial channel %s: %w", c.url, err)
	}

	readCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		cancel()
		_ = conn.Close(websocket.StatusNormalClosure, "duplicate connect")
		return fmt.Errorf("channel already connected")
	}
	c.conn = conn
	c.cancel = cancel
	c.mu.Unlock()

	join := Envelope{Type: EventJoin, SessionID: c.sessionID}
	if err := c.write(readCtx, join); err != nil {
		c.teardown()
		return fmt.Errorf("send join: %w", err)
	}

	c.connected.Store(true)
	c.logger.Info("Channel connected", "url", c.url, "session_id", c.sessionID)

	go c.readLoop(readCtx, conn)
	return nil
}

// Connected reports whether the channel is currently open. REST availability
// is independent of this flag.
func (c *Channel) Connected() bool {
	return c.connected.Load()
}

// Send transmits an event without waiting for acknowledgment. It is a no-op
// when the channel is not connected.
func (c *Channel) Send(event string, env Envelope) {
	if !c.connected.Load() {
		return
	}
	env.Type = event
	env.SessionID = c.sessionID
	if err := c.write(context.Background(), env); err != nil {
		c.logger.Debug("Channel send failed", "event", event, "error", err)
	}
}

// Close tears the connection down. Safe to call more than once and on a
// channel that never connected.
func (c *Channel) Close() {
	c.teardown()
}

func (c *Channel) write(ctx context.Context, env Envelope) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("channel not connected")
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer c.teardown()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.logger.Debug("Channel closed by server")
			} else if ctx.Err() == nil {
				c.logger.Warn("Channel read error", "error", err)
			}
			return
		}

		env := decodeInbound(data)

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler != nil {
			handler(env)
		}
	}
}

// decodeInbound parses a frame into the typed envelope. A JSON string is
// treated as a bot message; anything else that fails to decode degrades to a
// raw bot-sender event rather than being dropped.
func decodeInbound(data []byte) Envelope {
	var env Envelope
	if err := json.Unmarshal(data, &env); err == nil && (env.Type != "" || env.Message != "") {
		return env
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return Envelope{Sender: "bot", Message: s}
	}

	return Envelope{Sender: "bot", Raw: string(data)}
}

func (c *Channel) teardown() {
	c.mu.Lock()
	conn := c.conn
	cancel := c.cancel
	c.conn = nil
	c.cancel = nil
	c.mu.Unlock()

	wasConnected := c.connected.Swap(false)
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "client closed")
	}
	if wasConnected {
		c.logger.Info("Channel disconnected", "session_id", c.sessionID)
	}
}
