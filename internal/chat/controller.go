// Package chat implements the conversation-state controller: the ordered
// message list, the optimistic send flow, typing debounce, history loading,
// and inbound real-time event handling.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/floatchat/floatchat-go/internal/domain"
	"github.com/floatchat/floatchat-go/internal/format"
	"github.com/floatchat/floatchat-go/internal/transport"
)

// PlaceholderText is the transient bubble shown while a send is in flight.
const PlaceholderText = "Thinking..."

// ErrorText replaces the placeholder when a send fails. Exactly one bubble
// communicates failure per failed send; errors never reach the caller.
const ErrorText = "Sorry, something went wrong."

// Realtime is the duplex-channel surface the controller uses.
type Realtime interface {
	Send(event string, env transport.Envelope)
	Connected() bool
	Close()
}

// API is the REST surface the controller uses.
type API interface {
	PostMessage(ctx context.Context, sessionID, message string) (json.RawMessage, error)
	Messages(ctx context.Context, sessionID string) ([]transport.HistoryMessage, error)
}

// Config holds controller configuration and presentation hooks.
type Config struct {
	SessionID string

	// TypingDebounce is the trailing-edge quiet period before the typing
	// stop event is emitted. Defaults to one second.
	TypingDebounce time.Duration

	// OnUpdate is called after every message-list mutation, outside the
	// controller lock. Presentation reads a fresh snapshot in response.
	OnUpdate func()

	// OnPeerTyping receives inbound user_typing events. Purely a UI hook;
	// no controller state changes.
	OnPeerTyping func(isTyping bool)

	Logger *slog.Logger
}

// Controller owns the conversation state. It is the single writer of the
// message list; Presentation only ever sees snapshots.
type Controller struct {
	sessionID    string
	debounce     time.Duration
	onUpdate     func()
	onPeerTyping func(bool)
	logger       *slog.Logger

	rt  Realtime
	api API

	mu          sync.Mutex
	messages    []domain.Message
	typingTimer *time.Timer

	pending sync.WaitGroup
}

// New creates a controller over the given transport surfaces.
func New(cfg Config, rt Realtime, api API) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.TypingDebounce
	if debounce <= 0 {
		debounce = time.Second
	}
	return &Controller{
		sessionID:    cfg.SessionID,
		debounce:     debounce,
		onUpdate:     cfg.OnUpdate,
		onPeerTyping: cfg.OnPeerTyping,
		logger:       logger,
		rt:           rt,
		api:          api,
	}
}

// Messages returns a snapshot of the conversation in display order.
func (c *Controller) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]domain.Message, len(c.messages))
	copy(snapshot, c.messages)
	return snapshot
}

// Connected reports the real-time channel status. REST failures do not
// affect this flag.
func (c *Controller) Connected() bool {
	return c.rt.Connected()
}

// SendMessage runs the optimistic send flow: append the user message and a
// placeholder, emit a best-effort channel event, then resolve the REST reply
// into a positional replacement of the last list element.
//
// The replace step targets the current last element, so callers must not
// overlap sends; a second send issued before the first settles can have its
// placeholder consumed by the earlier response.
func (c *Controller) SendMessage(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.append(domain.NewMessage(domain.SenderUser, text))
	c.append(domain.NewMessage(domain.SenderSystem, PlaceholderText))

	// Best-effort real-time echo; ignored when the channel is down.
	c.rt.Send(transport.EventMessage, transport.Envelope{
		Message: text,
		Sender:  string(domain.SenderUser),
	})

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()

		raw, err := c.api.PostMessage(context.Background(), c.sessionID, text)
		if err != nil {
			c.logger.Warn("Chat message request failed", "session_id", c.sessionID, "error", err)
			c.replaceLast(domain.NewMessage(domain.SenderBot, ErrorText))
			return
		}
		c.replaceLast(domain.NewMessage(domain.SenderBot, format.BotResponse(raw)))
	}()
}

// HandleTyping emits a typing-start event immediately and restarts the
// trailing-edge debounce timer; the stop event fires once the quiet period
// elapses with no further calls.
func (c *Controller) HandleTyping() {
	c.rt.Send(transport.EventTyping, transport.Envelope{IsTyping: transport.Typing(true)})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.typingTimer != nil {
		c.typingTimer.Stop()
	}
	c.typingTimer = time.AfterFunc(c.debounce, func() {
		c.rt.Send(transport.EventTyping, transport.Envelope{IsTyping: transport.Typing(false)})
	})
}

// LoadHistory fetches the persisted conversation and replaces the local list
// with it. A failure is logged and leaves the list untouched; the UI is
// never blocked on history.
func (c *Controller) LoadHistory(ctx context.Context) {
	history, err := c.api.Messages(ctx, c.sessionID)
	if err != nil {
		c.logger.Warn("Failed to load chat history", "session_id", c.sessionID, "error", err)
		return
	}

	msgs := make([]domain.Message, 0, len(history))
	for _, h := range history {
		sender := domain.Sender(h.Sender)
		if !sender.IsValid() {
			sender = domain.SenderBot
		}
		ts := time.Now()
		if h.Timestamp > 0 {
			ts = time.UnixMilli(h.Timestamp)
		}
		msgs = append(msgs, domain.Message{Sender: sender, Text: h.Message, Timestamp: ts})
	}

	c.mu.Lock()
	c.messages = msgs
	c.mu.Unlock()
	c.notify()
}

// HandleRealtimeEvent processes one inbound channel event. Join
// acknowledgments are discarded, user_typing goes to the presentation hook,
// bot messages are appended, and undecodable frames surface as raw bot text.
func (c *Controller) HandleRealtimeEvent(env transport.Envelope) {
	switch env.Type {
	case transport.EventJoin:
		return
	case transport.EventUserTyping:
		if c.onPeerTyping != nil && env.IsTyping != nil {
			c.onPeerTyping(*env.IsTyping)
		}
		return
	}

	if env.Raw != "" {
		c.append(domain.NewMessage(domain.SenderBot, env.Raw))
		return
	}
	if env.Message == "" {
		return
	}
	// Only bot pushes are displayed; user echoes are already in the list.
	if domain.Sender(env.Sender) == domain.SenderBot {
		c.append(domain.NewMessage(domain.SenderBot, env.Message))
	}
}

// Wait blocks until all in-flight sends have settled.
func (c *Controller) Wait() {
	c.pending.Wait()
}

// Close stops the typing timer, drains in-flight sends, and closes the
// channel. Used on unmount; safe to call once the controller is idle.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	c.mu.Unlock()

	c.pending.Wait()
	c.rt.Close()
}

func (c *Controller) append(msg domain.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	c.notify()
}

// replaceLast swaps the final list element. Positional on purpose: the
// placeholder is always the element most recently appended by the send that
// is now settling.
func (c *Controller) replaceLast(msg domain.Message) {
	c.mu.Lock()
	if len(c.messages) == 0 {
		c.messages = append(c.messages, msg)
	} else {
		c.messages[len(c.messages)-1] = msg
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}
