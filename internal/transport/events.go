// Package transport wraps the widget's two backend surfaces: the REST API
// and the duplex websocket channel.
package transport

// Channel event types. Outbound: join, message, typing. Inbound: join (the
// server's acknowledgment, discarded upstream), new_message, user_typing.
const (
	EventJoin       = "join"
	EventMessage    = "message"
	EventTyping     = "typing"
	EventNewMessage = "new_message"
	EventUserTyping = "user_typing"
)

// Envelope is the wire format for channel events in both directions. Raw is
// set instead of the typed fields when an inbound frame does not decode; such
// frames are surfaced, not dropped.
type Envelope struct {
	Type      string `json:"type,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Message   string `json:"message,omitempty"`
	IsTyping  *bool  `json:"isTyping,omitempty"`

	Raw string `json:"-"`
}

// Typing builds the isTyping field for typing events; false must be encoded
// explicitly so the stop event is distinguishable from its absence.
func Typing(isTyping bool) *bool {
	return &isTyping
}
