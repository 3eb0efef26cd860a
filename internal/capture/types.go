package capture

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrTimeout         = errors.New("operation timeout")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Frame is one message on the chat feed protocol. The same shape carries
// subscribe commands, acks, errors, and chat messages; Type tells them
// apart.
type Frame struct {
	Type   string `json:"type"` // "subscribe", "subscribed", "message", "error"
	Room   string `json:"room,omitempty"`
	Sender string `json:"sender,omitempty"`
	Text   string `json:"text,omitempty"`
	TS     int64  `json:"ts,omitempty"`  // Unix milliseconds
	Msg    string `json:"msg,omitempty"` // error detail
}

// Inbound wraps raw frame bytes with the local receive timestamp.
type Inbound struct {
	Data       []byte    // Raw frame bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Config configures the chat feed.
type Config struct {
	URL   string // WebSocket URL (e.g., wss://chat.example.com/ws)
	Room  string // Room to subscribe to
	Token string // Bearer token (empty = no auth)

	SubscribeTimeout  time.Duration // Timeout for the room subscribe ack
	ReconnectBaseWait time.Duration // Base wait time for reconnection
	ReconnectMaxWait  time.Duration // Max wait time for reconnection
	PingInterval      time.Duration // How often to send keepalive pings
	StaleTimeout      time.Duration // Max time without ping/pong before reconnecting
	WriteTimeout      time.Duration // Write deadline for sends
	BufferSize        int           // Frame channel buffer size
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SubscribeTimeout:  10 * time.Second,
		ReconnectBaseWait: 1 * time.Second,
		ReconnectMaxWait:  60 * time.Second,
		PingInterval:      15 * time.Second,
		StaleTimeout:      30 * time.Second,
		WriteTimeout:      5 * time.Second,
		BufferSize:        1000,
	}
}

// SourceStats provides statistics about the feed.
type SourceStats struct {
	Connected  bool  `json:"connected"`
	Paused     bool  `json:"paused"`
	Reconnects int64 `json:"reconnects"`
	FramesSeen int64 `json:"frames_seen"`
	Records    int64 `json:"records"`
	Discarded  int64 `json:"discarded"`
}
