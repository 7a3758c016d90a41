package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"jobfair-live/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024

	// maxMessagesPerMinute caps control messages from one connection.
	maxMessagesPerMinute = 120
)

// ClientMessage is a control frame sent by the browser.
type ClientMessage struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
}

// ServerMessage acknowledges a control frame.
type ServerMessage struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Client represents one websocket connection
type Client struct {
	ID       string
	Identity services.Identity
	Conn     *websocket.Conn
	Send     chan []byte

	mu       sync.RWMutex
	channels map[string]bool
	writeMu  sync.Mutex
	budget   messageBudget
}

// NewClient creates a new websocket client for an authenticated caller
func NewClient(conn *websocket.Conn, id services.Identity) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Identity: id,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		channels: make(map[string]bool),
		budget:   messageBudget{limit: maxMessagesPerMinute},
	}
}

// track adds a channel to the client's subscriptions (hub use only)
func (c *Client) track(channel string) {
	c.mu.Lock()
	c.channels[channel] = true
	c.mu.Unlock()
}

// untrack removes a channel from the client's subscriptions (hub use only)
func (c *Client) untrack(channel string) {
	c.mu.Lock()
	delete(c.channels, channel)
	c.mu.Unlock()
}

// IsSubscribed checks if client is subscribed to a channel
func (c *Client) IsSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channels[channel]
}

// Channels returns a copy of all subscribed channels
func (c *Client) Channels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	channels := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		channels = append(channels, ch)
	}
	return channels
}

// ReadLoop reads control frames until the connection fails. Frames over
// the per-minute budget are dropped.
func (c *Client) ReadLoop(handle func(ClientMessage)) error {
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return err
			}
			return nil
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))

		if !c.budget.allow(time.Now()) {
			c.Reply(ServerMessage{Type: "error", Code: "RATE_LIMITED"})
			continue
		}
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.Reply(ServerMessage{Type: "error", Code: "INVALID_REQUEST"})
			continue
		}
		handle(msg)
	}
}

// WriteLoop drains Send and keeps the connection alive with pings
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.write(websocket.CloseMessage, nil)
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(messageType, payload)
}

// SendMessage queues a message without blocking. Slow clients lose
// messages rather than stall the fan-out.
func (c *Client) SendMessage(msg []byte) {
	defer func() {
		// Send may already be closed by the hub
		_ = recover()
	}()
	select {
	case c.Send <- msg:
	default:
	}
}

// Reply queues a control response for this client only
func (c *Client) Reply(msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.SendMessage(payload)
}

// messageBudget is a fixed one-minute window counter.
type messageBudget struct {
	mu          sync.Mutex
	limit       int
	used        int
	windowStart time.Time
}

func (b *messageBudget) allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.Sub(b.windowStart) >= time.Minute {
		b.windowStart = now
		b.used = 0
	}
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}
