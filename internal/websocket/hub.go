package websocket

import (
	"context"
	"sync"
)

// subscriptionRequest represents a channel subscription/unsubscription request
type subscriptionRequest struct {
	client    *Client
	channel   string
	subscribe bool
}

// Hub manages websocket client connections and channel subscriptions
type Hub struct {
	mu sync.RWMutex

	// clients maps connection ID to client
	clients map[string]*Client

	// channels maps channel name to the clients subscribed to it
	channels map[string]map[*Client]struct{}

	register     chan *Client
	unregister   chan *Client
	subscription chan subscriptionRequest
}

// NewHub creates a new websocket hub
func NewHub() *Hub {
	return &Hub{
		clients:      make(map[string]*Client),
		channels:     make(map[string]map[*Client]struct{}),
		register:     make(chan *Client, 256),
		unregister:   make(chan *Client, 256),
		subscription: make(chan subscriptionRequest, 512),
	}
}

// Run starts the hub's event loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case req := <-h.subscription:
			if req.subscribe {
				h.subscribeToChannel(req.client, req.channel)
			} else {
				h.unsubscribeFromChannel(req.client, req.channel)
			}
		}
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and all its subscriptions from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe subscribes a client to a channel
func (h *Hub) Subscribe(client *Client, channel string) {
	h.subscription <- subscriptionRequest{client: client, channel: channel, subscribe: true}
}

// Unsubscribe unsubscribes a client from a channel
func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.subscription <- subscriptionRequest{client: client, channel: channel, subscribe: false}
}

// Broadcast sends a message to all clients subscribed to a channel
func (h *Hub) Broadcast(channel string, payload []byte) {
	h.mu.RLock()
	for c := range h.channels[channel] {
		c.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// Publish delivers to this instance's subscribers only. It lets the hub
// stand in for redis pub/sub on a single node.
func (h *Hub) Publish(_ context.Context, channel string, payload []byte) error {
	h.Broadcast(channel, payload)
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscriberCount returns the number of subscribers for a channel
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// addClient adds a new client to the hub (internal)
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
}

// removeClient removes a client and all its subscriptions (internal)
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	for _, channel := range client.Channels() {
		if subscribers, ok := h.channels[channel]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.channels, channel)
			}
		}
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

// subscribeToChannel subscribes a registered client to a channel (internal)
func (h *Hub) subscribeToChannel(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// a subscription can race an unregister
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]struct{})
	}
	h.channels[channel][client] = struct{}{}
	client.track(channel)
}

// unsubscribeFromChannel unsubscribes a client from a channel (internal)
func (h *Hub) unsubscribeFromChannel(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subscribers, ok := h.channels[channel]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.channels, channel)
		}
	}
	client.untrack(channel)
}

// closeAll drops every client on shutdown (internal)
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		close(client.Send)
		delete(h.clients, id)
	}
	h.channels = make(map[string]map[*Client]struct{})
}
