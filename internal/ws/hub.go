// Package ws pushes cart change events to connected clients over
// WebSocket, so every open view of a listing (cart list, price display,
// add/remove buttons) re-derives its state from the same snapshot without
// polling. Rooms are scoped exactly like carts: one per (visitor, house).
package ws

import (
	"log/slog"
	"sync"
)

// Hub maintains the set of connected clients grouped into rooms and
// broadcasts messages to one room at a time.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   *slog.Logger
}

// NewHub builds an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

// Register adds a client to a room.
func (h *Hub) Register(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

// Unregister removes a client from a room and closes its send channel.
func (h *Hub) Unregister(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[room]; ok {
		if _, member := clients[c]; member {
			delete(clients, c)
			close(c.send)
		}
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends a message to every client in a room. Clients whose send
// buffer is full are dropped — a stalled reader must not stall the cart.
func (h *Hub) Broadcast(room string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[room] {
		select {
		case c.send <- message:
		default:
			delete(h.rooms[room], c)
			close(c.send)
			h.log.Debug("dropping stalled websocket client", "room", room)
		}
	}
}

// RoomSize returns the number of clients connected to a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Client is one WebSocket connection's outbound queue.
type Client struct {
	send chan []byte
}

// NewClient builds a client with a buffered outbound queue.
func NewClient() *Client {
	return &Client{send: make(chan []byte, 64)}
}

// Send returns the channel the connection's write pump drains. It is
// closed by the hub on unregister or drop.
func (c *Client) Send() <-chan []byte {
	return c.send
}
