// Package hub fans out live monitoring feeds to websocket subscribers
// using a channel-based broadcast loop.
package hub

import (
	"context"
	"encoding/json"
	"sync"

	"driveguard/internal/log"
)

// Hub owns one named feed (status snapshots, alert notifications) and
// the set of subscribers attached to it.
type Hub struct {
	feed string

	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// New creates a hub for the named feed. Call Run before broadcasting.
func New(feed string) *Hub {
	return &Hub{
		feed:       feed,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run drives the broadcast loop until ctx is cancelled. On exit every
// subscriber is closed. Call on its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Debug("subscriber connected", "feed", h.feed, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Debug("subscriber disconnected", "feed", h.feed, "clients", n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// A subscriber that cannot drain its buffer is
					// dropped rather than allowed to stall the feed.
					delete(h.clients, c)
					close(c.send)
					log.Warn("dropped slow subscriber", "feed", h.feed)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues a message for every subscriber. Never blocks; if
// the feed is saturated the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Warn("feed saturated, dropping message", "feed", h.feed)
	}
}

// BroadcastJSON marshals v and broadcasts it as a text message.
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(NewJSONMessage(data))
	return nil
}

// BroadcastBinary broadcasts raw bytes, e.g. a JPEG frame.
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(NewBinaryMessage(data))
}

// ClientCount reports the current number of subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
