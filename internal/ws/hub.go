package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"CopperxBot/bot/chat"
	"CopperxBot/internal/lib/sl"
)

// Event represents a WebSocket event sent to operator clients.
type Event struct {
	Type string          `json:"type"`
	Data *chat.FlowEvent `json:"data"`
}

// Hub maintains the set of active WebSocket clients and broadcasts flow
// events to them. It implements chat.Listener.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	dropped    atomic.Int64
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// Run starts the hub's event loop until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(event.Data.UserID) {
					continue
				}
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// FlowEvent queues ev for the connected clients. It never blocks the
// caller; events are dropped while the queue is full.
func (h *Hub) FlowEvent(ev chat.FlowEvent) {
	select {
	case h.broadcast <- &Event{Type: ev.Type, Data: &ev}:
	default:
		if n := h.dropped.Add(1); n == 1 || n%100 == 0 {
			h.log.Warn("event queue full", slog.Int64("dropped", n))
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// clientEvent represents an incoming WebSocket message from a client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage applies a client request. "watch" restricts the
// client to the events of one user; an empty user id watches everyone.
func (h *Hub) HandleClientMessage(c *Client, raw []byte) {
	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.log.Warn("failed to parse client ws message", sl.Err(err))
		return
	}

	switch event.Type {
	case "watch":
		var data struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			h.log.Warn("failed to parse watch data", sl.Err(err))
			return
		}
		c.watch(data.UserID)
		h.log.Debug("client watch",
			slog.String("username", c.username),
			slog.String("user_id", data.UserID),
		)
	default:
		h.log.Debug("unknown client event", slog.String("type", event.Type))
	}
}
