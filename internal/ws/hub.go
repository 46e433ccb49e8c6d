// Package ws implements WebSocket hub and client management for live
// dashboard updates.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stockpilotai/stockpilot/internal/metrics"
)

// Hub channel buffer sizes.
const (
	broadcastBuffer = 256
	registerBuffer  = 64
	maxClients      = 200
)

// Hub manages active WebSocket clients and broadcasts events. All client
// map mutations happen exclusively in the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	seq        atomic.Uint64
	count      atomic.Int64
	log        *logrus.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan []byte, broadcastBuffer),
		log:        log,
	}
}

// Run starts the hub event loop. It should be run as a goroutine and
// exits when the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				client.closeSend()
				delete(h.clients, client)
			}
			h.count.Store(0)
			metrics.WSConnections.Set(0)
			return

		case client := <-h.register:
			if len(h.clients) >= maxClients {
				h.log.Warn("connection limit reached, dropping client")
				client.closeSend()
				continue
			}
			h.clients[client] = true
			h.count.Add(1)
			metrics.WSConnections.Set(float64(len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				h.count.Add(-1)
				metrics.WSConnections.Set(float64(len(h.clients)))
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client: drop it rather than block the hub.
					delete(h.clients, client)
					client.closeSend()
					h.count.Add(-1)
					metrics.WSConnections.Set(float64(len(h.clients)))
				}
			}
		}
	}
}

// Register queues a client for registration.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register queue full, dropping client")
		c.closeSend()
	}
}

// Unregister queues a client for removal.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
	}
}

// Broadcast sends an event to all connected clients. Non-blocking; the
// event is dropped with a warning if the broadcast queue is full.
func (h *Hub) Broadcast(eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.log.WithError(err).Warn("failed to encode ws event payload")
		return
	}

	msg, err := json.Marshal(Event{
		Type: eventType,
		ID:   h.seq.Add(1),
		Data: payload,
		Time: time.Now().UTC(),
	})
	if err != nil {
		h.log.WithError(err).Warn("failed to encode ws event")
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.log.WithField("type", eventType).Warn("ws broadcast queue full, dropping event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int64 {
	return h.count.Load()
}
