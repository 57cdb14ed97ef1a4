package communication

import (
	"context"
	"sync"
	"time"

	"github.com/NethermindEth/aigent-launchpad/core"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	broadcastBuffer = 64
	writeWait       = 10 * time.Second
)

// Hub fans events out to every connected websocket client
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan core.Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan core.Event, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.Close()
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
				client.Close()
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteJSON(event); err != nil {
					logger.L().Warn("websocket write failed", zap.Error(err))
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event. Events are dropped when the queue is full.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	select {
	case h.broadcast <- core.Event{Type: eventType, Payload: payload}:
	default:
		logger.L().Warn("websocket broadcast queue full, dropping event", zap.String("type", eventType))
	}
}

// Serve registers conn and blocks reading from it until the client goes away
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn) {
	select {
	case h.register <- conn:
	case <-ctx.Done():
		conn.Close()
		return
	case <-h.done:
		conn.Close()
		return
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	select {
	case h.unregister <- conn:
	case <-ctx.Done():
		conn.Close()
	case <-h.done:
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
