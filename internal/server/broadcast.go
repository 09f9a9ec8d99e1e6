package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Broadcaster fans completed sync-run summaries out to websocket clients.
type Broadcaster struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
	closed   bool
}

// NewBroadcaster creates a Broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Broadcast sends v as JSON to every connected client. Clients whose write
// fails are dropped.
func (b *Broadcaster) Broadcast(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("marshal broadcast payload", "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			b.logger.Debug("dropping websocket client", "error", err)
			conn.Close()
			delete(b.clients, conn)
		}
	}
}

// Handler upgrades the request and registers the connection.
func (b *Broadcaster) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			b.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			conn.Close()
			return
		}
		b.clients[conn] = struct{}{}
		b.mu.Unlock()

		// Read loop detects disconnects; inbound messages are ignored.
		go func() {
			defer func() {
				b.mu.Lock()
				delete(b.clients, conn)
				b.mu.Unlock()
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

// Close drops all connected clients.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for conn := range b.clients {
		conn.Close()
		delete(b.clients, conn)
	}
}
