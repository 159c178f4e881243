package dispatch

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Broadcaster manages WebSocket connections and pushes tracking status
// updates to every subscriber of a session.
type Broadcaster struct {
	mu          sync.RWMutex
	connections map[string]map[*websocket.Conn]bool // trackingID -> connections
}

// NewBroadcaster creates a new tracking broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		connections: make(map[string]map[*websocket.Conn]bool),
	}
}

// Subscribe registers a WebSocket connection for a tracking session.
func (b *Broadcaster) Subscribe(trackingID string, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connections[trackingID] == nil {
		b.connections[trackingID] = make(map[*websocket.Conn]bool)
	}
	b.connections[trackingID][conn] = true
}

// Unsubscribe removes a WebSocket connection from all tracking sessions.
func (b *Broadcaster) Unsubscribe(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for trackingID, conns := range b.connections {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(b.connections, trackingID)
		}
	}
}

// Broadcast sends a status update to all subscribers of a session.
func (b *Broadcaster) Broadcast(trackingID string, update *StatusUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	conns, exists := b.connections[trackingID]
	if !exists || len(conns) == 0 {
		return
	}

	// Serialize once
	data, err := json.Marshal(update)
	if err != nil {
		slog.Error("failed to marshal tracking update", "error", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("failed to send message to websocket client",
				"error", err,
				"tracking_id", trackingID,
			)
			// Connection will be cleaned up when client disconnects
		}
	}
}

// ConnectionCount returns the number of active connections for a session.
func (b *Broadcaster) ConnectionCount(trackingID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if conns, exists := b.connections[trackingID]; exists {
		return len(conns)
	}
	return 0
}
