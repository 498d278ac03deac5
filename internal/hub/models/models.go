package models

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection is one subscriber's WebSocket connection.
type Connection struct {
	ID        string
	Conn      *websocket.Conn
	CreatedAt time.Time

	mu       sync.Mutex
	lastPing time.Time
}

// NewConnection wraps a raw WebSocket connection.
func NewConnection(id string, conn *websocket.Conn) *Connection {
	return &Connection{
		ID:        id,
		Conn:      conn,
		CreatedAt: time.Now(),
		lastPing:  time.Now(),
	}
}

// UpdateLastPing records a liveness pong.
func (c *Connection) UpdateLastPing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPing = time.Now()
}

// IsAlive reports whether a pong was seen within the liveness window.
func (c *Connection) IsAlive(window time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastPing) < window
}

// WriteMessage writes a frame to the underlying connection under a write
// deadline, serializing concurrent writers.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(messageType, data)
}

// Stats reports subscriber-hub counters.
type Stats struct {
	ActiveConnections int64
	TotalConnections  int64
	SnapshotsSent     int64
}
