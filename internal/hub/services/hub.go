package services

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-campwatch/internal/hub/models"
)

const (
	pingInterval  = 30 * time.Second
	pongWait      = 60 * time.Second
)

// subscriber is one connected client plus its latest-wins outbound slot: a
// single-element channel that always holds the newest snapshot waiting to
// be written, so a slow reader never piles up a backlog of stale frames.
type subscriber struct {
	conn    *models.Connection
	pending chan []byte
}

// Hub manages subscriber WebSocket connections and broadcasts activity
// snapshots to all of them. A new connection receives a full snapshot
// immediately; every subsequent broadcast replaces whatever a subscriber
// hasn't read yet rather than queuing behind it.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber

	stats struct {
		active atomic.Int64
		total  atomic.Int64
		sent   atomic.Int64
	}

	snapshotFunc func() []byte
	fanout       *RedisFanout
}

// NewHub builds a Hub. snapshotFunc is called once per new connection to
// produce the full-state frame sent immediately on join.
func NewHub(snapshotFunc func() []byte) *Hub {
	return &Hub{
		subscribers:  make(map[string]*subscriber),
		snapshotFunc: snapshotFunc,
	}
}

// SetFanout wires a Redis-backed fanout so broadcasts on this instance also
// reach subscribers connected to other instances (a deployment where only
// one process owns the live Activity Store and the rest only serve /ws).
// nil disables fanout, the default single-instance behavior.
func (h *Hub) SetFanout(f *RedisFanout) {
	h.fanout = f
}

// Join registers a new connection, sends it an initial full snapshot, and
// runs its read/write pumps until the connection closes or ctx is done.
func (h *Hub) Join(ctx context.Context, conn *websocket.Conn) {
	id := uuid.New().String()
	c := models.NewConnection(id, conn)
	sub := &subscriber{conn: c, pending: make(chan []byte, 1)}

	h.mu.Lock()
	h.subscribers[id] = sub
	h.mu.Unlock()

	h.stats.active.Add(1)
	h.stats.total.Add(1)
	slog.Info("subscriber connected", "connection_id", id)

	if h.snapshotFunc != nil {
		h.offer(sub, h.snapshotFunc())
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		c.UpdateLastPing()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(ctx, sub, done)

	h.leave(id)
}

// readPump drains and discards incoming frames purely to keep the pong
// handler firing; subscribers never send meaningful application messages.
func (h *Hub) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(ctx context.Context, sub *subscriber, done chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case payload := <-sub.pending:
			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			h.stats.sent.Add(1)
		}
	}
}

func (h *Hub) leave(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()

	if !ok {
		return
	}
	sub.conn.Conn.Close()
	h.stats.active.Add(-1)
	slog.Info("subscriber disconnected", "connection_id", id)
}

// Broadcast pushes payload to every subscriber connected to this instance,
// replacing any frame a subscriber hasn't yet consumed, and — when a
// RedisFanout is wired — publishes it for subscribers connected to other
// instances.
func (h *Hub) Broadcast(payload []byte) {
	h.broadcastLocal(payload)
	if h.fanout != nil {
		h.fanout.Publish(context.Background(), payload)
	}
}

// broadcastLocal delivers payload only to subscribers on this instance. The
// RedisFanout subscription loop calls this directly, never Broadcast, so a
// snapshot relayed from another instance is never re-published back out.
func (h *Hub) broadcastLocal(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		h.offer(sub, payload)
	}
}

// offer is the latest-wins send: if the subscriber's single slot is full,
// drop the stale frame in favor of the new one.
func (h *Hub) offer(sub *subscriber, payload []byte) {
	select {
	case sub.pending <- payload:
	default:
		select {
		case <-sub.pending:
		default:
		}
		select {
		case sub.pending <- payload:
		default:
		}
	}
}

// Stats reports current hub counters.
func (h *Hub) Stats() models.Stats {
	return models.Stats{
		ActiveConnections: h.stats.active.Load(),
		TotalConnections:  h.stats.total.Load(),
		SnapshotsSent:     h.stats.sent.Load(),
	}
}
