package services

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// snapshotChannel is the Redis pub/sub channel activity snapshots fan out
// on across instances.
const snapshotChannel = "campwatch:activity:snapshots"

// RedisFanout relays Hub broadcasts across instances so every process
// serving /ws subscribers sees the same snapshot stream even though only
// one instance owns the live Activity Store fed by the upstream killmail
// feed — the rest run Hub+Regions only and relay.
type RedisFanout struct {
	client *redis.Client
	hub    *Hub
}

// NewRedisFanout wires client to hub. Call Start to begin relaying
// messages published by other instances into this instance's subscribers.
func NewRedisFanout(client *redis.Client, hub *Hub) *RedisFanout {
	return &RedisFanout{client: client, hub: hub}
}

// Publish fans payload out to every other instance subscribed to the
// snapshot channel. Failures are logged and otherwise swallowed — a missed
// cross-instance relay is no worse than the next snapshot superseding it.
func (f *RedisFanout) Publish(ctx context.Context, payload []byte) {
	if f == nil || f.client == nil {
		return
	}
	if err := f.client.Publish(ctx, snapshotChannel, payload).Err(); err != nil {
		slog.Warn("failed to publish snapshot to redis fanout", "error", err)
	}
}

// Start subscribes to the fanout channel and forwards every message
// received from another instance into this process's local subscribers,
// until ctx is cancelled.
func (f *RedisFanout) Start(ctx context.Context) {
	if f == nil || f.client == nil {
		return
	}
	sub := f.client.Subscribe(ctx, snapshotChannel)
	ch := sub.Channel()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				f.hub.broadcastLocal([]byte(msg.Payload))
			}
		}
	}()
}
