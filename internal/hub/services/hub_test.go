package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubscriber() *subscriber {
	return &subscriber{pending: make(chan []byte, 1)}
}

func TestOfferFillsEmptySlot(t *testing.T) {
	h := &Hub{}
	sub := newTestSubscriber()

	h.offer(sub, []byte("first"))

	select {
	case got := <-sub.pending:
		assert.Equal(t, []byte("first"), got)
	default:
		t.Fatal("expected a pending frame")
	}
}

func TestOfferReplacesStaleFrameRatherThanQueuing(t *testing.T) {
	h := &Hub{}
	sub := newTestSubscriber()

	h.offer(sub, []byte("stale"))
	h.offer(sub, []byte("fresh"))

	require.Len(t, sub.pending, 1, "latest-wins: the slot must never hold more than one frame")
	got := <-sub.pending
	assert.Equal(t, []byte("fresh"), got, "the newer frame must win over the one nobody read yet")
}

func TestBroadcastLocalDeliversToEverySubscriber(t *testing.T) {
	h := &Hub{subscribers: map[string]*subscriber{}}
	a := newTestSubscriber()
	b := newTestSubscriber()
	h.subscribers["a"] = a
	h.subscribers["b"] = b

	h.broadcastLocal([]byte("snapshot"))

	assert.Equal(t, []byte("snapshot"), <-a.pending)
	assert.Equal(t, []byte("snapshot"), <-b.pending)
}

func TestBroadcastWithoutFanoutBehavesLikeBroadcastLocal(t *testing.T) {
	h := &Hub{subscribers: map[string]*subscriber{}}
	sub := newTestSubscriber()
	h.subscribers["a"] = sub

	assert.NotPanics(t, func() { h.Broadcast([]byte("payload")) })
	assert.Equal(t, []byte("payload"), <-sub.pending)
}

func TestRedisFanoutPublishIsNilSafe(t *testing.T) {
	var f *RedisFanout
	assert.NotPanics(t, func() { f.Publish(context.Background(), []byte("x")) })

	f2 := &RedisFanout{}
	assert.NotPanics(t, func() { f2.Publish(context.Background(), []byte("x")) })
}
