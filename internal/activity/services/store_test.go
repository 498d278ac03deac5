package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-campwatch/internal/activity/models"
)

func testStore() *Store {
	return NewStore(NewProbabilityEngine(ProbabilityConfig{DecayStart: 5 * time.Minute, DecayRatePerMin: 0.10}))
}

func TestStoreUpsertEventIsDedupedByEventID(t *testing.T) {
	st := testStore()
	ev := groupEv(1, time.Now(), 30000142, i64ptr(1), []int64{2}, gp("Stargate (Jita)", models.TriangulationDirectWarp))

	touched1 := st.UpsertEvent(ev)
	require.Len(t, touched1, 1)

	touched2 := st.UpsertEvent(ev)
	assert.Empty(t, touched2)
	assert.Equal(t, 1, st.Len())
}

func TestStoreSnapshotReturnsEverySession(t *testing.T) {
	st := testStore()
	now := time.Now()
	st.UpsertEvent(groupEv(1, now, 30000142, i64ptr(1), []int64{2}, gp("Stargate (Jita)", models.TriangulationDirectWarp)))
	st.UpsertEvent(groupEv(2, now, 30000144, i64ptr(3), []int64{4}, gp("Stargate (Amarr)", models.TriangulationDirectWarp)))

	snap := st.Snapshot()
	assert.Len(t, snap, 2)
}

func TestStoreTickRecomputesDecayAndReportsChanges(t *testing.T) {
	st := testStore()
	now := time.Now()
	ev := groupEv(1, now, 30002813, i64ptr(1), []int64{2}, gp("Stargate (Tama)", models.TriangulationDirectWarp))
	st.UpsertEvent(ev)

	probability := NewProbabilityEngine(ProbabilityConfig{DecayStart: 5 * time.Minute, DecayRatePerMin: 0.10})

	// Well within the decay grace period: no change expected.
	changed := st.Tick(probability, now.Add(time.Minute))
	assert.Equal(t, 0, changed)

	// Far enough past decay start that the score (and likely classification)
	// shifts.
	changed = st.Tick(probability, now.Add(30*time.Minute))
	assert.Equal(t, 1, changed)
}

func TestStorePeekExpiredDoesNotRemove(t *testing.T) {
	st := testStore()
	now := time.Now()
	st.UpsertEvent(groupEv(1, now, 30000142, i64ptr(1), []int64{2}, gp("Stargate (Jita)", models.TriangulationDirectWarp)))

	alwaysExpired := func(*models.Session) bool { return true }
	expired := st.PeekExpired(alwaysExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, 1, st.Len(), "PeekExpired must not remove sessions itself")
}

func TestStoreRemoveDeletesNamedSessions(t *testing.T) {
	st := testStore()
	now := time.Now()
	st.UpsertEvent(groupEv(1, now, 30000142, i64ptr(1), []int64{2}, gp("Stargate (Jita)", models.TriangulationDirectWarp)))
	require.Equal(t, 1, st.Len())

	var id string
	for _, s := range st.Snapshot() {
		id = s.ID
	}
	st.Remove([]string{id})
	assert.Equal(t, 0, st.Len())
}

func TestStoreTakeDirtyClearsFlagAfterRead(t *testing.T) {
	st := testStore()
	now := time.Now()
	st.UpsertEvent(groupEv(1, now, 30000142, i64ptr(1), []int64{2}, gp("Stargate (Jita)", models.TriangulationDirectWarp)))

	assert.True(t, st.TakeDirty())
	assert.False(t, st.TakeDirty(), "dirty flag must clear once read")
}

func TestStoreMarkDirtySetsFlagWithoutMutation(t *testing.T) {
	st := testStore()
	st.MarkDirty()
	assert.True(t, st.TakeDirty())
}
