package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"go-campwatch/internal/activity/models"
)

// Store is the process-wide map of live sessions. The only
// mutation entrypoint is UpsertEvent; all reads for subscribers come from
// Snapshot so they never observe a half-updated session.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	grouping *GroupingEngine
	dirty    bool
}

// NewStore builds an empty store wired to the given probability engine.
func NewStore(probability *ProbabilityEngine) *Store {
	s := &Store{sessions: make(map[string]*models.Session)}
	s.grouping = NewGroupingEngine(probability, func() string {
		return "roam-" + uuid.NewString()
	})
	return s
}

// UpsertEvent is the Activity Store's sole mutation entrypoint. It
// runs the Grouping Rules, which internally recompute probability and
// classification for every touched session, and returns the sessions that
// changed.
func (st *Store) UpsertEvent(ev models.EnrichedEvent) []*models.Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	touched := st.grouping.Apply(st.sessions, ev, time.Now())
	if len(touched) > 0 {
		st.dirty = true
	}
	return touched
}

// Snapshot returns a consistent copy of every live session, taken under the
// store's lock. Each session is copied along with its member, visited-system
// and composition sets, so later upserts do not change the returned values.
// The Events, Path and ProbabilityLog slices and the ShipCounts map are
// shared with the live session; callers must treat them as read-only.
func (st *Store) Snapshot() []*models.Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]*models.Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		c := *s
		c.VisitedSystems = s.VisitedSystems.Clone()
		c.Members = s.Members.Clone()
		c.Composition = models.Composition{
			OriginalAttackers: s.Composition.OriginalAttackers.Clone(),
			ActiveAttackers:   s.Composition.ActiveAttackers.Clone(),
			KilledAttackers:   s.Composition.KilledAttackers.Clone(),
			Corporations:      s.Composition.Corporations.Clone(),
			Alliances:         s.Composition.Alliances.Clone(),
		}
		out = append(out, &c)
	}
	return out
}

// TakeDirty reports whether any session changed since the last call and
// clears the flag (a dirty flag that clears on
// snapshot emission).
func (st *Store) TakeDirty() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	was := st.dirty
	st.dirty = false
	return was
}

// MarkDirty flags that the next hub broadcast should fire even though the
// change did not originate from UpsertEvent. Tick and Remove set the flag
// themselves and do not go through MarkDirty.
func (st *Store) MarkDirty() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.dirty = true
}

// Tick recomputes probability and classification for every live session as
// of now, since decay cannot happen without a tick, and reports how many
// sessions changed classification or probability.
func (st *Store) Tick(probability *ProbabilityEngine, now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	changed := 0
	for _, s := range st.sessions {
		prevProb, prevClass := s.Probability, s.Classification
		probability.Compute(s, now)
		s.Classification = Classify(s)
		if s.Probability != prevProb || s.Classification != prevClass {
			changed++
		}
	}
	if changed > 0 {
		st.dirty = true
	}
	return changed
}

// PeekExpired returns every session for which predicate reports true,
// without removing them. Used by the Archiver so a session that fails to
// archive remains eligible for the next scan (so a failed archive write
// failure: log and requeue for the next scan").
func (st *Store) PeekExpired(predicate func(*models.Session) bool) []*models.Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	var expired []*models.Session
	for _, s := range st.sessions {
		if predicate(s) {
			expired = append(expired, s)
		}
	}
	return expired
}

// Remove deletes the named sessions from the live map (expire
// semantics, split from PeekExpired so archival can gate removal).
func (st *Store) Remove(ids []string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, id := range ids {
		delete(st.sessions, id)
	}
	if len(ids) > 0 {
		st.dirty = true
	}
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
