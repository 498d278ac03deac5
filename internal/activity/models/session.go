package models

import "time"

// SeedKind tags how a Session was originally created.
type SeedKind string

const (
	SeedKindCamp SeedKind = "camp-seed"
	SeedKindRoam SeedKind = "roam-seed"
)

// Classification is the tag emitted by the Classifier.
type Classification string

const (
	ClassSmartbomb    Classification = "smartbomb"
	ClassBattle       Classification = "battle"
	ClassRoamingCamp  Classification = "roaming_camp"
	ClassCamp         Classification = "camp"
	ClassSoloCamp     Classification = "solo_camp"
	ClassRoam         Classification = "roam"
	ClassSoloRoam     Classification = "solo_roam"
	ClassActivity     Classification = "activity"
)

// IsCampFamily reports whether a classification uses the camp idle timeout
// rather than the roam idle timeout.
func (c Classification) IsCampFamily() bool {
	switch c {
	case ClassCamp, ClassSoloCamp, ClassSmartbomb, ClassRoamingCamp, ClassBattle:
		return true
	default:
		return false
	}
}

// PathEntry records a system visited, appended only when the system changes.
type PathEntry struct {
	SystemID int32
	Name     string
	Region   string
	Time     time.Time
}

// Composition tracks the four attacker/victim sets, updated as events are
// appended.
type Composition struct {
	OriginalAttackers *OrderedSet[int64]
	ActiveAttackers   *OrderedSet[int64]
	KilledAttackers   *OrderedSet[int64]
	Corporations      *OrderedSet[int64]
	Alliances         *OrderedSet[int64]
}

func newComposition() Composition {
	return Composition{
		OriginalAttackers: NewOrderedSet[int64](),
		ActiveAttackers:   NewOrderedSet[int64](),
		KilledAttackers:   NewOrderedSet[int64](),
		Corporations:      NewOrderedSet[int64](),
		Alliances:         NewOrderedSet[int64](),
	}
}

// Metrics are the cached per-session aggregates used in both scoring and the
// subscriber view.
type Metrics struct {
	FirstSeen           time.Time
	CampDuration         time.Duration
	ActiveDuration       time.Duration
	InactivityDuration   time.Duration
	PodKills             int
	ShipKills            int
	KillFrequencyPerHour float64
	AvgValuePerKill      float64
	ShipCounts           map[string]int
}

// Session is a live activity grouping. Mutated only from inside
// the Activity Store's serialized upsert path.
type Session struct {
	ID             string
	SeedKind       SeedKind
	SystemID       int32
	StargateName   *string
	Events         []EnrichedEvent
	TotalValue     float64
	FirstEventTime time.Time
	LastEventTime  time.Time
	VisitedSystems *OrderedSet[int32]
	Path           []PathEntry
	Members        *OrderedSet[int64]
	Composition    Composition
	Metrics        Metrics
	Probability    int
	MaxProbabilitySeen int
	Classification Classification
	ProbabilityLog []string

	// seenEventIDs backs the idempotence dedupe check.
	seenEventIDs map[int64]bool
}

// NewSession creates an empty Session of the given seed kind rooted at
// systemID, optionally naming a stargate for camp-seeded sessions.
func NewSession(id string, kind SeedKind, systemID int32, stargateName *string) *Session {
	return &Session{
		ID:             id,
		SeedKind:       kind,
		SystemID:       systemID,
		StargateName:   stargateName,
		VisitedSystems: NewOrderedSet[int32](),
		Members:        NewOrderedSet[int64](),
		Composition:    newComposition(),
		Classification: ClassActivity,
		seenEventIDs:   make(map[int64]bool),
	}
}

// HasSeenEvent reports whether this session already ingested eventID
// replaying an event twice is a no-op.
func (s *Session) HasSeenEvent(eventID int64) bool {
	return s.seenEventIDs[eventID]
}

// MarkEventSeen records eventID as ingested.
func (s *Session) MarkEventSeen(eventID int64) {
	if s.seenEventIDs == nil {
		s.seenEventIDs = make(map[int64]bool)
	}
	s.seenEventIDs[eventID] = true
}

// RecordMaxProbability updates MaxProbabilitySeen with a freshly computed,
// not-yet-floored probability value, before any flooring to 0.
func (s *Session) RecordMaxProbability(rounded int) {
	if rounded > s.MaxProbabilitySeen {
		s.MaxProbabilitySeen = rounded
	}
}
