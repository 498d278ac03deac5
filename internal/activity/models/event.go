package models

import (
	"strings"
	"time"
)

// TriangulationMethod tags how confidently the pinpoint service located a kill.
type TriangulationMethod string

const (
	TriangulationAtCelestial  TriangulationMethod = "at_celestial"
	TriangulationDirectWarp   TriangulationMethod = "direct_warp"
	TriangulationNearCelestial TriangulationMethod = "near_celestial"
	TriangulationFar          TriangulationMethod = "far"
	TriangulationNone         TriangulationMethod = ""
)

// qualifiesForGateKill reports whether this triangulation method is strong
// enough to root a camp session at a stargate.
func (m TriangulationMethod) qualifiesForGateKill() bool {
	switch m {
	case TriangulationAtCelestial, TriangulationDirectWarp, TriangulationNearCelestial:
		return true
	default:
		return false
	}
}

// QualifiesForGateKill is the exported form used by grouping and scoring.
func (m TriangulationMethod) QualifiesForGateKill() bool {
	return m.qualifiesForGateKill()
}

// ShipCategory is the coarse ship classification from the ship catalog.
type ShipCategory string

const (
	CategoryFrigate      ShipCategory = "frigate"
	CategoryDestroyer    ShipCategory = "destroyer"
	CategoryCruiser      ShipCategory = "cruiser"
	CategoryBattlecruiser ShipCategory = "battlecruiser"
	CategoryBattleship   ShipCategory = "battleship"
	CategoryCapital      ShipCategory = "capital"
	CategorySupercapital ShipCategory = "supercapital"
	CategoryIndustrial   ShipCategory = "industrial"
	CategoryMining       ShipCategory = "mining"
	CategoryStructure    ShipCategory = "structure"
	CategoryConcord      ShipCategory = "concord"
	CategoryNPC          ShipCategory = "npc"
	CategoryOther        ShipCategory = "other"
)

// Participant is the victim side of an Event.
type Participant struct {
	PilotID       *int64
	CorporationID int64
	AllianceID    *int64
	ShipTypeID    int64
}

// Attacker is one entry in an Event's attacker list.
type Attacker struct {
	PilotID       *int64
	CorporationID *int64
	AllianceID    *int64
	ShipTypeID    *int64
	WeaponTypeID  *int64
	FinalBlow     bool
}

// IsEscapePod reports whether the attacker's ship is a capsule/pod, used to
// exclude pod pilots from the roam branch's distinct-attacker count.
func (a Attacker) IsEscapePod() bool {
	return a.ShipTypeID != nil && IsPodTypeID(*a.ShipTypeID)
}

// Event is the immutable record ingested from the upstream feed.
type Event struct {
	EventID    int64
	Timestamp  time.Time
	SystemID   int32
	Victim     Participant
	Attackers  []Attacker
	TotalValue float64
	Labels     []string
	Awox       bool
}

// HasLabel reports whether the feed attached the given free-form label.
func (e Event) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Pinpoint is the celestial-triangulation enrichment attached to an Event.
type Pinpoint struct {
	NearestCelestial    *string
	AtCelestial         bool
	TriangulationMethod TriangulationMethod
	SystemName          string
	RegionName          string
}

// stargateNamePrefix is how EVE Online's own naming convention marks a
// celestial as a stargate (e.g. "Stargate (Jita)"). The pinpoint service's
// nearestCelestial.name is unconstrained per §6 — it may just as well name
// a station, a planet, a sun, or a belt — so this prefix is the only signal
// that distinguishes an actual gate from any other nearby celestial.
const stargateNamePrefix = "Stargate"

// StargateName returns the stargate name this event pinpoints to, and
// whether the nearest celestial actually is a stargate as opposed to some
// other celestial the triangulation service legitimately returned.
func (p Pinpoint) StargateName() (string, bool) {
	if p.NearestCelestial == nil || *p.NearestCelestial == "" {
		return "", false
	}
	if !strings.HasPrefix(*p.NearestCelestial, stargateNamePrefix) {
		return "", false
	}
	return *p.NearestCelestial, true
}

// ShipInfo is the ship-catalog enrichment attached to a victim or attacker.
type ShipInfo struct {
	Category ShipCategory
	Name     string
	Tier     string
}

// EnrichedEvent is an Event annotated by the Enricher.
type EnrichedEvent struct {
	Event
	Pinpoint      Pinpoint
	VictimShip    ShipInfo
	AttackerShips []ShipInfo // parallel to Event.Attackers
}

// VictimIsPilot reports whether the victim has a pilot id (as opposed to an
// NPC or unpiloted structure).
func (e EnrichedEvent) VictimIsPilot() bool {
	return e.Victim.PilotID != nil
}

// VictimIsPod reports whether the victim ship is a capsule/pod.
func (e EnrichedEvent) VictimIsPod() bool {
	return IsPodTypeID(e.Victim.ShipTypeID)
}

// DistinctAttackerPilots returns the set of attacker pilot ids, excluding
// escape pods, as required by the roam branch's eligibility check.
func (e EnrichedEvent) DistinctAttackerPilots() *OrderedSet[int64] {
	set := NewOrderedSet[int64]()
	for _, a := range e.Attackers {
		if a.PilotID == nil || a.IsEscapePod() {
			continue
		}
		set.Add(*a.PilotID)
	}
	return set
}

// QualifiesForGateBranch reports whether this event's pinpoint is strong
// enough to seed/update a camp session.
func (e EnrichedEvent) QualifiesForGateBranch() (stargate string, ok bool) {
	stargate, named := e.Pinpoint.StargateName()
	if !named {
		return "", false
	}
	if !e.Pinpoint.TriangulationMethod.QualifiesForGateKill() {
		return "", false
	}
	return stargate, true
}
