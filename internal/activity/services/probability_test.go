package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-campwatch/internal/activity/models"
)

func ptr64(v int64) *int64 { return &v }

func gatePinpoint() models.Pinpoint {
	name := "Stargate (Jita)"
	return models.Pinpoint{
		NearestCelestial:    &name,
		TriangulationMethod: models.TriangulationDirectWarp,
		SystemName:          "Jita",
		RegionName:          "The Forge",
	}
}

func newCampSession(systemID int32, stargate string) *models.Session {
	return models.NewSession(stargate, models.SeedKindCamp, systemID, &stargate)
}

func killEvent(id int64, ts time.Time, victimPilot *int64, victimShip models.ShipCategory, victimShipType int64, attackerPilots []int64, pinpoint models.Pinpoint) models.EnrichedEvent {
	var attackers []models.Attacker
	var attackerShips []models.ShipInfo
	for _, p := range attackerPilots {
		pilot := p
		attackers = append(attackers, models.Attacker{PilotID: &pilot, ShipTypeID: ptr64(99999)})
		attackerShips = append(attackerShips, models.ShipInfo{Category: models.CategoryFrigate})
	}
	return models.EnrichedEvent{
		Event: models.Event{
			EventID:   id,
			Timestamp: ts,
			SystemID:  30000142,
			Victim:    models.Participant{PilotID: victimPilot, CorporationID: 1000, ShipTypeID: victimShipType},
			Attackers: attackers,
		},
		Pinpoint:      pinpoint,
		VictimShip:    models.ShipInfo{Category: victimShip},
		AttackerShips: attackerShips,
	}
}

func newEngine() *ProbabilityEngine {
	return NewProbabilityEngine(ProbabilityConfig{DecayStart: 5 * time.Minute, DecayRatePerMin: 0.10})
}

// Scenario 1 (§8): a single industrial hull killed at a gate by one
// unweighted attacker scores only the vulnerable-victim bonus (+0.20).
func TestProbabilitySingleIndustrialGateKillScoresVulnerableBonusOnly(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ev := killEvent(1, base, ptr64(1), models.CategoryIndustrial, 648, []int64{2}, gatePinpoint())
	s.Events = append(s.Events, ev)
	s.FirstEventTime = base
	s.LastEventTime = base

	newEngine().Compute(s, base)

	assert.Equal(t, 20, s.Probability)
	assert.Equal(t, 20, s.MaxProbabilitySeen)
}

func TestProbabilityThreatContributionCapsAtFifty(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Three heavy-interdictor attackers (0.90 each) on one ship-kill would
	// sum to 2.70 uncapped; the stage must cap the contribution at 0.50.
	ev := models.EnrichedEvent{
		Event: models.Event{
			EventID:   1,
			Timestamp: base,
			SystemID:  30000142,
			Victim:    models.Participant{PilotID: ptr64(1), ShipTypeID: 626},
			Attackers: []models.Attacker{
				{PilotID: ptr64(2), ShipTypeID: ptr64(12013)},
				{PilotID: ptr64(3), ShipTypeID: ptr64(12017)},
				{PilotID: ptr64(4), ShipTypeID: ptr64(12021)},
			},
		},
		Pinpoint:   gatePinpoint(),
		VictimShip: models.ShipInfo{Category: models.CategoryCruiser},
	}
	s.Events = append(s.Events, ev)
	s.FirstEventTime = base
	s.LastEventTime = base

	newEngine().Compute(s, base)

	// threat (capped 0.50) -> p=0.50 -> 50%, no other bonuses apply.
	assert.Equal(t, 50, s.Probability)
}

func TestProbabilityBurstPenaltyAppliesToYoungRapidSession(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ev1 := killEvent(1, base, ptr64(1), models.CategoryFrigate, 587, []int64{10}, gatePinpoint())
	ev2 := killEvent(2, base.Add(60*time.Second), ptr64(2), models.CategoryFrigate, 587, []int64{10}, gatePinpoint())
	s.Events = append(s.Events, ev1, ev2)
	s.FirstEventTime = base
	s.LastEventTime = ev2.Timestamp

	newEngine().Compute(s, ev2.Timestamp)

	// burst penalty -0.20 is the only stage in play (unweighted attacker,
	// non-industrial victim); net score floors at 0.
	assert.Equal(t, 0, s.Probability)
	assert.Contains(t, s.ProbabilityLog[0], "burst penalty")
}

func TestProbabilitySmartbombBonusWithSingleShipKill(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ev := models.EnrichedEvent{
		Event: models.Event{
			EventID:   1,
			Timestamp: base,
			SystemID:  30000142,
			Victim:    models.Participant{PilotID: ptr64(1), ShipTypeID: 587},
			Attackers: []models.Attacker{
				{PilotID: ptr64(2), ShipTypeID: ptr64(23773)}, // Abaddon, smartbomb hull
			},
		},
		Pinpoint:   gatePinpoint(),
		VictimShip: models.ShipInfo{Category: models.CategoryFrigate},
	}
	s.Events = append(s.Events, ev)
	s.FirstEventTime = base
	s.LastEventTime = base

	newEngine().Compute(s, base)

	// smartbomb flag (+0.16) + hull bonus with <=1 ship-kill (+0.15) = 0.31.
	assert.Equal(t, 31, s.Probability)
}

func TestProbabilityKnownLocationBonus(t *testing.T) {
	s := newCampSession(30002813, "Stargate (Tama)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	shipKill := killEvent(1, base, ptr64(1), models.CategoryFrigate, 587, []int64{2}, gatePinpoint())
	podKill := killEvent(2, base.Add(time.Minute), ptr64(3), models.CategoryOther, 670, []int64{2}, gatePinpoint())
	s.Events = append(s.Events, shipKill, podKill)
	s.FirstEventTime = base
	s.LastEventTime = podKill.Timestamp

	newEngine().Compute(s, podKill.Timestamp)

	// known-location (+0.30) + pod bonus (+0.03), no threat weight, single
	// ship-kill so vulnerable/consistency/spacing stages don't apply.
	assert.Equal(t, 33, s.Probability)
}

func TestProbabilityVulnerableVictimBonusScalesWithCount(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ev1 := killEvent(1, base, ptr64(1), models.CategoryMining, 17478, []int64{9}, gatePinpoint())
	ev2 := killEvent(2, base.Add(10*time.Minute), ptr64(2), models.CategoryIndustrial, 648, []int64{9}, gatePinpoint())
	s.Events = append(s.Events, ev1, ev2)
	s.FirstEventTime = base
	s.LastEventTime = ev2.Timestamp

	newEngine().Compute(s, ev2.Timestamp)

	// two vulnerable victims -> +0.40; one gap > 5min -> widely-spaced +0.15.
	assert.Equal(t, 55, s.Probability)
}

// Attacker-consistency stage: three ship-kills in sequence where each of the
// first two shares 2+ attackers with the latest one trigger the bonus.
func TestProbabilityAttackerConsistencyBonus(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	pilots := []int64{10, 11, 12}
	ev1 := killEvent(1, base, ptr64(1), models.CategoryFrigate, 587, pilots, gatePinpoint())
	ev2 := killEvent(2, base.Add(6*time.Minute), ptr64(2), models.CategoryFrigate, 587, pilots, gatePinpoint())
	ev3 := killEvent(3, base.Add(12*time.Minute), ptr64(3), models.CategoryFrigate, 587, pilots, gatePinpoint())
	s.Events = append(s.Events, ev1, ev2, ev3)
	s.FirstEventTime = base
	s.LastEventTime = ev3.Timestamp

	newEngine().Compute(s, ev3.Timestamp)

	found := false
	for _, line := range s.ProbabilityLog {
		if line == "attacker-consistency bonus: +0.30 (2 consistent kills)" {
			found = true
		}
	}
	require.True(t, found, "expected consistency bonus log entry, got: %v", s.ProbabilityLog)
}

// Same-victim-burst skip clause (§4.E stage 6, §8 boundary behavior): the
// consistency stage must NOT fire when the three checked kills are all
// within 120s of each other and share one victim corp.
func TestProbabilityConsistencySkippedOnSameVictimBurst(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	pilots := []int64{10, 11, 12}
	mkEvent := func(id int64, ts time.Time) models.EnrichedEvent {
		ev := killEvent(id, ts, ptr64(id+100), models.CategoryFrigate, 587, pilots, gatePinpoint())
		ev.Victim.CorporationID = 5000 // shared victim corp across all three
		return ev
	}
	ev1 := mkEvent(1, base)
	ev2 := mkEvent(2, base.Add(30*time.Second))
	ev3 := mkEvent(3, base.Add(60*time.Second))
	s.Events = append(s.Events, ev1, ev2, ev3)
	s.FirstEventTime = base
	s.LastEventTime = ev3.Timestamp

	newEngine().Compute(s, ev3.Timestamp)

	for _, line := range s.ProbabilityLog {
		assert.NotContains(t, line, "consistency bonus: +")
	}
}

func TestProbabilityPodBonusCapsAtFifteen(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	var events []models.EnrichedEvent
	for i := int64(0); i < 6; i++ {
		events = append(events, killEvent(i, base.Add(time.Duration(i)*time.Second), ptr64(i+1), models.CategoryOther, 670, []int64{99}, gatePinpoint()))
	}
	s.Events = events
	s.FirstEventTime = base
	s.LastEventTime = events[len(events)-1].Timestamp

	newEngine().Compute(s, s.LastEventTime)

	// 6 pod kills * 0.03 = 0.18, capped at 0.15; no ship-kills at all so no
	// other stage contributes.
	assert.Equal(t, 15, s.Probability)
}

func TestProbabilityNoScoreableEventsIsZero(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ev := killEvent(1, base, nil, models.CategoryStructure, 33475, []int64{1}, gatePinpoint())
	s.Events = append(s.Events, ev)
	s.FirstEventTime = base
	s.LastEventTime = base

	newEngine().Compute(s, base)

	assert.Equal(t, 0, s.Probability)
	assert.Contains(t, s.ProbabilityLog[0], "no scoreable events")
}

func TestProbabilityAwoxEventExcluded(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ev := killEvent(1, base, ptr64(1), models.CategoryIndustrial, 648, []int64{2}, gatePinpoint())
	ev.Awox = true
	s.Events = append(s.Events, ev)
	s.FirstEventTime = base
	s.LastEventTime = base

	newEngine().Compute(s, base)

	assert.Equal(t, 0, s.Probability)
}

func TestProbabilityMobileTractorUnitVictimExcluded(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	ev := killEvent(1, base, ptr64(1), models.CategoryStructure, 33475, []int64{2}, gatePinpoint())
	s.Events = append(s.Events, ev)
	s.FirstEventTime = base
	s.LastEventTime = base

	newEngine().Compute(s, base)

	assert.Equal(t, 0, s.Probability)
}

func TestProbabilityRoamSeededSessionIgnoresGateFilter(t *testing.T) {
	s := models.NewSession("roam-1", models.SeedKindRoam, 30000142, nil)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// No pinpoint qualifies for a gate kill, but a roam-seeded session's
	// filter doesn't require one.
	ev := killEvent(1, base, ptr64(1), models.CategoryIndustrial, 648, []int64{2}, models.Pinpoint{})
	s.Events = append(s.Events, ev)
	s.FirstEventTime = base
	s.LastEventTime = base

	newEngine().Compute(s, base)

	assert.Equal(t, 20, s.Probability)
}

// Cap invariant (§8 law): the raw score before decay never exceeds 0.95
// regardless of how many bonus stages stack.
func TestProbabilityCapsAtNinetyFivePercentPreDecay(t *testing.T) {
	s := newCampSession(30002813, "Stargate (Tama)") // matches permanent-camps table
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	pilots := []int64{10, 11, 12}
	var events []models.EnrichedEvent
	for i := int64(0); i < 5; i++ {
		ts := base.Add(time.Duration(i) * 8 * time.Minute)
		ev := killEvent(i, ts, ptr64(i+100), models.CategoryMining, 17478, pilots, gatePinpoint())
		ev.Attackers[0].ShipTypeID = ptr64(12013) // heavy interdictor, weight 0.90
		events = append(events, ev)
	}
	s.Events = events
	s.FirstEventTime = base
	s.LastEventTime = events[len(events)-1].Timestamp

	newEngine().Compute(s, s.LastEventTime)

	assert.LessOrEqual(t, s.Probability, 95)
}

// Decay monotonicity (§8 law): with no new events, probability is
// non-increasing as time passes beyond the decay grace period.
func TestProbabilityDecayIsMonotonicallyNonIncreasing(t *testing.T) {
	s := newCampSession(30002813, "Stargate (Tama)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ev := killEvent(1, base, ptr64(1), models.CategoryIndustrial, 648, []int64{2}, gatePinpoint())
	s.Events = append(s.Events, ev)
	s.FirstEventTime = base
	s.LastEventTime = base

	engine := newEngine()
	var prev = 101
	for minutes := 0; minutes <= 20; minutes += 2 {
		engine.Compute(s, base.Add(time.Duration(minutes)*time.Minute))
		assert.LessOrEqual(t, s.Probability, prev)
		prev = s.Probability
	}
}

func TestProbabilityDecayTwelveMinutesPastStartDropsToZero(t *testing.T) {
	s := newCampSession(30000142, "Stargate (Jita)")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ev := killEvent(1, base, ptr64(1), models.CategoryMining, 17478, []int64{2}, gatePinpoint())
	engine := newEngine()
	s.Events = append(s.Events, ev)
	s.FirstEventTime = base
	s.LastEventTime = base
	engine.Compute(s, base)
	preDecay := s.Probability

	// 12 minutes past the 5-minute decay grace period: factor = 1-0.10*12 = -0.2 -> floored at 0.
	engine.Compute(s, base.Add(17*time.Minute))
	assert.Equal(t, 0, s.Probability)
	assert.Greater(t, preDecay, 0)
}
