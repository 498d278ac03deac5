package services

import (
	"fmt"
	"math"
	"time"

	"go-campwatch/internal/activity/models"
)

// ProbabilityConfig carries the tunables for the scoring
// model. Zero values are invalid; populate every field before passing it to
// NewProbabilityEngine.
type ProbabilityConfig struct {
	DecayStart     time.Duration
	DecayRatePerMin float64
}

// ProbabilityEngine computes the camp-probability score for a Session
// It holds no state of its own; every call is a pure function
// of the Session plus the current wall-clock time.
type ProbabilityEngine struct {
	cfg ProbabilityConfig
}

// NewProbabilityEngine builds an engine from the configured decay knobs.
func NewProbabilityEngine(cfg ProbabilityConfig) *ProbabilityEngine {
	return &ProbabilityEngine{cfg: cfg}
}

// scoredEvent is a filtered, classified view of one EnrichedEvent used only
// during scoring.
type scoredEvent struct {
	ev       *models.EnrichedEvent
	isPod    bool
}

// Compute recomputes Probability, MaxProbabilitySeen, Classification-input
// state, and ProbabilityLog on the session as of `now`. It does not itself
// set Classification — the Classifier consumes the recomputed Probability.
func (e *ProbabilityEngine) Compute(s *models.Session, now time.Time) {
	log := make([]string, 0, 12)
	p := 0.0

	filtered := e.filterEvents(s)
	if len(filtered) == 0 {
		log = append(log, "no scoreable events after filtering: probability 0")
		e.finish(s, 0, log)
		return
	}

	var shipKills, podKills []scoredEvent
	for _, se := range filtered {
		if se.isPod {
			podKills = append(podKills, se)
		} else {
			shipKills = append(shipKills, se)
		}
	}

	// Stage 1: burst penalty.
	if burst, _ := burstPenaltyApplies(s, shipKills); burst {
		p -= 0.20
		log = append(log, "burst penalty: -0.20 (young session, consecutive kills within 120s)")
	}

	// Stage 2: threat-ship contribution, capped +0.50.
	threat := 0.0
	for _, se := range shipKills {
		for _, a := range se.ev.Attackers {
			threat += threatWeightFor(a.ShipTypeID)
		}
	}
	if threat > 0.50 {
		threat = 0.50
	}
	if threat > 0 {
		p += threat
		log = append(log, fmt.Sprintf("threat-ship contribution: +%.2f (capped 0.50)", threat))
	}

	// Stage 3: smartbomb bonus.
	smartbombFlag := sessionHasSmartbomb(s)
	if smartbombFlag {
		p += 0.16
		log = append(log, "smartbomb flag: +0.16")
		extra := 0.15
		if len(shipKills) > 1 {
			extra = 0.30
		}
		p += extra
		log = append(log, fmt.Sprintf("smartbomb hull/weapon bonus: +%.2f", extra))
	}

	// Stage 4: known-location bonus.
	if s.SeedKind == models.SeedKindCamp && s.StargateName != nil {
		w := permanentCampWeight(s.SystemID, *s.StargateName)
		if w > 0 {
			p += w
			log = append(log, fmt.Sprintf("known-location bonus: +%.2f", w))
		}
	}

	// Stage 5: vulnerable-victim bonus.
	vulnerable := 0
	for _, se := range shipKills {
		if se.ev.VictimShip.Category == models.CategoryIndustrial || se.ev.VictimShip.Category == models.CategoryMining {
			vulnerable++
		}
	}
	if vulnerable >= 1 {
		bonus := 0.20
		if vulnerable > 1 {
			bonus = 0.40
		}
		p += bonus
		log = append(log, fmt.Sprintf("vulnerable-victim bonus: +%.2f (%d kills)", bonus, vulnerable))
	}

	// Stage 6: attacker-consistency bonus, capped +0.30.
	if consistency, note := e.attackerConsistency(shipKills); consistency > 0 {
		p += consistency
		log = append(log, note)
	} else if note != "" {
		log = append(log, note)
	}

	// Stage 7: widely-spaced bonus, capped +0.45.
	if spaced := widelySpacedBonus(shipKills); spaced > 0 {
		p += spaced
		log = append(log, fmt.Sprintf("widely-spaced bonus: +%.2f", spaced))
	}

	// Stage 8: pod bonus, capped +0.15.
	if len(podKills) > 0 {
		bonus := 0.03 * float64(len(podKills))
		if bonus > 0.15 {
			bonus = 0.15
		}
		p += bonus
		log = append(log, fmt.Sprintf("pod bonus: +%.2f (%d pod kills)", bonus, len(podKills)))
	}

	// Cap to [0, 0.95] pre-decay.
	p = clamp(p, 0, 0.95)
	log = append(log, fmt.Sprintf("pre-decay score: %.2f", p))

	// Decay.
	delta := now.Sub(s.LastEventTime).Minutes()
	decayStartMin := e.cfg.DecayStart.Minutes()
	if delta > decayStartMin {
		factor := 1 - e.cfg.DecayRatePerMin*(delta-decayStartMin)
		if factor < 0 {
			factor = 0
		}
		p *= factor
		log = append(log, fmt.Sprintf("decay applied: Δ=%.1fmin factor=%.2f", delta, factor))
	}
	p = clamp(p, 0, 0.95)

	rounded := int(math.Round(p * 100))
	e.finish(s, rounded, log)
}

func (e *ProbabilityEngine) finish(s *models.Session, rounded int, log []string) {
	s.RecordMaxProbability(rounded)
	if rounded < 5 {
		rounded = 0
	}
	s.Probability = rounded
	s.ProbabilityLog = log
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// filterEvents applies the event filter and classifies each surviving
// event as a ship-kill or pod-kill.
func (e *ProbabilityEngine) filterEvents(s *models.Session) []scoredEvent {
	out := make([]scoredEvent, 0, len(s.Events))
	for i := range s.Events {
		ev := &s.Events[i]
		if ev.Awox {
			continue
		}
		if !ev.VictimIsPilot() {
			continue // "victim corp set but no pilot" — NPC or structure kill
		}
		if ev.HasLabel("npc") || ev.VictimShip.Category == models.CategoryStructure {
			continue
		}
		if models.IsMobileTractorUnit(ev.Victim.ShipTypeID) {
			continue
		}
		if !eventHasPilotOrNPCAttacker(ev) {
			continue
		}
		if s.SeedKind == models.SeedKindCamp {
			if _, ok := ev.QualifiesForGateBranch(); !ok {
				continue
			}
		}
		out = append(out, scoredEvent{ev: ev, isPod: ev.VictimIsPod()})
	}
	return out
}

func eventHasPilotOrNPCAttacker(ev *models.EnrichedEvent) bool {
	for _, a := range ev.Attackers {
		if a.PilotID != nil {
			return true
		}
	}
	// An attacker list with entries but no pilot ids at all is an
	// attacker-only-structure kill; NPC-faction
	// attackers carry no pilot id either way, so an empty/NPC-only
	// attacker list is excluded.
	return false
}

func sessionHasSmartbomb(s *models.Session) bool {
	for i := range s.Events {
		ev := &s.Events[i]
		for _, a := range ev.Attackers {
			if a.ShipTypeID != nil && smartbombShipTypeIDs[*a.ShipTypeID] {
				return true
			}
			if a.WeaponTypeID != nil && smartbombWeaponTypeIDs[*a.WeaponTypeID] {
				return true
			}
		}
	}
	return false
}

// burstPenaltyApplies reports (penaltyApplies, stageApplicable) for stage 1.
func burstPenaltyApplies(s *models.Session, shipKills []scoredEvent) (bool, bool) {
	if len(shipKills) < 2 {
		return false, true
	}
	if s.FirstEventTime.IsZero() {
		return false, true
	}
	young := shipKills[len(shipKills)-1].ev.Timestamp.Sub(s.FirstEventTime) < 15*time.Minute
	if !young {
		return false, true
	}
	for i := 1; i < len(shipKills); i++ {
		gap := shipKills[i].ev.Timestamp.Sub(shipKills[i-1].ev.Timestamp)
		if gap >= 0 && gap <= 120*time.Second {
			return true, true
		}
	}
	return false, true
}

// attackerConsistency implements the attacker-overlap bonus, including the same-victim
// burst skip clause.
func (e *ProbabilityEngine) attackerConsistency(shipKills []scoredEvent) (float64, string) {
	n := len(shipKills)
	if n < 2 {
		return 0, ""
	}
	start := n - 3
	if start < 0 {
		start = 0
	}
	last3 := shipKills[start:]
	if len(last3) < 2 {
		return 0, ""
	}

	if sameVictimBurst(last3) {
		return 0, "attacker-consistency: skipped (same-victim burst within 120s)"
	}

	latest := last3[len(last3)-1]
	latestSet := latest.ev.DistinctAttackerPilots()

	total := 0.0
	hits := 0
	for i := 0; i < len(last3)-1; i++ {
		earlier := last3[i].ev.DistinctAttackerPilots()
		threshold := 2
		if t := earlier.Len() / 3; t > threshold {
			threshold = t
		}
		if earlier.IntersectionSize(latestSet) >= threshold {
			total += 0.15
			hits++
		}
	}
	if total > 0.30 {
		total = 0.30
	}
	if total == 0 {
		return 0, ""
	}
	return total, fmt.Sprintf("attacker-consistency bonus: +%.2f (%d consistent kills)", total, hits)
}

// sameVictimBurst implements the burst skip clause: any two of the
// checked kills within 120s AND all three share a single victim corp or
// alliance.
func sameVictimBurst(kills []scoredEvent) bool {
	if len(kills) < 3 {
		return false
	}
	withinBurst := false
	for i := 1; i < len(kills); i++ {
		if kills[i].ev.Timestamp.Sub(kills[i-1].ev.Timestamp) <= 120*time.Second {
			withinBurst = true
			break
		}
	}
	if !withinBurst {
		return false
	}
	corp := kills[0].ev.Victim.CorporationID
	sameCorp := true
	for _, k := range kills[1:] {
		if k.ev.Victim.CorporationID != corp {
			sameCorp = false
			break
		}
	}
	if sameCorp {
		return true
	}
	if kills[0].ev.Victim.AllianceID == nil {
		return false
	}
	alliance := *kills[0].ev.Victim.AllianceID
	for _, k := range kills[1:] {
		if k.ev.Victim.AllianceID == nil || *k.ev.Victim.AllianceID != alliance {
			return false
		}
	}
	return true
}

// widelySpacedBonus adds +0.15 per gap > 5 minutes
// between consecutive ship-kills, capped at +0.45.
func widelySpacedBonus(shipKills []scoredEvent) float64 {
	bonus := 0.0
	for i := 1; i < len(shipKills); i++ {
		gap := shipKills[i].ev.Timestamp.Sub(shipKills[i-1].ev.Timestamp)
		if gap > 5*time.Minute {
			bonus += 0.15
		}
	}
	if bonus > 0.45 {
		bonus = 0.45
	}
	return bonus
}
