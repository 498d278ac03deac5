package services

import (
	"fmt"
	"time"

	"go-campwatch/internal/activity/models"
)

// GroupingEngine decides which session(s) an Enriched
// Event creates or updates. It operates directly on the Store's live
// sessions map and must only be invoked from inside Store.UpsertEvent's
// locked section.
type GroupingEngine struct {
	probability *ProbabilityEngine
	nextRoamID  func() string
}

// NewGroupingEngine builds a grouping engine bound to the given probability
// engine. nextRoamID mints fresh session ids for newly seeded roams.
func NewGroupingEngine(p *ProbabilityEngine, nextRoamID func() string) *GroupingEngine {
	return &GroupingEngine{probability: p, nextRoamID: nextRoamID}
}

// Apply runs the camp and roam branches for ev against sessions, creating or
// updating sessions in place, and returns every session touched by this
// event (for dirty-tracking by the caller).
func (g *GroupingEngine) Apply(sessions map[string]*models.Session, ev models.EnrichedEvent, now time.Time) []*models.Session {
	var touched []*models.Session
	var campSession *models.Session

	if stargate, ok := ev.QualifiesForGateBranch(); ok {
		id := fmt.Sprintf("%d-%s", ev.SystemID, stargate)
		s, exists := sessions[id]
		if !exists {
			name := stargate
			s = models.NewSession(id, models.SeedKindCamp, ev.SystemID, &name)
			sessions[id] = s
		}
		if g.appendEvent(s, ev, now) {
			touched = append(touched, s)
		}
		campSession = s
	}

	attackerPilots := ev.DistinctAttackerPilots()
	if attackerPilots.Len() >= 2 {
		target := g.findRoamTarget(sessions, attackerPilots, campSession)
		if target == nil {
			id := g.nextRoamID()
			target = models.NewSession(id, models.SeedKindRoam, ev.SystemID, nil)
			sessions[id] = target
		}
		if g.appendEvent(target, ev, now) {
			touched = append(touched, target)
		}
	}

	return touched
}

// findRoamTarget implements the roam branch's merge search: a session whose
// Members intersects the event's attacker-pilot set and that is not the
// camp-seeded session just updated for this same event, tie-broken by most
// recent LastEventTime then by id.
func (g *GroupingEngine) findRoamTarget(sessions map[string]*models.Session, attackerPilots *models.OrderedSet[int64], exclude *models.Session) *models.Session {
	var best *models.Session
	for _, s := range sessions {
		if s == exclude {
			continue
		}
		if !s.Members.Intersects(attackerPilots) {
			continue
		}
		if best == nil {
			best = s
			continue
		}
		if s.LastEventTime.After(best.LastEventTime) {
			best = s
			continue
		}
		if s.LastEventTime.Equal(best.LastEventTime) && s.ID < best.ID {
			best = s
		}
	}
	return best
}

// appendEvent performs the append sequence, in order:
// dedupe on event id, append, total_value, members, composition, path,
// metrics, probability, classification. Returns false if the event was a
// duplicate and nothing changed.
func (g *GroupingEngine) appendEvent(s *models.Session, ev models.EnrichedEvent, now time.Time) bool {
	if s.HasSeenEvent(ev.EventID) {
		return false
	}
	s.MarkEventSeen(ev.EventID)

	s.Events = append(s.Events, ev)
	s.TotalValue += ev.TotalValue

	if s.FirstEventTime.IsZero() || ev.Timestamp.Before(s.FirstEventTime) {
		s.FirstEventTime = ev.Timestamp
	}
	if ev.Timestamp.After(s.LastEventTime) {
		s.LastEventTime = ev.Timestamp
	}

	applyComposition(s, ev)

	systemChanged := len(s.Path) == 0 || s.Path[len(s.Path)-1].SystemID != ev.SystemID
	s.VisitedSystems.Add(ev.SystemID)
	if systemChanged {
		s.Path = append(s.Path, models.PathEntry{
			SystemID: ev.SystemID,
			Name:     ev.Pinpoint.SystemName,
			Region:   ev.Pinpoint.RegionName,
			Time:     ev.Timestamp,
		})
	}

	recomputeMetrics(s, now)
	g.probability.Compute(s, now)
	s.Classification = Classify(s)

	return true
}

// applyComposition implements the composition-tracking rule.
func applyComposition(s *models.Session, ev models.EnrichedEvent) {
	for _, a := range ev.Attackers {
		if a.PilotID == nil {
			continue
		}
		pilot := *a.PilotID
		s.Members.Add(pilot)
		s.Composition.OriginalAttackers.Add(pilot)
		if !s.Composition.KilledAttackers.Has(pilot) {
			s.Composition.ActiveAttackers.Add(pilot)
		}
		if a.CorporationID != nil {
			s.Composition.Corporations.Add(*a.CorporationID)
		}
		if a.AllianceID != nil {
			s.Composition.Alliances.Add(*a.AllianceID)
		}
	}

	if ev.Victim.PilotID != nil {
		victim := *ev.Victim.PilotID
		s.Members.Add(victim)
		if s.Composition.ActiveAttackers.Has(victim) {
			s.Composition.ActiveAttackers.Remove(victim)
			s.Composition.KilledAttackers.Add(victim)
		}
	}
}

// recomputeMetrics refreshes the cached Metrics record used by scoring and
// the subscriber view.
func recomputeMetrics(s *models.Session, now time.Time) {
	podKills, shipKills := 0, 0
	shipCounts := make(map[string]int)
	for _, ev := range s.Events {
		if ev.VictimIsPod() {
			podKills++
		} else {
			shipKills++
		}
		shipCounts[string(ev.VictimShip.Category)]++
	}

	duration := s.LastEventTime.Sub(s.FirstEventTime)
	freq := 0.0
	if duration > 0 {
		freq = float64(len(s.Events)) / duration.Hours()
	}
	avgValue := 0.0
	if len(s.Events) > 0 {
		avgValue = s.TotalValue / float64(len(s.Events))
	}

	s.Metrics = models.Metrics{
		FirstSeen:            s.FirstEventTime,
		CampDuration:         duration,
		ActiveDuration:       duration,
		InactivityDuration:   now.Sub(s.LastEventTime),
		PodKills:             podKills,
		ShipKills:            shipKills,
		KillFrequencyPerHour: freq,
		AvgValuePerKill:      avgValue,
		ShipCounts:           shipCounts,
	}
}
