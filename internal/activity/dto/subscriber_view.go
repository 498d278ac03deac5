package dto

import (
	"time"

	"go-campwatch/internal/activity/models"
)

// SessionView is the subscriber-protocol flattening of a Session. Sets
// become arrays for wire transport.
type SessionView struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Classification string          `json:"classification"`
	SystemID       int32           `json:"systemId"`
	StargateName   *string         `json:"stargateName,omitempty"`
	Kills          []EventView     `json:"kills"`
	TotalValue     float64         `json:"totalValue"`
	LastKill       time.Time       `json:"lastKill"`
	FirstKillTime  time.Time       `json:"firstKillTime"`
	LastActivity   time.Time       `json:"lastActivity"`
	Composition    CompositionView `json:"composition"`
	Metrics        MetricsView     `json:"metrics"`
	Probability    int             `json:"probability"`
	MaxProbability int             `json:"maxProbability"`
	VisitedSystems []int32         `json:"visitedSystems"`
	SystemsVisited int             `json:"systemsVisited"`
	Members        []int64         `json:"members"`
	Systems        []PathView      `json:"systems"`
	LastSystem     *PathView       `json:"lastSystem,omitempty"`
	StartTime      time.Time       `json:"startTime"`
}

type EventView struct {
	EventID       int64      `json:"eventId"`
	Timestamp     time.Time  `json:"timestamp"`
	SystemID      int32      `json:"systemId"`
	VictimShip    string     `json:"victimShip"`
	TotalValue    float64    `json:"totalValue"`
	AttackerCount int        `json:"attackerCount"`
}

type CompositionView struct {
	OriginalCount int `json:"originalCount"`
	ActiveCount   int `json:"activeCount"`
	KilledCount   int `json:"killedCount"`
	NumCorps      int `json:"numCorps"`
	NumAlliances  int `json:"numAlliances"`
}

type MetricsView struct {
	FirstSeen          time.Time      `json:"firstSeen"`
	CampDuration        float64        `json:"campDuration"`
	ActiveDuration       float64        `json:"activeDuration"`
	InactivityDuration   float64        `json:"inactivityDuration"`
	PodKills             int            `json:"podKills"`
	KillFrequency        float64        `json:"killFrequency"`
	AvgValuePerKill      float64        `json:"avgValuePerKill"`
	ShipCounts           map[string]int `json:"shipCounts"`
	PartyMetrics         PartyMetricsView `json:"partyMetrics"`
}

type PartyMetricsView struct {
	Characters   int `json:"characters"`
	Corporations int `json:"corporations"`
	Alliances    int `json:"alliances"`
}

type PathView struct {
	ID     int32     `json:"id"`
	Name   string    `json:"name"`
	Region string    `json:"region"`
	Time   time.Time `json:"time"`
}

// ToSessionView flattens a live Session into its wire representation.
func ToSessionView(s *models.Session) SessionView {
	kills := make([]EventView, 0, len(s.Events))
	for _, ev := range s.Events {
		kills = append(kills, EventView{
			EventID:       ev.EventID,
			Timestamp:     ev.Timestamp,
			SystemID:      ev.SystemID,
			VictimShip:    string(ev.VictimShip.Category),
			TotalValue:    ev.TotalValue,
			AttackerCount: len(ev.Attackers),
		})
	}

	systems := make([]PathView, 0, len(s.Path))
	for _, p := range s.Path {
		systems = append(systems, PathView{ID: p.SystemID, Name: p.Name, Region: p.Region, Time: p.Time})
	}
	var lastSystem *PathView
	if len(systems) > 0 {
		lastSystem = &systems[len(systems)-1]
	}

	return SessionView{
		ID:             s.ID,
		Type:           string(s.SeedKind),
		Classification: string(s.Classification),
		SystemID:       s.SystemID,
		StargateName:   s.StargateName,
		Kills:          kills,
		TotalValue:     s.TotalValue,
		LastKill:       s.LastEventTime,
		FirstKillTime:  s.FirstEventTime,
		LastActivity:   s.LastEventTime,
		Composition: CompositionView{
			OriginalCount: s.Composition.OriginalAttackers.Len(),
			ActiveCount:   s.Composition.ActiveAttackers.Len(),
			KilledCount:   s.Composition.KilledAttackers.Len(),
			NumCorps:      s.Composition.Corporations.Len(),
			NumAlliances:  s.Composition.Alliances.Len(),
		},
		Metrics: MetricsView{
			FirstSeen:          s.Metrics.FirstSeen,
			CampDuration:       s.Metrics.CampDuration.Seconds(),
			ActiveDuration:     s.Metrics.ActiveDuration.Seconds(),
			InactivityDuration: s.Metrics.InactivityDuration.Seconds(),
			PodKills:           s.Metrics.PodKills,
			KillFrequency:      s.Metrics.KillFrequencyPerHour,
			AvgValuePerKill:    s.Metrics.AvgValuePerKill,
			ShipCounts:         s.Metrics.ShipCounts,
			PartyMetrics: PartyMetricsView{
				Characters:   s.Members.Len(),
				Corporations: s.Composition.Corporations.Len(),
				Alliances:    s.Composition.Alliances.Len(),
			},
		},
		Probability:    s.Probability,
		MaxProbability: s.MaxProbabilitySeen,
		VisitedSystems: s.VisitedSystems.Slice(),
		SystemsVisited: s.VisitedSystems.Len(),
		Members:        s.Members.Slice(),
		Systems:        systems,
		LastSystem:     lastSystem,
		StartTime:      s.FirstEventTime,
	}
}

// ToSessionViews flattens a snapshot slice in one pass.
func ToSessionViews(sessions []*models.Session) []SessionView {
	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, ToSessionView(s))
	}
	return views
}
