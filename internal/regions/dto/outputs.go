package dto

// LiveRegionActivity is the current snapshot's per-region rollup, folded
// over every live session and bucketed by classification family per §4.F:
// camp/solo_camp/roaming_camp/smartbomb count as camps, roam/solo_roam
// count as roams, battle counts separately, everything else is other.
type LiveRegionActivity struct {
	Camps      int     `json:"camps"`
	Roams      int     `json:"roams"`
	Battles    int     `json:"battles"`
	Other      int     `json:"other"`
	TotalValue float64 `json:"totalValue"`
}

// HistoricalRegionActivity is one region's rollup over the archive for a
// requested lookback window.
type HistoricalRegionActivity struct {
	Sessions int64            `json:"sessions" bson:"sessions"`
	Kills    int64            `json:"kills" bson:"kills"`
	Value    float64          `json:"value" bson:"value"`
	ByType   map[string]int64 `json:"byType" bson:"byType"`
}

// RegionActivityResponse is the body of the regional activity endpoint:
// `{ live: {[region]: LiveRegionActivity}, history: {[region]:
// HistoricalRegionActivity} }` per §6.
type RegionActivityResponse struct {
	Live    map[string]LiveRegionActivity       `json:"live"`
	History map[string]HistoricalRegionActivity `json:"history"`
}
