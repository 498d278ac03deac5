package dto

// RedisQResponse is the long-poll response shape returned by the zkillboard
// RedisQ stream: either a package (a killmail became available) or an empty
// body (the long-poll window elapsed with nothing new).
type RedisQResponse struct {
	Package *RedisQPackage `json:"package"`
}

// RedisQPackage is one killmail as delivered over RedisQ.
type RedisQPackage struct {
	KillID   int64       `json:"killID"`
	Killmail ESIKillmail `json:"killmail"`
	ZKB      ZKBData     `json:"zkb"`
}

// ZKBData is zkillboard's own metadata about the kill, layered on top of
// the raw ESI killmail.
type ZKBData struct {
	LocationID     int64   `json:"locationID"`
	Hash           string  `json:"hash"`
	FittedValue    float64 `json:"fittedValue"`
	DroppedValue   float64 `json:"droppedValue"`
	DestroyedValue float64 `json:"destroyedValue"`
	TotalValue     float64 `json:"totalValue"`
	Points         int     `json:"points"`
	NPC            bool    `json:"npc"`
	Solo           bool    `json:"solo"`
	Awox           bool    `json:"awox"`
	Labels         []string `json:"labels,omitempty"`
	Href           string  `json:"href"`
}

// ESIKillmail is the ESI-shaped killmail body embedded in the RedisQ package.
type ESIKillmail struct {
	KillmailID    int64         `json:"killmail_id"`
	KillmailTime  string        `json:"killmail_time"`
	SolarSystemID int32         `json:"solar_system_id"`
	Victim        ESIVictim     `json:"victim"`
	Attackers     []ESIAttacker `json:"attackers"`
}

// ESIVictim is the victim side of an ESI killmail.
type ESIVictim struct {
	CharacterID   *int64 `json:"character_id,omitempty"`
	CorporationID int64  `json:"corporation_id"`
	AllianceID    *int64 `json:"alliance_id,omitempty"`
	ShipTypeID    int64  `json:"ship_type_id"`
}

// ESIAttacker is one attacker entry in an ESI killmail.
type ESIAttacker struct {
	CharacterID   *int64 `json:"character_id,omitempty"`
	CorporationID *int64 `json:"corporation_id,omitempty"`
	AllianceID    *int64 `json:"alliance_id,omitempty"`
	ShipTypeID    *int64 `json:"ship_type_id,omitempty"`
	WeaponTypeID  *int64 `json:"weapon_type_id,omitempty"`
	FinalBlow     bool   `json:"final_blow"`
}

// ServiceStatus reports the poller's current operating state, surfaced over
// the status route.
type ServiceStatus struct {
	State          string  `json:"state"`
	QueueID        string  `json:"queueId"`
	TotalPolls     int64   `json:"totalPolls"`
	NullResponses  int64   `json:"nullResponses"`
	EventsFound    int64   `json:"eventsFound"`
	HTTPErrors     int64   `json:"httpErrors"`
	ParseErrors    int64   `json:"parseErrors"`
	RateLimitHits  int64   `json:"rateLimitHits"`
	CurrentTTW     int     `json:"currentTtw"`
	NullStreak     int     `json:"nullStreak"`
	LastEventID    int64   `json:"lastEventId,omitempty"`
	UptimeSeconds  float64 `json:"uptimeSeconds"`
}
