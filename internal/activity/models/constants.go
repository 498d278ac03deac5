package models

// podTypeIDs holds the EVE Online capsule (pod) ship type ids. A pod-kill is
// identified structurally (victim ship type is a capsule), not by category
// tag, since the ship catalog may degrade an unresolved capsule to "other".
var podTypeIDs = map[int64]bool{
	670:  true, // Capsule
	33328: true, // Capsule (Genolution)
}

// IsPodTypeID reports whether shipTypeID is a capsule/pod hull.
func IsPodTypeID(shipTypeID int64) bool {
	return podTypeIDs[shipTypeID]
}

// mobileTractorUnitTypeIDs holds ship type ids for mobile tractor units,
// excluded from scoring by the threat filter (domain-specific, not a
// combat ship and never worth scoring as a camp victim).
var mobileTractorUnitTypeIDs = map[int64]bool{
	33475: true, // Mobile Tractor Unit
}

// IsMobileTractorUnit reports whether shipTypeID is a mobile tractor unit.
func IsMobileTractorUnit(shipTypeID int64) bool {
	return mobileTractorUnitTypeIDs[shipTypeID]
}
