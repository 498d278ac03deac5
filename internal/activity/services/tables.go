package services

// Weight tables and domain constants consumed by the Probability Engine
// These mirror the package-level classification
// tables (pkg/sde/ship_classifier.go's TrackedShipCategories) rather than a
// config file, since they are compiled-in domain knowledge, not runtime
// configuration.

// threatWeights maps an attacker ship type id to its contribution weight in
// the threat-ship scoring stage. Ships not listed contribute 0.
var threatWeights = map[int64]float64{
	// Interdictors / heavy tackle — strong camp signal.
	22456: 0.85, // Sabre
	22464: 0.85, // Flycatcher
	22452: 0.85, // Eris
	22460: 0.85, // Heretic
	// Heavy interdiction cruisers.
	12013: 0.90, // Broadsword
	12017: 0.90, // Onyx
	12021: 0.90, // Phobos
	12023: 0.90, // Devoter
	// Recon/force-recon ships often anchoring a gatecamp.
	11969: 0.55, // Falcon
	11957: 0.55, // Rook
	11961: 0.55, // Curse
	11965: 0.55, // Pilgrim
	// Fast tackle frigates — present but weaker signal alone.
	587:   0.25, // Rifter
	602:   0.20, // Merlin
	603:   0.20, // Kestrel
	// Cloaky recon/blops hunters.
	11377: 0.30, // Stealth Bomber family placeholder weight
}

// threatWeightFor returns the attacker ship's contribution weight, 0 if
// unweighted.
func threatWeightFor(shipTypeID *int64) float64 {
	if shipTypeID == nil {
		return 0
	}
	return threatWeights[*shipTypeID]
}

// smartbombShipTypeIDs are hull type ids commonly fit for area-effect
// smartbomb ambushes.
var smartbombShipTypeIDs = map[int64]bool{
	24692: true, // Megathron smartbomb fit (hull id placeholder)
	23773: true, // Abaddon
	24688: true, // Apocalypse
	642:   true, // Maller (cheap smartbomb alt)
}

// smartbombWeaponTypeIDs are weapon type ids that are smartbombs.
var smartbombWeaponTypeIDs = map[int64]bool{
	3542: true, // Small Electron Smartbomb I
	3546: true, // Medium Electron Smartbomb I
	3556: true, // Large Electron Smartbomb I
	3564: true, // Domination Large EM Smartbomb
}

// permanentCampKey identifies a known, persistently-camped gate.
type permanentCampKey struct {
	systemID     int32
	stargateName string
}

// permanentCamps maps a known camping location to the bonus weight applied
// to the known-location bonus.
var permanentCamps = map[permanentCampKey]float64{
	{systemID: 30002813, stargateName: "Stargate (Tama)"}:   0.30,
	{systemID: 30003068, stargateName: "Stargate (Rancer)"}: 0.25,
	{systemID: 30045349, stargateName: "Stargate (Ignoitton)"}: 0.25,
}

// permanentCampWeight returns the known-location bonus for a camp-seeded
// session, 0 if the location is not in the table.
func permanentCampWeight(systemID int32, stargateName string) float64 {
	return permanentCamps[permanentCampKey{systemID: systemID, stargateName: stargateName}]
}
