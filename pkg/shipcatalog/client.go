// Package shipcatalog resolves ship_type_id to a category/name/tier triple
// as a pure enrichment function, backed by an in-process ship-type-id →
// category table rather than a round trip to a database for a mostly
// static lookup.
package shipcatalog

import (
	"context"

	"go-campwatch/internal/activity/models"
)

// entry is one row of the in-process ship catalog.
type entry struct {
	name     string
	category models.ShipCategory
	tier     string
}

// catalog is the compiled-in ship table. Real deployments would bulk-load
// this from the EVE static data export; the contract (Resolve) is what the
// rest of the system depends on, so the table's population strategy is
// swappable without touching callers.
var catalog = map[int64]entry{
	587:   {"Rifter", models.CategoryFrigate, "t1"},
	602:   {"Merlin", models.CategoryFrigate, "t1"},
	603:   {"Kestrel", models.CategoryFrigate, "t1"},
	11377: {"Stealth Bomber", models.CategoryFrigate, "t2"},
	16236: {"Thrasher", models.CategoryDestroyer, "t1"},
	16238: {"Cormorant", models.CategoryDestroyer, "t1"},
	22456: {"Sabre", models.CategoryDestroyer, "t2"},
	22464: {"Flycatcher", models.CategoryDestroyer, "t2"},
	22452: {"Eris", models.CategoryDestroyer, "t2"},
	22460: {"Heretic", models.CategoryDestroyer, "t2"},
	626:   {"Vexor", models.CategoryCruiser, "t1"},
	11969: {"Falcon", models.CategoryCruiser, "t2"},
	11957: {"Rook", models.CategoryCruiser, "t2"},
	11961: {"Curse", models.CategoryCruiser, "t2"},
	11965: {"Pilgrim", models.CategoryCruiser, "t2"},
	12013: {"Broadsword", models.CategoryCruiser, "t2"},
	12017: {"Onyx", models.CategoryCruiser, "t2"},
	12021: {"Phobos", models.CategoryCruiser, "t2"},
	12023: {"Devoter", models.CategoryCruiser, "t2"},
	16227: {"Drake", models.CategoryBattlecruiser, "t1"},
	642:   {"Maller", models.CategoryCruiser, "t1"},
	24688: {"Apocalypse", models.CategoryBattleship, "t1"},
	23773: {"Abaddon", models.CategoryBattleship, "t1"},
	24692: {"Megathron", models.CategoryBattleship, "t1"},
	671:   {"Erebus", models.CategorySupercapital, "capital"},
	19720: {"Moros", models.CategoryCapital, "capital"},
	648:   {"Badger", models.CategoryIndustrial, "t1"},
	649:   {"Tayra", models.CategoryIndustrial, "t1"},
	17478: {"Venture", models.CategoryMining, "t1"},
	17480: {"Retriever", models.CategoryMining, "t1"},
	670:   {"Capsule", models.CategoryOther, "pod"},
	33328: {"Capsule (Genolution)", models.CategoryOther, "pod"},
	33475: {"Mobile Tractor Unit", models.CategoryStructure, "deployable"},
}

// Client resolves ship_type_id to its category/name/tier.
type Client interface {
	Resolve(ctx context.Context, shipTypeID int64) (models.ShipInfo, error)
}

// InProcessClient is the default Client, backed by the compiled-in catalog
// table above.
type InProcessClient struct{}

// NewInProcessClient builds the default ship-catalog client.
func NewInProcessClient() *InProcessClient {
	return &InProcessClient{}
}

// Resolve looks up shipTypeID. Unknown hulls degrade to category "other"
// never erroring — a missing catalog row is not a failure
// mode worth surfacing to the caller.
func (c *InProcessClient) Resolve(ctx context.Context, shipTypeID int64) (models.ShipInfo, error) {
	if e, ok := catalog[shipTypeID]; ok {
		return models.ShipInfo{Category: e.category, Name: e.name, Tier: e.tier}, nil
	}
	return models.ShipInfo{Category: models.CategoryOther, Name: "Unknown", Tier: "unknown"}, nil
}
