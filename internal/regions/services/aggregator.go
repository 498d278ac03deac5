package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"go-campwatch/internal/activity/models"
	"go-campwatch/internal/regions/dto"
)

// Aggregator rolls up activity sessions by region, both for the live
// in-memory snapshot and for the durable archive, grounded on
// zkillboard/services/repository.go's GetStats aggregation-pipeline style.
type Aggregator struct {
	archive *mongo.Collection
}

// NewAggregator wires the aggregator to the expired_camps archive
// collection used by the activity engine's Repository.
func NewAggregator(db *mongo.Database) *Aggregator {
	return &Aggregator{archive: db.Collection("expired_camps")}
}

// Live folds a snapshot of sessions into the live per-region rollup
// described in §4.I: classification buckets into camps/roams/battles/other
// per §4.F's decision order (smartbomb is camp-family kinship). Sessions
// without a resolved region name (enrichment miss) are grouped under
// "Unknown".
func Live(sessions []*models.Session) map[string]dto.LiveRegionActivity {
	byRegion := make(map[string]dto.LiveRegionActivity)

	for _, s := range sessions {
		region := regionOf(s)
		entry := byRegion[region]
		entry.TotalValue += s.TotalValue
		switch {
		case s.Classification == models.ClassBattle:
			entry.Battles++
		case s.Classification.IsCampFamily():
			entry.Camps++
		case s.Classification == models.ClassRoam || s.Classification == models.ClassSoloRoam:
			entry.Roams++
		default:
			entry.Other++
		}
		byRegion[region] = entry
	}

	return byRegion
}

// regionOf resolves a session's region from its most recent path entry.
func regionOf(s *models.Session) string {
	if len(s.Path) == 0 {
		return "Unknown"
	}
	region := s.Path[len(s.Path)-1].Region
	if region == "" {
		return "Unknown"
	}
	return region
}

// historyRow is one region/classification bucket out of the aggregation
// pipeline, folded client-side into HistoricalRegionActivity.ByType.
type historyRow struct {
	Region         string `bson:"region"`
	Classification string `bson:"classification"`
	Sessions       int64  `bson:"sessions"`
	Kills          int64  `bson:"kills"`
	Value          float64 `bson:"value"`
}

// History aggregates the durable archive's region-level activity over the
// trailing window, grouped by region then by classification so callers get
// both the region total and the by-classification breakdown in one pass.
func (a *Aggregator) History(ctx context.Context, window time.Duration) (map[string]dto.HistoricalRegionActivity, error) {
	since := time.Now().Add(-window)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "end_time", Value: bson.D{{Key: "$gte", Value: since}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "region", Value: "$region_name"},
				{Key: "classification", Value: "$classification"},
			}},
			{Key: "sessions", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "kills", Value: bson.D{{Key: "$sum", Value: "$event_count"}}},
			{Key: "value", Value: bson.D{{Key: "$sum", Value: "$total_value"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "region", Value: "$_id.region"},
			{Key: "classification", Value: "$_id.classification"},
			{Key: "sessions", Value: 1},
			{Key: "kills", Value: 1},
			{Key: "value", Value: 1},
		}}},
	}

	cursor, err := a.archive.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate regional history: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []historyRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode regional history: %w", err)
	}

	return foldHistoryRows(rows), nil
}

// foldHistoryRows folds per-(region,classification) rows into the
// per-region {sessions, kills, value, byType} shape.
func foldHistoryRows(rows []historyRow) map[string]dto.HistoricalRegionActivity {
	byRegion := make(map[string]dto.HistoricalRegionActivity)
	for _, row := range rows {
		region := row.Region
		if region == "" {
			region = "Unknown"
		}
		entry, ok := byRegion[region]
		if !ok {
			entry = dto.HistoricalRegionActivity{ByType: make(map[string]int64)}
		}
		entry.Sessions += row.Sessions
		entry.Kills += row.Kills
		entry.Value += row.Value
		entry.ByType[row.Classification] += row.Sessions
		byRegion[region] = entry
	}
	return byRegion
}
