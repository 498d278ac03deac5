package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-campwatch/internal/activity/models"
	"go-campwatch/pkg/database"
)

// ArchivedSession is the durable record written for an expired camp-family
// session. Keyed uniquely by SessionID ("camp_unique_id").
type ArchivedSession struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	SessionID          string             `bson:"session_id"`
	SystemID           int32              `bson:"system_id"`
	StargateName       string             `bson:"stargate_name"`
	MaxProbabilitySeen int                `bson:"max_probability_seen"`
	FirstEventTime     time.Time          `bson:"first_event_time"`
	LastEventTime      time.Time          `bson:"last_event_time"`
	EndTime            time.Time          `bson:"end_time"`
	TotalValue         float64            `bson:"total_value"`
	SeedKind           string             `bson:"seed_kind"`
	EventCount         int                `bson:"event_count"`
	Classification     string             `bson:"classification"`
	RegionName         string             `bson:"region_name"`
	Details            bson.M             `bson:"details"`
	ArchivedAt         time.Time          `bson:"archived_at"`
}

// Repository is the Mongo-backed archive for expired camp-family sessions,
// grounded on the zkillboard module's upsert-on-conflict persistence
// pattern (SaveZKBMetadata).
type Repository struct {
	collection *mongo.Collection
}

// NewRepository wires the repository to the "expired_camps" collection.
func NewRepository(db *database.MongoDB) *Repository {
	return &Repository{collection: db.Collection("expired_camps")}
}

// CreateIndexes creates the unique session-id index and the query indexes
// the Regional Aggregator's history view depends on.
func (r *Repository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "end_time", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "region_name", Value: 1}, {Key: "end_time", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create expired_camps indexes: %w", err)
	}
	return nil
}

// ArchiveSession idempotently upserts the expired session's durable record.
// A conflict on session id is a no-op, matching ON-CONFLICT-DO-
// NOTHING semantics, implemented here as $setOnInsert so a retried archive
// write (after a prior success was not acknowledged) never clobbers the
// first write.
func (r *Repository) ArchiveSession(ctx context.Context, rec ArchivedSession) error {
	rec.ArchivedAt = time.Now()
	filter := bson.M{"session_id": rec.SessionID}
	update := bson.M{"$setOnInsert": rec}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("archive session %s: %w", rec.SessionID, err)
	}
	return nil
}

// ToArchivedSession builds the durable record for an expired session,
// folding its path, composition, and probability history into Details.
func ToArchivedSession(s *models.Session, timeout time.Duration) ArchivedSession {
	stargate := ""
	if s.StargateName != nil {
		stargate = *s.StargateName
	}
	region := ""
	if len(s.Path) > 0 {
		region = s.Path[len(s.Path)-1].Region
	}

	members := s.Members.Slice()
	details := bson.M{
		"events":             len(s.Events),
		"composition_counts": compositionCounts(s),
		"metrics":            s.Metrics,
		"probability_log":    s.ProbabilityLog,
		"path":               s.Path,
		"members":            members,
		"visited_systems":    s.VisitedSystems.Len(),
	}

	return ArchivedSession{
		SessionID:          s.ID,
		SystemID:           s.SystemID,
		StargateName:       stargate,
		MaxProbabilitySeen: s.MaxProbabilitySeen,
		FirstEventTime:     s.FirstEventTime,
		LastEventTime:      s.LastEventTime,
		EndTime:            s.LastEventTime.Add(timeout),
		TotalValue:         s.TotalValue,
		SeedKind:           string(s.SeedKind),
		EventCount:         len(s.Events),
		Classification:     string(s.Classification),
		RegionName:         region,
		Details:            details,
	}
}

func compositionCounts(s *models.Session) bson.M {
	return bson.M{
		"original_attackers": s.Composition.OriginalAttackers.Len(),
		"active_attackers":   s.Composition.ActiveAttackers.Len(),
		"killed_attackers":   s.Composition.KilledAttackers.Len(),
		"corporations":       s.Composition.Corporations.Len(),
		"alliances":          s.Composition.Alliances.Len(),
	}
}
