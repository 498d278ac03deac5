package activity

import (
	"context"
	"log/slog"
	"time"

	"go-campwatch/internal/activity/services"
	"go-campwatch/pkg/database"
)

// Module owns the Activity Store, Probability Engine, and Archiver — the
// stateful core the rest of the service's components feed into and read
// from.
type Module struct {
	Store       *services.Store
	Probability *services.ProbabilityEngine
	Repository  *services.Repository
	archiver    *services.Archiver
}

// Config carries the activity engine's tunable knobs.
type Config struct {
	CampTimeout     time.Duration
	RoamTimeout     time.Duration
	DecayStart      time.Duration
	DecayRatePerMin float64
	ScanInterval    time.Duration
}

// NewModule wires the probability engine, store, and archiver, in that
// dependency order.
func NewModule(db *database.MongoDB, cfg Config, onSnapshot func()) *Module {
	probability := services.NewProbabilityEngine(services.ProbabilityConfig{
		DecayStart:      cfg.DecayStart,
		DecayRatePerMin: cfg.DecayRatePerMin,
	})
	store := services.NewStore(probability)
	repo := services.NewRepository(db)
	archiver := services.NewArchiver(store, probability, repo, cfg.CampTimeout, cfg.RoamTimeout, onSnapshot)

	return &Module{
		Store:       store,
		Probability: probability,
		Repository:  repo,
		archiver:    archiver,
	}
}

// Initialize creates the archive's durable indexes.
func (m *Module) Initialize(ctx context.Context) error {
	return m.Repository.CreateIndexes(ctx)
}

// StartBackgroundTasks starts the Expiry/Archiver's periodic scan.
func (m *Module) StartBackgroundTasks(ctx context.Context, interval time.Duration) {
	if err := m.archiver.Start(ctx, interval); err != nil {
		slog.Error("failed to start activity archiver", "error", err)
	}
}

// Stop halts the archiver, flushing any in-flight scan.
func (m *Module) Stop() {
	m.archiver.Stop()
}
