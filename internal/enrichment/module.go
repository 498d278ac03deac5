package enrichment

import (
	"context"

	"go-campwatch/internal/activity/models"
	"go-campwatch/internal/enrichment/services"
	"go-campwatch/pkg/pinpoint"
	"go-campwatch/pkg/shipcatalog"
)

// Module owns the Enricher worker pool.
type Module struct {
	Enricher *services.Enricher
}

// NewModule wires the pinpoint and ship-catalog clients into an Enricher
// that forwards enriched events to sink.
func NewModule(pinpointURL, shipCatalogURL string, workers int, sink func(models.EnrichedEvent)) *Module {
	var pp pinpoint.Client = pinpoint.NewHTTPClient(pinpointURL)

	// An external catalog service endpoint is accepted for forward
	// compatibility but not yet wired; the in-process table always serves.
	_ = shipCatalogURL
	sc := shipcatalog.NewInProcessClient()

	return &Module{
		Enricher: services.NewEnricher(pp, sc, workers, sink),
	}
}

// Start launches the enrichment worker pool.
func (m *Module) Start(ctx context.Context) {
	m.Enricher.Start(ctx)
}

// Stop drains and stops the worker pool.
func (m *Module) Stop() {
	m.Enricher.Stop()
}
