package feed

import (
	"context"

	"go-campwatch/internal/activity/models"
	"go-campwatch/internal/feed/routes"
	"go-campwatch/internal/feed/services"
)

// Module owns the upstream feed Poller.
type Module struct {
	Poller *services.Poller
	Routes *routes.Routes
}

// NewModule builds the feed module. sink receives every decoded Event and is
// called on the polling goroutine; the Enricher's Submit blocks while its
// intake queue is full, which holds up the next poll.
func NewModule(cfg services.Config, sink func(models.Event)) *Module {
	poller := services.NewPoller(cfg, sink)
	return &Module{
		Poller: poller,
		Routes: routes.NewRoutes(poller),
	}
}

// Start begins polling.
func (m *Module) Start(ctx context.Context) error {
	return m.Poller.Start(ctx)
}

// Stop halts polling.
func (m *Module) Stop() {
	m.Poller.Stop()
}
