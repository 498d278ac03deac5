package hub

import (
	"context"

	"github.com/redis/go-redis/v9"

	"go-campwatch/internal/hub/routes"
	"go-campwatch/internal/hub/services"
)

// Module owns the subscriber Hub and its upgrade route.
type Module struct {
	Hub    *services.Hub
	Routes *routes.Routes

	fanout *services.RedisFanout
}

// NewModule builds the hub module. snapshotFunc produces the full-state
// payload sent to a subscriber immediately on connect. redisClient may be
// nil, disabling cross-instance fanout and falling back to single-instance
// broadcast only.
func NewModule(snapshotFunc func() []byte, allowedOrigins []string, redisClient *redis.Client) *Module {
	h := services.NewHub(snapshotFunc)

	var fanout *services.RedisFanout
	if redisClient != nil {
		fanout = services.NewRedisFanout(redisClient, h)
		h.SetFanout(fanout)
	}

	return &Module{
		Hub:    h,
		Routes: routes.NewRoutes(h, allowedOrigins),
		fanout: fanout,
	}
}

// Start begins relaying cross-instance snapshots, if Redis fanout is wired.
func (m *Module) Start(ctx context.Context) {
	if m.fanout != nil {
		m.fanout.Start(ctx)
	}
}
