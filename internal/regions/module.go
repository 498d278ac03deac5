package regions

import (
	"go.mongodb.org/mongo-driver/mongo"

	"go-campwatch/internal/activity/models"
	"go-campwatch/internal/regions/routes"
	"go-campwatch/internal/regions/services"
)

// Module owns the regional aggregator and its route.
type Module struct {
	Aggregator *services.Aggregator
	Routes     *routes.Routes
}

// NewModule builds the regions module. liveFunc supplies the current
// session snapshot for the live half of the regional activity endpoint.
func NewModule(db *mongo.Database, liveFunc func() []*models.Session) *Module {
	aggregator := services.NewAggregator(db)
	return &Module{
		Aggregator: aggregator,
		Routes:     routes.NewRoutes(aggregator, liveFunc),
	}
}
