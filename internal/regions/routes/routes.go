package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"go-campwatch/internal/activity/models"
	"go-campwatch/internal/regions/dto"
	"go-campwatch/internal/regions/services"
)

// Routes exposes the regional activity rollup.
type Routes struct {
	aggregator *services.Aggregator
	liveFunc   func() []*models.Session
}

// NewRoutes builds the regions module's HTTP routes. liveFunc supplies the
// current session snapshot for the live half of the response.
func NewRoutes(aggregator *services.Aggregator, liveFunc func() []*models.Session) *Routes {
	return &Routes{aggregator: aggregator, liveFunc: liveFunc}
}

// RegisterRoutes registers the regional activity endpoint.
func (r *Routes) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getRegionalActivity",
		Method:      http.MethodGet,
		Path:        "/regions/activity",
		Summary:     "Get live and historical activity rolled up by region",
		Tags:        []string{"Regions"},
		Security:    []map[string][]string{},
	}, r.GetActivity)
}

// GetActivityInput is the regional activity query.
type GetActivityInput struct {
	Hours int `query:"hours" minimum:"1" maximum:"720" default:"24" doc:"Lookback window in hours for historical data"`
}

// GetActivityOutput wraps the response body for huma.
type GetActivityOutput struct {
	Body dto.RegionActivityResponse
}

// GetActivity returns the live snapshot and historical rollup by region.
func (r *Routes) GetActivity(ctx context.Context, input *GetActivityInput) (*GetActivityOutput, error) {
	window := time.Duration(input.Hours) * time.Hour

	history, err := r.aggregator.History(ctx, window)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to aggregate regional history: " + err.Error())
	}

	return &GetActivityOutput{
		Body: dto.RegionActivityResponse{
			Live:    services.Live(r.liveFunc()),
			History: history,
		},
	}, nil
}
