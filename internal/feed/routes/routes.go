package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"go-campwatch/internal/feed/dto"
	"go-campwatch/internal/feed/services"
)

// Routes exposes the feed poller's operating status.
type Routes struct {
	poller *services.Poller
}

// NewRoutes builds the feed module's HTTP routes.
func NewRoutes(poller *services.Poller) *Routes {
	return &Routes{poller: poller}
}

// RegisterRoutes registers the feed status endpoint.
func (r *Routes) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getFeedStatus",
		Method:      http.MethodGet,
		Path:        "/feed/status",
		Summary:     "Get killmail feed poller status",
		Tags:        []string{"Feed"},
		Security:    []map[string][]string{},
	}, r.GetStatus)
}

// StatusInput has no parameters; the endpoint always reports current state.
type StatusInput struct{}

// StatusOutput wraps the status body for huma's response envelope.
type StatusOutput struct {
	Body dto.ServiceStatus
}

// GetStatus returns the poller's current counters and state.
func (r *Routes) GetStatus(ctx context.Context, input *StatusInput) (*StatusOutput, error) {
	return &StatusOutput{Body: r.poller.Status()}, nil
}
