package routes

import (
	"net/http"

	"github.com/gorilla/websocket"

	"go-campwatch/internal/hub/services"
	"go-campwatch/pkg/handlers"
)

// Routes exposes the subscriber hub's WebSocket upgrade endpoint.
type Routes struct {
	hub             *services.Hub
	allowedOrigins  map[string]bool
}

// NewRoutes builds the hub's HTTP handler. An empty allowedOrigins list
// means any origin is accepted.
func NewRoutes(hub *services.Hub, allowedOrigins []string) *Routes {
	set := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		set[o] = true
	}
	return &Routes{hub: hub, allowedOrigins: set}
}

// RegisterRoutes mounts the WebSocket upgrade handler directly on the chi
// mux, bypassing huma since gorilla/websocket needs the raw
// http.ResponseWriter to hijack the connection.
func (r *Routes) RegisterRoutes(mux interface {
	Get(pattern string, handler http.HandlerFunc)
}) {
	mux.Get("/ws", r.HandleUpgrade)
}

func (r *Routes) checkOrigin(req *http.Request) bool {
	if len(r.allowedOrigins) == 0 {
		return true
	}
	return r.allowedOrigins[req.Header.Get("Origin")]
}

// HandleUpgrade upgrades the HTTP connection to a WebSocket and hands it to
// the Hub for its connection lifetime.
func (r *Routes) HandleUpgrade(w http.ResponseWriter, req *http.Request) {
	span, req := handlers.StartHTTPSpan(req, "hub.upgrade")
	defer span.End()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     r.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			handlers.ErrorResponse(w, reason.Error(), status)
		},
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	r.hub.Join(req.Context(), conn)
}
