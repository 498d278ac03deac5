package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"go-campwatch/internal/activity"
	"go-campwatch/internal/activity/dto"
	"go-campwatch/internal/activity/models"
	"go-campwatch/internal/enrichment"
	"go-campwatch/internal/feed"
	feedservices "go-campwatch/internal/feed/services"
	"go-campwatch/internal/hub"
	"go-campwatch/internal/regions"
	"go-campwatch/pkg/app"
	"go-campwatch/pkg/config"
	"go-campwatch/pkg/handlers"
	"go-campwatch/pkg/version"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	_ "go.uber.org/automaxprocs"
)

func main() {
	displayBanner()

	versionInfo := version.Get()
	log.Printf("version: %s", version.GetVersionString())
	log.Printf("build: %s (%s)", versionInfo.BuildDate, versionInfo.Platform)
	log.Printf("cpus: %d, gomaxprocs: %d", runtime.NumCPU(), runtime.GOMAXPROCS(0))

	ctx := context.Background()

	appCtx, err := app.InitializeApp("campwatch-server")
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	defer appCtx.Shutdown(ctx)

	r := chi.NewRouter()
	r.Use(requestLogging)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(handlers.TracingMiddleware("campwatch-server"))

	r.Get("/health", handlers.HealthHandler("campwatch-server"))

	// The activity engine is the stateful core every other module feeds
	// into or reads from. Its snapshot closure and the hub's broadcast are
	// mutually referential, so both are declared before either module is
	// built and wired together once both exist.
	var activityModule *activity.Module
	var hubModule *hub.Module

	snapshotFunc := func() []byte {
		payload, err := json.Marshal(map[string]interface{}{
			"type": "activityUpdate",
			"data": dto.ToSessionViews(activityModule.Store.Snapshot()),
		})
		if err != nil {
			slog.Error("failed to marshal session snapshot", "error", err)
			return []byte(`{"type":"activityUpdate","data":[]}`)
		}
		return payload
	}

	onSnapshot := func() {
		if hubModule != nil {
			hubModule.Hub.Broadcast(snapshotFunc())
		}
	}

	activityModule = activity.NewModule(appCtx.MongoDB, activity.Config{
		CampTimeout:     config.GetCampTimeout(),
		RoamTimeout:     config.GetRoamTimeout(),
		DecayStart:      config.GetDecayStart(),
		DecayRatePerMin: config.GetDecayRatePerMin(),
	}, onSnapshot)

	if err := activityModule.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize activity module: %v", err)
	}

	var redisClient *redis.Client
	if appCtx.Redis != nil {
		redisClient = appCtx.Redis.Client
	}
	hubModule = hub.NewModule(snapshotFunc, config.GetWebSocketAllowedOrigins(), redisClient)
	hubModule.Start(ctx)

	enrichSink := func(ev models.EnrichedEvent) {
		touched := activityModule.Store.UpsertEvent(ev)
		if len(touched) > 0 {
			hubModule.Hub.Broadcast(snapshotFunc())
		}
	}
	enrichmentModule := enrichment.NewModule(config.GetPinpointURL(), config.GetShipCatalogURL(), config.GetEnrichWorkers(), enrichSink)

	feedModule := feed.NewModule(feedservices.Config{
		Endpoint:       config.GetFeedURL(),
		PollTimeout:    config.GetFeedPollTimeout(),
		BackoffCeiling: config.GetFeedBackoffCeiling(),
	}, enrichmentModule.Enricher.Submit)

	regionsModule := regions.NewModule(appCtx.MongoDB.Database, activityModule.Store.Snapshot)

	// Start background work: enrichment workers before the feed poller so
	// no decoded event is ever submitted to a pool that isn't draining yet.
	enrichmentModule.Start(ctx)
	if err := feedModule.Start(ctx); err != nil {
		log.Fatalf("failed to start feed poller: %v", err)
	}
	activityModule.StartBackgroundTasks(ctx, config.GetUpdateInterval())

	// Register the raw WebSocket upgrade route directly on the chi mux,
	// outside the Huma API, since hijacking the connection needs the raw
	// http.ResponseWriter.
	hubModule.Routes.RegisterRoutes(r)

	apiPrefix := config.GetAPIPrefix()
	log.Printf("using API prefix: %q", apiPrefix)

	humaConfig := huma.DefaultConfig("Camp Watch API", versionInfo.Version)
	humaConfig.Info.Description = "Real-time EVE Online killmail activity classification"
	humaConfig.Tags = []*huma.Tag{
		{Name: "Activity", Description: "Live and archived camp/roam session views"},
		{Name: "Regions", Description: "Regional activity rollups, live and historical"},
		{Name: "Feed", Description: "Upstream killmail feed poller status"},
	}

	var api huma.API
	if apiPrefix == "" {
		api = humachi.New(r, humaConfig)
	} else {
		r.Route(apiPrefix, func(prefixRouter chi.Router) {
			api = humachi.New(prefixRouter, humaConfig)
		})
	}

	feedModule.Routes.RegisterRoutes(api)
	regionsModule.Routes.RegisterRoutes(api)

	host := config.GetHost()
	port := config.GetPort()
	srv := &http.Server{
		Addr:         host + ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting campwatch server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("received shutdown signal, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	feedModule.Stop()
	enrichmentModule.Stop()
	activityModule.Stop()

	appCtx.Shutdown(shutdownCtx)
	slog.Info("campwatch shutdown complete")
}

// requestLogging mirrors the scheduler module's own RequestLogging
// middleware: wrap the response to capture its status code, then log once
// the handler returns, skipping the health check to cut noise.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if strings.HasSuffix(r.URL.Path, "/health") {
			next.ServeHTTP(w, r)
			return
		}

		wrapped := handlers.NewResponseWrapper(w)
		next.ServeHTTP(wrapped, r)

		handlers.LogRequest(r, wrapped.StatusCode, time.Since(start), map[string]interface{}{
			"module": "campwatch-server",
		})
	})
}

func displayBanner() {
	fmt.Print("\033[38;5;33m")
	fmt.Print("CAMP WATCH\n")
	fmt.Print("\033[0m\n")
}
