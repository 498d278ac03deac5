package app

import (
	"context"
	"log"
	"log/slog"

	"go-campwatch/pkg/config"
	"go-campwatch/pkg/database"
	"go-campwatch/pkg/logging"

	"github.com/joho/godotenv"
)

// AppContext holds the shared application context and dependencies
type AppContext struct {
	MongoDB          *database.MongoDB
	Redis            *database.Redis
	TelemetryManager *logging.TelemetryManager
	ServiceName      string
	shutdownFuncs    []func(context.Context) error
}

// InitializeApp initializes common application dependencies
func InitializeApp(serviceName string) (*AppContext, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found or error loading it: %v", err)
	}

	ctx := context.Background()

	telemetryManager := logging.NewTelemetryManager()
	if err := telemetryManager.Initialize(ctx); err != nil {
		log.Printf("warning: failed to initialize telemetry: %v", err)
	}

	mongodb, err := database.NewMongoDB(ctx, serviceName)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
	} else {
		slog.Info("connected to MongoDB")
	}

	redis, err := database.NewRedis(ctx)
	if err != nil {
		slog.Error("failed to connect to Redis", "error", err)
	} else {
		slog.Info("connected to Redis")
	}

	appCtx := &AppContext{
		MongoDB:          mongodb,
		Redis:            redis,
		TelemetryManager: telemetryManager,
		ServiceName:      serviceName,
	}

	if mongodb != nil {
		appCtx.shutdownFuncs = append(appCtx.shutdownFuncs, mongodb.Close)
	}
	if redis != nil {
		appCtx.shutdownFuncs = append(appCtx.shutdownFuncs, func(ctx context.Context) error {
			return redis.Close()
		})
	}
	if telemetryManager != nil {
		appCtx.shutdownFuncs = append(appCtx.shutdownFuncs, telemetryManager.Shutdown)
	}

	return appCtx, nil
}

// Shutdown gracefully shuts down all application dependencies
func (a *AppContext) Shutdown(ctx context.Context) error {
	slog.Info("shutting down application", "service", a.ServiceName)

	for _, shutdown := range a.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			slog.Error("error during shutdown", "error", err)
		}
	}

	slog.Info("application shutdown completed", "service", a.ServiceName)
	return nil
}

// IsProduction returns true if running in production environment
func IsProduction() bool {
	return config.GetEnv("NODE_ENV", "development") == "production"
}

// IsDevelopment returns true if running in development environment
func IsDevelopment() bool {
	return !IsProduction()
}
