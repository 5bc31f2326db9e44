// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"cinema-reservation/cmd"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/internal/wire"
	"cinema-reservation/pkg/cache"
	"cinema-reservation/pkg/database"
	"cinema-reservation/pkg/messaging"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("store", config.Store.Driver),
		zap.String("events", config.Events.Driver),
		zap.Duration("hold_ttl", config.Hold.TTL),
		zap.Bool("debug", config.App.Debug),
	)

	// Open the store
	var repos *repository.Repository
	switch config.Store.Driver {
	case utils.StoreDriverPostgres:
		db, err := database.InitDB(ctx, config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("Database connected successfully")

		if err := database.Migrate(ctx, db, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		repos = repository.NewRepository(db, logger)
	default:
		logger.Warn("Using in-memory store, state is lost on restart")
		repos = repository.NewMemoryRepository(logger)
	}

	deps := usecase.Dependencies{}

	// Seat map cache is optional
	if config.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(config.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, seat cache disabled", zap.Error(err))
		} else {
			defer redisCache.Close()
			deps.Cache = redisCache
		}
	}

	publisher, err := messaging.New(config.Events, logger)
	if err != nil {
		logger.Warn("Event publisher unavailable, events disabled", zap.Error(err))
		publisher = messaging.Noop{}
	}
	defer publisher.Close()
	deps.Events = publisher

	// Wire all dependencies
	app := wire.Wiring(repos, config, deps, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Service.Sweeper.Run(ctx)
	}()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("HTTP server stopped", zap.Error(err))
		stop()
	}

	wg.Wait()
	logger.Info("Application stopped")
}
