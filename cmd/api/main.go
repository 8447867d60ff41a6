package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/internal/game"
	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/middleware"
	"github.com/jwebster45206/quest-engine/internal/session"
	"github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/pkg/combat"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Quest Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"session_backend", cfg.SessionBackend,
		"db_path", cfg.DBPath)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), time.Minute)
	defer startupCancel()

	store, err := storage.OpenSQLite(startupCtx, cfg.DBPath, log)
	if err != nil {
		log.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}

	graph, err := loadWorld(startupCtx, store, cfg.WorldSeedPath)
	if err != nil {
		log.Error("Failed to load world", "error", err)
		os.Exit(1)
	}
	log.Info("World loaded", "locations", len(graph.Locations()), "start", graph.Start().Name)

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	var (
		sessions session.Store
		locker   session.Locker
	)
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client, err := session.NewRedisClient(startupCtx, cfg.RedisURL)
		if err != nil {
			log.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(client, cfg.SessionTTL, log)
		locker = session.NewRedisLocker(client, 0, log)
		log.Info("Using Redis session store")
	default:
		mem := session.NewMemoryStore(cfg.SessionTTL)
		go mem.Run(runCtx, time.Minute)
		sessions = mem
		locker = session.NewKeyedMutex()
		log.Info("Using in-memory session store")
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	engine := game.New(graph, store, sessions, locker, combat.NewResolver(rng, graph),
		game.Config{Timeout: cfg.HandlerTimeout, StartHP: cfg.StartHP}, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(map[string]handlers.Pinger{
		"storage":  store,
		"sessions": sessions,
	}, log))
	mux.Handle("/v1/events", handlers.NewEventsHandler(engine, log))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HandlerTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	runCancel()

	if err := sessions.Close(); err != nil {
		log.Error("Error closing session store", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage", "error", err)
	}

	log.Info("Server exited")
}

// loadWorld seeds the database from the YAML file on first run and then
// builds the graph from what is stored.
func loadWorld(ctx context.Context, store storage.Storage, seedPath string) (*world.Graph, error) {
	atlas, err := store.LoadWorld(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		seed, err := world.LoadSeed(seedPath)
		if err != nil {
			return nil, err
		}
		if _, err := world.NewGraph(seed); err != nil {
			return nil, err
		}
		if _, err := store.SeedWorld(ctx, seed); err != nil {
			return nil, err
		}
		atlas, err = store.LoadWorld(ctx)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return world.NewGraph(atlas)
}
