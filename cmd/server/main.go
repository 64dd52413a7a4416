package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/personal-services-api/internal/api"
	"github.com/dom/personal-services-api/internal/config"
	"github.com/dom/personal-services-api/internal/logging"
	"github.com/dom/personal-services-api/internal/metrics"
	"github.com/dom/personal-services-api/internal/ratelimit"
	"github.com/dom/personal-services-api/internal/repository/postgres"
	"github.com/dom/personal-services-api/internal/service"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get database handle")
	}

	// Initialize repositories and services
	repos := postgres.NewRepositories(db)
	services, err := service.NewServices(repos, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}

	// Initialize rate limit counters
	var store ratelimit.Store
	switch cfg.RateLimitStore {
	case config.RateLimitStoreRedis:
		redisStore, err := ratelimit.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisStore.Close()
		store = redisStore
	default:
		memStore := ratelimit.NewMemoryStore(0)
		defer memStore.Stop()
		store = memStore
	}

	m := metrics.New()
	router := api.NewRouter(services, api.NewLimiters(store, cfg), sqlDB, m, cfg)

	go pruneSessions(ctx, services.Sessions, cfg.SessionPruneInterval, m)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// pruneSessions deletes expired session rows until ctx ends.
func pruneSessions(ctx context.Context, sessions *service.SessionService, interval time.Duration, m *metrics.Metrics) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PruneExpired(ctx)
			if err != nil {
				log.Error().Err(err).Str("component", "sessions.Pruner").Msg("failed to prune sessions")
				continue
			}
			m.SessionsPruned.Add(float64(n))
			if n > 0 {
				log.Debug().Int64("pruned", n).Msg("expired sessions removed")
			}
		}
	}
}
