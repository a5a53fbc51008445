// cmd/api/main.go
// Main entry point for the matchmaker API
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/auth"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/database"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/config"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/dating"
	"github.com/imadgeboyega/kiekky-matchmaker/internal/patterns"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "matchmaker:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// 3. Logger
	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer zl.Sync()
	log := logger.NewZapAdapter(zl)

	if envErr != nil {
		log.Debug("no .env file found, using environment variables", nil)
	}
	log.Info("starting matchmaker API", map[string]interface{}{
		"environment": cfg.Environment,
		"port":        cfg.Port,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Connect to PostgreSQL
	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("connected to PostgreSQL", nil)

	// 5. Run database migrations
	if err := runMigrations(ctx, db, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// 6. Connect to Redis (optional)
	var prefs patterns.PreferenceStore
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("continuing without Redis, preferences will not be learned", nil)
		} else {
			defer redisClient.Close()
			prefs = patterns.NewRedisPreferenceStore(redisClient, cfg.PreferenceStoreTTL)
			log.Info("connected to Redis", nil)
		}
	} else {
		log.Warn("Redis URL not configured, preferences will not be learned", nil)
	}

	// 7. Interaction pattern tracker
	tracker := patterns.NewTracker(patterns.Config{
		BufferCapacity: cfg.PatternBufferCapacity,
		CacheSize:      cfg.PreferenceCacheSize,
		CacheTTL:       cfg.PreferenceCacheTTL,
	}, prefs, log.WithFields(map[string]interface{}{"component": "pattern_tracker"}))

	// 8. Dating services
	datingRepo := dating.NewPostgresRepository(db)
	engine := dating.NewMatchingEngine(cfg.MaxPreferredDistance)
	datingService := dating.NewService(datingRepo, engine, tracker, prefs, dating.Config{
		MaxPreferredDistance: cfg.MaxPreferredDistance,
		CandidateLimit:       cfg.CandidateLimit,
		HotpickLimit:         cfg.HotpickLimit,
		HotpickTTL:           cfg.HotpickTTL,
	}, log)
	adminService := dating.NewAdminService(datingRepo, tracker)
	datingHandler := dating.NewHandler(datingService, adminService, log)

	authMiddleware := auth.NewMiddleware(auth.NewJWTValidator(cfg.JWTSecret))

	// 9. Routes
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck(db, redisClient)).Methods("GET")
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}
	dating.RegisterRoutes(router, datingHandler, authMiddleware)

	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware)

	// 10. Scheduled jobs
	scheduler := dating.NewScheduler(datingService, log)
	scheduler.Start(ctx)

	// 11. Create and start HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		scheduler.Wait()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown", nil)
	}
	scheduler.Wait()

	log.Info("server exited gracefully", nil)
	return nil
}
