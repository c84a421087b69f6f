package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/duodash/internal/achievement"
	"github.com/vytor/duodash/internal/api"
	"github.com/vytor/duodash/internal/cache"
	"github.com/vytor/duodash/internal/coach"
	"github.com/vytor/duodash/internal/config"
	"github.com/vytor/duodash/internal/db"
	"github.com/vytor/duodash/internal/duolingo"
	"github.com/vytor/duodash/internal/jobs"
	"github.com/vytor/duodash/internal/logger"
	"github.com/vytor/duodash/internal/normalize"
	"github.com/vytor/duodash/internal/repository/sqlite"
	"github.com/vytor/duodash/internal/services"
	"github.com/vytor/duodash/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithFormat(logger.ParseFormat(cfg.LogFormat)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("DuoDash Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("log_format=%s", cfg.LogFormat)
	log.Debug("timezone=%s", cfg.TimeZone)
	log.Debug("duolingo_base_url=%s", cfg.DuolingoBaseURL)
	log.Debug("duolingo_username=%s", cfg.DuolingoUsername)
	log.Debug("upstream_timeout=%v", cfg.UpstreamTimeout)
	log.Debug("cache_ttl=%v", cfg.CacheTTL)
	log.Debug("redis_addr=%s", cfg.RedisAddr)
	log.Debug("sync_worker_count=%d", cfg.SyncWorkerCount)
	log.Debug("sync_queue_size=%d", cfg.SyncQueueSize)
	log.Debug("sync_interval=%v", cfg.SyncInterval)
	log.Debug("snapshot_retention=%v", cfg.SnapshotRetention)
	log.Debug("ai_provider=%s", cfg.AIProvider)
	if !cfg.Configured() {
		log.Warn("DUOLINGO_USERNAME or DUOLINGO_JWT missing, /api/data is limited to public data")
	}

	loc, err := normalize.LoadLocation(cfg.TimeZone)
	if err != nil {
		log.Error("failed to load time zone: %v", err)
		os.Exit(1)
	}

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Snapshot cache: Redis when configured, memory otherwise
	var store cache.Store = cache.NewMemory(cfg.CacheTTL, cfg.CacheMaxEntries)
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			log.Warn("redis unavailable, falling back to memory cache: %v", err)
		} else {
			log.Info("using redis cache at %s", cfg.RedisAddr)
			store = redisStore
			defer redisStore.Close()
		}
	}

	// Repositories
	profileRepo := sqlite.NewProfileRepository(database.DB)
	snapshotRepo := sqlite.NewSnapshotRepository(database.DB)

	// Services
	client := duolingo.New(cfg.DuolingoBaseURL, cfg.DuolingoJWT, cfg.UpstreamTimeout)
	normalizer := normalize.New(normalize.WithLocation(loc))
	engine := achievement.NewEngine(achievement.WithLocation(loc))
	progressService := services.NewProgressService(client, normalizer, engine, store, snapshotRepo, profileRepo)

	syncPool := worker.NewPool(cfg.SyncWorkerCount, cfg.SyncQueueSize)
	queue := jobs.NewWorkerQueue(syncPool, progressService, snapshotRepo)
	profileService := services.NewProfileService(profileRepo, queue, store)
	coachService := services.NewCoachService(coach.New(coach.Config{
		Provider: coach.Provider(cfg.AIProvider),
		Model:    cfg.AIModel,
		BaseURL:  cfg.AIBaseURL,
		APIKey:   cfg.AIAPIKey,
	}))

	srv := &api.Server{
		ProgressService: progressService,
		ProfileService:  profileService,
		CoachService:    coachService,
		DB:              database,
		DefaultUsername: cfg.DuolingoUsername,
		Configured:      cfg.Configured(),
		RequestTimeout:  cfg.UpstreamTimeout * 3,
	}

	syncPool.Start(ctx)
	scheduler := &jobs.Scheduler{
		Queue:     queue,
		Profiles:  profileRepo,
		Interval:  cfg.SyncInterval,
		Retention: cfg.SnapshotRetention,
	}
	go scheduler.Run(logger.NewContext(ctx, log))

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout*3 + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping sync pool")
	cancel()
	syncPool.Stop()

	log.Info("===========================================")
	log.Info("DuoDash Server Stopped")
	log.Info("===========================================")
}
