package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradplan/planner-backend/internal/cache"
	"github.com/gradplan/planner-backend/internal/config"
	"github.com/gradplan/planner-backend/internal/database"
	"github.com/gradplan/planner-backend/internal/handler"
	"github.com/gradplan/planner-backend/internal/logger"
	"github.com/gradplan/planner-backend/internal/middleware"
	"github.com/gradplan/planner-backend/internal/repository"
	"github.com/gradplan/planner-backend/internal/router"
	"github.com/gradplan/planner-backend/internal/service"
	"github.com/gradplan/planner-backend/internal/validator"
	"github.com/gradplan/planner-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, "planner-server")
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Int("none_major_id", cfg.NoneMajorID).
		Msg("Starting planner backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	txManager := repository.NewTxManager(pool)
	checkCache := cache.NewRequirementCache(rdb, cfg.RequirementCacheTTL, log)

	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)
	plannerService := service.NewPlannerService(txManager, checkCache, cfg.NoneMajorID, log)
	requirementService := service.NewRequirementService(txManager, checkCache, cfg.NoneMajorID, log)
	planMajorService := service.NewPlanMajorService(txManager, checkCache, cfg.NoneMajorID, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Planner:     handler.NewPlannerHandler(plannerService),
		Requirement: handler.NewRequirementHandler(requirementService),
		PlanMajor:   handler.NewPlanMajorHandler(planMajorService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	recalcWorker := worker.NewRecalcWorker(rdb, plannerService, cfg, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		recalcWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()
	r := router.SetupRouter(authService, handlers, limiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the recalculation worker and let it flush its batch.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Recalculation worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
