package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prepdeck/intervue-backend/internal/config"
	"github.com/prepdeck/intervue-backend/internal/database"
	"github.com/prepdeck/intervue-backend/internal/handler"
	"github.com/prepdeck/intervue-backend/internal/logger"
	"github.com/prepdeck/intervue-backend/internal/repository"
	"github.com/prepdeck/intervue-backend/internal/router"
	"github.com/prepdeck/intervue-backend/internal/service"
	"github.com/prepdeck/intervue-backend/internal/validator"
	"github.com/prepdeck/intervue-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Intervue Backend")

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

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	domainRepo := repository.NewDomainRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	interviewRepo := repository.NewInterviewRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	reportRepo := repository.NewReportRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo)
	adminService := service.NewAdminService(adminRepo)
	draftService := service.NewDraftService(rdb, log)
	submitService := service.NewSubmitService(responseRepo, rdb, log)
	registry := service.NewSessionRegistry()
	evaluator := service.NewEvaluator()
	interviewService := service.NewInterviewService(
		cfg,
		domainRepo,
		questionRepo,
		interviewRepo,
		responseRepo,
		activityRepo,
		reportRepo,
		submitService,
		draftService,
		registry,
		rdb,
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService, adminService),
		Interview: handler.NewInterviewHandler(interviewService),
		WS:        handler.NewWSHandler(interviewService, evaluator, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	responseWorker := worker.NewResponseWorker(pool, rdb, log)
	activityWorker := worker.NewActivityWorker(activityRepo, rdb, log)
	analysisWorker := worker.NewAnalysisWorker(reportRepo, evaluator, rdb, log)

	go responseWorker.Start(workerCtx)
	go activityWorker.Start(workerCtx)
	go analysisWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
