package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucasreis/reviewdeck/internal/api"
	"github.com/lucasreis/reviewdeck/internal/config"
	"github.com/lucasreis/reviewdeck/internal/logger"
	"github.com/lucasreis/reviewdeck/internal/repository/sqlite"
	"github.com/lucasreis/reviewdeck/internal/review"
	"github.com/lucasreis/reviewdeck/internal/services"
	"github.com/lucasreis/reviewdeck/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("ReviewDeck Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("due_soon_days=%d", cfg.DueSoonDays)
	log.Debug("session_ttl_minutes=%d", cfg.SessionTTLMinutes)
	log.Debug("stats_worker_count=%d", cfg.StatsWorkerCount)
	log.Debug("stats_queue_size=%d", cfg.StatsQueueSize)
	log.Debug("history_limit=%d", cfg.HistoryLimit)

	// Open database
	database, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Initialize repositories
	itemRepo := sqlite.NewItemRepository(database)
	sessionRepo := sqlite.NewSessionRepository(database)
	learnerRepo := sqlite.NewLearnerRepository(database)
	noteRepo := sqlite.NewNoteRepository(database)

	// Initialize worker pool for dashboard stats refreshes
	statsPool := worker.NewPool(cfg.StatsWorkerCount, cfg.StatsQueueSize)

	// Initialize services
	registry := review.NewRegistry(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	reviewService := services.NewReviewService(itemRepo, learnerRepo, registry, statsPool, cfg.DueSoonDays)
	itemService := services.NewItemService(itemRepo, sessionRepo, cfg.HistoryLimit)
	noteService := services.NewNoteService(noteRepo)
	learnerService := services.NewLearnerService(learnerRepo)

	srv := &api.Server{
		ReviewService:  reviewService,
		ItemService:    itemService,
		NoteService:    noteService,
		LearnerService: learnerService,
		DueSoonDays:    cfg.DueSoonDays,
	}

	ctx, cancel := context.WithCancel(context.Background())
	statsPool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
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

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping worker pool")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping stats pool")
	statsPool.Stop()

	log.Info("===========================================")
	log.Info("ReviewDeck Server Stopped")
	log.Info("===========================================")
}
