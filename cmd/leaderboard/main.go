package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dodaa08/uniswap-leaderboard/internal/config"
	"github.com/dodaa08/uniswap-leaderboard/internal/database"
	"github.com/dodaa08/uniswap-leaderboard/internal/ingest"
	"github.com/dodaa08/uniswap-leaderboard/internal/server"
	"github.com/dodaa08/uniswap-leaderboard/internal/store"
	"github.com/dodaa08/uniswap-leaderboard/internal/subgraph"
	"github.com/dodaa08/uniswap-leaderboard/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/leaderboard.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting leaderboard service",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"pool", cfg.Subgraph.PoolID,
		"tracked_token", cfg.Subgraph.TrackedToken,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database and apply schema
	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	logger.Info("database ready")

	// Wire the pipeline
	client := subgraph.NewClient(cfg.Subgraph,
		subgraph.WithLogger(logger),
		subgraph.WithMaxPages(cfg.Sync.MaxPages),
	)
	traders := store.New(pool, logger)
	runner := ingest.NewRunner(client, traders, cfg.Subgraph.TrackedToken, logger)

	srv := server.New(cfg.Server, traders, runner, logger)

	// Scheduled runs are optional; POST /sync always works.
	if cfg.Sync.Interval > 0 {
		scheduler := ingest.NewScheduler(cfg.Sync.Interval, runner, srv.BroadcastSummary, logger)
		if err := scheduler.Start(ctx); err != nil {
			logger.Error("failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			scheduler.Stop(stopCtx)
		}()
	}

	// Serve until shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("http server error", "error", err)
		}
		cancel()
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	logger.Info("leaderboard service stopped")
}
