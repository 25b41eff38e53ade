// Package main is the entry point for the OlyMatch like worker.
// It consumes like intents from RabbitMQ and persists them to PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"olymatch/internal/banner"
	"olymatch/internal/config"
	"olymatch/internal/notification"
	"olymatch/internal/queue/rabbit"
	"olymatch/internal/server"
	postgresstor "olymatch/internal/store/postgres"
	redisstor "olymatch/internal/store/redis"
	"olymatch/internal/worker"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	banner.Print("like worker")

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err, "path", *configPath)
		os.Exit(1)
	}

	logger := initLogger(&cfg.Logger)

	if cfg.Storage.UseMemory() {
		logger.Error("the worker requires storage mode; memory mode runs the worker inline in the API process")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := postgresstor.NewDB(ctx, &cfg.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		logger.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	pgUsers := postgresstor.NewUserRepository(db)
	likeRepo := postgresstor.NewLikeRepository(db)

	userCache, err := redisstor.NewUserCache(&cfg.Redis, pgUsers)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer userCache.Close()

	consumer := rabbit.NewConsumer(&cfg.Rabbit, logger)
	notifier := notification.NewStubNotifier(logger)
	service := worker.NewService(consumer, userCache, likeRepo, notifier, logger)

	healthSrv := server.New(cfg.Worker.HealthAddress)
	go func() {
		logger.Info("health endpoint listening", "address", cfg.Worker.HealthAddress)
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
			cancel()
		}
	}()

	logger.Info("like worker started",
		"queue", cfg.Rabbit.Queue,
		"prefetch", cfg.Rabbit.Prefetch,
	)

	if err := service.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("worker error", "error", err)
	}

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown error", "error", err)
	}

	logger.Info("like worker stopped")
}

// initLogger creates and configures the application logger.
func initLogger(cfg *config.LoggerConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
