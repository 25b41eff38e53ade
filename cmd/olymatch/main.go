// Package main is the entry point for the OlyMatch API service.
// It wires the like producer, the CRUD surface, and (in memory mode) an
// inline worker so the whole pipeline runs in one process for development.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"olymatch/internal/api"
	"olymatch/internal/banner"
	"olymatch/internal/config"
	"olymatch/internal/intake"
	"olymatch/internal/notification"
	memoryqueue "olymatch/internal/queue/memory"
	"olymatch/internal/queue/rabbit"
	"olymatch/internal/store"
	memorystor "olymatch/internal/store/memory"
	postgresstor "olymatch/internal/store/postgres"
	redisstor "olymatch/internal/store/redis"
	"olymatch/internal/worker"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	banner.Print("matching service")

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err, "path", *configPath)
		os.Exit(1)
	}

	logger := initLogger(&cfg.Logger)

	logger.Info("configuration loaded",
		"path", *configPath,
		"storage_mode", cfg.Storage.Mode,
	)

	deps, cleanup, err := initDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// In memory mode the worker runs inline; nothing else would drain the
	// in-process queue.
	if deps.worker != nil {
		go func() {
			if err := deps.worker.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("worker error", "error", err)
				cancel()
			}
		}()
	}

	go func() {
		if err := deps.server.Start(); err != nil {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	logger.Info("OlyMatch started",
		"address", cfg.Server.Address(),
		"storage_mode", cfg.Storage.Mode,
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := deps.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if deps.worker != nil {
		if err := deps.worker.Stop(); err != nil {
			logger.Error("worker shutdown error", "error", err)
		}
	}

	logger.Info("OlyMatch stopped")
}

// dependencies holds all initialized service dependencies.
type dependencies struct {
	server *api.Server

	// worker is non-nil only in memory mode.
	worker *worker.Service
}

// initDependencies creates and wires all service dependencies based on config.
// Returns the dependencies and a cleanup function.
func initDependencies(cfg *config.Config, logger *slog.Logger) (*dependencies, func(), error) {
	var (
		userRepo      store.UserRepository
		likeRepo      store.LikeRepository
		olympiadRepo  store.OlympiadRepository
		intakeService *intake.Service
		inlineWorker  *worker.Service
		cleanupFuncs  []func()
	)

	if cfg.Storage.UseMemory() {
		logger.Info("initializing in-memory backends")

		userRepo = memorystor.NewUserRepository()
		likeRepo = memorystor.NewLikeRepository()
		olympiadRepo = memorystor.NewOlympiadRepository()

		memQueue := memoryqueue.NewQueue(10000)
		cleanupFuncs = append(cleanupFuncs, func() { _ = memQueue.Close() })

		intakeService = intake.NewService(memQueue, logger)

		notifier := notification.NewStubNotifier(logger)
		inlineWorker = worker.NewService(memQueue, userRepo, likeRepo, notifier, logger)
	} else {
		logger.Info("initializing production backends (RabbitMQ, Redis, PostgreSQL)")

		ctx := context.Background()
		db, err := postgresstor.NewDB(ctx, &cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		cleanupFuncs = append(cleanupFuncs, db.Close)

		if err := db.RunMigrations(ctx); err != nil {
			runCleanups(cleanupFuncs)
			return nil, nil, err
		}
		logger.Info("database migrations completed")

		pgUsers := postgresstor.NewUserRepository(db)
		likeRepo = postgresstor.NewLikeRepository(db)
		olympiadRepo = postgresstor.NewOlympiadRepository(db)

		userCache, err := redisstor.NewUserCache(&cfg.Redis, pgUsers)
		if err != nil {
			runCleanups(cleanupFuncs)
			return nil, nil, err
		}
		userRepo = userCache
		cleanupFuncs = append(cleanupFuncs, func() { _ = userCache.Close() })

		publisher := rabbit.NewPublisher(&cfg.Rabbit, logger)
		cleanupFuncs = append(cleanupFuncs, func() { _ = publisher.Close() })

		intakeService = intake.NewService(publisher, logger)
	}

	likeHandler := api.NewLikeHandler(intakeService, likeRepo, logger)
	userHandler := api.NewUserHandler(userRepo, logger)
	olympiadHandler := api.NewOlympiadHandler(olympiadRepo, logger)

	server := api.NewServer(api.ServerDeps{
		Config:          &cfg.Server,
		Logger:          logger,
		LikeHandler:     likeHandler,
		UserHandler:     userHandler,
		OlympiadHandler: olympiadHandler,
	})

	cleanup := func() { runCleanups(cleanupFuncs) }

	return &dependencies{
		server: server,
		worker: inlineWorker,
	}, cleanup, nil
}

// runCleanups releases resources in reverse acquisition order.
func runCleanups(cleanupFuncs []func()) {
	for i := len(cleanupFuncs) - 1; i >= 0; i-- {
		cleanupFuncs[i]()
	}
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
