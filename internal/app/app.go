package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ayo6706/bank-transfer-saga/internal/account"
	"github.com/ayo6706/bank-transfer-saga/internal/api"
	"github.com/ayo6706/bank-transfer-saga/internal/api/middleware"
	"github.com/ayo6706/bank-transfer-saga/internal/bus"
	"github.com/ayo6706/bank-transfer-saga/internal/config"
	"github.com/ayo6706/bank-transfer-saga/internal/db"
	"github.com/ayo6706/bank-transfer-saga/internal/eventstore"
	"github.com/ayo6706/bank-transfer-saga/internal/observability"
	"github.com/ayo6706/bank-transfer-saga/internal/query"
	"github.com/ayo6706/bank-transfer-saga/internal/reconcile"
	"github.com/ayo6706/bank-transfer-saga/internal/saga"
	"github.com/ayo6706/bank-transfer-saga/internal/transfer"
	"github.com/ayo6706/bank-transfer-saga/internal/worker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Run bootstraps the service and blocks until shutdown: event store,
// command/event buses, aggregate handlers, the transfer coordinator, the
// reconciliation worker, and the HTTP server.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()
	middleware.SetJWTSecret(cfg.JWTSecret, cfg.JWTIssuer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	store := eventstore.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	redisClient, err := newRedisClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	events := bus.NewEventBus()
	commands := bus.NewCommandBus(events)

	accountHandler := account.NewHandler(store)
	accountHandler.Register(commands)
	transferHandler := transfer.NewHandler(store)
	transferHandler.Register(commands)

	sagaStates := saga.NewRedisStateStore(redisClient)
	coordinator := saga.NewCoordinator(commands, sagaStates)
	coordinator.Register(events)

	checker := reconcile.NewChecker(store, accountHandler.Repository(), sagaStates)
	reconciliationWorker := worker.NewReconciliationWorker(checker).
		WithInterval(cfg.ReconciliationInterval)
	stopWorker := reconciliationWorker.Run(ctx)

	queries := query.NewService(accountHandler.Repository(), transferHandler.Repository())
	router := api.NewRouter(cfg, logger, commands, queries)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("stopping reconciliation worker")
	stopWorker()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
