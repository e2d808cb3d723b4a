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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shardagg/internal/config"
	dbRedis "github.com/kailas-cloud/shardagg/internal/db/redis"
	"github.com/kailas-cloud/shardagg/internal/domain/search/request"
	"github.com/kailas-cloud/shardagg/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/shardagg/internal/logger"
	"github.com/kailas-cloud/shardagg/internal/metrics"
	"github.com/kailas-cloud/shardagg/internal/repository/resultcache"
	chiTransport "github.com/kailas-cloud/shardagg/internal/transport/chi"
	"github.com/kailas-cloud/shardagg/internal/transport/worker"
	"github.com/kailas-cloud/shardagg/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/shardagg/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shardagg/internal/usecase/search"
	"github.com/kailas-cloud/shardagg/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shardagg API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("workers", len(cfg.Workers)),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	metrics.RegisterAggregationMetrics()

	// Shard workers
	httpClient := &http.Client{Timeout: cfg.Dispatch.CallTimeout()}
	clients := make([]*worker.Client, 0, len(cfg.Workers))
	for _, w := range cfg.Workers {
		clients = append(clients, worker.NewClient(result.WorkerID(w.ID), w.URL, httpClient))
	}
	pool := worker.NewPool(clients, worker.PoolConfig{
		CallTimeout:    cfg.Dispatch.CallTimeout(),
		MaxConcurrency: cfg.Dispatch.MaxConcurrency,
		Summaries:      cfg.Aggregation.Summaries,
	}, logger)

	// Optional shared cache tier
	var store *dbRedis.Store
	if cfg.Cache.Enabled && len(cfg.Cache.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Cache.Addrs,
			Password:   cfg.Cache.Password,
			Standalone: cfg.Cache.Standalone,
			KeyPrefix:  cfg.Cache.KeyPrefix,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(context.Background(), readiness); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to cache store", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Pass nil interfaces (not typed nil pointers) when a tier is disabled.
	var (
		cacheStore  resultcache.Store
		cachePinger healthuc.CachePinger
		cache       searchuc.Cache
	)
	if store != nil {
		cacheStore = store
		cachePinger = store
	}
	if cfg.Cache.Enabled {
		rc, err := resultcache.New(cfg.Cache.LocalSize, cacheStore, cfg.Cache.TTL(), metrics.ResultCacheTotal, logger)
		if err != nil {
			logger.Fatal("Failed to create result cache", zap.Error(err))
		}
		cache = rc
	}

	opts := []aggregate.Option{aggregate.WithValidation(cfg.Aggregation.Validate)}
	if cfg.Aggregation.Mining {
		opts = append(opts, aggregate.WithMining(aggregate.PositionalMining{}))
	}
	agg := aggregate.New(opts...)

	searchSvc := searchuc.New(pool, agg, cache)
	healthSvc := healthuc.New(pool, cachePinger)

	server := chiTransport.NewServer(searchSvc, healthSvc, request.Limits{
		DefaultCount: cfg.Aggregation.DefaultPageSize,
		MaxCount:     cfg.Aggregation.MaxPageSize,
	}, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
