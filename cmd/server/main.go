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

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/courtsight/picks-api/internal/cache"
	"github.com/courtsight/picks-api/internal/config"
	"github.com/courtsight/picks-api/internal/engine"
	"github.com/courtsight/picks-api/internal/handlers"
	"github.com/courtsight/picks-api/internal/repository"
	"github.com/courtsight/picks-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer pg.Close()

	// ClickHouse
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		sugar.Fatalw("invalid clickhouse dsn", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		sugar.Fatalw("failed to connect to clickhouse", "error", err)
	}
	defer ch.Close()

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		sugar.Fatalw("invalid redis url", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	// Stores
	gameLogs := repository.NewGameLogStore(ch, sugar)
	league := repository.NewLeagueStore(ch, pg, sugar)
	slate := repository.NewSlateStore(pg, sugar)
	presets := repository.NewPresetStore(pg, sugar)
	scanCache := cache.NewScanCache(rdb, cfg.CacheRetentionDays, sugar)

	// Engine and scan manager
	signals := engine.NewSignals(league, sugar)
	eng := engine.New(gameLogs, slate, signals, sugar,
		engine.WithBatchSize(cfg.ScanBatchSize),
		engine.WithLookback(cfg.GameLogLookback))
	scans := worker.NewManager(eng, scanCache, logger)

	// Scheduled cache retention sweep
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := scanCache.Sweep(sctx); err != nil {
			sugar.Errorw("cache sweep failed", "error", err)
		}
	}); err != nil {
		sugar.Fatalw("invalid sweep schedule", "schedule", cfg.SweepSchedule, "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	h := handlers.New(handlers.Config{
		Postgres:   pg,
		ClickHouse: ch,
		Redis:      rdb,
		Logger:     logger,
		Scans:      scans,
		Trends:     eng,
		GameLogs:   gameLogs,
		Signals:    signals,
		Presets:    presets,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/pickfinder/search", h.StartPickSearch)
		r.Get("/pickfinder/scans/{scanId}", h.GetScan)
		r.Delete("/pickfinder/scans/{scanId}", h.CancelScan)

		r.Get("/trends", h.GetTrends)
		r.Get("/players/{playerId}/games", h.GetPlayerGameLog)
		r.Get("/players/{playerId}/matchup", h.GetMatchupReport)

		r.Get("/presets", h.ListPresets)
		r.Put("/presets", h.SavePreset)
		r.Get("/presets/{name}", h.GetPreset)
		r.Delete("/presets/{name}", h.DeletePreset)
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		sugar.Infow("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
}
