package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"propiedades/internal/adapters/feed"
	"propiedades/internal/adapters/observability"
	redisad "propiedades/internal/adapters/redis"
	"propiedades/internal/app"
	"propiedades/internal/domain"
	"propiedades/internal/shared"
	mysqlrepo "propiedades/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve(observability.InitRegistry())

	log.Info().
		Str("feed", cfg.FeedBase).
		Str("file", cfg.IngestFile).
		Int("workers", cfg.Workers).
		Bool("persist_rejected", cfg.PersistRejected).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	src, err := source(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize listing source")
	}
	pipeline, err := app.NewPipeline(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline init failed")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	ing := app.NewIngestionService(src, mysqlrepo.New(db), cache, pipeline, app.IngestOptions{
		Workers:         cfg.Workers,
		PersistRejected: cfg.PersistRejected,
		Observe:         observability.ObserveOutcome,
	})

	sum, err := ing.Run(ctx)
	log.Info().
		Int("total", sum.Total).
		Int("accepted", sum.Accepted).
		Int("rejected", sum.Rejected).
		Int("discarded", sum.Discarded).
		Int("gate_rejected", sum.GateRejected).
		Int("failed", sum.Failed).
		Float64("avg_quality", sum.AvgQuality).
		Dur("duration", sum.Duration).
		Msg("ingestion completed")
	if err != nil {
		log.Error().Err(err).Msg("ingestion aborted")
		os.Exit(1)
	}
}

// source prefers a local dump over the remote export.
func source(cfg shared.Config) (domain.ListingSource, error) {
	if cfg.IngestFile != "" {
		return feed.NewFileSource(cfg.IngestFile), nil
	}
	return feed.New(cfg.FeedBase, cfg.FeedKey, cfg.FeedRPS)
}
