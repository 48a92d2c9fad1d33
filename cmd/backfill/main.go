// Package main re-runs the compute cycles over a historical window:
// re-aggregates buckets minute by minute from stored observations, re-scores
// the rebuilt latest buckets, then re-runs the correlation analysis for every
// day in the window.
package main

import (
	"context"
	"flag"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/aggregate"
	"fantoken-intel/internal/config"
	"fantoken-intel/internal/correlation"
	"fantoken-intel/internal/health"
	chstore "fantoken-intel/internal/storage/clickhouse"
	"fantoken-intel/internal/storage/migrations"
	pgstore "fantoken-intel/internal/storage/postgres"
)

func main() {
	from := flag.String("from", "", "Window start (RFC3339)")
	to := flag.String("to", "", "Window end (RFC3339), defaults to now")
	step := flag.Duration("step", time.Minute, "Aggregation step")
	skipCorrelation := flag.Bool("skip-correlation", false, "Skip the daily correlation pass")
	flag.Parse()

	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if *from == "" {
		logger.Fatal("--from is required")
	}
	start, err := time.Parse(time.RFC3339, *from)
	if err != nil {
		logger.WithError(err).Fatal("invalid --from")
	}
	end := time.Now()
	if *to != "" {
		end, err = time.Parse(time.RFC3339, *to)
		if err != nil {
			logger.WithError(err).Fatal("invalid --to")
		}
	}
	if !end.After(start) {
		logger.Fatal("--to must be after --from")
	}
	if cfg.PostgresDSN == "" || cfg.ClickhouseDSN == "" {
		logger.Fatal("POSTGRES_DSN and CLICKHOUSE_DSN are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig).Info("cancelling backfill")
		cancel()
	}()

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.WithError(err).Fatal("connect to postgres")
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.WithError(err).Fatal("postgres migrations")
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		logger.WithError(err).Fatal("clickhouse migrations")
	}
	defer chConn.Close()

	tokens := pgstore.NewTokenStore(pool)
	exchanges := pgstore.NewExchangeStore(pool)
	holders := pgstore.NewHolderStore(pool)
	social := pgstore.NewSocialStore(pool)
	scores := pgstore.NewScoreStore(pool)
	correlations := pgstore.NewCorrelationStore(pool)

	priceVolume := chstore.NewPriceVolumeStore(chConn)
	spreads := chstore.NewSpreadStore(chConn)
	liquidity := chstore.NewLiquidityStore(chConn)
	buckets := chstore.NewBucketStore(chConn)

	aggregator := aggregate.NewAggregator(priceVolume, spreads, liquidity, holders, buckets, tokens, exchanges, logger)

	logger.WithFields(logrus.Fields{
		"from": start.Format(time.RFC3339),
		"to":   end.Format(time.RFC3339),
		"step": *step,
	}).Info("backfill started")

	var aggregated int
	for at := start.Truncate(*step); !at.After(end); at = at.Add(*step) {
		if ctx.Err() != nil {
			logger.Warn("backfill interrupted")
			return
		}
		if err := aggregator.AggregateAll(ctx, at); err != nil {
			logger.WithError(err).WithField("at", at.Format(time.RFC3339)).Warn("aggregation pass failed")
			continue
		}
		aggregated++
	}
	logger.WithField("passes", aggregated).Info("aggregation backfill done")

	scorer := health.NewScorer(buckets, holders, social, scores, tokens, logger)
	if err := scorer.ScoreAll(ctx); err != nil {
		logger.WithError(err).Warn("scoring pass failed")
	} else {
		logger.Info("scoring pass done")
	}

	if *skipCorrelation {
		return
	}

	engine := correlation.NewEngine(buckets, holders, correlations, tokens, logger)
	startDay := start.UTC().Truncate(24 * time.Hour)
	endDay := end.UTC().Truncate(24 * time.Hour)
	for day := startDay; !day.After(endDay); day = day.Add(24 * time.Hour) {
		if ctx.Err() != nil {
			logger.Warn("backfill interrupted")
			return
		}
		if err := engine.AnalyzeAll(ctx, day); err != nil {
			logger.WithError(err).WithField("day", day.Format("2006-01-02")).Warn("correlation pass failed")
		}
	}
	logger.Info("backfill complete")
}
