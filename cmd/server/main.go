// Package main runs the unified market intelligence service:
// - Ingest (continuous): Kafka consumer and WebSocket feed
// - Compute (scheduled): aggregation, scoring plus alerting, correlation
// - Query API (continuous): HTTP endpoints over stored results
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/aggregate"
	"fantoken-intel/internal/api"
	"fantoken-intel/internal/catalog"
	"fantoken-intel/internal/config"
	"fantoken-intel/internal/correlation"
	"fantoken-intel/internal/health"
	"fantoken-intel/internal/ingest"
	"fantoken-intel/internal/observability"
	"fantoken-intel/internal/query"
	"fantoken-intel/internal/scheduler"
	"fantoken-intel/internal/signal"
	"fantoken-intel/internal/storage"
	chstore "fantoken-intel/internal/storage/clickhouse"
	"fantoken-intel/internal/storage/memory"
	"fantoken-intel/internal/storage/migrations"
	pgstore "fantoken-intel/internal/storage/postgres"
)

// allStores holds every storage implementation the service wires up.
type allStores struct {
	tokens       storage.TokenStore
	exchanges    storage.ExchangeStore
	priceVolume  storage.PriceVolumeStore
	spreads      storage.SpreadStore
	liquidity    storage.LiquidityStore
	holders      storage.HolderStore
	social       storage.SocialStore
	buckets      storage.BucketStore
	scores       storage.ScoreStore
	correlations storage.CorrelationStore
	alerts       storage.AlertStore
}

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if !cfg.UseMemory && (cfg.PostgresDSN == "" || cfg.ClickhouseDSN == "") {
		logger.Fatal("POSTGRES_DSN and CLICKHOUSE_DSN are required (set USE_MEMORY=true for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create stores")
	}
	defer cleanup()

	seeder := catalog.NewSeeder(stores.tokens, stores.exchanges, logger)
	if err := seeder.Seed(ctx); err != nil {
		logger.WithError(err).Fatal("failed to seed catalog")
	}

	signals := signal.NewGenerator(stores.alerts, stores.buckets, stores.scores, stores.tokens, logger)
	if err := signals.SeedRules(ctx); err != nil {
		logger.WithError(err).Fatal("failed to seed alert rules")
	}

	sched := scheduler.New(
		aggregate.NewAggregator(stores.priceVolume, stores.spreads, stores.liquidity,
			stores.holders, stores.buckets, stores.tokens, stores.exchanges, logger),
		health.NewScorer(stores.buckets, stores.holders, stores.social,
			stores.scores, stores.tokens, logger),
		correlation.NewEngine(stores.buckets, stores.holders, stores.correlations,
			stores.tokens, logger),
		signals,
		scheduler.Intervals{
			Aggregation: cfg.AggregationInterval,
			Scoring:     cfg.ScoringInterval,
			Correlation: cfg.CorrelationInterval,
		},
		logger,
	)

	writer := ingest.NewWriter(stores.priceVolume, stores.spreads, stores.liquidity,
		stores.holders, stores.social, logger)

	queries := query.NewService(stores.tokens, stores.buckets, stores.scores,
		stores.correlations, stores.alerts)

	apiConfig := api.DefaultServerConfig(cfg.APIAddr)
	apiConfig.RateRPS = cfg.RateRPS
	apiConfig.RateBurst = cfg.RateBurst
	apiServer := api.NewServer(apiConfig, queries, logger)

	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig).Info("initiating graceful shutdown")
		cancel()

		shutdownCtx := context.Background()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("api shutdown error")
		}

		// Wait for a second signal for immediate shutdown.
		select {
		case sig := <-sigCh:
			logger.WithField("signal", sig).Warn("second signal, forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	go startOpsServer(cfg.MetricsAddr, sched, logger)

	err = run(ctx, cfg, sched, writer, apiServer, logger)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.WithError(err).Fatal("server error")
	}
	logger.Info("shutdown complete")
}

// run starts every long-lived component and blocks until one fails or the
// context is cancelled.
func run(
	ctx context.Context,
	cfg *config.Config,
	sched *scheduler.Scheduler,
	writer *ingest.Writer,
	apiServer *api.Server,
	logger *logrus.Logger,
) error {
	errCh := make(chan error, 6)

	if cfg.KafkaBrokers != "" {
		source, err := ingest.NewKafkaSource(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, writer, logger)
		if err != nil {
			return fmt.Errorf("create kafka source: %w", err)
		}
		go func() {
			if err := source.Run(ctx); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("kafka source: %w", err)
			}
		}()
	}

	if cfg.WSFeedURL != "" {
		source := ingest.NewWSSource(cfg.WSFeedURL, writer, logger)
		go func() {
			if err := source.Run(ctx); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("websocket source: %w", err)
			}
		}()
	}

	go func() {
		if err := sched.RunAggregationLoop(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("aggregation scheduler: %w", err)
		}
	}()
	go func() {
		if err := sched.RunScoringLoop(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("scoring scheduler: %w", err)
		}
	}()
	go func() {
		if err := sched.RunCorrelationLoop(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("correlation scheduler: %w", err)
		}
	}()

	go func() {
		if err := apiServer.Start(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// createStores creates all required stores. Catalog and low-rate pillar data
// live in Postgres, high-rate observations and buckets in ClickHouse.
func createStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*allStores, func(), error) {
	if cfg.UseMemory {
		stores := &allStores{
			tokens:       memory.NewTokenStore(),
			exchanges:    memory.NewExchangeStore(),
			priceVolume:  memory.NewPriceVolumeStore(),
			spreads:      memory.NewSpreadStore(),
			liquidity:    memory.NewLiquidityStore(),
			holders:      memory.NewHolderStore(),
			social:       memory.NewSocialStore(),
			buckets:      memory.NewBucketStore(),
			scores:       memory.NewScoreStore(),
			correlations: memory.NewCorrelationStore(),
			alerts:       memory.NewAlertStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	logger.Info("storage ready")

	stores := &allStores{
		tokens:       pgstore.NewTokenStore(pool),
		exchanges:    pgstore.NewExchangeStore(pool),
		holders:      pgstore.NewHolderStore(pool),
		social:       pgstore.NewSocialStore(pool),
		scores:       pgstore.NewScoreStore(pool),
		correlations: pgstore.NewCorrelationStore(pool),
		alerts:       pgstore.NewAlertStore(pool),

		priceVolume: chstore.NewPriceVolumeStore(chConn),
		spreads:     chstore.NewSpreadStore(chConn),
		liquidity:   chstore.NewLiquidityStore(chConn),
		buckets:     chstore.NewBucketStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// startOpsServer serves health, metrics and scheduler status on a separate
// listener so operational traffic never competes with the query API.
func startOpsServer(addr string, sched *scheduler.Scheduler, logger *logrus.Logger) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sched.Status())
	})

	logger.WithField("addr", addr).Info("ops server started")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("ops server error")
	}
}
