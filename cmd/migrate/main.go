// Package main applies all database migrations and exits.
package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/config"
	"fantoken-intel/internal/storage/migrations"
	pgstore "fantoken-intel/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if cfg.PostgresDSN == "" || cfg.ClickhouseDSN == "" {
		logger.Fatal("POSTGRES_DSN and CLICKHOUSE_DSN are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.WithError(err).Fatal("connect to postgres")
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.WithError(err).Fatal("postgres migrations")
	}
	logger.Info("postgres migrations applied")

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		logger.WithError(err).Fatal("clickhouse migrations")
	}
	defer chConn.Close()
	logger.Info("clickhouse migrations applied")
}
