// Package postgres implements the relational stores (catalog, holder and
// social snapshots, scores, correlations, alerts) on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fantoken-intel/internal/observability"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// Query delegates to the pool and records query latency.
func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	defer observeQuery("postgres", sql, time.Now())
	return p.Pool.Query(ctx, sql, args...)
}

// QueryRow delegates to the pool and records query latency.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	defer observeQuery("postgres", sql, time.Now())
	return p.Pool.QueryRow(ctx, sql, args...)
}

// Exec delegates to the pool and records query latency.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	defer observeQuery("postgres", sql, time.Now())
	return p.Pool.Exec(ctx, sql, args...)
}

// observeQuery records the duration of one statement, labeled by its leading
// SQL keyword.
func observeQuery(database, sql string, start time.Time) {
	op := "other"
	if fields := strings.Fields(sql); len(fields) > 0 {
		op = strings.ToLower(fields[0])
	}
	observability.DefaultMetrics.DBQueryDuration.
		WithLabelValues(database, op).Observe(time.Since(start).Seconds())
}

// PostgreSQL error codes
const (
	pgErrUniqueViolation = "23505" // unique_violation
)

// isDuplicateKeyError checks if error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}

	return false
}

// isNotFoundError checks if error indicates no rows found.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
