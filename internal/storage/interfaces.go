package storage

import (
	"context"
	"time"

	"fantoken-intel/internal/domain"
)

// TokenStore provides access to the fan token catalog.
type TokenStore interface {
	// Upsert inserts or replaces a token by symbol.
	Upsert(ctx context.Context, t *domain.Token) error

	// GetBySymbol retrieves a token. Returns ErrNotFound if not exists.
	GetBySymbol(ctx context.Context, symbol string) (*domain.Token, error)

	// GetActive retrieves all active tokens, ordered by symbol ASC.
	GetActive(ctx context.Context) ([]*domain.Token, error)

	// GetAll retrieves every token regardless of active flag.
	GetAll(ctx context.Context) ([]*domain.Token, error)

	// SetActive flips a token's active flag. Returns ErrNotFound if not exists.
	SetActive(ctx context.Context, symbol string, active bool) error
}

// ExchangeStore provides access to the exchange catalog.
type ExchangeStore interface {
	// Upsert inserts or replaces an exchange by code.
	Upsert(ctx context.Context, e *domain.Exchange) error

	// GetByCode retrieves an exchange. Returns ErrNotFound if not exists.
	GetByCode(ctx context.Context, code string) (*domain.Exchange, error)

	// GetActive retrieves all active exchanges, ordered by priority ASC.
	GetActive(ctx context.Context) ([]*domain.Exchange, error)
}

// PriceVolumeStore provides access to per-exchange price/volume ticks.
type PriceVolumeStore interface {
	// Upsert inserts or replaces ticks by (token, exchange, timestamp_ms).
	Upsert(ctx context.Context, ticks []*domain.PriceVolumeTick) error

	// GetByTimeRange retrieves ticks for a token within [start, end]
	// (inclusive, ms), all exchanges, ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.PriceVolumeTick, error)

	// GetLatestPerExchange retrieves, per exchange, the freshest tick at or
	// before ts for a token. Exchanges with no tick are absent from the result.
	GetLatestPerExchange(ctx context.Context, symbol string, ts int64) (map[string]*domain.PriceVolumeTick, error)
}

// SpreadStore provides access to per-exchange top-of-book spread ticks.
type SpreadStore interface {
	// Upsert inserts or replaces ticks by (token, exchange, timestamp_ms).
	Upsert(ctx context.Context, ticks []*domain.SpreadTick) error

	// GetByTimeRange retrieves ticks for a token within [start, end] (inclusive, ms).
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.SpreadTick, error)

	// GetLatestPerExchange retrieves, per exchange, the freshest tick at or before ts.
	GetLatestPerExchange(ctx context.Context, symbol string, ts int64) (map[string]*domain.SpreadTick, error)
}

// LiquidityStore provides access to per-exchange order-book depth snapshots.
type LiquidityStore interface {
	// Upsert inserts or replaces snapshots by (token, exchange, timestamp_ms).
	Upsert(ctx context.Context, snaps []*domain.LiquiditySnapshot) error

	// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive, ms).
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.LiquiditySnapshot, error)

	// GetLatestPerExchange retrieves, per exchange, the freshest snapshot at or before ts.
	GetLatestPerExchange(ctx context.Context, symbol string, ts int64) (map[string]*domain.LiquiditySnapshot, error)
}

// HolderStore provides access to on-chain holder distribution snapshots.
type HolderStore interface {
	// Upsert inserts or replaces a snapshot by (token, timestamp_ms).
	Upsert(ctx context.Context, s *domain.HolderSnapshot) error

	// GetLatest retrieves the freshest snapshot at or before ts.
	// Returns ErrNotFound when no snapshot exists.
	GetLatest(ctx context.Context, symbol string, ts int64) (*domain.HolderSnapshot, error)

	// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive, ms).
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.HolderSnapshot, error)
}

// SocialStore provides access to social sentiment observations.
type SocialStore interface {
	// Upsert inserts or replaces a metric row by (token, timestamp_ms).
	Upsert(ctx context.Context, m *domain.SocialMetric) error

	// GetLatest retrieves the freshest metric at or before ts.
	// Returns ErrNotFound when no metric exists.
	GetLatest(ctx context.Context, symbol string, ts int64) (*domain.SocialMetric, error)

	// GetByTimeRange retrieves metrics for a token within [start, end] (inclusive, ms).
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.SocialMetric, error)
}

// BucketStore provides access to cross-exchange aggregated buckets.
type BucketStore interface {
	// Upsert inserts or replaces a bucket by (token, timestamp_ms). Recomputing
	// a window replaces the whole row; buckets are never partially updated.
	Upsert(ctx context.Context, b *domain.AggregatedBucket) error

	// GetLatest retrieves the freshest bucket for a token.
	// Returns ErrNotFound when no bucket exists.
	GetLatest(ctx context.Context, symbol string) (*domain.AggregatedBucket, error)

	// GetAt retrieves the bucket closest at-or-before ts.
	// Returns ErrNotFound when no such bucket exists.
	GetAt(ctx context.Context, symbol string, ts int64) (*domain.AggregatedBucket, error)

	// GetByTimeRange retrieves buckets for a token within [start, end]
	// (inclusive, ms), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.AggregatedBucket, error)
}

// ScoreStore provides access to health score records.
type ScoreStore interface {
	// Insert adds a new score. Returns ErrDuplicateKey if (token, timestamp_ms)
	// exists; score records are immutable once written.
	Insert(ctx context.Context, s *domain.HealthScore) error

	// GetLatest retrieves the freshest score for a token.
	// Returns ErrNotFound when no score exists.
	GetLatest(ctx context.Context, symbol string) (*domain.HealthScore, error)

	// GetPrevious retrieves the freshest score strictly before ts and not
	// older than ts-lookbackMs. Returns ErrNotFound when none qualifies.
	GetPrevious(ctx context.Context, symbol string, ts, lookbackMs int64) (*domain.HealthScore, error)

	// GetByTimeRange retrieves scores for a token within [start, end]
	// (inclusive, ms), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.HealthScore, error)

	// GetLatestByGrade retrieves the latest score of every token whose
	// current grade equals grade, ordered by overall DESC.
	GetLatestByGrade(ctx context.Context, grade domain.Grade) ([]*domain.HealthScore, error)
}

// CorrelationStore provides access to correlation analysis results.
type CorrelationStore interface {
	// Upsert inserts or replaces a result by (token, analysis_date, lookback_days).
	Upsert(ctx context.Context, r *domain.CorrelationResult) error

	// GetLatest retrieves the most recent result for a token and lookback.
	// Returns ErrNotFound when no result exists.
	GetLatest(ctx context.Context, symbol string, lookbackDays int) (*domain.CorrelationResult, error)

	// GetByDateRange retrieves results for a token within [start, end] dates (inclusive).
	GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.CorrelationResult, error)
}

// AlertStore provides access to alert rules and fired alerts.
type AlertStore interface {
	// UpsertRule inserts or replaces a rule by rule_id.
	UpsertRule(ctx context.Context, r *domain.AlertRule) error

	// GetActiveRules retrieves all active rules.
	GetActiveRules(ctx context.Context) ([]*domain.AlertRule, error)

	// InsertAlert adds a fired alert. Returns ErrDuplicateKey if alert_id exists.
	InsertAlert(ctx context.Context, a *domain.Alert) error

	// GetLastFired retrieves the timestamp (ms) of the most recent alert for
	// (rule, token). Returns ErrNotFound when the pair has never fired.
	GetLastFired(ctx context.Context, ruleID, symbol string) (int64, error)

	// GetByTimeRange retrieves alerts fired within [start, end] (inclusive, ms),
	// all tokens, ordered by timestamp DESC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Alert, error)
}
