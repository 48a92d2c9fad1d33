package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// CorrelationStore implements storage.CorrelationStore using PostgreSQL.
type CorrelationStore struct {
	pool *Pool
}

// NewCorrelationStore creates a new CorrelationStore.
func NewCorrelationStore(pool *Pool) *CorrelationStore {
	return &CorrelationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CorrelationStore = (*CorrelationStore)(nil)

// Upsert inserts or replaces a result by (token, analysis_date, lookback_days).
func (s *CorrelationStore) Upsert(ctx context.Context, r *domain.CorrelationResult) error {
	if r == nil || r.TokenSymbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO correlation_results (
			token_symbol, analysis_date, lookback_days,
			price_volume_corr, price_volume_lag, price_holders_corr, price_holders_lag,
			volume_holders_corr, spread_price_corr, liquidity_volume_corr, market_regime
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (token_symbol, analysis_date, lookback_days) DO UPDATE SET
			price_volume_corr = EXCLUDED.price_volume_corr,
			price_volume_lag = EXCLUDED.price_volume_lag,
			price_holders_corr = EXCLUDED.price_holders_corr,
			price_holders_lag = EXCLUDED.price_holders_lag,
			volume_holders_corr = EXCLUDED.volume_holders_corr,
			spread_price_corr = EXCLUDED.spread_price_corr,
			liquidity_volume_corr = EXCLUDED.liquidity_volume_corr,
			market_regime = EXCLUDED.market_regime
	`

	_, err := s.pool.Exec(ctx, query,
		r.TokenSymbol, r.AnalysisDate, r.LookbackDays,
		r.PriceVolumeCorr, r.PriceVolumeLag, r.PriceHoldersCorr, r.PriceHoldersLag,
		r.VolumeHoldersCorr, r.SpreadPriceCorr, r.LiquidityVolumeCorr, string(r.MarketRegime),
	)
	if err != nil {
		return fmt.Errorf("upsert correlation result: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent result for a token and lookback.
func (s *CorrelationStore) GetLatest(ctx context.Context, symbol string, lookbackDays int) (*domain.CorrelationResult, error) {
	query := correlationSelect + `
		WHERE token_symbol = $1 AND lookback_days = $2
		ORDER BY analysis_date DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, symbol, lookbackDays)
	r, err := scanCorrelationResult(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest correlation result: %w", err)
	}
	return r, nil
}

// GetByDateRange retrieves results for a token within [start, end] dates (inclusive).
func (s *CorrelationStore) GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.CorrelationResult, error) {
	query := correlationSelect + `
		WHERE token_symbol = $1 AND analysis_date >= $2 AND analysis_date <= $3
		ORDER BY analysis_date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("get correlation results by date range: %w", err)
	}
	defer rows.Close()

	var result []*domain.CorrelationResult
	for rows.Next() {
		r, err := scanCorrelationResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan correlation result: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate correlation results: %w", err)
	}
	return result, nil
}

const correlationSelect = `
	SELECT token_symbol, analysis_date, lookback_days,
	       price_volume_corr, price_volume_lag, price_holders_corr, price_holders_lag,
	       volume_holders_corr, spread_price_corr, liquidity_volume_corr, market_regime
	FROM correlation_results`

func scanCorrelationResult(row pgx.Row) (*domain.CorrelationResult, error) {
	var r domain.CorrelationResult
	var regime string
	err := row.Scan(
		&r.TokenSymbol, &r.AnalysisDate, &r.LookbackDays,
		&r.PriceVolumeCorr, &r.PriceVolumeLag, &r.PriceHoldersCorr, &r.PriceHoldersLag,
		&r.VolumeHoldersCorr, &r.SpreadPriceCorr, &r.LiquidityVolumeCorr, &regime,
	)
	if err != nil {
		return nil, err
	}
	r.MarketRegime = domain.MarketRegime(regime)
	return &r, nil
}
