package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// ScoreStore implements storage.ScoreStore using PostgreSQL.
type ScoreStore struct {
	pool *Pool
}

// NewScoreStore creates a new ScoreStore.
func NewScoreStore(pool *Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScoreStore = (*ScoreStore)(nil)

// Insert adds a new score. Returns ErrDuplicateKey if (token, timestamp_ms) exists.
func (s *ScoreStore) Insert(ctx context.Context, sc *domain.HealthScore) error {
	if sc == nil || sc.TokenSymbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO health_scores (
			token_symbol, timestamp_ms,
			volume_score, liquidity_score, spread_score, holder_score, stability_score,
			overall, grade, trend, stale_pillars, insufficient_history
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		sc.TokenSymbol, sc.TimestampMs,
		sc.VolumeScore, sc.LiquidityScore, sc.SpreadScore, sc.HolderScore, sc.StabilityScore,
		sc.Overall, string(sc.Grade), string(sc.Trend), sc.StalePillars, sc.InsufficientHistory,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert health score: %w", err)
	}
	return nil
}

// GetLatest retrieves the freshest score for a token.
func (s *ScoreStore) GetLatest(ctx context.Context, symbol string) (*domain.HealthScore, error) {
	query := scoreSelect + `
		WHERE token_symbol = $1
		ORDER BY timestamp_ms DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, symbol)
	sc, err := scanHealthScore(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest health score: %w", err)
	}
	return sc, nil
}

// GetPrevious retrieves the freshest score strictly before ts and not older
// than ts-lookbackMs.
func (s *ScoreStore) GetPrevious(ctx context.Context, symbol string, ts, lookbackMs int64) (*domain.HealthScore, error) {
	query := scoreSelect + `
		WHERE token_symbol = $1 AND timestamp_ms < $2 AND timestamp_ms >= $3
		ORDER BY timestamp_ms DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, symbol, ts, ts-lookbackMs)
	sc, err := scanHealthScore(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get previous health score: %w", err)
	}
	return sc, nil
}

// GetByTimeRange retrieves scores for a token within [start, end] (inclusive, ms).
func (s *ScoreStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.HealthScore, error) {
	query := scoreSelect + `
		WHERE token_symbol = $1 AND timestamp_ms >= $2 AND timestamp_ms <= $3
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("get health scores by time range: %w", err)
	}
	defer rows.Close()

	return scanHealthScores(rows)
}

// GetLatestByGrade retrieves the latest score of every token whose current
// grade equals grade, ordered by overall DESC.
func (s *ScoreStore) GetLatestByGrade(ctx context.Context, grade domain.Grade) ([]*domain.HealthScore, error) {
	query := `
		SELECT DISTINCT ON (token_symbol)
		       token_symbol, timestamp_ms,
		       volume_score, liquidity_score, spread_score, holder_score, stability_score,
		       overall, grade, trend, stale_pillars, insufficient_history
		FROM health_scores
		ORDER BY token_symbol, timestamp_ms DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get latest health scores: %w", err)
	}
	defer rows.Close()

	all, err := scanHealthScores(rows)
	if err != nil {
		return nil, err
	}

	var result []*domain.HealthScore
	for _, sc := range all {
		if sc.Grade == grade {
			result = append(result, sc)
		}
	}
	// DISTINCT ON orders by token; re-sort by overall DESC.
	sort.Slice(result, func(i, j int) bool {
		if result[i].Overall != result[j].Overall {
			return result[i].Overall > result[j].Overall
		}
		return result[i].TokenSymbol < result[j].TokenSymbol
	})
	return result, nil
}

const scoreSelect = `
	SELECT token_symbol, timestamp_ms,
	       volume_score, liquidity_score, spread_score, holder_score, stability_score,
	       overall, grade, trend, stale_pillars, insufficient_history
	FROM health_scores`

func scanHealthScore(row pgx.Row) (*domain.HealthScore, error) {
	var sc domain.HealthScore
	var grade, trend string
	err := row.Scan(
		&sc.TokenSymbol, &sc.TimestampMs,
		&sc.VolumeScore, &sc.LiquidityScore, &sc.SpreadScore, &sc.HolderScore, &sc.StabilityScore,
		&sc.Overall, &grade, &trend, &sc.StalePillars, &sc.InsufficientHistory,
	)
	if err != nil {
		return nil, err
	}
	sc.Grade = domain.Grade(grade)
	sc.Trend = domain.Trend(trend)
	return &sc, nil
}

func scanHealthScores(rows pgx.Rows) ([]*domain.HealthScore, error) {
	var result []*domain.HealthScore
	for rows.Next() {
		sc, err := scanHealthScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan health score: %w", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate health scores: %w", err)
	}
	return result, nil
}
