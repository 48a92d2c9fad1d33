package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// SocialStore implements storage.SocialStore using PostgreSQL.
type SocialStore struct {
	pool *Pool
}

// NewSocialStore creates a new SocialStore.
func NewSocialStore(pool *Pool) *SocialStore {
	return &SocialStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SocialStore = (*SocialStore)(nil)

// Upsert inserts or replaces a metric row by (token, timestamp_ms).
func (s *SocialStore) Upsert(ctx context.Context, m *domain.SocialMetric) error {
	if m == nil || m.TokenSymbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO social_metrics (
			token_symbol, timestamp_ms, tweet_count_24h, mention_count_24h,
			sentiment_score, positive_count, negative_count, neutral_count, influencer_mentions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (token_symbol, timestamp_ms) DO UPDATE SET
			tweet_count_24h = EXCLUDED.tweet_count_24h,
			mention_count_24h = EXCLUDED.mention_count_24h,
			sentiment_score = EXCLUDED.sentiment_score,
			positive_count = EXCLUDED.positive_count,
			negative_count = EXCLUDED.negative_count,
			neutral_count = EXCLUDED.neutral_count,
			influencer_mentions = EXCLUDED.influencer_mentions
	`

	_, err := s.pool.Exec(ctx, query,
		m.TokenSymbol, m.TimestampMs, m.TweetCount24h, m.MentionCount24h,
		m.SentimentScore, m.PositiveCount, m.NegativeCount, m.NeutralCount, m.InfluencerMentions,
	)
	if err != nil {
		return fmt.Errorf("upsert social metric: %w", err)
	}
	return nil
}

// GetLatest retrieves the freshest metric at or before ts.
func (s *SocialStore) GetLatest(ctx context.Context, symbol string, ts int64) (*domain.SocialMetric, error) {
	query := socialSelect + `
		WHERE token_symbol = $1 AND timestamp_ms <= $2
		ORDER BY timestamp_ms DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, symbol, ts)
	m, err := scanSocialMetric(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest social metric: %w", err)
	}
	return m, nil
}

// GetByTimeRange retrieves metrics for a token within [start, end] (inclusive, ms).
func (s *SocialStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.SocialMetric, error) {
	query := socialSelect + `
		WHERE token_symbol = $1 AND timestamp_ms >= $2 AND timestamp_ms <= $3
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("get social metrics by time range: %w", err)
	}
	defer rows.Close()

	var result []*domain.SocialMetric
	for rows.Next() {
		m, err := scanSocialMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("scan social metric: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate social metrics: %w", err)
	}
	return result, nil
}

const socialSelect = `
	SELECT token_symbol, timestamp_ms, tweet_count_24h, mention_count_24h,
	       sentiment_score, positive_count, negative_count, neutral_count, influencer_mentions
	FROM social_metrics`

func scanSocialMetric(row pgx.Row) (*domain.SocialMetric, error) {
	var m domain.SocialMetric
	err := row.Scan(
		&m.TokenSymbol, &m.TimestampMs, &m.TweetCount24h, &m.MentionCount24h,
		&m.SentimentScore, &m.PositiveCount, &m.NegativeCount, &m.NeutralCount, &m.InfluencerMentions,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
