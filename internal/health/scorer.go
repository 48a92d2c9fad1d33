// Package health turns aggregated buckets into five-pillar health scores:
// volume, liquidity, spread, holders and price stability, weighted into a
// single graded composite.
package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/observability"
	"fantoken-intel/internal/storage"
)

// ErrNoBucket is returned when a token has no aggregated bucket to score.
var ErrNoBucket = errors.New("no bucket to score")

// Staleness thresholds per input pillar. spreadLookbackMs bounds how far
// back the scorer reaches for a last-known spread when the latest bucket
// has none.
const (
	holderStaleMs    = int64(2 * 60 * 60 * 1000)
	socialStaleMs    = int64(30 * 60 * 1000)
	spreadLookbackMs = int64(2 * 60 * 60 * 1000)
)

// Trend classification: the overall score must move more than trendBand
// points against the previous score within trendLookbackMs to leave "stable".
const (
	trendLookbackMs = int64(24 * 60 * 60 * 1000)
	trendBand       = 2
)

// Scorer computes immutable health score records from aggregated buckets.
type Scorer struct {
	buckets storage.BucketStore
	holders storage.HolderStore
	social  storage.SocialStore
	scores  storage.ScoreStore
	tokens  storage.TokenStore
	logger  *logrus.Logger
}

// NewScorer creates a health scorer.
func NewScorer(
	buckets storage.BucketStore,
	holders storage.HolderStore,
	social storage.SocialStore,
	scores storage.ScoreStore,
	tokens storage.TokenStore,
	logger *logrus.Logger,
) *Scorer {
	return &Scorer{
		buckets: buckets,
		holders: holders,
		social:  social,
		scores:  scores,
		tokens:  tokens,
		logger:  logger,
	}
}

// ScoreToken scores a token's latest bucket and inserts the record. Returns
// ErrNoBucket when the token has never been aggregated, and
// storage.ErrDuplicateKey when the latest bucket was already scored (the
// record is immutable, so a repeat cycle over an unchanged bucket is a no-op).
func (s *Scorer) ScoreToken(ctx context.Context, symbol string) (*domain.HealthScore, error) {
	bucket, err := s.buckets.GetLatest(ctx, symbol)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoBucket
		}
		return nil, fmt.Errorf("load latest bucket for %s: %w", symbol, err)
	}

	score := &domain.HealthScore{
		TokenSymbol: symbol,
		TimestampMs: bucket.TimestampMs,
	}

	// Volume: against the token's own trailing 30-day median. Too little
	// history substitutes a flagged neutral score, never a silent one.
	benchmark, ok, err := volumeBenchmark(ctx, s.buckets, symbol, bucket.TimestampMs)
	if err != nil {
		return nil, fmt.Errorf("volume benchmark for %s: %w", symbol, err)
	}
	if ok {
		score.VolumeScore = volumeScore(bucket.TotalVolume24h, benchmark)
	} else {
		score.VolumeScore = 50
		score.InsufficientHistory = true
	}

	score.LiquidityScore = liquidityScore(bucket.TotalLiquidity1Pct, bucket.TotalVolume24h)

	s.scoreSpread(ctx, bucket, score)
	s.scoreHolders(ctx, bucket, score)
	s.checkSocialStaleness(ctx, bucket, score)

	changes, err := changes24h(ctx, s.buckets, symbol, bucket.TimestampMs)
	if err != nil {
		return nil, fmt.Errorf("volatility series for %s: %w", symbol, err)
	}
	score.StabilityScore = stabilityScore(changes)

	score.Overall = overallScore(
		score.VolumeScore,
		score.LiquidityScore,
		score.SpreadScore,
		score.HolderScore,
		score.StabilityScore,
	)
	score.Grade = domain.GradeForScore(score.Overall)
	score.Trend = s.classifyTrend(ctx, symbol, bucket.TimestampMs, score.Overall)

	if err := s.scores.Insert(ctx, score); err != nil {
		return nil, fmt.Errorf("insert score %s@%d: %w", symbol, score.TimestampMs, err)
	}

	observability.DefaultMetrics.ScoresComputed.Inc()
	observability.DefaultMetrics.ScoresByGrade.WithLabelValues(string(score.Grade)).Inc()
	for _, pillar := range score.StalePillars {
		observability.DefaultMetrics.StalePillarsSeen.WithLabelValues(pillar).Inc()
	}
	return score, nil
}

// ScoreAll scores every active token. Tokens are independent: unaggregated
// and already-scored tokens are skipped, any other failure is logged and the
// cycle continues.
func (s *Scorer) ScoreAll(ctx context.Context) error {
	tokens, err := s.tokens.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("load active tokens: %w", err)
	}

	for _, t := range tokens {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.ScoreToken(ctx, t.Symbol); err != nil {
			if errors.Is(err, ErrNoBucket) || errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			observability.DefaultMetrics.ScoringErrors.Inc()
			s.logger.WithError(err).WithField("token", t.Symbol).Warn("scoring failed for token")
		}
	}
	return nil
}

// scoreSpread fills the spread sub-score. When no venue reported a book in
// the latest window the pillar is marked stale and the score comes from the
// last-known spread within the lookback; a token with no spread history at
// all scores neutral.
func (s *Scorer) scoreSpread(ctx context.Context, bucket *domain.AggregatedBucket, score *domain.HealthScore) {
	if bucket.AvgSpreadBps != nil {
		score.SpreadScore = spreadScore(bucket.AvgSpreadBps)
		return
	}
	score.StalePillars = append(score.StalePillars, "spread")

	hist, err := s.buckets.GetByTimeRange(ctx, bucket.TokenSymbol,
		bucket.TimestampMs-spreadLookbackMs, bucket.TimestampMs-1)
	if err == nil {
		for i := len(hist) - 1; i >= 0; i-- {
			if hist[i].AvgSpreadBps != nil {
				score.SpreadScore = spreadScore(hist[i].AvgSpreadBps)
				return
			}
		}
	}
	score.SpreadScore = spreadScore(nil)
}

// scoreHolders fills the holder sub-score from the freshest snapshot at or
// before the bucket time. A missing or outdated snapshot marks the pillar
// stale; the sub-score still comes from the last-known values (zero when the
// token has never been snapshotted).
func (s *Scorer) scoreHolders(ctx context.Context, bucket *domain.AggregatedBucket, score *domain.HealthScore) {
	snap, err := s.holders.GetLatest(ctx, bucket.TokenSymbol, bucket.TimestampMs)
	if err != nil {
		score.StalePillars = append(score.StalePillars, "holders")
		return
	}
	score.HolderScore = holderScore(snap.TotalHolders, snap.HolderChange24h)
	if snap.TimestampMs < bucket.TimestampMs-holderStaleMs {
		score.StalePillars = append(score.StalePillars, "holders")
	}
}

// checkSocialStaleness records whether the social feed has gone quiet. Social
// sentiment does not carry a pillar weight, but downstream consumers use the
// marker to discount the record.
func (s *Scorer) checkSocialStaleness(ctx context.Context, bucket *domain.AggregatedBucket, score *domain.HealthScore) {
	m, err := s.social.GetLatest(ctx, bucket.TokenSymbol, bucket.TimestampMs)
	if err != nil {
		score.StalePillars = append(score.StalePillars, "social")
		return
	}
	if m.TimestampMs < bucket.TimestampMs-socialStaleMs {
		score.StalePillars = append(score.StalePillars, "social")
	}
}

// classifyTrend compares the new overall score against the previous record
// within the lookback window. No prior record means stable.
func (s *Scorer) classifyTrend(ctx context.Context, symbol string, ts int64, overall int) domain.Trend {
	prev, err := s.scores.GetPrevious(ctx, symbol, ts, trendLookbackMs)
	if err != nil {
		return domain.TrendStable
	}
	switch delta := overall - prev.Overall; {
	case delta > trendBand:
		return domain.TrendImproving
	case delta < -trendBand:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}
