// Package query is the read side of the system: explicit, ordered lookups
// over stored buckets, scores, correlations and alerts. Absence is always an
// error return, never a cached or zero-valued answer.
package query

import (
	"context"
	"fmt"
	"time"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// Service bundles the read-only store operations the API exposes.
type Service struct {
	tokens       storage.TokenStore
	buckets      storage.BucketStore
	scores       storage.ScoreStore
	correlations storage.CorrelationStore
	alerts       storage.AlertStore
}

// NewService creates a query service.
func NewService(
	tokens storage.TokenStore,
	buckets storage.BucketStore,
	scores storage.ScoreStore,
	correlations storage.CorrelationStore,
	alerts storage.AlertStore,
) *Service {
	return &Service{
		tokens:       tokens,
		buckets:      buckets,
		scores:       scores,
		correlations: correlations,
		alerts:       alerts,
	}
}

// Tokens returns the full catalog.
func (s *Service) Tokens(ctx context.Context) ([]*domain.Token, error) {
	return s.tokens.GetAll(ctx)
}

// Token returns one catalog entry. storage.ErrNotFound for unknown symbols.
func (s *Service) Token(ctx context.Context, symbol string) (*domain.Token, error) {
	return s.tokens.GetBySymbol(ctx, symbol)
}

// LatestBucket returns the freshest aggregated bucket for a token.
func (s *Service) LatestBucket(ctx context.Context, symbol string) (*domain.AggregatedBucket, error) {
	return s.buckets.GetLatest(ctx, symbol)
}

// BucketHistory returns buckets within [start, end] ms, oldest first.
func (s *Service) BucketHistory(ctx context.Context, symbol string, start, end int64) ([]*domain.AggregatedBucket, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	return s.buckets.GetByTimeRange(ctx, symbol, start, end)
}

// LatestScore returns the freshest health score for a token.
func (s *Service) LatestScore(ctx context.Context, symbol string) (*domain.HealthScore, error) {
	return s.scores.GetLatest(ctx, symbol)
}

// ScoreHistory returns scores within [start, end] ms, oldest first.
func (s *Service) ScoreHistory(ctx context.Context, symbol string, start, end int64) ([]*domain.HealthScore, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	return s.scores.GetByTimeRange(ctx, symbol, start, end)
}

// ScoresByGrade returns the current score of every token graded exactly
// grade, best first. A token that moved to another grade is not included
// under its old one.
func (s *Service) ScoresByGrade(ctx context.Context, grade domain.Grade) ([]*domain.HealthScore, error) {
	switch grade {
	case domain.GradeA, domain.GradeB, domain.GradeC, domain.GradeD, domain.GradeF:
	default:
		return nil, fmt.Errorf("%w: unknown grade %q", storage.ErrInvalidInput, grade)
	}
	return s.scores.GetLatestByGrade(ctx, grade)
}

// LatestCorrelation returns the most recent correlation result for a token
// and lookback window.
func (s *Service) LatestCorrelation(ctx context.Context, symbol string, lookbackDays int) (*domain.CorrelationResult, error) {
	if lookbackDays <= 0 {
		return nil, fmt.Errorf("%w: lookback must be positive", storage.ErrInvalidInput)
	}
	return s.correlations.GetLatest(ctx, symbol, lookbackDays)
}

// CorrelationHistory returns correlation results within [start, end] dates.
func (s *Service) CorrelationHistory(ctx context.Context, symbol string, start, end time.Time) ([]*domain.CorrelationResult, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end before start", storage.ErrInvalidInput)
	}
	return s.correlations.GetByDateRange(ctx, symbol, start, end)
}

// RecentAlerts returns alerts fired within [start, end] ms, newest first.
func (s *Service) RecentAlerts(ctx context.Context, start, end int64) ([]*domain.Alert, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	return s.alerts.GetByTimeRange(ctx, start, end)
}

func validateRange(start, end int64) error {
	if start < 0 || end < start {
		return fmt.Errorf("%w: invalid time range [%d, %d]", storage.ErrInvalidInput, start, end)
	}
	return nil
}
