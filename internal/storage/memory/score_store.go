package memory

import (
	"context"
	"sort"
	"sync"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// ScoreStore is an in-memory implementation of storage.ScoreStore.
type ScoreStore struct {
	mu   sync.RWMutex
	data map[string]*domain.HealthScore // keyed by (symbol, timestamp_ms)
}

// NewScoreStore creates a new in-memory health score store.
func NewScoreStore() *ScoreStore {
	return &ScoreStore{data: make(map[string]*domain.HealthScore)}
}

// Insert adds a new score. Returns ErrDuplicateKey if (token, timestamp_ms) exists.
func (s *ScoreStore) Insert(_ context.Context, sc *domain.HealthScore) error {
	if sc == nil || sc.TokenSymbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapshotKey(sc.TokenSymbol, sc.TimestampMs)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	scoreCopy := *sc
	scoreCopy.StalePillars = append([]string(nil), sc.StalePillars...)
	s.data[key] = &scoreCopy
	return nil
}

// GetLatest retrieves the freshest score for a token.
func (s *ScoreStore) GetLatest(_ context.Context, symbol string) (*domain.HealthScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.HealthScore
	for _, sc := range s.data {
		if sc.TokenSymbol != symbol {
			continue
		}
		if best == nil || sc.TimestampMs > best.TimestampMs {
			best = sc
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	return copyScore(best), nil
}

// GetPrevious retrieves the freshest score strictly before ts and not older
// than ts-lookbackMs.
func (s *ScoreStore) GetPrevious(_ context.Context, symbol string, ts, lookbackMs int64) (*domain.HealthScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.HealthScore
	for _, sc := range s.data {
		if sc.TokenSymbol != symbol || sc.TimestampMs >= ts || sc.TimestampMs < ts-lookbackMs {
			continue
		}
		if best == nil || sc.TimestampMs > best.TimestampMs {
			best = sc
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	return copyScore(best), nil
}

// GetByTimeRange retrieves scores for a token within [start, end] (inclusive, ms).
func (s *ScoreStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.HealthScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.HealthScore
	for _, sc := range s.data {
		if sc.TokenSymbol == symbol && sc.TimestampMs >= start && sc.TimestampMs <= end {
			result = append(result, copyScore(sc))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

// GetLatestByGrade retrieves the latest score of every token whose current
// grade equals grade, ordered by overall DESC.
func (s *ScoreStore) GetLatestByGrade(_ context.Context, grade domain.Grade) ([]*domain.HealthScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]*domain.HealthScore)
	for _, sc := range s.data {
		cur, exists := latest[sc.TokenSymbol]
		if !exists || sc.TimestampMs > cur.TimestampMs {
			latest[sc.TokenSymbol] = sc
		}
	}

	var result []*domain.HealthScore
	for _, sc := range latest {
		if sc.Grade == grade {
			result = append(result, copyScore(sc))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Overall != result[j].Overall {
			return result[i].Overall > result[j].Overall
		}
		return result[i].TokenSymbol < result[j].TokenSymbol
	})
	return result, nil
}

func copyScore(sc *domain.HealthScore) *domain.HealthScore {
	scoreCopy := *sc
	scoreCopy.StalePillars = append([]string(nil), sc.StalePillars...)
	return &scoreCopy
}

var _ storage.ScoreStore = (*ScoreStore)(nil)
