package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// CorrelationStore is an in-memory implementation of storage.CorrelationStore.
type CorrelationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CorrelationResult // keyed by (symbol, analysis_date, lookback_days)
}

// NewCorrelationStore creates a new in-memory correlation result store.
func NewCorrelationStore() *CorrelationStore {
	return &CorrelationStore{data: make(map[string]*domain.CorrelationResult)}
}

func correlationKey(symbol string, date time.Time, lookbackDays int) string {
	return fmt.Sprintf("%s|%s|%d", symbol, date.Format("2006-01-02"), lookbackDays)
}

// Upsert inserts or replaces a result by (token, analysis_date, lookback_days).
func (s *CorrelationStore) Upsert(_ context.Context, r *domain.CorrelationResult) error {
	if r == nil || r.TokenSymbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resultCopy := *r
	s.data[correlationKey(r.TokenSymbol, r.AnalysisDate, r.LookbackDays)] = &resultCopy
	return nil
}

// GetLatest retrieves the most recent result for a token and lookback.
func (s *CorrelationStore) GetLatest(_ context.Context, symbol string, lookbackDays int) (*domain.CorrelationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.CorrelationResult
	for _, r := range s.data {
		if r.TokenSymbol != symbol || r.LookbackDays != lookbackDays {
			continue
		}
		if best == nil || r.AnalysisDate.After(best.AnalysisDate) {
			best = r
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	resultCopy := *best
	return &resultCopy, nil
}

// GetByDateRange retrieves results for a token within [start, end] dates (inclusive).
func (s *CorrelationStore) GetByDateRange(_ context.Context, symbol string, start, end time.Time) ([]*domain.CorrelationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CorrelationResult
	for _, r := range s.data {
		if r.TokenSymbol != symbol || r.AnalysisDate.Before(start) || r.AnalysisDate.After(end) {
			continue
		}
		resultCopy := *r
		result = append(result, &resultCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AnalysisDate.Before(result[j].AnalysisDate)
	})
	return result, nil
}

var _ storage.CorrelationStore = (*CorrelationStore)(nil)
