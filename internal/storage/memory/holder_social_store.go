package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// snapshotKey generates a unique key for per-token timestamped records.
func snapshotKey(symbol string, timestampMs int64) string {
	return fmt.Sprintf("%s|%d", symbol, timestampMs)
}

// HolderStore is an in-memory implementation of storage.HolderStore.
type HolderStore struct {
	mu   sync.RWMutex
	data map[string]*domain.HolderSnapshot // keyed by (symbol, timestamp_ms)
}

// NewHolderStore creates a new in-memory holder snapshot store.
func NewHolderStore() *HolderStore {
	return &HolderStore{data: make(map[string]*domain.HolderSnapshot)}
}

// Upsert inserts or replaces a snapshot by (token, timestamp_ms).
func (s *HolderStore) Upsert(_ context.Context, snap *domain.HolderSnapshot) error {
	if snap == nil || snap.TokenSymbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapCopy := *snap
	s.data[snapshotKey(snap.TokenSymbol, snap.TimestampMs)] = &snapCopy
	return nil
}

// GetLatest retrieves the freshest snapshot at or before ts.
func (s *HolderStore) GetLatest(_ context.Context, symbol string, ts int64) (*domain.HolderSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.HolderSnapshot
	for _, snap := range s.data {
		if snap.TokenSymbol != symbol || snap.TimestampMs > ts {
			continue
		}
		if best == nil || snap.TimestampMs > best.TimestampMs {
			best = snap
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	snapCopy := *best
	return &snapCopy, nil
}

// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive, ms).
func (s *HolderStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.HolderSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.HolderSnapshot
	for _, snap := range s.data {
		if snap.TokenSymbol == symbol && snap.TimestampMs >= start && snap.TimestampMs <= end {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

var _ storage.HolderStore = (*HolderStore)(nil)

// SocialStore is an in-memory implementation of storage.SocialStore.
type SocialStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SocialMetric
}

// NewSocialStore creates a new in-memory social metric store.
func NewSocialStore() *SocialStore {
	return &SocialStore{data: make(map[string]*domain.SocialMetric)}
}

// Upsert inserts or replaces a metric row by (token, timestamp_ms).
func (s *SocialStore) Upsert(_ context.Context, m *domain.SocialMetric) error {
	if m == nil || m.TokenSymbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metricCopy := *m
	s.data[snapshotKey(m.TokenSymbol, m.TimestampMs)] = &metricCopy
	return nil
}

// GetLatest retrieves the freshest metric at or before ts.
func (s *SocialStore) GetLatest(_ context.Context, symbol string, ts int64) (*domain.SocialMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.SocialMetric
	for _, m := range s.data {
		if m.TokenSymbol != symbol || m.TimestampMs > ts {
			continue
		}
		if best == nil || m.TimestampMs > best.TimestampMs {
			best = m
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	metricCopy := *best
	return &metricCopy, nil
}

// GetByTimeRange retrieves metrics for a token within [start, end] (inclusive, ms).
func (s *SocialStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.SocialMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SocialMetric
	for _, m := range s.data {
		if m.TokenSymbol == symbol && m.TimestampMs >= start && m.TimestampMs <= end {
			metricCopy := *m
			result = append(result, &metricCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

var _ storage.SocialStore = (*SocialStore)(nil)
