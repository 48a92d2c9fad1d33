package memory

import (
	"context"
	"sort"
	"sync"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// BucketStore is an in-memory implementation of storage.BucketStore.
type BucketStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AggregatedBucket // keyed by (symbol, timestamp_ms)
}

// NewBucketStore creates a new in-memory aggregated bucket store.
func NewBucketStore() *BucketStore {
	return &BucketStore{data: make(map[string]*domain.AggregatedBucket)}
}

// Upsert inserts or replaces a bucket by (token, timestamp_ms).
func (s *BucketStore) Upsert(_ context.Context, b *domain.AggregatedBucket) error {
	if b == nil || b.TokenSymbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucketCopy := *b
	s.data[snapshotKey(b.TokenSymbol, b.TimestampMs)] = &bucketCopy
	return nil
}

// GetLatest retrieves the freshest bucket for a token.
func (s *BucketStore) GetLatest(_ context.Context, symbol string) (*domain.AggregatedBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.AggregatedBucket
	for _, b := range s.data {
		if b.TokenSymbol != symbol {
			continue
		}
		if best == nil || b.TimestampMs > best.TimestampMs {
			best = b
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	bucketCopy := *best
	return &bucketCopy, nil
}

// GetAt retrieves the bucket closest at-or-before ts.
func (s *BucketStore) GetAt(_ context.Context, symbol string, ts int64) (*domain.AggregatedBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.AggregatedBucket
	for _, b := range s.data {
		if b.TokenSymbol != symbol || b.TimestampMs > ts {
			continue
		}
		if best == nil || b.TimestampMs > best.TimestampMs {
			best = b
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	bucketCopy := *best
	return &bucketCopy, nil
}

// GetByTimeRange retrieves buckets for a token within [start, end] (inclusive, ms).
func (s *BucketStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.AggregatedBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AggregatedBucket
	for _, b := range s.data {
		if b.TokenSymbol == symbol && b.TimestampMs >= start && b.TimestampMs <= end {
			bucketCopy := *b
			result = append(result, &bucketCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

var _ storage.BucketStore = (*BucketStore)(nil)
