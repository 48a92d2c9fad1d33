package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// tickKey generates a unique key for per-exchange observations.
func tickKey(symbol, exchange string, timestampMs int64) string {
	return fmt.Sprintf("%s|%s|%d", symbol, exchange, timestampMs)
}

// PriceVolumeStore is an in-memory implementation of storage.PriceVolumeStore.
type PriceVolumeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceVolumeTick // keyed by (symbol, exchange, timestamp_ms)
}

// NewPriceVolumeStore creates a new in-memory price/volume tick store.
func NewPriceVolumeStore() *PriceVolumeStore {
	return &PriceVolumeStore{data: make(map[string]*domain.PriceVolumeTick)}
}

// Upsert inserts or replaces ticks by (token, exchange, timestamp_ms).
func (s *PriceVolumeStore) Upsert(_ context.Context, ticks []*domain.PriceVolumeTick) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range ticks {
		if t == nil || t.TokenSymbol == "" || t.Exchange == "" {
			return storage.ErrInvalidInput
		}
		tickCopy := *t
		s.data[tickKey(t.TokenSymbol, t.Exchange, t.TimestampMs)] = &tickCopy
	}
	return nil
}

// GetByTimeRange retrieves ticks for a token within [start, end] (inclusive, ms).
func (s *PriceVolumeStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.PriceVolumeTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceVolumeTick
	for _, t := range s.data {
		if t.TokenSymbol == symbol && t.TimestampMs >= start && t.TimestampMs <= end {
			tickCopy := *t
			result = append(result, &tickCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

// GetLatestPerExchange retrieves, per exchange, the freshest tick at or before ts.
func (s *PriceVolumeStore) GetLatestPerExchange(_ context.Context, symbol string, ts int64) (map[string]*domain.PriceVolumeTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.PriceVolumeTick)
	for _, t := range s.data {
		if t.TokenSymbol != symbol || t.TimestampMs > ts {
			continue
		}
		cur, exists := result[t.Exchange]
		if !exists || t.TimestampMs > cur.TimestampMs {
			tickCopy := *t
			result[t.Exchange] = &tickCopy
		}
	}
	return result, nil
}

var _ storage.PriceVolumeStore = (*PriceVolumeStore)(nil)

// SpreadStore is an in-memory implementation of storage.SpreadStore.
type SpreadStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SpreadTick
}

// NewSpreadStore creates a new in-memory spread tick store.
func NewSpreadStore() *SpreadStore {
	return &SpreadStore{data: make(map[string]*domain.SpreadTick)}
}

// Upsert inserts or replaces ticks by (token, exchange, timestamp_ms).
func (s *SpreadStore) Upsert(_ context.Context, ticks []*domain.SpreadTick) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range ticks {
		if t == nil || t.TokenSymbol == "" || t.Exchange == "" {
			return storage.ErrInvalidInput
		}
		tickCopy := *t
		s.data[tickKey(t.TokenSymbol, t.Exchange, t.TimestampMs)] = &tickCopy
	}
	return nil
}

// GetByTimeRange retrieves ticks for a token within [start, end] (inclusive, ms).
func (s *SpreadStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.SpreadTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SpreadTick
	for _, t := range s.data {
		if t.TokenSymbol == symbol && t.TimestampMs >= start && t.TimestampMs <= end {
			tickCopy := *t
			result = append(result, &tickCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})
	return result, nil
}

// GetLatestPerExchange retrieves, per exchange, the freshest tick at or before ts.
func (s *SpreadStore) GetLatestPerExchange(_ context.Context, symbol string, ts int64) (map[string]*domain.SpreadTick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.SpreadTick)
	for _, t := range s.data {
		if t.TokenSymbol != symbol || t.TimestampMs > ts {
			continue
		}
		cur, exists := result[t.Exchange]
		if !exists || t.TimestampMs > cur.TimestampMs {
			tickCopy := *t
			result[t.Exchange] = &tickCopy
		}
	}
	return result, nil
}

var _ storage.SpreadStore = (*SpreadStore)(nil)

// LiquidityStore is an in-memory implementation of storage.LiquidityStore.
type LiquidityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.LiquiditySnapshot
}

// NewLiquidityStore creates a new in-memory liquidity snapshot store.
func NewLiquidityStore() *LiquidityStore {
	return &LiquidityStore{data: make(map[string]*domain.LiquiditySnapshot)}
}

// Upsert inserts or replaces snapshots by (token, exchange, timestamp_ms).
func (s *LiquidityStore) Upsert(_ context.Context, snaps []*domain.LiquiditySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snaps {
		if snap == nil || snap.TokenSymbol == "" || snap.Exchange == "" {
			return storage.ErrInvalidInput
		}
		snapCopy := *snap
		s.data[tickKey(snap.TokenSymbol, snap.Exchange, snap.TimestampMs)] = &snapCopy
	}
	return nil
}

// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive, ms).
func (s *LiquidityStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]*domain.LiquiditySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LiquiditySnapshot
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

// GetLatestPerExchange retrieves, per exchange, the freshest snapshot at or before ts.
func (s *LiquidityStore) GetLatestPerExchange(_ context.Context, symbol string, ts int64) (map[string]*domain.LiquiditySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.LiquiditySnapshot)
	for _, snap := range s.data {
		if snap.TokenSymbol != symbol || snap.TimestampMs > ts {
			continue
		}
		cur, exists := result[snap.Exchange]
		if !exists || snap.TimestampMs > cur.TimestampMs {
			snapCopy := *snap
			result[snap.Exchange] = &snapCopy
		}
	}
	return result, nil
}

var _ storage.LiquidityStore = (*LiquidityStore)(nil)
