// Package memory provides in-memory store implementations used by unit tests
// and single-process deployments without external databases.
package memory

import (
	"context"
	"sort"
	"sync"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Token // keyed by symbol
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{data: make(map[string]*domain.Token)}
}

// Upsert inserts or replaces a token by symbol.
func (s *TokenStore) Upsert(_ context.Context, t *domain.Token) error {
	if t == nil || t.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	tokenCopy := *t
	s.data[t.Symbol] = &tokenCopy
	return nil
}

// GetBySymbol retrieves a token. Returns ErrNotFound if not exists.
func (s *TokenStore) GetBySymbol(_ context.Context, symbol string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[symbol]
	if !exists {
		return nil, storage.ErrNotFound
	}
	tokenCopy := *t
	return &tokenCopy, nil
}

// GetActive retrieves all active tokens, ordered by symbol ASC.
func (s *TokenStore) GetActive(_ context.Context) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Token
	for _, t := range s.data {
		if t.IsActive {
			tokenCopy := *t
			result = append(result, &tokenCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result, nil
}

// GetAll retrieves every token regardless of active flag.
func (s *TokenStore) GetAll(_ context.Context) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Token
	for _, t := range s.data {
		tokenCopy := *t
		result = append(result, &tokenCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result, nil
}

// SetActive flips a token's active flag. Returns ErrNotFound if not exists.
func (s *TokenStore) SetActive(_ context.Context, symbol string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[symbol]
	if !exists {
		return storage.ErrNotFound
	}
	t.IsActive = active
	return nil
}

var _ storage.TokenStore = (*TokenStore)(nil)

// ExchangeStore is an in-memory implementation of storage.ExchangeStore.
type ExchangeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Exchange // keyed by code
}

// NewExchangeStore creates a new in-memory exchange store.
func NewExchangeStore() *ExchangeStore {
	return &ExchangeStore{data: make(map[string]*domain.Exchange)}
}

// Upsert inserts or replaces an exchange by code.
func (s *ExchangeStore) Upsert(_ context.Context, e *domain.Exchange) error {
	if e == nil || e.Code == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exchangeCopy := *e
	s.data[e.Code] = &exchangeCopy
	return nil
}

// GetByCode retrieves an exchange. Returns ErrNotFound if not exists.
func (s *ExchangeStore) GetByCode(_ context.Context, code string) (*domain.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[code]
	if !exists {
		return nil, storage.ErrNotFound
	}
	exchangeCopy := *e
	return &exchangeCopy, nil
}

// GetActive retrieves all active exchanges, ordered by priority ASC.
func (s *ExchangeStore) GetActive(_ context.Context) ([]*domain.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Exchange
	for _, e := range s.data {
		if e.IsActive {
			exchangeCopy := *e
			result = append(result, &exchangeCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].Code < result[j].Code
	})
	return result, nil
}

var _ storage.ExchangeStore = (*ExchangeStore)(nil)
