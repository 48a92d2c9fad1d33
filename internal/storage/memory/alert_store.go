package memory

import (
	"context"
	"sort"
	"sync"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore.
type AlertStore struct {
	mu     sync.RWMutex
	rules  map[string]*domain.AlertRule // keyed by rule_id
	alerts map[string]*domain.Alert     // keyed by alert_id
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{
		rules:  make(map[string]*domain.AlertRule),
		alerts: make(map[string]*domain.Alert),
	}
}

// UpsertRule inserts or replaces a rule by rule_id.
func (s *AlertStore) UpsertRule(_ context.Context, r *domain.AlertRule) error {
	if r == nil || r.RuleID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ruleCopy := *r
	s.rules[r.RuleID] = &ruleCopy
	return nil
}

// GetActiveRules retrieves all active rules.
func (s *AlertStore) GetActiveRules(_ context.Context) ([]*domain.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AlertRule
	for _, r := range s.rules {
		if r.IsActive {
			ruleCopy := *r
			result = append(result, &ruleCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RuleID < result[j].RuleID
	})
	return result, nil
}

// InsertAlert adds a fired alert. Returns ErrDuplicateKey if alert_id exists.
func (s *AlertStore) InsertAlert(_ context.Context, a *domain.Alert) error {
	if a == nil || a.AlertID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.alerts[a.AlertID]; exists {
		return storage.ErrDuplicateKey
	}
	alertCopy := *a
	s.alerts[a.AlertID] = &alertCopy
	return nil
}

// GetLastFired retrieves the timestamp (ms) of the most recent alert for (rule, token).
func (s *AlertStore) GetLastFired(_ context.Context, ruleID, symbol string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best int64 = -1
	for _, a := range s.alerts {
		if a.RuleID == ruleID && a.TokenSymbol == symbol && a.TimestampMs > best {
			best = a.TimestampMs
		}
	}
	if best < 0 {
		return 0, storage.ErrNotFound
	}
	return best, nil
}

// GetByTimeRange retrieves alerts fired within [start, end] (inclusive, ms),
// ordered by timestamp DESC.
func (s *AlertStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Alert
	for _, a := range s.alerts {
		if a.TimestampMs >= start && a.TimestampMs <= end {
			alertCopy := *a
			result = append(result, &alertCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs > result[j].TimestampMs
	})
	return result, nil
}

var _ storage.AlertStore = (*AlertStore)(nil)
