package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// UpsertRule inserts or replaces a rule by rule_id.
func (s *AlertStore) UpsertRule(ctx context.Context, r *domain.AlertRule) error {
	if r == nil || r.RuleID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alert_rules (
			rule_id, name, metric, condition, threshold, severity, cooldown_ms, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (rule_id) DO UPDATE SET
			name = EXCLUDED.name,
			metric = EXCLUDED.metric,
			condition = EXCLUDED.condition,
			threshold = EXCLUDED.threshold,
			severity = EXCLUDED.severity,
			cooldown_ms = EXCLUDED.cooldown_ms,
			is_active = EXCLUDED.is_active
	`

	_, err := s.pool.Exec(ctx, query,
		r.RuleID, r.Name, string(r.Metric), string(r.Condition),
		r.Threshold, string(r.Severity), r.CooldownMs, r.IsActive,
	)
	if err != nil {
		return fmt.Errorf("upsert alert rule: %w", err)
	}
	return nil
}

// GetActiveRules retrieves all active rules.
func (s *AlertStore) GetActiveRules(ctx context.Context) ([]*domain.AlertRule, error) {
	query := `
		SELECT rule_id, name, metric, condition, threshold, severity, cooldown_ms, is_active
		FROM alert_rules
		WHERE is_active
		ORDER BY rule_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active alert rules: %w", err)
	}
	defer rows.Close()

	var result []*domain.AlertRule
	for rows.Next() {
		r, err := scanAlertRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert rule: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rules: %w", err)
	}
	return result, nil
}

// InsertAlert adds a fired alert. Returns ErrDuplicateKey if alert_id exists.
func (s *AlertStore) InsertAlert(ctx context.Context, a *domain.Alert) error {
	if a == nil || a.AlertID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alerts (
			alert_id, rule_id, token_symbol, timestamp_ms, metric, value, message, severity
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		a.AlertID, a.RuleID, a.TokenSymbol, a.TimestampMs,
		string(a.Metric), a.Value, a.Message, string(a.Severity),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// GetLastFired retrieves the timestamp (ms) of the most recent alert for (rule, token).
func (s *AlertStore) GetLastFired(ctx context.Context, ruleID, symbol string) (int64, error) {
	query := `
		SELECT timestamp_ms
		FROM alerts
		WHERE rule_id = $1 AND token_symbol = $2
		ORDER BY timestamp_ms DESC
		LIMIT 1
	`

	var ts int64
	err := s.pool.QueryRow(ctx, query, ruleID, symbol).Scan(&ts)
	if err != nil {
		if isNotFoundError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("get last fired alert: %w", err)
	}
	return ts, nil
}

// GetByTimeRange retrieves alerts fired within [start, end] (inclusive, ms),
// ordered by timestamp DESC.
func (s *AlertStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Alert, error) {
	query := `
		SELECT alert_id, rule_id, token_symbol, timestamp_ms, metric, value, message, severity
		FROM alerts
		WHERE timestamp_ms >= $1 AND timestamp_ms <= $2
		ORDER BY timestamp_ms DESC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get alerts by time range: %w", err)
	}
	defer rows.Close()

	var result []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		var metric, severity string
		if err := rows.Scan(
			&a.AlertID, &a.RuleID, &a.TokenSymbol, &a.TimestampMs,
			&metric, &a.Value, &a.Message, &severity,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Metric = domain.RuleMetric(metric)
		a.Severity = domain.Severity(severity)
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return result, nil
}

func scanAlertRule(row pgx.Row) (*domain.AlertRule, error) {
	var r domain.AlertRule
	var metric, condition, severity string
	err := row.Scan(&r.RuleID, &r.Name, &metric, &condition, &r.Threshold, &severity, &r.CooldownMs, &r.IsActive)
	if err != nil {
		return nil, err
	}
	r.Metric = domain.RuleMetric(metric)
	r.Condition = domain.Condition(condition)
	r.Severity = domain.Severity(severity)
	return &r, nil
}
