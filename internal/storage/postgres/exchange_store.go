package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// ExchangeStore implements storage.ExchangeStore using PostgreSQL.
type ExchangeStore struct {
	pool *Pool
}

// NewExchangeStore creates a new ExchangeStore.
func NewExchangeStore(pool *Pool) *ExchangeStore {
	return &ExchangeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ExchangeStore = (*ExchangeStore)(nil)

// Upsert inserts or replaces an exchange by code.
func (s *ExchangeStore) Upsert(ctx context.Context, e *domain.Exchange) error {
	if e == nil || e.Code == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO exchanges (code, name, feed_id, priority, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			feed_id = EXCLUDED.feed_id,
			priority = EXCLUDED.priority,
			is_active = EXCLUDED.is_active
	`

	_, err := s.pool.Exec(ctx, query, e.Code, e.Name, e.FeedID, e.Priority, e.IsActive)
	if err != nil {
		return fmt.Errorf("upsert exchange: %w", err)
	}
	return nil
}

// GetByCode retrieves an exchange. Returns ErrNotFound if not exists.
func (s *ExchangeStore) GetByCode(ctx context.Context, code string) (*domain.Exchange, error) {
	query := `
		SELECT code, name, feed_id, priority, is_active
		FROM exchanges
		WHERE code = $1
	`

	row := s.pool.QueryRow(ctx, query, code)
	e, err := scanExchange(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get exchange by code: %w", err)
	}
	return e, nil
}

// GetActive retrieves all active exchanges, ordered by priority ASC.
func (s *ExchangeStore) GetActive(ctx context.Context) ([]*domain.Exchange, error) {
	query := `
		SELECT code, name, feed_id, priority, is_active
		FROM exchanges
		WHERE is_active
		ORDER BY priority ASC, code ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active exchanges: %w", err)
	}
	defer rows.Close()

	var result []*domain.Exchange
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exchanges: %w", err)
	}
	return result, nil
}

func scanExchange(row pgx.Row) (*domain.Exchange, error) {
	var e domain.Exchange
	err := row.Scan(&e.Code, &e.Name, &e.FeedID, &e.Priority, &e.IsActive)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
