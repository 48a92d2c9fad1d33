package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// Upsert inserts or replaces a token by symbol.
func (s *TokenStore) Upsert(ctx context.Context, t *domain.Token) error {
	if t == nil || t.Symbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO fan_tokens (
			symbol, name, team, league, country, price_feed_id, circulating_supply, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			team = EXCLUDED.team,
			league = EXCLUDED.league,
			country = EXCLUDED.country,
			price_feed_id = EXCLUDED.price_feed_id,
			circulating_supply = EXCLUDED.circulating_supply,
			is_active = EXCLUDED.is_active
	`

	_, err := s.pool.Exec(ctx, query,
		t.Symbol, t.Name, t.Team, t.League, t.Country,
		t.PriceFeedID, t.CirculatingSupply, t.IsActive,
	)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// GetBySymbol retrieves a token. Returns ErrNotFound if not exists.
func (s *TokenStore) GetBySymbol(ctx context.Context, symbol string) (*domain.Token, error) {
	query := tokenSelect + ` WHERE symbol = $1`

	row := s.pool.QueryRow(ctx, query, symbol)
	t, err := scanToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by symbol: %w", err)
	}
	return t, nil
}

// GetActive retrieves all active tokens, ordered by symbol ASC.
func (s *TokenStore) GetActive(ctx context.Context) ([]*domain.Token, error) {
	query := tokenSelect + ` WHERE is_active ORDER BY symbol ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active tokens: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// GetAll retrieves every token regardless of active flag.
func (s *TokenStore) GetAll(ctx context.Context) ([]*domain.Token, error) {
	query := tokenSelect + ` ORDER BY symbol ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all tokens: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// SetActive flips a token's active flag. Returns ErrNotFound if not exists.
func (s *TokenStore) SetActive(ctx context.Context, symbol string, active bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE fan_tokens SET is_active = $2 WHERE symbol = $1`, symbol, active)
	if err != nil {
		return fmt.Errorf("set token active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const tokenSelect = `
	SELECT symbol, name, team, league, country, price_feed_id, circulating_supply, is_active, created_at
	FROM fan_tokens`

func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	err := row.Scan(
		&t.Symbol, &t.Name, &t.Team, &t.League, &t.Country,
		&t.PriceFeedID, &t.CirculatingSupply, &t.IsActive, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTokens(rows pgx.Rows) ([]*domain.Token, error) {
	var result []*domain.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return result, nil
}
