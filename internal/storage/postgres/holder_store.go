package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// HolderStore implements storage.HolderStore using PostgreSQL.
type HolderStore struct {
	pool *Pool
}

// NewHolderStore creates a new HolderStore.
func NewHolderStore(pool *Pool) *HolderStore {
	return &HolderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HolderStore = (*HolderStore)(nil)

// Upsert inserts or replaces a snapshot by (token, timestamp_ms).
func (s *HolderStore) Upsert(ctx context.Context, snap *domain.HolderSnapshot) error {
	if snap == nil || snap.TokenSymbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO holder_snapshots (
			token_symbol, timestamp_ms, total_holders, holder_change_24h, holder_change_7d,
			top10_pct, top50_pct, top100_pct,
			wallets_micro, wallets_small, wallets_medium, wallets_large, wallets_whale, gini
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (token_symbol, timestamp_ms) DO UPDATE SET
			total_holders = EXCLUDED.total_holders,
			holder_change_24h = EXCLUDED.holder_change_24h,
			holder_change_7d = EXCLUDED.holder_change_7d,
			top10_pct = EXCLUDED.top10_pct,
			top50_pct = EXCLUDED.top50_pct,
			top100_pct = EXCLUDED.top100_pct,
			wallets_micro = EXCLUDED.wallets_micro,
			wallets_small = EXCLUDED.wallets_small,
			wallets_medium = EXCLUDED.wallets_medium,
			wallets_large = EXCLUDED.wallets_large,
			wallets_whale = EXCLUDED.wallets_whale,
			gini = EXCLUDED.gini
	`

	_, err := s.pool.Exec(ctx, query,
		snap.TokenSymbol, snap.TimestampMs,
		snap.TotalHolders, snap.HolderChange24h, snap.HolderChange7d,
		snap.Top10Pct, snap.Top50Pct, snap.Top100Pct,
		snap.WalletsMicro, snap.WalletsSmall, snap.WalletsMedium,
		snap.WalletsLarge, snap.WalletsWhale, snap.Gini,
	)
	if err != nil {
		return fmt.Errorf("upsert holder snapshot: %w", err)
	}
	return nil
}

// GetLatest retrieves the freshest snapshot at or before ts.
func (s *HolderStore) GetLatest(ctx context.Context, symbol string, ts int64) (*domain.HolderSnapshot, error) {
	query := holderSelect + `
		WHERE token_symbol = $1 AND timestamp_ms <= $2
		ORDER BY timestamp_ms DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, symbol, ts)
	snap, err := scanHolderSnapshot(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest holder snapshot: %w", err)
	}
	return snap, nil
}

// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive, ms).
func (s *HolderStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.HolderSnapshot, error) {
	query := holderSelect + `
		WHERE token_symbol = $1 AND timestamp_ms >= $2 AND timestamp_ms <= $3
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("get holder snapshots by time range: %w", err)
	}
	defer rows.Close()

	var result []*domain.HolderSnapshot
	for rows.Next() {
		snap, err := scanHolderSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan holder snapshot: %w", err)
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holder snapshots: %w", err)
	}
	return result, nil
}

const holderSelect = `
	SELECT token_symbol, timestamp_ms, total_holders, holder_change_24h, holder_change_7d,
	       top10_pct, top50_pct, top100_pct,
	       wallets_micro, wallets_small, wallets_medium, wallets_large, wallets_whale, gini
	FROM holder_snapshots`

func scanHolderSnapshot(row pgx.Row) (*domain.HolderSnapshot, error) {
	var snap domain.HolderSnapshot
	err := row.Scan(
		&snap.TokenSymbol, &snap.TimestampMs,
		&snap.TotalHolders, &snap.HolderChange24h, &snap.HolderChange7d,
		&snap.Top10Pct, &snap.Top50Pct, &snap.Top100Pct,
		&snap.WalletsMicro, &snap.WalletsSmall, &snap.WalletsMedium,
		&snap.WalletsLarge, &snap.WalletsWhale, &snap.Gini,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
