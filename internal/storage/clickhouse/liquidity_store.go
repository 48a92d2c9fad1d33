package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// LiquidityStore implements storage.LiquidityStore using ClickHouse.
type LiquidityStore struct {
	conn *Conn
}

// NewLiquidityStore creates a new LiquidityStore.
func NewLiquidityStore(conn *Conn) *LiquidityStore {
	return &LiquidityStore{conn: conn}
}

// Compile-time interface check.
var _ storage.LiquidityStore = (*LiquidityStore)(nil)

// Upsert inserts or replaces snapshots by (token, exchange, timestamp_ms).
func (s *LiquidityStore) Upsert(ctx context.Context, snaps []*domain.LiquiditySnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	for _, snap := range snaps {
		if snap == nil || snap.TokenSymbol == "" || snap.Exchange == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO liquidity_snapshots (
			token_symbol, exchange, timestamp_ms,
			bid_depth_1pct, ask_depth_1pct, bid_depth_2pct, ask_depth_2pct,
			bid_depth_5pct, ask_depth_5pct, book_imbalance,
			slippage_buy_1k, slippage_buy_10k, slippage_buy_50k,
			slippage_sell_1k, slippage_sell_10k, slippage_sell_50k
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snaps {
		err = batch.Append(
			snap.TokenSymbol, snap.Exchange, snap.TimestampMs,
			snap.BidDepth1Pct, snap.AskDepth1Pct, snap.BidDepth2Pct, snap.AskDepth2Pct,
			snap.BidDepth5Pct, snap.AskDepth5Pct, snap.BookImbalance,
			snap.SlippageBuy1k, snap.SlippageBuy10k, snap.SlippageBuy50k,
			snap.SlippageSell1k, snap.SlippageSell10k, snap.SlippageSell50k,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive, ms).
func (s *LiquidityStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.LiquiditySnapshot, error) {
	query := liquiditySelect + `
		WHERE token_symbol = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, exchange ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("query liquidity by time range: %w", err)
	}
	defer rows.Close()

	return scanLiquiditySnapshots(rows)
}

// GetLatestPerExchange retrieves, per exchange, the freshest snapshot at or before ts.
func (s *LiquidityStore) GetLatestPerExchange(ctx context.Context, symbol string, ts int64) (map[string]*domain.LiquiditySnapshot, error) {
	query := liquiditySelect + `
		WHERE token_symbol = ? AND timestamp_ms <= ?
		ORDER BY exchange ASC, timestamp_ms DESC
		LIMIT 1 BY exchange
	`

	rows, err := s.conn.Query(ctx, query, symbol, ts)
	if err != nil {
		return nil, fmt.Errorf("query latest liquidity per exchange: %w", err)
	}
	defer rows.Close()

	snaps, err := scanLiquiditySnapshots(rows)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*domain.LiquiditySnapshot, len(snaps))
	for _, snap := range snaps {
		result[snap.Exchange] = snap
	}
	return result, nil
}

const liquiditySelect = `
	SELECT token_symbol, exchange, timestamp_ms,
	       bid_depth_1pct, ask_depth_1pct, bid_depth_2pct, ask_depth_2pct,
	       bid_depth_5pct, ask_depth_5pct, book_imbalance,
	       slippage_buy_1k, slippage_buy_10k, slippage_buy_50k,
	       slippage_sell_1k, slippage_sell_10k, slippage_sell_50k
	FROM liquidity_snapshots FINAL`

func scanLiquiditySnapshots(rows driver.Rows) ([]*domain.LiquiditySnapshot, error) {
	var result []*domain.LiquiditySnapshot
	for rows.Next() {
		var snap domain.LiquiditySnapshot
		if err := rows.Scan(
			&snap.TokenSymbol, &snap.Exchange, &snap.TimestampMs,
			&snap.BidDepth1Pct, &snap.AskDepth1Pct, &snap.BidDepth2Pct, &snap.AskDepth2Pct,
			&snap.BidDepth5Pct, &snap.AskDepth5Pct, &snap.BookImbalance,
			&snap.SlippageBuy1k, &snap.SlippageBuy10k, &snap.SlippageBuy50k,
			&snap.SlippageSell1k, &snap.SlippageSell10k, &snap.SlippageSell50k,
		); err != nil {
			return nil, fmt.Errorf("scan liquidity snapshot: %w", err)
		}
		result = append(result, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liquidity snapshots: %w", err)
	}
	return result, nil
}
