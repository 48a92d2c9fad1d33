package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// SpreadStore implements storage.SpreadStore using ClickHouse.
type SpreadStore struct {
	conn *Conn
}

// NewSpreadStore creates a new SpreadStore.
func NewSpreadStore(conn *Conn) *SpreadStore {
	return &SpreadStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SpreadStore = (*SpreadStore)(nil)

// Upsert inserts or replaces ticks by (token, exchange, timestamp_ms).
func (s *SpreadStore) Upsert(ctx context.Context, ticks []*domain.SpreadTick) error {
	if len(ticks) == 0 {
		return nil
	}
	for _, t := range ticks {
		if t == nil || t.TokenSymbol == "" || t.Exchange == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO spread_ticks (
			token_symbol, exchange, timestamp_ms, best_bid, best_ask, mid_price, spread_bps
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range ticks {
		err = batch.Append(
			t.TokenSymbol, t.Exchange, t.TimestampMs,
			t.BestBid, t.BestAsk, t.MidPrice, t.SpreadBps,
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

// GetByTimeRange retrieves ticks for a token within [start, end] (inclusive, ms).
func (s *SpreadStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.SpreadTick, error) {
	query := `
		SELECT token_symbol, exchange, timestamp_ms, best_bid, best_ask, mid_price, spread_bps
		FROM spread_ticks FINAL
		WHERE token_symbol = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, exchange ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("query spreads by time range: %w", err)
	}
	defer rows.Close()

	return scanSpreadTicks(rows)
}

// GetLatestPerExchange retrieves, per exchange, the freshest tick at or before ts.
func (s *SpreadStore) GetLatestPerExchange(ctx context.Context, symbol string, ts int64) (map[string]*domain.SpreadTick, error) {
	query := `
		SELECT token_symbol, exchange, timestamp_ms, best_bid, best_ask, mid_price, spread_bps
		FROM spread_ticks FINAL
		WHERE token_symbol = ? AND timestamp_ms <= ?
		ORDER BY exchange ASC, timestamp_ms DESC
		LIMIT 1 BY exchange
	`

	rows, err := s.conn.Query(ctx, query, symbol, ts)
	if err != nil {
		return nil, fmt.Errorf("query latest spreads per exchange: %w", err)
	}
	defer rows.Close()

	ticks, err := scanSpreadTicks(rows)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*domain.SpreadTick, len(ticks))
	for _, t := range ticks {
		result[t.Exchange] = t
	}
	return result, nil
}

func scanSpreadTicks(rows driver.Rows) ([]*domain.SpreadTick, error) {
	var result []*domain.SpreadTick
	for rows.Next() {
		var t domain.SpreadTick
		if err := rows.Scan(
			&t.TokenSymbol, &t.Exchange, &t.TimestampMs,
			&t.BestBid, &t.BestAsk, &t.MidPrice, &t.SpreadBps,
		); err != nil {
			return nil, fmt.Errorf("scan spread tick: %w", err)
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spread ticks: %w", err)
	}
	return result, nil
}
