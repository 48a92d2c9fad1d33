package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// PriceVolumeStore implements storage.PriceVolumeStore using ClickHouse.
// Rows land in a ReplacingMergeTree keyed by (token, exchange, timestamp_ms);
// re-upserts of the same key collapse to the last written row, so reads
// query with FINAL.
type PriceVolumeStore struct {
	conn *Conn
}

// NewPriceVolumeStore creates a new PriceVolumeStore.
func NewPriceVolumeStore(conn *Conn) *PriceVolumeStore {
	return &PriceVolumeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceVolumeStore = (*PriceVolumeStore)(nil)

// Upsert inserts or replaces ticks by (token, exchange, timestamp_ms).
func (s *PriceVolumeStore) Upsert(ctx context.Context, ticks []*domain.PriceVolumeTick) error {
	if len(ticks) == 0 {
		return nil
	}
	for _, t := range ticks {
		if t == nil || t.TokenSymbol == "" || t.Exchange == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_volume_ticks (
			token_symbol, exchange, timestamp_ms, price,
			change_1h_pct, change_24h_pct, volume_24h, trade_count_24h, high_24h, low_24h
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range ticks {
		err = batch.Append(
			t.TokenSymbol, t.Exchange, t.TimestampMs, t.Price,
			t.Change1hPct, t.Change24hPct, t.Volume24h, t.TradeCount24h, t.High24h, t.Low24h,
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
func (s *PriceVolumeStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.PriceVolumeTick, error) {
	query := `
		SELECT token_symbol, exchange, timestamp_ms, price,
		       change_1h_pct, change_24h_pct, volume_24h, trade_count_24h, high_24h, low_24h
		FROM price_volume_ticks FINAL
		WHERE token_symbol = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC, exchange ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("query ticks by time range: %w", err)
	}
	defer rows.Close()

	return scanPriceVolumeTicks(rows)
}

// GetLatestPerExchange retrieves, per exchange, the freshest tick at or before ts.
func (s *PriceVolumeStore) GetLatestPerExchange(ctx context.Context, symbol string, ts int64) (map[string]*domain.PriceVolumeTick, error) {
	query := `
		SELECT token_symbol, exchange, timestamp_ms, price,
		       change_1h_pct, change_24h_pct, volume_24h, trade_count_24h, high_24h, low_24h
		FROM price_volume_ticks FINAL
		WHERE token_symbol = ? AND timestamp_ms <= ?
		ORDER BY exchange ASC, timestamp_ms DESC
		LIMIT 1 BY exchange
	`

	rows, err := s.conn.Query(ctx, query, symbol, ts)
	if err != nil {
		return nil, fmt.Errorf("query latest ticks per exchange: %w", err)
	}
	defer rows.Close()

	ticks, err := scanPriceVolumeTicks(rows)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*domain.PriceVolumeTick, len(ticks))
	for _, t := range ticks {
		result[t.Exchange] = t
	}
	return result, nil
}

func scanPriceVolumeTicks(rows driver.Rows) ([]*domain.PriceVolumeTick, error) {
	var result []*domain.PriceVolumeTick
	for rows.Next() {
		var t domain.PriceVolumeTick
		if err := rows.Scan(
			&t.TokenSymbol, &t.Exchange, &t.TimestampMs, &t.Price,
			&t.Change1hPct, &t.Change24hPct, &t.Volume24h, &t.TradeCount24h, &t.High24h, &t.Low24h,
		); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticks: %w", err)
	}
	return result, nil
}
