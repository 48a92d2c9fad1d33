package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// BucketStore implements storage.BucketStore using ClickHouse.
// token_metrics_buckets is a ReplacingMergeTree keyed by
// (token_symbol, timestamp_ms) versioned by inserted_at, so a recomputed
// bucket fully supersedes the previous row.
type BucketStore struct {
	conn *Conn
}

// NewBucketStore creates a new BucketStore.
func NewBucketStore(conn *Conn) *BucketStore {
	return &BucketStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BucketStore = (*BucketStore)(nil)

// Upsert inserts or replaces a bucket by (token, timestamp_ms).
func (s *BucketStore) Upsert(ctx context.Context, b *domain.AggregatedBucket) error {
	if b == nil || b.TokenSymbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_metrics_buckets (
			token_symbol, timestamp_ms, vwap_price,
			price_change_1h_pct, price_change_24h_pct, price_change_7d_pct,
			total_volume_24h, total_trade_count_24h, total_liquidity_1pct, avg_spread_bps,
			total_holders, holder_change_24h, market_cap, active_exchanges
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var totalHolders, holderChange *int64
	if b.TotalHolders != nil {
		v := int64(*b.TotalHolders)
		totalHolders = &v
	}
	if b.HolderChange24h != nil {
		v := int64(*b.HolderChange24h)
		holderChange = &v
	}

	err := s.conn.Exec(ctx, query,
		b.TokenSymbol, b.TimestampMs, b.VWAPPrice,
		b.PriceChange1hPct, b.PriceChange24hPct, b.PriceChange7dPct,
		b.TotalVolume24h, b.TotalTradeCount24h, b.TotalLiquidity1Pct, b.AvgSpreadBps,
		totalHolders, holderChange, b.MarketCap, int32(b.ActiveExchanges),
	)
	if err != nil {
		return fmt.Errorf("upsert bucket: %w", err)
	}
	return nil
}

// GetLatest retrieves the freshest bucket for a token.
func (s *BucketStore) GetLatest(ctx context.Context, symbol string) (*domain.AggregatedBucket, error) {
	query := bucketSelect + `
		WHERE token_symbol = ?
		ORDER BY timestamp_ms DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query latest bucket: %w", err)
	}
	defer rows.Close()

	return scanOneBucket(rows)
}

// GetAt retrieves the bucket closest at-or-before ts.
func (s *BucketStore) GetAt(ctx context.Context, symbol string, ts int64) (*domain.AggregatedBucket, error) {
	query := bucketSelect + `
		WHERE token_symbol = ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, symbol, ts)
	if err != nil {
		return nil, fmt.Errorf("query bucket at: %w", err)
	}
	defer rows.Close()

	return scanOneBucket(rows)
}

// GetByTimeRange retrieves buckets for a token within [start, end] (inclusive, ms).
func (s *BucketStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]*domain.AggregatedBucket, error) {
	query := bucketSelect + `
		WHERE token_symbol = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("query buckets by time range: %w", err)
	}
	defer rows.Close()

	return scanBuckets(rows)
}

const bucketSelect = `
	SELECT token_symbol, timestamp_ms, vwap_price,
	       price_change_1h_pct, price_change_24h_pct, price_change_7d_pct,
	       total_volume_24h, total_trade_count_24h, total_liquidity_1pct, avg_spread_bps,
	       total_holders, holder_change_24h, market_cap, active_exchanges
	FROM token_metrics_buckets FINAL`

func scanBucket(rows driver.Rows) (*domain.AggregatedBucket, error) {
	var b domain.AggregatedBucket
	var totalHolders, holderChange *int64
	var activeExchanges int32
	err := rows.Scan(
		&b.TokenSymbol, &b.TimestampMs, &b.VWAPPrice,
		&b.PriceChange1hPct, &b.PriceChange24hPct, &b.PriceChange7dPct,
		&b.TotalVolume24h, &b.TotalTradeCount24h, &b.TotalLiquidity1Pct, &b.AvgSpreadBps,
		&totalHolders, &holderChange, &b.MarketCap, &activeExchanges,
	)
	if err != nil {
		return nil, err
	}
	if totalHolders != nil {
		v := int(*totalHolders)
		b.TotalHolders = &v
	}
	if holderChange != nil {
		v := int(*holderChange)
		b.HolderChange24h = &v
	}
	b.ActiveExchanges = int(activeExchanges)
	return &b, nil
}

func scanOneBucket(rows driver.Rows) (*domain.AggregatedBucket, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate buckets: %w", err)
		}
		return nil, storage.ErrNotFound
	}
	b, err := scanBucket(rows)
	if err != nil {
		return nil, fmt.Errorf("scan bucket: %w", err)
	}
	return b, nil
}

func scanBuckets(rows driver.Rows) ([]*domain.AggregatedBucket, error) {
	var result []*domain.AggregatedBucket
	for rows.Next() {
		b, err := scanBucket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate buckets: %w", err)
	}
	return result, nil
}
