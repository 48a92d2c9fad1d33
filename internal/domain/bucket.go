package domain

// AggregatedBucket is one cross-exchange snapshot for a token at a point in
// time, produced exclusively by the aggregator. Recomputed buckets for the
// same (TokenSymbol, TimestampMs) supersede prior ones via natural-key
// upsert; a bucket is never partially updated.
//
// Absence of a bucket means "no exchange reported" for that window, which is
// distinct from a bucket with zero-valued metrics.
type AggregatedBucket struct {
	TokenSymbol string
	TimestampMs int64 // window end, truncated to the minute

	VWAPPrice float64

	// Price changes versus the bucket closest at-or-before the reference
	// horizon; nil when no reference bucket exists yet.
	PriceChange1hPct  *float64
	PriceChange24hPct *float64
	PriceChange7dPct  *float64

	TotalVolume24h     float64
	TotalTradeCount24h int64
	TotalLiquidity1Pct float64  // sum of bid+ask depth at the 1% band
	AvgSpreadBps       *float64 // volume-weighted; nil when no venue reported spread

	// Carried through from the freshest holder snapshot at or before
	// TimestampMs; nil when no snapshot exists.
	TotalHolders    *int
	HolderChange24h *int

	MarketCap *float64 // VWAP x circulating supply; nil when supply unknown

	ActiveExchanges int // distinct venues contributing any observation
}
