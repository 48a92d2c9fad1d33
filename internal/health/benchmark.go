package health

import (
	"context"

	"fantoken-intel/internal/numeric"
	"fantoken-intel/internal/storage"
)

// Trailing windows feeding the benchmark and volatility inputs.
const (
	benchmarkWindowMs  = int64(30 * 24 * 60 * 60 * 1000)
	volatilityWindowMs = int64(7 * 24 * 60 * 60 * 1000)

	// minBenchmarkSamples is the fewest buckets a 30-day window may hold
	// before the volume benchmark is considered meaningless.
	minBenchmarkSamples = 12
)

// volumeBenchmark returns the median TotalVolume24h over the trailing 30 days
// of buckets ending at ts. ok is false when the window holds too few samples
// to benchmark against.
func volumeBenchmark(ctx context.Context, buckets storage.BucketStore, symbol string, ts int64) (benchmark float64, ok bool, err error) {
	hist, err := buckets.GetByTimeRange(ctx, symbol, ts-benchmarkWindowMs, ts)
	if err != nil {
		return 0, false, err
	}
	if len(hist) < minBenchmarkSamples {
		return 0, false, nil
	}

	volumes := make([]float64, 0, len(hist))
	for _, b := range hist {
		volumes = append(volumes, b.TotalVolume24h)
	}
	med, err := numeric.Median(volumes)
	if err != nil {
		return 0, false, nil
	}
	return med, true, nil
}

// changes24h collects the non-nil 24h price changes of the trailing week of
// buckets ending at ts, the input series for the stability sub-score.
func changes24h(ctx context.Context, buckets storage.BucketStore, symbol string, ts int64) ([]float64, error) {
	hist, err := buckets.GetByTimeRange(ctx, symbol, ts-volatilityWindowMs, ts)
	if err != nil {
		return nil, err
	}
	changes := make([]float64, 0, len(hist))
	for _, b := range hist {
		if b.PriceChange24hPct != nil {
			changes = append(changes, *b.PriceChange24hPct)
		}
	}
	return changes, nil
}
