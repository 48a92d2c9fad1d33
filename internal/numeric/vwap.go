// Package numeric provides the shared numeric primitives used by the
// aggregator, scorer and correlation engine: VWAP, Gini coefficient,
// basis-point spread, slippage estimation and basic statistics.
package numeric

import "errors"

// ErrNoData is returned when a computation has no input points.
var ErrNoData = errors.New("no data points")

// VWAP computes the volume-weighted average price across venues.
// When total volume is zero it falls back to the simple mean of prices.
// Returns ErrNoData for empty input.
func VWAP(prices, volumes []float64) (float64, error) {
	if len(prices) == 0 || len(prices) != len(volumes) {
		return 0, ErrNoData
	}

	var weighted, totalVolume float64
	for i, p := range prices {
		weighted += p * volumes[i]
		totalVolume += volumes[i]
	}

	if totalVolume > 0 {
		return weighted / totalVolume, nil
	}

	// Zero traded volume: fall back to simple mean.
	var sum float64
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices)), nil
}

// WeightedMean computes a weighted mean, skipping entries with non-positive
// weight from both numerator and denominator. If no entry has positive
// weight, it falls back to the simple mean of all values.
// Returns ErrNoData for empty input.
func WeightedMean(values, weights []float64) (float64, error) {
	if len(values) == 0 || len(values) != len(weights) {
		return 0, ErrNoData
	}

	var weighted, totalWeight float64
	for i, v := range values {
		if weights[i] <= 0 {
			continue
		}
		weighted += v * weights[i]
		totalWeight += weights[i]
	}

	if totalWeight > 0 {
		return weighted / totalWeight, nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}
