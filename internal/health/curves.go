package health

import (
	"math"

	"fantoken-intel/internal/numeric"
)

// Pillar weights. They sum to 1 so the overall score stays in [0, 100].
const (
	weightVolume    = 0.25
	weightLiquidity = 0.25
	weightSpread    = 0.20
	weightHolders   = 0.15
	weightStability = 0.15
)

// spreadCurve maps the volume-weighted spread (bps) to [0, 100].
var spreadCurve = []numeric.CurvePoint{
	{X: 20, Y: 100},
	{X: 50, Y: 75},
	{X: 100, Y: 50},
	{X: 500, Y: 0},
}

// stabilityCurve maps the stddev of 24h price changes (pct points) to [0, 100].
var stabilityCurve = []numeric.CurvePoint{
	{X: 0, Y: 100},
	{X: 10, Y: 70},
	{X: 20, Y: 40},
	{X: 40, Y: 10},
	{X: 50, Y: 0},
}

// holderMomentumCurve maps the 24h holder delta to the momentum half of the
// holder sub-score. Losing holders always costs points.
var holderMomentumCurve = []numeric.CurvePoint{
	{X: -50, Y: 0},
	{X: 0, Y: 20},
	{X: 100, Y: 50},
}

// volumeScore benchmarks 24h volume against the token's own trailing median.
// A token trading at its benchmark scores 100; at half, 50.
func volumeScore(volume, benchmark float64) int {
	if benchmark <= 0 {
		if volume > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(numeric.Clamp(100*volume/benchmark, 0, 100)))
}

// liquidityScore rates 1% depth relative to 24h volume. A depth-to-volume
// ratio of 0.25 or better scores 100.
func liquidityScore(liquidity1Pct, volume24h float64) int {
	if volume24h <= 0 {
		if liquidity1Pct > 0 {
			return 100
		}
		return 0
	}
	r := liquidity1Pct / volume24h
	return int(math.Round(numeric.Clamp(100*r/0.25, 0, 100)))
}

// spreadScore rates the cross-exchange average spread. A nil spread (unknown,
// not wide) scores neutral; the scorer marks the pillar stale.
func spreadScore(avgSpreadBps *float64) int {
	if avgSpreadBps == nil {
		return 50
	}
	return int(math.Round(numeric.Interpolate(spreadCurve, *avgSpreadBps)))
}

// holderScore combines community size (log scale, saturating at 100k holders)
// with 24h momentum.
func holderScore(totalHolders, change24h int) int {
	var size float64
	if totalHolders > 1 {
		size = numeric.Clamp(10*math.Log10(float64(totalHolders)), 0, 50)
	}
	momentum := numeric.Interpolate(holderMomentumCurve, float64(change24h))
	return int(math.Round(size + momentum))
}

// stabilityScore rates price volatility, measured as the sample stddev of 24h
// price changes over the trailing week. Direction does not matter: a steady
// climb and a steady slide are equally stable.
func stabilityScore(changes24hPct []float64) int {
	sd, err := numeric.StdDev(changes24hPct)
	if err != nil {
		// Not enough history to measure volatility either way.
		return 50
	}
	return int(math.Round(numeric.Interpolate(stabilityCurve, sd)))
}

// overallScore folds the five sub-scores into the weighted composite.
func overallScore(volume, liquidity, spread, holders, stability int) int {
	sum := weightVolume*float64(volume) +
		weightLiquidity*float64(liquidity) +
		weightSpread*float64(spread) +
		weightHolders*float64(holders) +
		weightStability*float64(stability)
	return numeric.ClampInt(int(math.Round(sum)), 0, 100)
}
