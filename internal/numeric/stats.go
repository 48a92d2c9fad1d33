package numeric

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean. Returns ErrNoData for empty input.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoData
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// StdDev returns the sample standard deviation (n-1 denominator).
// Fewer than two points yields ErrNoData.
func StdDev(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, ErrNoData
	}
	mean, _ := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1)), nil
}

// Median returns the median of values. Returns ErrNoData for empty input.
func Median(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoData
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], nil
	}
	return (sorted[mid-1] + sorted[mid]) / 2, nil
}

// Percentile returns the p-th percentile (0-100) using linear interpolation
// between closest ranks. Returns ErrNoData for empty input.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoData
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0], nil
	}
	if p >= 100 {
		return sorted[len(sorted)-1], nil
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac, nil
}

// Pearson returns the Pearson correlation coefficient of two equal-length
// series. Returns ErrNoData when the series are shorter than two points or
// of unequal length, and 0 when either series has zero variance.
func Pearson(xs, ys []float64) (float64, error) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, ErrNoData
	}

	mx, _ := Mean(xs)
	my, _ := Mean(ys)

	var cov, vx, vy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}

	if vx == 0 || vy == 0 {
		return 0, nil
	}
	return cov / math.Sqrt(vx*vy), nil
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Interpolate maps v onto the piecewise-linear curve defined by points,
// which must be sorted by ascending X. Values outside the curve's domain
// clamp to the first/last point's Y.
func Interpolate(points []CurvePoint, v float64) float64 {
	if len(points) == 0 {
		return 0
	}
	if v <= points[0].X {
		return points[0].Y
	}
	last := points[len(points)-1]
	if v >= last.X {
		return last.Y
	}
	for i := 1; i < len(points); i++ {
		if v <= points[i].X {
			p0, p1 := points[i-1], points[i]
			if p1.X == p0.X {
				return p1.Y
			}
			frac := (v - p0.X) / (p1.X - p0.X)
			return p0.Y + frac*(p1.Y-p0.Y)
		}
	}
	return last.Y
}

// CurvePoint is one knot of a piecewise-linear scoring curve.
type CurvePoint struct {
	X, Y float64
}
