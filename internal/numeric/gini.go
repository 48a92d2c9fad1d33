package numeric

import "sort"

// Gini computes the Gini coefficient of a distribution of balances.
// 0 means perfectly even, 1 means maximally concentrated. Non-positive
// balances are ignored; fewer than two positive balances yields 0.
//
// Uses the rank formula over balances sorted descending:
//
//	G = (2 * sum_i((n-i) * b_i)) / (n * total) - (n+1)/n
//
// with i starting at 0, clamped to [0, 1].
func Gini(balances []float64) float64 {
	positive := make([]float64, 0, len(balances))
	var total float64
	for _, b := range balances {
		if b > 0 {
			positive = append(positive, b)
			total += b
		}
	}
	if len(positive) < 2 || total == 0 {
		return 0
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(positive)))

	n := float64(len(positive))
	var weighted float64
	for i, b := range positive {
		weighted += (n - float64(i)) * b
	}

	g := (2*weighted)/(n*total) - (n+1)/n
	return Clamp(g, 0, 1)
}
