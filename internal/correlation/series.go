package correlation

import (
	"sort"

	"fantoken-intel/internal/numeric"
)

// dailySeries maps a day index (unix ms / ms-per-day) to that day's last
// observed value. Daily resolution keeps venues with different reporting
// cadences comparable.
type dailySeries map[int64]float64

const msPerDay = int64(24 * 60 * 60 * 1000)

// minSamples is the fewest aligned daily points a pair needs before a
// correlation is reported at all.
const minSamples = 10

// maxLagDays bounds the lead/lag scan in either direction.
const maxLagDays = 7

// put records a value for the day containing ts. Later observations within
// the same day win.
func (s dailySeries) put(ts int64, v float64) {
	s[ts/msPerDay] = v
}

func (s dailySeries) sortedDays() []int64 {
	days := make([]int64, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// laggedPearson correlates x at day d against y at day d+lag, so a positive
// lag means x leads y. Returns nil when fewer than minSamples days align.
func laggedPearson(x, y dailySeries, lag int) *float64 {
	var xs, ys []float64
	for _, d := range x.sortedDays() {
		yv, ok := y[d+int64(lag)]
		if !ok {
			continue
		}
		xs = append(xs, x[d])
		ys = append(ys, yv)
	}
	if len(xs) < minSamples {
		return nil
	}
	r, err := numeric.Pearson(xs, ys)
	if err != nil {
		return nil
	}
	return &r
}

// findOptimalLag scans lags in [-maxLagDays, maxLagDays] and returns the
// correlation with the largest magnitude and the lag it occurred at. Returns
// (nil, 0) when no lag yields enough aligned samples.
func findOptimalLag(x, y dailySeries) (*float64, int) {
	var best *float64
	bestLag := 0
	for lag := -maxLagDays; lag <= maxLagDays; lag++ {
		r := laggedPearson(x, y, lag)
		if r == nil {
			continue
		}
		if best == nil || abs(*r) > abs(*best) {
			best = r
			bestLag = lag
		}
	}
	return best, bestLag
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
