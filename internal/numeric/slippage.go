package numeric

import "errors"

// ErrUnfillable is returned when an order book lacks the depth to fill the
// requested notional.
var ErrUnfillable = errors.New("order size exceeds book depth")

// BookLevel is one price level of an order book side, with Size expressed
// in base units.
type BookLevel struct {
	Price float64
	Size  float64
}

// SlippagePct walks one side of an order book and returns the percentage
// slippage of the average fill price versus the mid price for an order of
// the given notional (quote units). Levels must be sorted best-first.
// Returns ErrUnfillable when the book cannot absorb the order and
// ErrInvalidBook when mid is non-positive or the book is empty.
func SlippagePct(levels []BookLevel, mid, notional float64) (float64, error) {
	if mid <= 0 || len(levels) == 0 {
		return 0, ErrInvalidBook
	}
	if notional <= 0 {
		return 0, nil
	}

	remaining := notional
	var filledBase, filledQuote float64
	for _, lvl := range levels {
		if lvl.Price <= 0 || lvl.Size <= 0 {
			continue
		}
		levelQuote := lvl.Price * lvl.Size
		take := levelQuote
		if take > remaining {
			take = remaining
		}
		filledQuote += take
		filledBase += take / lvl.Price
		remaining -= take
		if remaining <= 0 {
			break
		}
	}

	if remaining > 0 {
		return 0, ErrUnfillable
	}

	avgPrice := filledQuote / filledBase
	slip := (avgPrice - mid) / mid * 100
	if slip < 0 {
		slip = -slip
	}
	return slip, nil
}

// DepthWithinBand sums base-unit size across levels whose price lies within
// bandPct percent of mid. Levels outside the band are skipped.
func DepthWithinBand(levels []BookLevel, mid, bandPct float64) float64 {
	if mid <= 0 {
		return 0
	}
	var depth float64
	limit := mid * bandPct / 100
	for _, lvl := range levels {
		diff := lvl.Price - mid
		if diff < 0 {
			diff = -diff
		}
		if diff <= limit {
			depth += lvl.Size
		}
	}
	return depth
}
