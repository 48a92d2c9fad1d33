package aggregate

import (
	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/numeric"
)

// exchangeInputs is the latest per-exchange observations feeding one bucket.
type exchangeInputs struct {
	priceVolume map[string]*domain.PriceVolumeTick
	spreads     map[string]*domain.SpreadTick
	liquidity   map[string]*domain.LiquiditySnapshot
}

// computeBucket folds per-exchange observations into one cross-exchange
// bucket. Returns nil when no exchange contributed any observation: the
// window has no bucket at all, which downstream code must distinguish from
// a bucket with zero-valued metrics.
//
// Holder fields, price changes and market cap are filled in later by the
// aggregator from stores this pure function does not touch.
func computeBucket(symbol string, ts int64, in exchangeInputs) *domain.AggregatedBucket {
	// A venue whose only contribution is an unusable price tick does not
	// count; it may still count through a spread or liquidity report.
	venues := make(map[string]struct{})
	for ex, t := range in.priceVolume {
		if t.Price <= 0 {
			continue
		}
		venues[ex] = struct{}{}
	}
	for ex := range in.spreads {
		venues[ex] = struct{}{}
	}
	for ex := range in.liquidity {
		venues[ex] = struct{}{}
	}
	if len(venues) == 0 {
		return nil
	}

	b := &domain.AggregatedBucket{
		TokenSymbol:     symbol,
		TimestampMs:     ts,
		ActiveExchanges: len(venues),
	}

	// VWAP over reporting venues; volumes and trade counts sum.
	var prices, volumes []float64
	for _, t := range in.priceVolume {
		if t.Price <= 0 {
			continue
		}
		prices = append(prices, t.Price)
		volumes = append(volumes, t.Volume24h)
		b.TotalVolume24h += t.Volume24h
		b.TotalTradeCount24h += t.TradeCount24h
	}
	if len(prices) > 0 {
		vwap, err := numeric.VWAP(prices, volumes)
		if err == nil {
			b.VWAPPrice = vwap
		}
	}

	// Spread: weighted by the reporting venue's volume. Venues that report
	// volume but no spread are excluded from both numerator and denominator.
	var spreadVals, spreadWeights []float64
	for ex, st := range in.spreads {
		var w float64
		if pv, ok := in.priceVolume[ex]; ok {
			w = pv.Volume24h
		}
		spreadVals = append(spreadVals, st.SpreadBps)
		spreadWeights = append(spreadWeights, w)
	}
	if len(spreadVals) > 0 {
		avg, err := numeric.WeightedMean(spreadVals, spreadWeights)
		if err == nil {
			b.AvgSpreadBps = &avg
		}
	}

	// Liquidity at the 1% band sums across venues, both sides.
	for _, snap := range in.liquidity {
		b.TotalLiquidity1Pct += snap.BidDepth1Pct + snap.AskDepth1Pct
	}

	return b
}

// pctChange returns the percentage change from reference to current, or nil
// when the reference is unusable.
func pctChange(current, reference float64) *float64 {
	if reference <= 0 {
		return nil
	}
	v := (current - reference) / reference * 100
	return &v
}
