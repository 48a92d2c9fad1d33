package domain

import "time"

// MarketRegime is a qualitative label for recent price action.
type MarketRegime string

const (
	RegimeBullish MarketRegime = "bullish"
	RegimeBearish MarketRegime = "bearish"
	RegimeRanging MarketRegime = "ranging"
	RegimeNeutral MarketRegime = "neutral"
	RegimeUnknown MarketRegime = "unknown"
)

// CorrelationResult holds pairwise cross-pillar correlations for a token
// over a rolling lookback window. Natural key: (TokenSymbol, AnalysisDate,
// LookbackDays). Read-only downstream artifact.
type CorrelationResult struct {
	TokenSymbol  string
	AnalysisDate time.Time // date component only
	LookbackDays int

	// Lagged correlations: lag is the number of daily steps by which the
	// first series leads the second at the strongest correlation found.
	PriceVolumeCorr  *float64
	PriceVolumeLag   int
	PriceHoldersCorr *float64
	PriceHoldersLag  int

	VolumeHoldersCorr   *float64
	SpreadPriceCorr     *float64
	LiquidityVolumeCorr *float64

	MarketRegime MarketRegime
}
