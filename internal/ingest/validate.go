package ingest

import (
	"errors"
	"fmt"

	"fantoken-intel/internal/domain"
)

// ErrRejected wraps every validation failure so callers can count rejections
// without matching message text.
var ErrRejected = errors.New("observation rejected")

// maxAbsChangePct bounds reported price changes; anything larger is a feed
// glitch, not a market move.
const maxAbsChangePct = 1000

// maxSpreadBps rejects spreads wider than 100%.
const maxSpreadBps = 10000

func reject(reason string) error {
	return fmt.Errorf("%w: %s", ErrRejected, reason)
}

// validatePriceVolume screens one price/volume tick.
func validatePriceVolume(t *domain.PriceVolumeTick) error {
	if t.TokenSymbol == "" || t.Exchange == "" {
		return reject("missing token or exchange")
	}
	if t.TimestampMs <= 0 {
		return reject("missing timestamp")
	}
	if t.Price <= 0 {
		return reject("non-positive price")
	}
	if t.Volume24h < 0 {
		return reject("negative volume")
	}
	if t.TradeCount24h < 0 {
		return reject("negative trade count")
	}
	if t.Change1hPct != nil && absf(*t.Change1hPct) > maxAbsChangePct {
		return reject("implausible 1h change")
	}
	if t.Change24hPct != nil && absf(*t.Change24hPct) > maxAbsChangePct {
		return reject("implausible 24h change")
	}
	return nil
}

// validateSpread screens one spread tick.
func validateSpread(t *domain.SpreadTick) error {
	if t.TokenSymbol == "" || t.Exchange == "" {
		return reject("missing token or exchange")
	}
	if t.TimestampMs <= 0 {
		return reject("missing timestamp")
	}
	if t.BestBid <= 0 || t.BestAsk <= 0 {
		return reject("non-positive quote")
	}
	if t.BestBid > t.BestAsk {
		return reject("crossed book")
	}
	if t.SpreadBps < 0 || t.SpreadBps > maxSpreadBps {
		return reject("spread out of range")
	}
	return nil
}

// validateLiquidity screens one depth snapshot.
func validateLiquidity(s *domain.LiquiditySnapshot) error {
	if s.TokenSymbol == "" || s.Exchange == "" {
		return reject("missing token or exchange")
	}
	if s.TimestampMs <= 0 {
		return reject("missing timestamp")
	}
	for _, d := range []float64{
		s.BidDepth1Pct, s.AskDepth1Pct,
		s.BidDepth2Pct, s.AskDepth2Pct,
		s.BidDepth5Pct, s.AskDepth5Pct,
	} {
		if d < 0 {
			return reject("negative depth")
		}
	}
	if s.BookImbalance < -1 || s.BookImbalance > 1 {
		return reject("imbalance out of range")
	}
	return nil
}

// validateHolders screens one holder snapshot.
func validateHolders(s *domain.HolderSnapshot) error {
	if s.TokenSymbol == "" {
		return reject("missing token")
	}
	if s.TimestampMs <= 0 {
		return reject("missing timestamp")
	}
	if s.TotalHolders < 0 {
		return reject("negative holder count")
	}
	for _, p := range []float64{s.Top10Pct, s.Top50Pct, s.Top100Pct} {
		if p < 0 || p > 1 {
			return reject("concentration out of range")
		}
	}
	if s.Gini < 0 || s.Gini > 1 {
		return reject("gini out of range")
	}
	return nil
}

// validateSocial screens one social metric.
func validateSocial(m *domain.SocialMetric) error {
	if m.TokenSymbol == "" {
		return reject("missing token")
	}
	if m.TimestampMs <= 0 {
		return reject("missing timestamp")
	}
	if m.SentimentScore < 0 || m.SentimentScore > 1 {
		return reject("sentiment out of range")
	}
	if m.TweetCount24h < 0 || m.MentionCount24h < 0 || m.InfluencerMentions < 0 {
		return reject("negative count")
	}
	return nil
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
