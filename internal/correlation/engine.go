// Package correlation measures how a token's pillars move together: whether
// volume chases price, whether holder growth leads price, and how spreads and
// liquidity react to market activity.
package correlation

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/observability"
	"fantoken-intel/internal/storage"
)

// Lookbacks analyzed per cycle, in days.
var Lookbacks = []int{7, 30, 90}

// Engine computes cross-pillar correlation results from stored history.
type Engine struct {
	buckets      storage.BucketStore
	holders      storage.HolderStore
	correlations storage.CorrelationStore
	tokens       storage.TokenStore
	logger       *logrus.Logger
}

// NewEngine creates a correlation engine.
func NewEngine(
	buckets storage.BucketStore,
	holders storage.HolderStore,
	correlations storage.CorrelationStore,
	tokens storage.TokenStore,
	logger *logrus.Logger,
) *Engine {
	return &Engine{
		buckets:      buckets,
		holders:      holders,
		correlations: correlations,
		tokens:       tokens,
		logger:       logger,
	}
}

// AnalyzeToken computes and upserts one token's correlation result for the
// given analysis date and lookback. Pairs without enough aligned history stay
// nil rather than reporting a meaningless coefficient.
func (e *Engine) AnalyzeToken(ctx context.Context, symbol string, analysisDate time.Time, lookbackDays int) (*domain.CorrelationResult, error) {
	day := analysisDate.UTC().Truncate(24 * time.Hour)
	end := day.UnixMilli() + msPerDay - 1
	start := end - int64(lookbackDays)*msPerDay

	price, volume, spread, liquidity, err := e.bucketSeries(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("bucket series for %s: %w", symbol, err)
	}
	holders, err := e.holderSeries(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("holder series for %s: %w", symbol, err)
	}

	r := &domain.CorrelationResult{
		TokenSymbol:  symbol,
		AnalysisDate: day,
		LookbackDays: lookbackDays,
	}

	r.PriceVolumeCorr, r.PriceVolumeLag = findOptimalLag(price, volume)
	r.PriceHoldersCorr, r.PriceHoldersLag = findOptimalLag(price, holders)
	r.VolumeHoldersCorr = laggedPearson(volume, holders, 0)
	r.SpreadPriceCorr = laggedPearson(spread, price, 0)
	r.LiquidityVolumeCorr = laggedPearson(liquidity, volume, 0)
	r.MarketRegime = e.classifyRegime(ctx, symbol)

	if err := e.correlations.Upsert(ctx, r); err != nil {
		return nil, fmt.Errorf("upsert correlation %s@%s/%dd: %w", symbol, day.Format("2006-01-02"), lookbackDays, err)
	}
	observability.DefaultMetrics.CorrelationsRun.Inc()
	return r, nil
}

// AnalyzeAll runs every lookback for every active token. A failing token is
// logged and skipped; the cycle never aborts.
func (e *Engine) AnalyzeAll(ctx context.Context, analysisDate time.Time) error {
	tokens, err := e.tokens.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("load active tokens: %w", err)
	}

	for _, lookback := range Lookbacks {
		for _, t := range tokens {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if _, err := e.AnalyzeToken(ctx, t.Symbol, analysisDate, lookback); err != nil {
				e.logger.WithError(err).WithFields(logrus.Fields{
					"token":    t.Symbol,
					"lookback": lookback,
				}).Warn("correlation analysis failed for token")
			}
		}
	}
	return nil
}

// bucketSeries folds the bucket history into daily price, volume, spread and
// liquidity series. A nil spread contributes nothing to the spread series.
func (e *Engine) bucketSeries(ctx context.Context, symbol string, start, end int64) (price, volume, spread, liquidity dailySeries, err error) {
	hist, err := e.buckets.GetByTimeRange(ctx, symbol, start, end)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	price = make(dailySeries)
	volume = make(dailySeries)
	spread = make(dailySeries)
	liquidity = make(dailySeries)
	for _, b := range hist {
		price.put(b.TimestampMs, b.VWAPPrice)
		volume.put(b.TimestampMs, b.TotalVolume24h)
		liquidity.put(b.TimestampMs, b.TotalLiquidity1Pct)
		if b.AvgSpreadBps != nil {
			spread.put(b.TimestampMs, *b.AvgSpreadBps)
		}
	}
	return price, volume, spread, liquidity, nil
}

func (e *Engine) holderSeries(ctx context.Context, symbol string, start, end int64) (dailySeries, error) {
	hist, err := e.holders.GetByTimeRange(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	s := make(dailySeries)
	for _, snap := range hist {
		s.put(snap.TimestampMs, float64(snap.TotalHolders))
	}
	return s, nil
}

// classifyRegime labels recent price action from the latest bucket's 7d
// change. Missing data is unknown, never guessed.
func (e *Engine) classifyRegime(ctx context.Context, symbol string) domain.MarketRegime {
	b, err := e.buckets.GetLatest(ctx, symbol)
	if err != nil || b.PriceChange7dPct == nil {
		return domain.RegimeUnknown
	}
	switch change := *b.PriceChange7dPct; {
	case change > 10:
		return domain.RegimeBullish
	case change < -10:
		return domain.RegimeBearish
	case abs(change) < 3:
		return domain.RegimeRanging
	default:
		return domain.RegimeNeutral
	}
}
