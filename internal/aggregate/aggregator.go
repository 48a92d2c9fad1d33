// Package aggregate folds per-exchange observations into cross-exchange
// token buckets, the single source of truth for downstream scoring.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/observability"
	"fantoken-intel/internal/storage"
)

// ErrNoObservations is returned when no exchange reported anything for a
// token in the aggregation window.
var ErrNoObservations = errors.New("no observations in window")

// Reference horizons for bucket-to-bucket price changes.
const (
	horizon1h  = int64(time.Hour / time.Millisecond)
	horizon24h = 24 * horizon1h
	horizon7d  = 7 * horizon24h
)

// staleObservationMs bounds how far behind the bucket time a venue's last
// observation may lag and still count toward the bucket.
const staleObservationMs = int64(5 * time.Minute / time.Millisecond)

// Aggregator computes cross-exchange buckets from per-exchange stores.
type Aggregator struct {
	priceVolume storage.PriceVolumeStore
	spreads     storage.SpreadStore
	liquidity   storage.LiquidityStore
	holders     storage.HolderStore
	buckets     storage.BucketStore
	tokens      storage.TokenStore
	exchanges   storage.ExchangeStore
	logger      *logrus.Logger
}

// NewAggregator creates a cross-exchange aggregator.
func NewAggregator(
	priceVolume storage.PriceVolumeStore,
	spreads storage.SpreadStore,
	liquidity storage.LiquidityStore,
	holders storage.HolderStore,
	buckets storage.BucketStore,
	tokens storage.TokenStore,
	exchanges storage.ExchangeStore,
	logger *logrus.Logger,
) *Aggregator {
	return &Aggregator{
		priceVolume: priceVolume,
		spreads:     spreads,
		liquidity:   liquidity,
		holders:     holders,
		buckets:     buckets,
		tokens:      tokens,
		exchanges:   exchanges,
		logger:      logger,
	}
}

// AggregateToken computes and upserts the bucket for one token at the given
// wall-clock instant. The bucket timestamp is the instant truncated to the minute.
// Returns ErrNoObservations when no venue reported within the staleness
// window; in that case no bucket is written, because absence must stay
// distinguishable from zero.
func (a *Aggregator) AggregateToken(ctx context.Context, symbol string, at time.Time) (*domain.AggregatedBucket, error) {
	ts := at.Truncate(time.Minute).UnixMilli()

	in, err := a.collect(ctx, symbol, ts)
	if err != nil {
		return nil, err
	}

	b := computeBucket(symbol, ts, in)
	if b == nil {
		return nil, ErrNoObservations
	}

	a.fillPriceChanges(ctx, b)
	a.fillHolderContext(ctx, b)
	a.fillMarketCap(ctx, b)

	if err := a.buckets.Upsert(ctx, b); err != nil {
		return nil, fmt.Errorf("upsert bucket %s@%d: %w", symbol, ts, err)
	}
	return b, nil
}

// AggregateAll runs AggregateToken for every active token. Tokens are
// independent: one failure is logged and skipped, never aborting the cycle.
func (a *Aggregator) AggregateAll(ctx context.Context, at time.Time) error {
	tokens, err := a.tokens.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("load active tokens: %w", err)
	}

	observability.DefaultMetrics.ActiveTokens.Set(float64(len(tokens)))

	for _, t := range tokens {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := a.AggregateToken(ctx, t.Symbol, at); err != nil {
			if errors.Is(err, ErrNoObservations) {
				observability.DefaultMetrics.TokensSkippedEmpty.Inc()
				continue
			}
			observability.DefaultMetrics.AggregationErrors.Inc()
			a.logger.WithError(err).WithField("token", t.Symbol).Warn("aggregation failed for token")
			continue
		}
		observability.DefaultMetrics.BucketsComputed.Inc()
	}
	return nil
}

// collect loads the freshest per-exchange observation of each kind within
// the staleness window ending at ts.
func (a *Aggregator) collect(ctx context.Context, symbol string, ts int64) (exchangeInputs, error) {
	var in exchangeInputs
	var err error

	in.priceVolume, err = a.priceVolume.GetLatestPerExchange(ctx, symbol, ts)
	if err != nil {
		return in, fmt.Errorf("load price/volume ticks: %w", err)
	}
	in.spreads, err = a.spreads.GetLatestPerExchange(ctx, symbol, ts)
	if err != nil {
		return in, fmt.Errorf("load spread ticks: %w", err)
	}
	in.liquidity, err = a.liquidity.GetLatestPerExchange(ctx, symbol, ts)
	if err != nil {
		return in, fmt.Errorf("load liquidity snapshots: %w", err)
	}

	cutoff := ts - staleObservationMs
	for ex, t := range in.priceVolume {
		if t.TimestampMs < cutoff {
			delete(in.priceVolume, ex)
		}
	}
	for ex, t := range in.spreads {
		if t.TimestampMs < cutoff {
			delete(in.spreads, ex)
		}
	}
	for ex, snap := range in.liquidity {
		if snap.TimestampMs < cutoff {
			delete(in.liquidity, ex)
		}
	}

	a.dropDisabledVenues(ctx, &in)

	return in, nil
}

// dropDisabledVenues removes observations from exchanges the catalog marks
// inactive. Venues missing from the catalog pass through: collectors may
// start reporting a venue before the catalog catches up.
func (a *Aggregator) dropDisabledVenues(ctx context.Context, in *exchangeInputs) {
	venues := make(map[string]struct{})
	for ex := range in.priceVolume {
		venues[ex] = struct{}{}
	}
	for ex := range in.spreads {
		venues[ex] = struct{}{}
	}
	for ex := range in.liquidity {
		venues[ex] = struct{}{}
	}

	for ex := range venues {
		rec, err := a.exchanges.GetByCode(ctx, ex)
		if err != nil || rec.IsActive {
			continue
		}
		delete(in.priceVolume, ex)
		delete(in.spreads, ex)
		delete(in.liquidity, ex)
	}
}

// fillPriceChanges derives 1h/24h/7d changes from the bucket closest
// at-or-before each reference horizon. Fields stay nil until enough history
// accumulates.
func (a *Aggregator) fillPriceChanges(ctx context.Context, b *domain.AggregatedBucket) {
	if b.VWAPPrice <= 0 {
		return
	}
	for _, h := range []struct {
		offset int64
		target **float64
	}{
		{horizon1h, &b.PriceChange1hPct},
		{horizon24h, &b.PriceChange24hPct},
		{horizon7d, &b.PriceChange7dPct},
	} {
		ref, err := a.buckets.GetAt(ctx, b.TokenSymbol, b.TimestampMs-h.offset)
		if err != nil {
			continue
		}
		*h.target = pctChange(b.VWAPPrice, ref.VWAPPrice)
	}
}

// fillHolderContext carries the freshest holder snapshot at or before the
// bucket time through to the bucket.
func (a *Aggregator) fillHolderContext(ctx context.Context, b *domain.AggregatedBucket) {
	snap, err := a.holders.GetLatest(ctx, b.TokenSymbol, b.TimestampMs)
	if err != nil {
		return
	}
	total := snap.TotalHolders
	change := snap.HolderChange24h
	b.TotalHolders = &total
	b.HolderChange24h = &change
}

// fillMarketCap derives market cap from circulating supply; stays nil when
// the supply is unknown.
func (a *Aggregator) fillMarketCap(ctx context.Context, b *domain.AggregatedBucket) {
	if b.VWAPPrice <= 0 {
		return
	}
	tok, err := a.tokens.GetBySymbol(ctx, b.TokenSymbol)
	if err != nil || tok.CirculatingSupply == nil {
		return
	}
	mc := b.VWAPPrice * *tok.CirculatingSupply
	b.MarketCap = &mc
}
