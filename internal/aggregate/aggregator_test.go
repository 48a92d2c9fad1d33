package aggregate

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage/memory"
)

type fixture struct {
	priceVolume *memory.PriceVolumeStore
	spreads     *memory.SpreadStore
	liquidity   *memory.LiquidityStore
	holders     *memory.HolderStore
	buckets     *memory.BucketStore
	tokens      *memory.TokenStore
	exchanges   *memory.ExchangeStore
	agg         *Aggregator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		priceVolume: memory.NewPriceVolumeStore(),
		spreads:     memory.NewSpreadStore(),
		liquidity:   memory.NewLiquidityStore(),
		holders:     memory.NewHolderStore(),
		buckets:     memory.NewBucketStore(),
		tokens:      memory.NewTokenStore(),
		exchanges:   memory.NewExchangeStore(),
	}
	f.agg = NewAggregator(f.priceVolume, f.spreads, f.liquidity, f.holders, f.buckets, f.tokens, f.exchanges, logger)
	return f
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

var at = time.UnixMilli(1_700_000_040_000) // truncates to 1_700_000_040_000 (already on a minute)

func TestAggregateToken_VWAPAcrossExchanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts - 1000, Price: 10, Volume24h: 100, TradeCount24h: 50},
		{TokenSymbol: "PSG", Exchange: "chiliz", TimestampMs: ts - 2000, Price: 20, Volume24h: 300, TradeCount24h: 150},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// (10*100 + 20*300) / 400 = 17.5
	if !almostEqual(b.VWAPPrice, 17.5) {
		t.Errorf("expected VWAP 17.5, got %f", b.VWAPPrice)
	}
	if !almostEqual(b.TotalVolume24h, 400) {
		t.Errorf("expected total volume 400, got %f", b.TotalVolume24h)
	}
	if b.TotalTradeCount24h != 200 {
		t.Errorf("expected 200 trades, got %d", b.TotalTradeCount24h)
	}
	if b.ActiveExchanges != 2 {
		t.Errorf("expected 2 active exchanges, got %d", b.ActiveExchanges)
	}
}

func TestAggregateToken_NoObservationsProducesNoBucket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.agg.AggregateToken(ctx, "PSG", at)
	if !errors.Is(err, ErrNoObservations) {
		t.Fatalf("expected ErrNoObservations, got %v", err)
	}

	// Absence over zero: the store must hold nothing for this window.
	if _, err := f.buckets.GetLatest(ctx, "PSG"); err == nil {
		t.Error("expected no bucket written for an empty window")
	}
}

func TestAggregateToken_DisabledExchangeExcluded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.exchanges.Upsert(ctx, &domain.Exchange{Code: "chiliz", Name: "Chiliz", IsActive: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts - 1000, Price: 10, Volume24h: 100},
		// Delisted venue: its ticks keep arriving but must not contribute.
		{TokenSymbol: "PSG", Exchange: "chiliz", TimestampMs: ts - 1000, Price: 99, Volume24h: 900},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(b.VWAPPrice, 10) {
		t.Errorf("expected VWAP 10 from the active venue only, got %f", b.VWAPPrice)
	}
	if b.ActiveExchanges != 1 {
		t.Errorf("expected 1 active exchange, got %d", b.ActiveExchanges)
	}
}

func TestAggregateToken_UnusablePriceDoesNotCountVenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts - 1000, Price: 10, Volume24h: 100},
		// Backfilled row with no usable price; the venue reported nothing else.
		{TokenSymbol: "PSG", Exchange: "chiliz", TimestampMs: ts - 1000, Price: 0, Volume24h: 900},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ActiveExchanges != 1 {
		t.Errorf("expected 1 active exchange, got %d", b.ActiveExchanges)
	}
	if !almostEqual(b.VWAPPrice, 10) {
		t.Errorf("expected VWAP 10, got %f", b.VWAPPrice)
	}
}

func TestAggregateToken_OnlyUnusablePricesWritesNoBucket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "chiliz", TimestampMs: ts - 1000, Price: 0, Volume24h: 900},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.agg.AggregateToken(ctx, "PSG", at)
	if !errors.Is(err, ErrNoObservations) {
		t.Fatalf("expected ErrNoObservations, got %v", err)
	}
}

func TestAggregateToken_StaleObservationsExcluded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts - 1000, Price: 10, Volume24h: 100},
		// 10 minutes old, beyond the staleness window.
		{TokenSymbol: "PSG", Exchange: "chiliz", TimestampMs: ts - 10*60*1000, Price: 99, Volume24h: 900},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(b.VWAPPrice, 10) {
		t.Errorf("stale venue must not contribute: expected VWAP 10, got %f", b.VWAPPrice)
	}
	if b.ActiveExchanges != 1 {
		t.Errorf("expected 1 active exchange, got %d", b.ActiveExchanges)
	}
}

func TestAggregateToken_SpreadWeightingExcludesMissingVenues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts, Price: 10, Volume24h: 100},
		{TokenSymbol: "PSG", Exchange: "chiliz", TimestampMs: ts, Price: 10, Volume24h: 900},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only binance reports a spread; chiliz's 900 volume must not dilute it.
	err = f.spreads.Upsert(ctx, []*domain.SpreadTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts, SpreadBps: 40},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.AvgSpreadBps == nil || !almostEqual(*b.AvgSpreadBps, 40) {
		t.Errorf("expected avg spread 40, got %v", b.AvgSpreadBps)
	}
}

func TestAggregateToken_NoSpreadReportedLeavesNil(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts, Price: 10, Volume24h: 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.AvgSpreadBps != nil {
		t.Errorf("expected nil avg spread, got %v", *b.AvgSpreadBps)
	}
}

func TestAggregateToken_LiquiditySumsBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.liquidity.Upsert(ctx, []*domain.LiquiditySnapshot{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts, BidDepth1Pct: 1000, AskDepth1Pct: 1500},
		{TokenSymbol: "PSG", Exchange: "chiliz", TimestampMs: ts, BidDepth1Pct: 500, AskDepth1Pct: 500},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(b.TotalLiquidity1Pct, 3500) {
		t.Errorf("expected total 1%% liquidity 3500, got %f", b.TotalLiquidity1Pct)
	}
	// Liquidity-only venues still count as active.
	if b.ActiveExchanges != 2 {
		t.Errorf("expected 2 active exchanges, got %d", b.ActiveExchanges)
	}
}

func TestAggregateToken_NonPositivePricesIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts, Price: 10, Volume24h: 100},
		{TokenSymbol: "PSG", Exchange: "broken", TimestampMs: ts, Price: 0, Volume24h: 9999},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(b.VWAPPrice, 10) {
		t.Errorf("zero-price venue must not contribute to VWAP: got %f", b.VWAPPrice)
	}
}

func TestAggregateToken_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts, Price: 10, Volume24h: 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.TimestampMs != second.TimestampMs || !almostEqual(first.VWAPPrice, second.VWAPPrice) {
		t.Errorf("recomputation changed the bucket: %+v vs %+v", first, second)
	}

	got, err := f.buckets.GetByTimeRange(ctx, "PSG", ts, ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected exactly one bucket after recomputation, got %d", len(got))
	}
}

func TestAggregateToken_PriceChangesFromReferenceBuckets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	// Reference bucket 1h earlier at price 8.
	err := f.buckets.Upsert(ctx, &domain.AggregatedBucket{
		TokenSymbol: "PSG", TimestampMs: ts - horizon1h, VWAPPrice: 8,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts, Price: 10, Volume24h: 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.PriceChange1hPct == nil || !almostEqual(*b.PriceChange1hPct, 25) {
		t.Errorf("expected +25%% 1h change, got %v", b.PriceChange1hPct)
	}
	// No bucket exists at or before the 7d horizon, so the field stays nil.
	if b.PriceChange7dPct != nil {
		t.Errorf("expected nil 7d change, got %v", *b.PriceChange7dPct)
	}
}

func TestAggregateToken_HolderAndMarketCapContext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	supply := 1_000_000.0
	err := f.tokens.Upsert(ctx, &domain.Token{Symbol: "PSG", Name: "PSG", CirculatingSupply: &supply, IsActive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = f.holders.Upsert(ctx, &domain.HolderSnapshot{
		TokenSymbol: "PSG", TimestampMs: ts - 3600_000, TotalHolders: 42_000, HolderChange24h: 150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts, Price: 3.5, Volume24h: 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TotalHolders == nil || *b.TotalHolders != 42_000 {
		t.Errorf("expected holder passthrough 42000, got %v", b.TotalHolders)
	}
	if b.MarketCap == nil || !almostEqual(*b.MarketCap, 3_500_000) {
		t.Errorf("expected market cap 3.5M, got %v", b.MarketCap)
	}
}

func TestAggregateToken_MarketCapNilWithoutSupply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	err := f.tokens.Upsert(ctx, &domain.Token{Symbol: "PSG", Name: "PSG", IsActive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts, Price: 3.5, Volume24h: 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := f.agg.AggregateToken(ctx, "PSG", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.MarketCap != nil {
		t.Errorf("expected nil market cap without supply, got %v", *b.MarketCap)
	}
}

func TestAggregateAll_TokenFailureDoesNotAbortCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ts := at.Truncate(time.Minute).UnixMilli()

	// Two active tokens; only one has observations.
	if err := f.tokens.Upsert(ctx, &domain.Token{Symbol: "PSG", Name: "PSG", IsActive: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.tokens.Upsert(ctx, &domain.Token{Symbol: "BAR", Name: "Barcelona", IsActive: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := f.priceVolume.Upsert(ctx, []*domain.PriceVolumeTick{
		{TokenSymbol: "PSG", Exchange: "binance", TimestampMs: ts, Price: 10, Volume24h: 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.agg.AggregateAll(ctx, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.buckets.GetLatest(ctx, "PSG"); err != nil {
		t.Errorf("expected PSG bucket, got %v", err)
	}
	if _, err := f.buckets.GetLatest(ctx, "BAR"); err == nil {
		t.Error("expected no BAR bucket")
	}
}
