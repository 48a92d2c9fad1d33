package correlation

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage/memory"
)

func TestLaggedPearson_PerfectPositive(t *testing.T) {
	x := make(dailySeries)
	y := make(dailySeries)
	for d := int64(0); d < 12; d++ {
		x[d] = float64(d)
		y[d] = float64(d) * 2
	}

	r := laggedPearson(x, y, 0)
	if r == nil {
		t.Fatal("expected a correlation")
	}
	if math.Abs(*r-1) > 1e-9 {
		t.Errorf("expected r=1, got %f", *r)
	}
}

func TestLaggedPearson_TooFewAlignedDays(t *testing.T) {
	x := make(dailySeries)
	y := make(dailySeries)
	for d := int64(0); d < 5; d++ {
		x[d] = float64(d)
		y[d] = float64(d)
	}
	if r := laggedPearson(x, y, 0); r != nil {
		t.Errorf("expected nil for %d aligned days, got %f", 5, *r)
	}
}

func TestFindOptimalLag_DetectsLeader(t *testing.T) {
	// x leads y by 3 days: y[d] = x[d-3].
	x := make(dailySeries)
	y := make(dailySeries)
	base := []float64{5, 1, 8, 2, 9, 3, 7, 4, 6, 1, 8, 2, 9, 5, 3, 7, 1, 6, 4, 8}
	for d, v := range base {
		x[int64(d)] = v
		y[int64(d)+3] = v
	}

	r, lag := findOptimalLag(x, y)
	if r == nil {
		t.Fatal("expected a correlation")
	}
	if lag != 3 {
		t.Errorf("expected lag 3, got %d (r=%f)", lag, *r)
	}
	if math.Abs(*r-1) > 1e-9 {
		t.Errorf("expected r=1 at the true lag, got %f", *r)
	}
}

func TestFindOptimalLag_NoData(t *testing.T) {
	r, lag := findOptimalLag(make(dailySeries), make(dailySeries))
	if r != nil || lag != 0 {
		t.Errorf("expected (nil, 0), got (%v, %d)", r, lag)
	}
}

type engineFixture struct {
	buckets      *memory.BucketStore
	holders      *memory.HolderStore
	correlations *memory.CorrelationStore
	tokens       *memory.TokenStore
	engine       *Engine
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &engineFixture{
		buckets:      memory.NewBucketStore(),
		holders:      memory.NewHolderStore(),
		correlations: memory.NewCorrelationStore(),
		tokens:       memory.NewTokenStore(),
	}
	f.engine = NewEngine(f.buckets, f.holders, f.correlations, f.tokens, logger)
	return f
}

var analysisDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

// seedDays writes one bucket and one holder snapshot per day for n days
// ending at the analysis date, with volume tracking price and holders
// tracking volume.
func seedDays(t *testing.T, f *engineFixture, symbol string, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		day := analysisDate.AddDate(0, 0, -i)
		ts := day.UnixMilli() + 12*60*60*1000 // midday
		price := 2.0 + 0.1*float64(n-i)
		change7d := 1.0
		err := f.buckets.Upsert(ctx, &domain.AggregatedBucket{
			TokenSymbol:        symbol,
			TimestampMs:        ts,
			VWAPPrice:          price,
			TotalVolume24h:     price * 100_000,
			TotalLiquidity1Pct: price * 10_000,
			AvgSpreadBps:       ptr(30.0),
			PriceChange7dPct:   &change7d,
			ActiveExchanges:    2,
		})
		if err != nil {
			t.Fatalf("seed bucket day -%d: %v", i, err)
		}
		err = f.holders.Upsert(ctx, &domain.HolderSnapshot{
			TokenSymbol:  symbol,
			TimestampMs:  ts,
			TotalHolders: 10_000 + 50*(n-i),
		})
		if err != nil {
			t.Fatalf("seed holders day -%d: %v", i, err)
		}
	}
}

func TestAnalyzeToken_StoresResult(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	seedDays(t, f, "PSG", 20)

	r, err := f.engine.AnalyzeToken(ctx, "PSG", analysisDate, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Volume is a linear function of price, so the pair correlates perfectly.
	if r.PriceVolumeCorr == nil || math.Abs(*r.PriceVolumeCorr-1) > 1e-9 {
		t.Errorf("expected price-volume r=1, got %v", r.PriceVolumeCorr)
	}
	if r.VolumeHoldersCorr == nil || math.Abs(*r.VolumeHoldersCorr-1) > 1e-9 {
		t.Errorf("expected volume-holders r=1, got %v", r.VolumeHoldersCorr)
	}
	if r.MarketRegime != domain.RegimeRanging {
		t.Errorf("expected ranging regime at +1%% 7d change, got %s", r.MarketRegime)
	}

	stored, err := f.correlations.GetLatest(ctx, "PSG", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.AnalysisDate.Equal(analysisDate) {
		t.Errorf("expected analysis date %s, got %s", analysisDate, stored.AnalysisDate)
	}
}

func TestAnalyzeToken_SparseHistoryLeavesNils(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	seedDays(t, f, "PSG", 4)

	r, err := f.engine.AnalyzeToken(ctx, "PSG", analysisDate, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.PriceVolumeCorr != nil {
		t.Errorf("expected nil price-volume corr on 4 days of data, got %f", *r.PriceVolumeCorr)
	}
	if r.PriceHoldersCorr != nil {
		t.Errorf("expected nil price-holders corr, got %f", *r.PriceHoldersCorr)
	}
}

func TestClassifyRegime(t *testing.T) {
	tests := []struct {
		name     string
		change7d *float64
		want     domain.MarketRegime
	}{
		{"strong rally", ptr(15.0), domain.RegimeBullish},
		{"strong selloff", ptr(-12.0), domain.RegimeBearish},
		{"flat", ptr(1.5), domain.RegimeRanging},
		{"mild move", ptr(5.0), domain.RegimeNeutral},
		{"mild drop", ptr(-5.0), domain.RegimeNeutral},
		{"no history", nil, domain.RegimeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t)
			ctx := context.Background()
			err := f.buckets.Upsert(ctx, &domain.AggregatedBucket{
				TokenSymbol:      "PSG",
				TimestampMs:      analysisDate.UnixMilli(),
				VWAPPrice:        2,
				PriceChange7dPct: tt.change7d,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := f.engine.classifyRegime(ctx, "PSG"); got != tt.want {
				t.Errorf("classifyRegime() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAnalyzeAll_CoversEveryLookback(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	if err := f.tokens.Upsert(ctx, &domain.Token{Symbol: "PSG", Name: "PSG", IsActive: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seedDays(t, f, "PSG", 20)

	if err := f.engine.AnalyzeAll(ctx, analysisDate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, lookback := range Lookbacks {
		if _, err := f.correlations.GetLatest(ctx, "PSG", lookback); err != nil {
			t.Errorf("expected a %dd result, got %v", lookback, err)
		}
	}
}

func ptr[T any](v T) *T { return &v }
