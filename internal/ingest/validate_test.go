package ingest

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage/memory"
)

func validTick() *domain.PriceVolumeTick {
	return &domain.PriceVolumeTick{
		TokenSymbol: "PSG", Exchange: "binance", TimestampMs: 1_700_000_000_000,
		Price: 2.5, Volume24h: 100_000, TradeCount24h: 500,
	}
}

func TestValidatePriceVolume(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.PriceVolumeTick)
		wantOK bool
	}{
		{"valid tick", func(*domain.PriceVolumeTick) {}, true},
		{"zero price", func(tk *domain.PriceVolumeTick) { tk.Price = 0 }, false},
		{"negative price", func(tk *domain.PriceVolumeTick) { tk.Price = -1 }, false},
		{"negative volume", func(tk *domain.PriceVolumeTick) { tk.Volume24h = -1 }, false},
		{"negative trades", func(tk *domain.PriceVolumeTick) { tk.TradeCount24h = -1 }, false},
		{"missing symbol", func(tk *domain.PriceVolumeTick) { tk.TokenSymbol = "" }, false},
		{"missing exchange", func(tk *domain.PriceVolumeTick) { tk.Exchange = "" }, false},
		{"missing timestamp", func(tk *domain.PriceVolumeTick) { tk.TimestampMs = 0 }, false},
		{"implausible 24h change", func(tk *domain.PriceVolumeTick) { tk.Change24hPct = ptr(1500.0) }, false},
		{"implausible negative change", func(tk *domain.PriceVolumeTick) { tk.Change1hPct = ptr(-1200.0) }, false},
		{"plausible change", func(tk *domain.PriceVolumeTick) { tk.Change24hPct = ptr(45.0) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := validTick()
			tt.mutate(tk)
			err := validatePriceVolume(tk)
			if tt.wantOK && err != nil {
				t.Errorf("unexpected rejection: %v", err)
			}
			if !tt.wantOK && !errors.Is(err, ErrRejected) {
				t.Errorf("expected ErrRejected, got %v", err)
			}
		})
	}
}

func TestValidateSpread(t *testing.T) {
	valid := domain.SpreadTick{
		TokenSymbol: "PSG", Exchange: "binance", TimestampMs: 1_700_000_000_000,
		BestBid: 2.49, BestAsk: 2.51, MidPrice: 2.50, SpreadBps: 80,
	}

	if err := validateSpread(&valid); err != nil {
		t.Errorf("unexpected rejection: %v", err)
	}

	crossed := valid
	crossed.BestBid, crossed.BestAsk = 2.51, 2.49
	if err := validateSpread(&crossed); !errors.Is(err, ErrRejected) {
		t.Errorf("expected crossed book rejection, got %v", err)
	}

	wide := valid
	wide.SpreadBps = 10_001
	if err := validateSpread(&wide); !errors.Is(err, ErrRejected) {
		t.Errorf("expected wide spread rejection, got %v", err)
	}
}

func TestValidateLiquidity_NegativeDepth(t *testing.T) {
	s := domain.LiquiditySnapshot{
		TokenSymbol: "PSG", Exchange: "binance", TimestampMs: 1_700_000_000_000,
		BidDepth1Pct: 1000, AskDepth1Pct: -5,
	}
	if err := validateLiquidity(&s); !errors.Is(err, ErrRejected) {
		t.Errorf("expected negative depth rejection, got %v", err)
	}
}

func TestValidateSocial_SentimentRange(t *testing.T) {
	m := domain.SocialMetric{
		TokenSymbol: "PSG", TimestampMs: 1_700_000_000_000, SentimentScore: 1.2,
	}
	if err := validateSocial(&m); !errors.Is(err, ErrRejected) {
		t.Errorf("expected sentiment rejection, got %v", err)
	}
	m.SentimentScore = 0.7
	if err := validateSocial(&m); err != nil {
		t.Errorf("unexpected rejection: %v", err)
	}
}

func TestValidateHolders_GiniRange(t *testing.T) {
	s := domain.HolderSnapshot{
		TokenSymbol: "PSG", TimestampMs: 1_700_000_000_000, TotalHolders: 1000, Gini: 1.4,
	}
	if err := validateHolders(&s); !errors.Is(err, ErrRejected) {
		t.Errorf("expected gini rejection, got %v", err)
	}
}

func TestWritePriceVolume_DropsInvalidKeepsRest(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	pv := memory.NewPriceVolumeStore()
	w := NewWriter(pv, memory.NewSpreadStore(), memory.NewLiquidityStore(),
		memory.NewHolderStore(), memory.NewSocialStore(), logger)

	ctx := context.Background()
	good := validTick()
	bad := validTick()
	bad.Price = -3
	bad.Exchange = "chiliz"

	if err := w.WritePriceVolume(ctx, []*domain.PriceVolumeTick{good, bad}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := pv.GetLatestPerExchange(ctx, "PSG", good.TimestampMs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(latest) != 1 {
		t.Fatalf("expected 1 stored exchange, got %d", len(latest))
	}
	if _, ok := latest["binance"]; !ok {
		t.Error("expected the valid binance tick to survive")
	}
}

func TestDispatch_RoutesEnvelope(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	pv := memory.NewPriceVolumeStore()
	w := NewWriter(pv, memory.NewSpreadStore(), memory.NewLiquidityStore(),
		memory.NewHolderStore(), memory.NewSocialStore(), logger)

	raw := []byte(`{"type":"price_volume","data":[{
		"symbol":"PSG","exchange":"binance","timestamp_ms":1700000000000,
		"price":2.5,"volume_24h":100000,"trade_count_24h":500}]}`)

	if err := dispatch(context.Background(), w, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := pv.GetLatestPerExchange(context.Background(), "PSG", 1_700_000_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tick, ok := latest["binance"]
	if !ok {
		t.Fatal("expected stored tick for binance")
	}
	if tick.Price != 2.5 || tick.Volume24h != 100_000 {
		t.Errorf("unexpected tick: %+v", tick)
	}
}

func TestDispatch_UnknownTypeErrors(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	w := NewWriter(memory.NewPriceVolumeStore(), memory.NewSpreadStore(),
		memory.NewLiquidityStore(), memory.NewHolderStore(), memory.NewSocialStore(), logger)

	if err := dispatch(context.Background(), w, []byte(`{"type":"candles","data":[]}`)); err == nil {
		t.Error("expected an error for an unknown envelope type")
	}
}

func ptr[T any](v T) *T { return &v }
