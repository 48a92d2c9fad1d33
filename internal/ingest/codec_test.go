package ingest

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/storage/memory"
)

func newCodecFixture() (*Writer, *memory.SpreadStore, *memory.LiquidityStore, *memory.HolderStore) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	spreads := memory.NewSpreadStore()
	liquidity := memory.NewLiquidityStore()
	holders := memory.NewHolderStore()
	w := NewWriter(memory.NewPriceVolumeStore(), spreads, liquidity, holders,
		memory.NewSocialStore(), logger)
	return w, spreads, liquidity, holders
}

func TestDispatch_DerivesSpreadFromQuotes(t *testing.T) {
	w, spreads, _, _ := newCodecFixture()

	raw := []byte(`{"type":"spread","data":[{
		"symbol":"PSG","exchange":"binance","timestamp_ms":1700000000000,
		"best_bid":2.49,"best_ask":2.51}]}`)

	if err := dispatch(context.Background(), w, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := spreads.GetLatestPerExchange(context.Background(), "PSG", 1_700_000_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tick, ok := latest["binance"]
	if !ok {
		t.Fatal("expected stored tick for binance")
	}
	if tick.MidPrice != 2.5 {
		t.Errorf("MidPrice = %v, want 2.5", tick.MidPrice)
	}
	// (2.51-2.49)/2.50 * 10000 = 80 bps
	if math.Abs(tick.SpreadBps-80) > 1e-9 {
		t.Errorf("SpreadBps = %v, want 80", tick.SpreadBps)
	}
}

func TestDispatch_PrecomputedSpreadWins(t *testing.T) {
	w, spreads, _, _ := newCodecFixture()

	raw := []byte(`{"type":"spread","data":[{
		"symbol":"PSG","exchange":"binance","timestamp_ms":1700000000000,
		"best_bid":2.49,"best_ask":2.51,"mid_price":2.5,"spread_bps":75}]}`)

	if err := dispatch(context.Background(), w, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := spreads.GetLatestPerExchange(context.Background(), "PSG", 1_700_000_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := latest["binance"].SpreadBps; got != 75 {
		t.Errorf("SpreadBps = %v, want the collector's 75", got)
	}
}

func TestDispatch_DerivesDepthAndSlippageFromBook(t *testing.T) {
	w, _, liquidity, _ := newCodecFixture()

	// Mid is 10.0. Bid levels at -0.5% and -3%, ask levels at +0.5% and +3%;
	// only the first level of each side falls inside the 1% and 2% bands.
	raw := []byte(`{"type":"liquidity","data":[{
		"symbol":"PSG","exchange":"chiliz","timestamp_ms":1700000000000,
		"bids":[[9.95,1000],[9.70,2000]],
		"asks":[[10.05,1000],[10.30,2000]]}]}`)

	if err := dispatch(context.Background(), w, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := liquidity.GetLatestPerExchange(context.Background(), "PSG", 1_700_000_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, ok := latest["chiliz"]
	if !ok {
		t.Fatal("expected stored snapshot for chiliz")
	}

	if snap.BidDepth1Pct != 10_000 {
		t.Errorf("BidDepth1Pct = %v, want 10000", snap.BidDepth1Pct)
	}
	if snap.AskDepth1Pct != 10_000 {
		t.Errorf("AskDepth1Pct = %v, want 10000", snap.AskDepth1Pct)
	}
	if snap.BidDepth5Pct != 30_000 {
		t.Errorf("BidDepth5Pct = %v, want 30000", snap.BidDepth5Pct)
	}
	if snap.BookImbalance != 0 {
		t.Errorf("BookImbalance = %v, want 0 for a symmetric book", snap.BookImbalance)
	}

	// A 1k buy fills entirely at the best ask: |10.05-10.00|/10.00 = 0.5%.
	if math.Abs(snap.SlippageBuy1k-0.005) > 1e-9 {
		t.Errorf("SlippageBuy1k = %v, want 0.005", snap.SlippageBuy1k)
	}
	// A 50k buy exceeds total ask depth (~30.65k notional): total slippage.
	if snap.SlippageBuy50k != 1 {
		t.Errorf("SlippageBuy50k = %v, want 1 for an unfillable order", snap.SlippageBuy50k)
	}
}

func TestDispatch_PrecomputedDepthSkipsDerivation(t *testing.T) {
	w, _, liquidity, _ := newCodecFixture()

	raw := []byte(`{"type":"liquidity","data":[{
		"symbol":"PSG","exchange":"chiliz","timestamp_ms":1700000000000,
		"bid_depth_1pct":5000,"ask_depth_1pct":4000,
		"bids":[[9.95,1000]],"asks":[[10.05,1000]]}]}`)

	if err := dispatch(context.Background(), w, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := liquidity.GetLatestPerExchange(context.Background(), "PSG", 1_700_000_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := latest["chiliz"].BidDepth1Pct; got != 5000 {
		t.Errorf("BidDepth1Pct = %v, want the collector's 5000", got)
	}
}

func TestDispatch_DerivesGiniFromBalances(t *testing.T) {
	w, _, _, holders := newCodecFixture()

	raw := []byte(`{"type":"holders","data":{
		"symbol":"PSG","timestamp_ms":1700000000000,"total_holders":50000,
		"top_10_pct":0.4,"top_50_pct":0.6,"top_100_pct":0.7,
		"top_balances":[900000,50000,30000,10000,5000,3000,1000,500,300,200]}}`)

	if err := dispatch(context.Background(), w, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := holders.GetLatest(context.Background(), "PSG", 1_700_000_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One wallet holding 90% of the listed supply must land near the top of
	// the scale.
	if snap.Gini < 0.7 || snap.Gini > 1 {
		t.Errorf("Gini = %v, want a heavily concentrated value in [0.7, 1]", snap.Gini)
	}
}
