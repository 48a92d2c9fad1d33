package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/numeric"
)

// envelope is the wire format shared by the Kafka and WebSocket feeds: a
// pillar discriminator plus the raw payload.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Wire payloads. Collectors publish snake_case JSON.
type priceVolumeMsg struct {
	Symbol       string   `json:"symbol"`
	Exchange     string   `json:"exchange"`
	TimestampMs  int64    `json:"timestamp_ms"`
	Price        float64  `json:"price"`
	Change1hPct  *float64 `json:"change_1h_pct"`
	Change24hPct *float64 `json:"change_24h_pct"`
	Volume24h    float64  `json:"volume_24h"`
	TradeCount   int64    `json:"trade_count_24h"`
	High24h      float64  `json:"high_24h"`
	Low24h       float64  `json:"low_24h"`
}

// spreadMsg carries top-of-book quotes. Collectors that do not precompute
// mid_price or spread_bps may leave them zero; both are then derived from
// the quotes.
type spreadMsg struct {
	Symbol      string  `json:"symbol"`
	Exchange    string  `json:"exchange"`
	TimestampMs int64   `json:"timestamp_ms"`
	BestBid     float64 `json:"best_bid"`
	BestAsk     float64 `json:"best_ask"`
	MidPrice    float64 `json:"mid_price"`
	SpreadBps   float64 `json:"spread_bps"`
}

// bookLevelMsg is one [price, size] order book level.
type bookLevelMsg [2]float64

// liquidityMsg carries order book depth. Collectors either send precomputed
// depth bands, or raw bids/asks (best-first) from which depth and slippage
// are derived.
type liquidityMsg struct {
	Symbol        string         `json:"symbol"`
	Exchange      string         `json:"exchange"`
	TimestampMs   int64          `json:"timestamp_ms"`
	BidDepth1Pct  float64        `json:"bid_depth_1pct"`
	AskDepth1Pct  float64        `json:"ask_depth_1pct"`
	BidDepth2Pct  float64        `json:"bid_depth_2pct"`
	AskDepth2Pct  float64        `json:"ask_depth_2pct"`
	BidDepth5Pct  float64        `json:"bid_depth_5pct"`
	AskDepth5Pct  float64        `json:"ask_depth_5pct"`
	BookImbalance float64        `json:"book_imbalance"`
	Bids          []bookLevelMsg `json:"bids,omitempty"`
	Asks          []bookLevelMsg `json:"asks,omitempty"`
}

type holdersMsg struct {
	Symbol          string  `json:"symbol"`
	TimestampMs     int64   `json:"timestamp_ms"`
	TotalHolders    int     `json:"total_holders"`
	HolderChange24h int     `json:"holder_change_24h"`
	HolderChange7d  int     `json:"holder_change_7d"`
	Top10Pct        float64 `json:"top_10_pct"`
	Top50Pct        float64 `json:"top_50_pct"`
	Top100Pct       float64 `json:"top_100_pct"`
	WalletsMicro    int     `json:"wallets_micro"`
	WalletsSmall    int     `json:"wallets_small"`
	WalletsMedium   int     `json:"wallets_medium"`
	WalletsLarge    int     `json:"wallets_large"`
	WalletsWhale    int     `json:"wallets_whale"`

	// Gini is taken as-is when present; otherwise derived from TopBalances.
	Gini        float64   `json:"gini"`
	TopBalances []float64 `json:"top_balances,omitempty"`
}

type socialMsg struct {
	Symbol             string  `json:"symbol"`
	TimestampMs        int64   `json:"timestamp_ms"`
	TweetCount24h      int     `json:"tweet_count_24h"`
	MentionCount24h    int     `json:"mention_count_24h"`
	SentimentScore     float64 `json:"sentiment_score"`
	PositiveCount      int     `json:"positive_count"`
	NegativeCount      int     `json:"negative_count"`
	NeutralCount       int     `json:"neutral_count"`
	InfluencerMentions int     `json:"influencer_mentions"`
}

// dispatch decodes one envelope and routes it to the writer. Unknown types
// are an error so a schema drift surfaces in logs instead of silence.
func dispatch(ctx context.Context, w *Writer, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case "price_volume":
		var msgs []priceVolumeMsg
		if err := json.Unmarshal(env.Data, &msgs); err != nil {
			return fmt.Errorf("decode price_volume payload: %w", err)
		}
		ticks := make([]*domain.PriceVolumeTick, 0, len(msgs))
		for _, m := range msgs {
			ticks = append(ticks, &domain.PriceVolumeTick{
				TokenSymbol:   m.Symbol,
				Exchange:      m.Exchange,
				TimestampMs:   m.TimestampMs,
				Price:         m.Price,
				Change1hPct:   m.Change1hPct,
				Change24hPct:  m.Change24hPct,
				Volume24h:     m.Volume24h,
				TradeCount24h: m.TradeCount,
				High24h:       m.High24h,
				Low24h:        m.Low24h,
			})
		}
		return w.WritePriceVolume(ctx, ticks)

	case "spread":
		var msgs []spreadMsg
		if err := json.Unmarshal(env.Data, &msgs); err != nil {
			return fmt.Errorf("decode spread payload: %w", err)
		}
		ticks := make([]*domain.SpreadTick, 0, len(msgs))
		for _, m := range msgs {
			mid, bps := m.MidPrice, m.SpreadBps
			if mid == 0 {
				if derived, err := numeric.MidPrice(m.BestBid, m.BestAsk); err == nil {
					mid = derived
				}
			}
			if bps == 0 {
				if derived, err := numeric.SpreadBps(m.BestBid, m.BestAsk); err == nil {
					bps = derived
				}
			}
			ticks = append(ticks, &domain.SpreadTick{
				TokenSymbol: m.Symbol,
				Exchange:    m.Exchange,
				TimestampMs: m.TimestampMs,
				BestBid:     m.BestBid,
				BestAsk:     m.BestAsk,
				MidPrice:    mid,
				SpreadBps:   bps,
			})
		}
		return w.WriteSpreads(ctx, ticks)

	case "liquidity":
		var msgs []liquidityMsg
		if err := json.Unmarshal(env.Data, &msgs); err != nil {
			return fmt.Errorf("decode liquidity payload: %w", err)
		}
		snaps := make([]*domain.LiquiditySnapshot, 0, len(msgs))
		for _, m := range msgs {
			snaps = append(snaps, snapshotFromLiquidityMsg(m))
		}
		return w.WriteLiquidity(ctx, snaps)

	case "holders":
		var m holdersMsg
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return fmt.Errorf("decode holders payload: %w", err)
		}
		if m.Gini == 0 && len(m.TopBalances) > 0 {
			m.Gini = numeric.Gini(m.TopBalances)
		}
		return w.WriteHolders(ctx, &domain.HolderSnapshot{
			TokenSymbol:     m.Symbol,
			TimestampMs:     m.TimestampMs,
			TotalHolders:    m.TotalHolders,
			HolderChange24h: m.HolderChange24h,
			HolderChange7d:  m.HolderChange7d,
			Top10Pct:        m.Top10Pct,
			Top50Pct:        m.Top50Pct,
			Top100Pct:       m.Top100Pct,
			WalletsMicro:    m.WalletsMicro,
			WalletsSmall:    m.WalletsSmall,
			WalletsMedium:   m.WalletsMedium,
			WalletsLarge:    m.WalletsLarge,
			WalletsWhale:    m.WalletsWhale,
			Gini:            m.Gini,
		})

	case "social":
		var m socialMsg
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return fmt.Errorf("decode social payload: %w", err)
		}
		return w.WriteSocial(ctx, &domain.SocialMetric{
			TokenSymbol:        m.Symbol,
			TimestampMs:        m.TimestampMs,
			TweetCount24h:      m.TweetCount24h,
			MentionCount24h:    m.MentionCount24h,
			SentimentScore:     m.SentimentScore,
			PositiveCount:      m.PositiveCount,
			NegativeCount:      m.NegativeCount,
			NeutralCount:       m.NeutralCount,
			InfluencerMentions: m.InfluencerMentions,
		})

	default:
		return fmt.Errorf("unknown envelope type %q", env.Type)
	}
}

// Notional sizes for the standard slippage estimates, in quote units.
const (
	slippageNotionalSmall  = 1_000
	slippageNotionalMedium = 10_000
	slippageNotionalLarge  = 50_000
)

// snapshotFromLiquidityMsg converts a wire message to a snapshot. When the
// collector sent a raw book instead of precomputed bands, depth and slippage
// are derived from it.
func snapshotFromLiquidityMsg(m liquidityMsg) *domain.LiquiditySnapshot {
	snap := &domain.LiquiditySnapshot{
		TokenSymbol:   m.Symbol,
		Exchange:      m.Exchange,
		TimestampMs:   m.TimestampMs,
		BidDepth1Pct:  m.BidDepth1Pct,
		AskDepth1Pct:  m.AskDepth1Pct,
		BidDepth2Pct:  m.BidDepth2Pct,
		AskDepth2Pct:  m.AskDepth2Pct,
		BidDepth5Pct:  m.BidDepth5Pct,
		AskDepth5Pct:  m.AskDepth5Pct,
		BookImbalance: m.BookImbalance,
	}

	if len(m.Bids) == 0 || len(m.Asks) == 0 {
		return snap
	}
	mid, err := numeric.MidPrice(m.Bids[0][0], m.Asks[0][0])
	if err != nil {
		return snap
	}

	bids := bookLevels(m.Bids)
	asks := bookLevels(m.Asks)

	if snap.BidDepth1Pct == 0 && snap.AskDepth1Pct == 0 {
		// Depth bands are USD notional, so base size scales by mid.
		snap.BidDepth1Pct = numeric.DepthWithinBand(bids, mid, 1) * mid
		snap.AskDepth1Pct = numeric.DepthWithinBand(asks, mid, 1) * mid
		snap.BidDepth2Pct = numeric.DepthWithinBand(bids, mid, 2) * mid
		snap.AskDepth2Pct = numeric.DepthWithinBand(asks, mid, 2) * mid
		snap.BidDepth5Pct = numeric.DepthWithinBand(bids, mid, 5) * mid
		snap.AskDepth5Pct = numeric.DepthWithinBand(asks, mid, 5) * mid
		if total := snap.BidDepth5Pct + snap.AskDepth5Pct; total > 0 {
			snap.BookImbalance = (snap.BidDepth5Pct - snap.AskDepth5Pct) / total
		}
	}

	snap.SlippageBuy1k = slippageFraction(asks, mid, slippageNotionalSmall)
	snap.SlippageBuy10k = slippageFraction(asks, mid, slippageNotionalMedium)
	snap.SlippageBuy50k = slippageFraction(asks, mid, slippageNotionalLarge)
	snap.SlippageSell1k = slippageFraction(bids, mid, slippageNotionalSmall)
	snap.SlippageSell10k = slippageFraction(bids, mid, slippageNotionalMedium)
	snap.SlippageSell50k = slippageFraction(bids, mid, slippageNotionalLarge)

	return snap
}

// slippageFraction returns fractional slippage for the given notional. A book
// too thin to fill the order reports total slippage (1.0).
func slippageFraction(levels []numeric.BookLevel, mid, notional float64) float64 {
	pct, err := numeric.SlippagePct(levels, mid, notional)
	if err != nil {
		if errors.Is(err, numeric.ErrUnfillable) {
			return 1
		}
		return 0
	}
	return pct / 100
}

func bookLevels(levels []bookLevelMsg) []numeric.BookLevel {
	out := make([]numeric.BookLevel, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, numeric.BookLevel{Price: lvl[0], Size: lvl[1]})
	}
	return out
}
