package domain

// Pillar identifies one of the independent data dimensions tracked per token.
type Pillar string

const (
	PillarPrice     Pillar = "price"
	PillarVolume    Pillar = "volume"
	PillarSpread    Pillar = "spread"
	PillarLiquidity Pillar = "liquidity"
	PillarHolders   Pillar = "holders"
	PillarSocial    Pillar = "social"
)

// PriceVolumeTick is one per-exchange price/volume observation.
// Natural key: (TokenSymbol, Exchange, TimestampMs).
type PriceVolumeTick struct {
	TokenSymbol   string
	Exchange      string
	TimestampMs   int64
	Price         float64
	Change1hPct   *float64 // nil when the feed did not report it
	Change24hPct  *float64
	Volume24h     float64
	TradeCount24h int64
	High24h       float64
	Low24h        float64
}

// SpreadTick is one per-exchange order book spread observation.
// Natural key: (TokenSymbol, Exchange, TimestampMs).
type SpreadTick struct {
	TokenSymbol string
	Exchange    string
	TimestampMs int64
	BestBid     float64
	BestAsk     float64
	MidPrice    float64
	SpreadBps   float64
}

// LiquiditySnapshot is one per-exchange order book depth observation.
// Depth values are USD notional within the given band from mid.
// Natural key: (TokenSymbol, Exchange, TimestampMs).
type LiquiditySnapshot struct {
	TokenSymbol string
	Exchange    string
	TimestampMs int64

	BidDepth1Pct float64
	AskDepth1Pct float64
	BidDepth2Pct float64
	AskDepth2Pct float64
	BidDepth5Pct float64
	AskDepth5Pct float64

	// BookImbalance is (bid - ask) / (bid + ask) over total depth, in [-1, 1].
	BookImbalance float64

	// Slippage estimates (fractional, e.g. 0.02 = 2%) at standard trade sizes.
	SlippageBuy1k   float64
	SlippageBuy10k  float64
	SlippageBuy50k  float64
	SlippageSell1k  float64
	SlippageSell10k float64
	SlippageSell50k float64
}

// HolderSnapshot is a token-level on-chain holder distribution observation.
// No exchange dimension. Natural key: (TokenSymbol, TimestampMs).
type HolderSnapshot struct {
	TokenSymbol string
	TimestampMs int64

	TotalHolders    int
	HolderChange24h int
	HolderChange7d  int

	// Concentration: fraction of supply held by the top N wallets, in [0, 1].
	Top10Pct  float64
	Top50Pct  float64
	Top100Pct float64

	// Wallet size buckets by holding value.
	WalletsMicro  int
	WalletsSmall  int
	WalletsMedium int
	WalletsLarge  int
	WalletsWhale  int

	Gini float64 // inequality over the balance distribution, [0, 1]
}

// SocialMetric is a token-level social activity observation.
// Natural key: (TokenSymbol, TimestampMs).
type SocialMetric struct {
	TokenSymbol string
	TimestampMs int64

	TweetCount24h      int
	MentionCount24h    int
	SentimentScore     float64 // [0, 1], 0.5 = neutral
	PositiveCount      int
	NegativeCount      int
	NeutralCount       int
	InfluencerMentions int
}
