package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/storage"
)

// Response DTOs. Domain types stay JSON-free; the wire shape is owned here.

type tokenResponse struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Team              string   `json:"team,omitempty"`
	League            string   `json:"league,omitempty"`
	Country           string   `json:"country,omitempty"`
	CirculatingSupply *float64 `json:"circulating_supply,omitempty"`
	IsActive          bool     `json:"is_active"`
}

type bucketResponse struct {
	Symbol             string   `json:"symbol"`
	TimestampMs        int64    `json:"timestamp_ms"`
	VWAPPrice          float64  `json:"vwap_price"`
	TotalVolume24h     float64  `json:"total_volume_24h"`
	TotalTradeCount24h int64    `json:"total_trade_count_24h"`
	AvgSpreadBps       *float64 `json:"avg_spread_bps,omitempty"`
	TotalLiquidity1Pct float64  `json:"total_liquidity_1pct"`
	PriceChange1hPct   *float64 `json:"price_change_1h_pct,omitempty"`
	PriceChange24hPct  *float64 `json:"price_change_24h_pct,omitempty"`
	PriceChange7dPct   *float64 `json:"price_change_7d_pct,omitempty"`
	TotalHolders       *int     `json:"total_holders,omitempty"`
	HolderChange24h    *int     `json:"holder_change_24h,omitempty"`
	MarketCap          *float64 `json:"market_cap,omitempty"`
	ActiveExchanges    int      `json:"active_exchanges"`
}

type scoreResponse struct {
	Symbol              string   `json:"symbol"`
	TimestampMs         int64    `json:"timestamp_ms"`
	VolumeScore         int      `json:"volume_score"`
	LiquidityScore      int      `json:"liquidity_score"`
	SpreadScore         int      `json:"spread_score"`
	HolderScore         int      `json:"holder_score"`
	StabilityScore      int      `json:"stability_score"`
	Overall             int      `json:"overall"`
	Grade               string   `json:"grade"`
	Trend               string   `json:"trend"`
	StalePillars        []string `json:"stale_pillars,omitempty"`
	InsufficientHistory bool     `json:"insufficient_history"`
}

type correlationResponse struct {
	Symbol              string   `json:"symbol"`
	AnalysisDate        string   `json:"analysis_date"`
	LookbackDays        int      `json:"lookback_days"`
	PriceVolumeCorr     *float64 `json:"price_volume_corr,omitempty"`
	PriceVolumeLag      int      `json:"price_volume_lag"`
	PriceHoldersCorr    *float64 `json:"price_holders_corr,omitempty"`
	PriceHoldersLag     int      `json:"price_holders_lag"`
	VolumeHoldersCorr   *float64 `json:"volume_holders_corr,omitempty"`
	SpreadPriceCorr     *float64 `json:"spread_price_corr,omitempty"`
	LiquidityVolumeCorr *float64 `json:"liquidity_volume_corr,omitempty"`
	MarketRegime        string   `json:"market_regime"`
}

type alertResponse struct {
	AlertID     string  `json:"alert_id"`
	RuleID      string  `json:"rule_id"`
	Symbol      string  `json:"symbol"`
	TimestampMs int64   `json:"timestamp_ms"`
	Metric      string  `json:"metric"`
	Value       float64 `json:"value"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"`
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.queries.Tokens(r.Context())
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	out := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, toTokenResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	t, err := s.queries.Token(r.Context(), symbol)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTokenResponse(t))
}

func (s *Server) handleLatestBucket(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	b, err := s.queries.LatestBucket(r.Context(), symbol)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toBucketResponse(b))
}

func (s *Server) handleBucketHistory(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	start, end, err := timeRangeParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}
	hist, err := s.queries.BucketHistory(r.Context(), symbol, start, end)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	out := make([]bucketResponse, 0, len(hist))
	for _, b := range hist {
		out = append(out, toBucketResponse(b))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleLatestScore(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	sc, err := s.queries.LatestScore(r.Context(), symbol)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toScoreResponse(sc))
}

func (s *Server) handleScoreHistory(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	start, end, err := timeRangeParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}
	hist, err := s.queries.ScoreHistory(r.Context(), symbol, start, end)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	out := make([]scoreResponse, 0, len(hist))
	for _, sc := range hist {
		out = append(out, toScoreResponse(sc))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleScoresByGrade(w http.ResponseWriter, r *http.Request) {
	grade := domain.Grade(mux.Vars(r)["grade"])
	scores, err := s.queries.ScoresByGrade(r.Context(), grade)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	out := make([]scoreResponse, 0, len(scores))
	for _, sc := range scores {
		out = append(out, toScoreResponse(sc))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	lookback := 30
	if v := r.URL.Query().Get("lookback"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "lookback must be an integer")
			return
		}
		lookback = n
	}
	c, err := s.queries.LatestCorrelation(r.Context(), symbol, lookback)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCorrelationResponse(c))
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeRangeParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
		return
	}
	alerts, err := s.queries.RecentAlerts(r.Context(), start, end)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertResponse{
			AlertID:     a.AlertID,
			RuleID:      a.RuleID,
			Symbol:      a.TokenSymbol,
			TimestampMs: a.TimestampMs,
			Metric:      string(a.Metric),
			Value:       a.Value,
			Message:     a.Message,
			Severity:    string(a.Severity),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// timeRangeParams reads start/end query params (ms). end defaults to now,
// start to 24h before end.
func timeRangeParams(r *http.Request) (start, end int64, err error) {
	end = time.Now().UnixMilli()
	if v := r.URL.Query().Get("end"); v != "" {
		end, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, errors.New("end must be a unix ms timestamp")
		}
	}
	start = end - 24*60*60*1000
	if v := r.URL.Query().Get("start"); v != "" {
		start, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, errors.New("start must be a unix ms timestamp")
		}
	}
	return start, end, nil
}

// respondStoreError maps storage sentinels to HTTP statuses.
func (s *Server) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, storage.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error())
	default:
		s.logger.WithError(err).Error("query failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "an internal server error occurred")
	}
}

func toTokenResponse(t *domain.Token) tokenResponse {
	return tokenResponse{
		Symbol:            t.Symbol,
		Name:              t.Name,
		Team:              t.Team,
		League:            t.League,
		Country:           t.Country,
		CirculatingSupply: t.CirculatingSupply,
		IsActive:          t.IsActive,
	}
}

func toBucketResponse(b *domain.AggregatedBucket) bucketResponse {
	return bucketResponse{
		Symbol:             b.TokenSymbol,
		TimestampMs:        b.TimestampMs,
		VWAPPrice:          b.VWAPPrice,
		TotalVolume24h:     b.TotalVolume24h,
		TotalTradeCount24h: b.TotalTradeCount24h,
		AvgSpreadBps:       b.AvgSpreadBps,
		TotalLiquidity1Pct: b.TotalLiquidity1Pct,
		PriceChange1hPct:   b.PriceChange1hPct,
		PriceChange24hPct:  b.PriceChange24hPct,
		PriceChange7dPct:   b.PriceChange7dPct,
		TotalHolders:       b.TotalHolders,
		HolderChange24h:    b.HolderChange24h,
		MarketCap:          b.MarketCap,
		ActiveExchanges:    b.ActiveExchanges,
	}
}

func toScoreResponse(sc *domain.HealthScore) scoreResponse {
	return scoreResponse{
		Symbol:              sc.TokenSymbol,
		TimestampMs:         sc.TimestampMs,
		VolumeScore:         sc.VolumeScore,
		LiquidityScore:      sc.LiquidityScore,
		SpreadScore:         sc.SpreadScore,
		HolderScore:         sc.HolderScore,
		StabilityScore:      sc.StabilityScore,
		Overall:             sc.Overall,
		Grade:               string(sc.Grade),
		Trend:               string(sc.Trend),
		StalePillars:        sc.StalePillars,
		InsufficientHistory: sc.InsufficientHistory,
	}
}

func toCorrelationResponse(c *domain.CorrelationResult) correlationResponse {
	return correlationResponse{
		Symbol:              c.TokenSymbol,
		AnalysisDate:        c.AnalysisDate.Format("2006-01-02"),
		LookbackDays:        c.LookbackDays,
		PriceVolumeCorr:     c.PriceVolumeCorr,
		PriceVolumeLag:      c.PriceVolumeLag,
		PriceHoldersCorr:    c.PriceHoldersCorr,
		PriceHoldersLag:     c.PriceHoldersLag,
		VolumeHoldersCorr:   c.VolumeHoldersCorr,
		SpreadPriceCorr:     c.SpreadPriceCorr,
		LiquidityVolumeCorr: c.LiquidityVolumeCorr,
		MarketRegime:        string(c.MarketRegime),
	}
}
