package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/query"
	"fantoken-intel/internal/storage/memory"
)

const baseTs = int64(1_700_000_040_000)

type apiFixture struct {
	server  *Server
	tokens  *memory.TokenStore
	buckets *memory.BucketStore
	scores  *memory.ScoreStore
	alerts  *memory.AlertStore
	corrs   *memory.CorrelationStore
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{
		tokens:  memory.NewTokenStore(),
		buckets: memory.NewBucketStore(),
		scores:  memory.NewScoreStore(),
		alerts:  memory.NewAlertStore(),
		corrs:   memory.NewCorrelationStore(),
	}

	svc := query.NewService(f.tokens, f.buckets, f.scores, f.corrs, f.alerts)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := DefaultServerConfig(":0")
	cfg.RateRPS = 1000
	cfg.RateBurst = 1000
	f.server = NewServer(cfg, svc, logger)
	return f
}

func (f *apiFixture) seedToken(t *testing.T, symbol string) {
	t.Helper()
	supply := 1_000_000.0
	err := f.tokens.Upsert(context.Background(), &domain.Token{
		Symbol:            symbol,
		Name:              symbol + " Fan Token",
		Team:              symbol + " FC",
		League:            "Test League",
		Country:           "FR",
		CirculatingSupply: &supply,
		IsActive:          true,
		CreatedAt:         time.UnixMilli(baseTs),
	})
	require.NoError(t, err)
}

func (f *apiFixture) seedBucket(t *testing.T, symbol string, ts int64, price float64) {
	t.Helper()
	spread := 25.0
	err := f.buckets.Upsert(context.Background(), &domain.AggregatedBucket{
		TokenSymbol:        symbol,
		TimestampMs:        ts,
		VWAPPrice:          price,
		TotalVolume24h:     500_000,
		TotalTradeCount24h: 1200,
		TotalLiquidity1Pct: 125_000,
		AvgSpreadBps:       &spread,
		ActiveExchanges:    3,
	})
	require.NoError(t, err)
}

func (f *apiFixture) seedScore(t *testing.T, symbol string, ts int64, overall int, grade domain.Grade) {
	t.Helper()
	err := f.scores.Insert(context.Background(), &domain.HealthScore{
		TokenSymbol:    symbol,
		TimestampMs:    ts,
		VolumeScore:    overall,
		LiquidityScore: overall,
		SpreadScore:    overall,
		HolderScore:    overall,
		StabilityScore: overall,
		Overall:        overall,
		Grade:          grade,
		Trend:          domain.TrendStable,
	})
	require.NoError(t, err)
}

func (f *apiFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "192.0.2.1:40000"
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandleHealth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.get(t, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleTokens(t *testing.T) {
	f := newAPIFixture(t)
	f.seedToken(t, "PSG")
	f.seedToken(t, "BAR")

	rec := f.get(t, "/api/tokens")

	require.Equal(t, http.StatusOK, rec.Code)
	tokens := decodeBody[[]tokenResponse](t, rec)
	require.Len(t, tokens, 2)
}

func TestHandleToken(t *testing.T) {
	f := newAPIFixture(t)
	f.seedToken(t, "PSG")

	rec := f.get(t, "/api/tokens/PSG")

	require.Equal(t, http.StatusOK, rec.Code)
	tok := decodeBody[tokenResponse](t, rec)
	assert.Equal(t, "PSG", tok.Symbol)
	assert.Equal(t, "PSG FC", tok.Team)
	require.NotNil(t, tok.CirculatingSupply)
	assert.Equal(t, 1_000_000.0, *tok.CirculatingSupply)
}

func TestHandleToken_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.get(t, "/api/tokens/NOPE")

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, ErrCodeNotFound, body.Error.Code)
}

func TestHandleLatestBucket(t *testing.T) {
	f := newAPIFixture(t)
	f.seedBucket(t, "PSG", baseTs, 3.50)
	f.seedBucket(t, "PSG", baseTs+60_000, 3.75)

	rec := f.get(t, "/api/tokens/PSG/bucket")

	require.Equal(t, http.StatusOK, rec.Code)
	b := decodeBody[bucketResponse](t, rec)
	assert.Equal(t, baseTs+60_000, b.TimestampMs)
	assert.Equal(t, 3.75, b.VWAPPrice)
	require.NotNil(t, b.AvgSpreadBps)
	assert.Equal(t, 25.0, *b.AvgSpreadBps)
}

func TestHandleBucketHistory(t *testing.T) {
	f := newAPIFixture(t)
	for i := int64(0); i < 5; i++ {
		f.seedBucket(t, "PSG", baseTs+i*60_000, 3.50)
	}

	path := fmt.Sprintf("/api/tokens/PSG/buckets?start=%d&end=%d", baseTs, baseTs+2*60_000)
	rec := f.get(t, path)

	require.Equal(t, http.StatusOK, rec.Code)
	hist := decodeBody[[]bucketResponse](t, rec)
	require.Len(t, hist, 3)
	assert.Equal(t, baseTs, hist[0].TimestampMs)
}

func TestHandleBucketHistory_BadRange(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.get(t, "/api/tokens/PSG/buckets?start=notanumber")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, ErrCodeInvalidInput, body.Error.Code)
}

func TestHandleBucketHistory_InvertedRange(t *testing.T) {
	f := newAPIFixture(t)

	path := fmt.Sprintf("/api/tokens/PSG/buckets?start=%d&end=%d", baseTs+1000, baseTs)
	rec := f.get(t, path)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, ErrCodeInvalidInput, body.Error.Code)
}

func TestHandleLatestScore(t *testing.T) {
	f := newAPIFixture(t)
	f.seedScore(t, "PSG", baseTs, 85, domain.GradeB)

	rec := f.get(t, "/api/tokens/PSG/score")

	require.Equal(t, http.StatusOK, rec.Code)
	sc := decodeBody[scoreResponse](t, rec)
	assert.Equal(t, 85, sc.Overall)
	assert.Equal(t, "B", sc.Grade)
	assert.Equal(t, "stable", sc.Trend)
}

func TestHandleScoresByGrade(t *testing.T) {
	f := newAPIFixture(t)
	f.seedScore(t, "PSG", baseTs, 92, domain.GradeA)
	f.seedScore(t, "BAR", baseTs, 65, domain.GradeC)

	rec := f.get(t, "/api/scores/grade/A")

	require.Equal(t, http.StatusOK, rec.Code)
	scores := decodeBody[[]scoreResponse](t, rec)
	require.Len(t, scores, 1)
	assert.Equal(t, "PSG", scores[0].Symbol)
}

func TestHandleScoresByGrade_Unknown(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.get(t, "/api/scores/grade/Z")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, ErrCodeInvalidInput, body.Error.Code)
}

func TestHandleCorrelations(t *testing.T) {
	f := newAPIFixture(t)
	r := 0.87
	err := f.corrs.Upsert(context.Background(), &domain.CorrelationResult{
		TokenSymbol:     "PSG",
		AnalysisDate:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		LookbackDays:    30,
		PriceVolumeCorr: &r,
		PriceVolumeLag:  2,
		MarketRegime:    domain.RegimeBullish,
	})
	require.NoError(t, err)

	rec := f.get(t, "/api/tokens/PSG/correlations?lookback=30")

	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeBody[correlationResponse](t, rec)
	assert.Equal(t, "2024-03-15", c.AnalysisDate)
	assert.Equal(t, 30, c.LookbackDays)
	require.NotNil(t, c.PriceVolumeCorr)
	assert.Equal(t, 0.87, *c.PriceVolumeCorr)
	assert.Equal(t, 2, c.PriceVolumeLag)
	assert.Equal(t, "bullish", c.MarketRegime)
}

func TestHandleCorrelations_BadLookback(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.get(t, "/api/tokens/PSG/correlations?lookback=abc")

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAlerts(t *testing.T) {
	f := newAPIFixture(t)
	err := f.alerts.InsertAlert(context.Background(), &domain.Alert{
		AlertID:     "a-1",
		RuleID:      "spread-wide",
		TokenSymbol: "PSG",
		TimestampMs: baseTs,
		Metric:      domain.MetricSpreadBps,
		Value:       140,
		Message:     "PSG: wide spread",
		Severity:    domain.SeverityWarning,
	})
	require.NoError(t, err)

	path := fmt.Sprintf("/api/alerts?start=%d&end=%d", baseTs-1000, baseTs+1000)
	rec := f.get(t, path)

	require.Equal(t, http.StatusOK, rec.Code)
	alerts := decodeBody[[]alertResponse](t, rec)
	require.Len(t, alerts, 1)
	assert.Equal(t, "a-1", alerts[0].AlertID)
	assert.Equal(t, "spread_bps", alerts[0].Metric)
	assert.Equal(t, 140.0, alerts[0].Value)
}

func TestRateLimit(t *testing.T) {
	f := newAPIFixture(t)
	f.seedToken(t, "PSG")

	limited := NewServer(&ServerConfig{
		Addr:            ":0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
		RateRPS:         1,
		RateBurst:       2,
	}, query.NewService(f.tokens, f.buckets, f.scores, f.corrs, f.alerts), newDiscardLogger())

	var lastCode int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/tokens", nil)
		req.RemoteAddr = "192.0.2.7:40000"
		rec := httptest.NewRecorder()
		limited.Handler().ServeHTTP(rec, req)
		lastCode = rec.Code
	}
	require.Equal(t, http.StatusTooManyRequests, lastCode)

	// Health stays reachable for throttled clients.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.0.2.7:40000"
	rec := httptest.NewRecorder()
	limited.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func newDiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
