// Package ingest validates raw per-exchange observations and writes the
// survivors to storage. One bad row never sinks its batch.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/observability"
	"fantoken-intel/internal/storage"
)

// Writer validates and persists observation batches.
type Writer struct {
	priceVolume storage.PriceVolumeStore
	spreads     storage.SpreadStore
	liquidity   storage.LiquidityStore
	holders     storage.HolderStore
	social      storage.SocialStore
	logger      *logrus.Logger
}

// NewWriter creates an observation writer.
func NewWriter(
	priceVolume storage.PriceVolumeStore,
	spreads storage.SpreadStore,
	liquidity storage.LiquidityStore,
	holders storage.HolderStore,
	social storage.SocialStore,
	logger *logrus.Logger,
) *Writer {
	return &Writer{
		priceVolume: priceVolume,
		spreads:     spreads,
		liquidity:   liquidity,
		holders:     holders,
		social:      social,
		logger:      logger,
	}
}

// WritePriceVolume validates and upserts price/volume ticks. Invalid ticks
// are logged, counted and dropped; the rest of the batch proceeds.
func (w *Writer) WritePriceVolume(ctx context.Context, ticks []*domain.PriceVolumeTick) error {
	valid := make([]*domain.PriceVolumeTick, 0, len(ticks))
	for _, t := range ticks {
		if err := validatePriceVolume(t); err != nil {
			w.rejectLog(string(domain.PillarPrice), t.TokenSymbol, t.Exchange, err)
			continue
		}
		valid = append(valid, t)
	}
	if len(valid) == 0 {
		return nil
	}
	if err := w.priceVolume.Upsert(ctx, valid); err != nil {
		return fmt.Errorf("upsert price/volume batch: %w", err)
	}
	observability.DefaultMetrics.ObservationsIngested.
		WithLabelValues(string(domain.PillarPrice)).Add(float64(len(valid)))
	for _, t := range valid {
		observeLag(t.TimestampMs)
	}
	return nil
}

// WriteSpreads validates and upserts spread ticks.
func (w *Writer) WriteSpreads(ctx context.Context, ticks []*domain.SpreadTick) error {
	valid := make([]*domain.SpreadTick, 0, len(ticks))
	for _, t := range ticks {
		if err := validateSpread(t); err != nil {
			w.rejectLog(string(domain.PillarSpread), t.TokenSymbol, t.Exchange, err)
			continue
		}
		valid = append(valid, t)
	}
	if len(valid) == 0 {
		return nil
	}
	if err := w.spreads.Upsert(ctx, valid); err != nil {
		return fmt.Errorf("upsert spread batch: %w", err)
	}
	observability.DefaultMetrics.ObservationsIngested.
		WithLabelValues(string(domain.PillarSpread)).Add(float64(len(valid)))
	for _, t := range valid {
		observeLag(t.TimestampMs)
	}
	return nil
}

// WriteLiquidity validates and upserts depth snapshots.
func (w *Writer) WriteLiquidity(ctx context.Context, snaps []*domain.LiquiditySnapshot) error {
	valid := make([]*domain.LiquiditySnapshot, 0, len(snaps))
	for _, s := range snaps {
		if err := validateLiquidity(s); err != nil {
			w.rejectLog(string(domain.PillarLiquidity), s.TokenSymbol, s.Exchange, err)
			continue
		}
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return nil
	}
	if err := w.liquidity.Upsert(ctx, valid); err != nil {
		return fmt.Errorf("upsert liquidity batch: %w", err)
	}
	observability.DefaultMetrics.ObservationsIngested.
		WithLabelValues(string(domain.PillarLiquidity)).Add(float64(len(valid)))
	for _, s := range valid {
		observeLag(s.TimestampMs)
	}
	return nil
}

// WriteHolders validates and upserts one holder snapshot.
func (w *Writer) WriteHolders(ctx context.Context, s *domain.HolderSnapshot) error {
	if err := validateHolders(s); err != nil {
		w.rejectLog(string(domain.PillarHolders), s.TokenSymbol, "", err)
		return nil
	}
	if err := w.holders.Upsert(ctx, s); err != nil {
		return fmt.Errorf("upsert holder snapshot: %w", err)
	}
	observability.RecordObservationIngested(string(domain.PillarHolders))
	observeLag(s.TimestampMs)
	return nil
}

// WriteSocial validates and upserts one social metric.
func (w *Writer) WriteSocial(ctx context.Context, m *domain.SocialMetric) error {
	if err := validateSocial(m); err != nil {
		w.rejectLog(string(domain.PillarSocial), m.TokenSymbol, "", err)
		return nil
	}
	if err := w.social.Upsert(ctx, m); err != nil {
		return fmt.Errorf("upsert social metric: %w", err)
	}
	observability.RecordObservationIngested(string(domain.PillarSocial))
	observeLag(m.TimestampMs)
	return nil
}

// observeLag records how far behind wall clock an accepted observation
// arrived. Future-stamped rows (clock skew within the validation tolerance)
// count as zero lag.
func observeLag(tsMs int64) {
	lag := time.Since(time.UnixMilli(tsMs)).Seconds()
	if lag < 0 {
		lag = 0
	}
	observability.DefaultMetrics.ObservationLag.Observe(lag)
}

func (w *Writer) rejectLog(pillar, symbol, exchange string, err error) {
	observability.RecordObservationRejected(pillar, "validation")
	w.logger.WithError(err).WithFields(logrus.Fields{
		"pillar":   pillar,
		"token":    symbol,
		"exchange": exchange,
	}).Warn("observation rejected")
}
