// Package scheduler drives the periodic compute cycles: aggregation,
// scoring plus alerting, and the daily correlation analysis.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/aggregate"
	"fantoken-intel/internal/correlation"
	"fantoken-intel/internal/health"
	"fantoken-intel/internal/observability"
	"fantoken-intel/internal/signal"
)

// Intervals configures how often each cycle runs.
type Intervals struct {
	Aggregation time.Duration
	Scoring     time.Duration
	Correlation time.Duration
}

// Scheduler owns the compute cycle loops. Each loop runs its task once at
// start and then on every tick; a cycle that is still running when the next
// tick arrives is skipped rather than overlapped.
type Scheduler struct {
	aggregator *aggregate.Aggregator
	scorer     *health.Scorer
	correlator *correlation.Engine
	signals    *signal.Generator
	intervals  Intervals
	logger     *logrus.Logger

	mu                 sync.Mutex
	aggregationRunning bool
	scoringRunning     bool
	correlationRunning bool

	lastAggregation time.Time
	lastScoring     time.Time
	lastCorrelation time.Time
}

// New creates a scheduler over the compute engines.
func New(
	aggregator *aggregate.Aggregator,
	scorer *health.Scorer,
	correlator *correlation.Engine,
	signals *signal.Generator,
	intervals Intervals,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		aggregator: aggregator,
		scorer:     scorer,
		correlator: correlator,
		signals:    signals,
		intervals:  intervals,
		logger:     logger,
	}
}

// RunAggregationLoop aggregates on schedule until the context is cancelled.
func (s *Scheduler) RunAggregationLoop(ctx context.Context) error {
	s.logger.WithField("interval", s.intervals.Aggregation).Info("aggregation scheduler started")

	s.runAggregation(ctx)

	ticker := time.NewTicker(s.intervals.Aggregation)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runAggregation(ctx)
		}
	}
}

// RunScoringLoop scores and evaluates alert rules on schedule until the
// context is cancelled.
func (s *Scheduler) RunScoringLoop(ctx context.Context) error {
	s.logger.WithField("interval", s.intervals.Scoring).Info("scoring scheduler started")

	s.runScoring(ctx)

	ticker := time.NewTicker(s.intervals.Scoring)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runScoring(ctx)
		}
	}
}

// RunCorrelationLoop runs the correlation analysis on schedule until the
// context is cancelled.
func (s *Scheduler) RunCorrelationLoop(ctx context.Context) error {
	s.logger.WithField("interval", s.intervals.Correlation).Info("correlation scheduler started")

	s.runCorrelation(ctx)

	ticker := time.NewTicker(s.intervals.Correlation)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runCorrelation(ctx)
		}
	}
}

func (s *Scheduler) runAggregation(ctx context.Context) {
	if !s.tryStart(&s.aggregationRunning, "aggregation") {
		return
	}
	defer s.finish(&s.aggregationRunning, &s.lastAggregation)

	start := time.Now()
	if err := s.aggregator.AggregateAll(ctx, start); err != nil {
		s.logger.WithError(err).Error("aggregation cycle failed")
		return
	}
	observability.DefaultMetrics.CycleDuration.
		WithLabelValues("aggregation").Observe(time.Since(start).Seconds())
	observability.DefaultMetrics.LastSuccessfulAggregation.SetToCurrentTime()
	s.logger.WithField("duration", time.Since(start)).Info("aggregation cycle done")
}

func (s *Scheduler) runScoring(ctx context.Context) {
	if !s.tryStart(&s.scoringRunning, "scoring") {
		return
	}
	defer s.finish(&s.scoringRunning, &s.lastScoring)

	start := time.Now()
	if err := s.scorer.ScoreAll(ctx); err != nil {
		s.logger.WithError(err).Error("scoring cycle failed")
		return
	}

	fired, err := s.signals.EvaluateAll(ctx, start.UnixMilli())
	if err != nil {
		s.logger.WithError(err).Error("alert evaluation failed")
		return
	}

	observability.DefaultMetrics.CycleDuration.
		WithLabelValues("scoring").Observe(time.Since(start).Seconds())
	observability.DefaultMetrics.LastSuccessfulScoring.SetToCurrentTime()
	s.logger.WithFields(logrus.Fields{
		"duration":     time.Since(start),
		"alerts_fired": fired,
	}).Info("scoring cycle done")
}

func (s *Scheduler) runCorrelation(ctx context.Context) {
	if !s.tryStart(&s.correlationRunning, "correlation") {
		return
	}
	defer s.finish(&s.correlationRunning, &s.lastCorrelation)

	start := time.Now()
	if err := s.correlator.AnalyzeAll(ctx, start); err != nil {
		s.logger.WithError(err).Error("correlation cycle failed")
		return
	}
	observability.DefaultMetrics.CycleDuration.
		WithLabelValues("correlation").Observe(time.Since(start).Seconds())
	s.logger.WithField("duration", time.Since(start)).Info("correlation cycle done")
}

func (s *Scheduler) tryStart(flag *bool, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *flag {
		s.logger.WithField("task", name).Warn("cycle still running, skipping tick")
		return false
	}
	*flag = true
	return true
}

func (s *Scheduler) finish(flag *bool, last *time.Time) {
	s.mu.Lock()
	*flag = false
	*last = time.Now()
	s.mu.Unlock()
}

// Status reports the scheduler's last-run times, used by the status endpoint.
type Status struct {
	AggregationRunning bool      `json:"aggregation_running"`
	ScoringRunning     bool      `json:"scoring_running"`
	CorrelationRunning bool      `json:"correlation_running"`
	LastAggregation    time.Time `json:"last_aggregation"`
	LastScoring        time.Time `json:"last_scoring"`
	LastCorrelation    time.Time `json:"last_correlation"`
}

// Status returns a snapshot of loop state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		AggregationRunning: s.aggregationRunning,
		ScoringRunning:     s.scoringRunning,
		CorrelationRunning: s.correlationRunning,
		LastAggregation:    s.lastAggregation,
		LastScoring:        s.lastScoring,
		LastCorrelation:    s.lastCorrelation,
	}
}
