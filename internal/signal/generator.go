// Package signal evaluates alert rules against the latest scored and
// aggregated state of each token and records fired alerts.
package signal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/domain"
	"fantoken-intel/internal/observability"
	"fantoken-intel/internal/storage"
)

// Generator evaluates alert rules each cycle and fires deduplicated alerts.
type Generator struct {
	alerts  storage.AlertStore
	buckets storage.BucketStore
	scores  storage.ScoreStore
	tokens  storage.TokenStore
	logger  *logrus.Logger
}

// NewGenerator creates a signal generator.
func NewGenerator(
	alerts storage.AlertStore,
	buckets storage.BucketStore,
	scores storage.ScoreStore,
	tokens storage.TokenStore,
	logger *logrus.Logger,
) *Generator {
	return &Generator{
		alerts:  alerts,
		buckets: buckets,
		scores:  scores,
		tokens:  tokens,
		logger:  logger,
	}
}

// SeedRules upserts the built-in rule set.
func (g *Generator) SeedRules(ctx context.Context) error {
	for _, r := range DefaultRules() {
		if err := g.alerts.UpsertRule(ctx, r); err != nil {
			return fmt.Errorf("seed rule %s: %w", r.RuleID, err)
		}
	}
	return nil
}

// EvaluateAll runs every active rule against every active token at the given
// evaluation time (ms). Returns the number of alerts fired. A failing token
// is logged and skipped.
func (g *Generator) EvaluateAll(ctx context.Context, nowMs int64) (int, error) {
	rules, err := g.alerts.GetActiveRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active rules: %w", err)
	}
	tokens, err := g.tokens.GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active tokens: %w", err)
	}

	fired := 0
	for _, t := range tokens {
		if ctx.Err() != nil {
			return fired, ctx.Err()
		}
		n, err := g.evaluateToken(ctx, rules, t.Symbol, nowMs)
		if err != nil {
			g.logger.WithError(err).WithField("token", t.Symbol).Warn("rule evaluation failed for token")
			continue
		}
		fired += n
	}
	return fired, nil
}

// evaluateToken checks every rule against one token's latest state.
func (g *Generator) evaluateToken(ctx context.Context, rules []*domain.AlertRule, symbol string, nowMs int64) (int, error) {
	bucket, err := g.buckets.GetLatest(ctx, symbol)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil // nothing to evaluate yet
		}
		return 0, fmt.Errorf("load latest bucket: %w", err)
	}

	fired := 0
	for _, rule := range rules {
		value, previous, ok := g.metricValue(ctx, rule.Metric, symbol, bucket)
		if !ok {
			continue
		}

		hit, err := rule.Condition.Evaluate(value, previous, rule.Threshold)
		if err != nil {
			return fired, fmt.Errorf("rule %s: %w", rule.RuleID, err)
		}
		if !hit {
			continue
		}
		if g.inCooldown(ctx, rule, symbol, nowMs) {
			continue
		}

		alert := &domain.Alert{
			AlertID:     uuid.NewString(),
			RuleID:      rule.RuleID,
			TokenSymbol: symbol,
			TimestampMs: nowMs,
			Metric:      rule.Metric,
			Value:       value,
			Message:     fmt.Sprintf("%s: %s (%s %s %g, value %g)", symbol, rule.Name, rule.Metric, rule.Condition, rule.Threshold, value),
			Severity:    rule.Severity,
		}
		if err := g.alerts.InsertAlert(ctx, alert); err != nil {
			return fired, fmt.Errorf("insert alert for rule %s: %w", rule.RuleID, err)
		}
		fired++
		observability.RecordAlertFired(rule.RuleID, string(rule.Severity))

		g.logger.WithFields(logrus.Fields{
			"rule":     rule.RuleID,
			"token":    symbol,
			"severity": rule.Severity,
			"value":    value,
		}).Info("alert fired")
	}
	return fired, nil
}

// metricValue resolves a rule metric to its current value, plus the prior
// bucket's value for change_pct conditions. ok is false when the metric is
// absent for this token, which suppresses the rule rather than treating
// absence as zero.
func (g *Generator) metricValue(ctx context.Context, metric domain.RuleMetric, symbol string, b *domain.AggregatedBucket) (value, previous float64, ok bool) {
	switch metric {
	case domain.MetricOverallScore:
		score, err := g.scores.GetLatest(ctx, symbol)
		if err != nil {
			return 0, 0, false
		}
		prev := 0.0
		if p, err := g.scores.GetPrevious(ctx, symbol, score.TimestampMs, 24*60*60*1000); err == nil {
			prev = float64(p.Overall)
		}
		return float64(score.Overall), prev, true

	case domain.MetricSpreadBps:
		if b.AvgSpreadBps == nil {
			return 0, 0, false
		}
		return *b.AvgSpreadBps, g.previousBucketValue(ctx, symbol, b, metric), true

	case domain.MetricVolume24h:
		return b.TotalVolume24h, g.previousBucketValue(ctx, symbol, b, metric), true

	case domain.MetricPriceChange24h:
		if b.PriceChange24hPct == nil {
			return 0, 0, false
		}
		return *b.PriceChange24hPct, 0, true

	case domain.MetricHolderChange24h:
		if b.HolderChange24h == nil {
			return 0, 0, false
		}
		return float64(*b.HolderChange24h), 0, true

	case domain.MetricLiquidity1Pct:
		return b.TotalLiquidity1Pct, g.previousBucketValue(ctx, symbol, b, metric), true

	case domain.MetricActiveExchanges:
		return float64(b.ActiveExchanges), 0, true

	default:
		return 0, 0, false
	}
}

// previousBucketValue reads the same metric off the bucket immediately
// preceding b, the reference point for change_pct rules. Zero when no prior
// bucket exists; Condition.Evaluate treats a zero previous as no change.
func (g *Generator) previousBucketValue(ctx context.Context, symbol string, b *domain.AggregatedBucket, metric domain.RuleMetric) float64 {
	prev, err := g.buckets.GetAt(ctx, symbol, b.TimestampMs-1)
	if err != nil {
		return 0
	}
	switch metric {
	case domain.MetricSpreadBps:
		if prev.AvgSpreadBps == nil {
			return 0
		}
		return *prev.AvgSpreadBps
	case domain.MetricVolume24h:
		return prev.TotalVolume24h
	case domain.MetricLiquidity1Pct:
		return prev.TotalLiquidity1Pct
	default:
		return 0
	}
}

// inCooldown reports whether the (rule, token) pair fired within the rule's
// cooldown window.
func (g *Generator) inCooldown(ctx context.Context, rule *domain.AlertRule, symbol string, nowMs int64) bool {
	last, err := g.alerts.GetLastFired(ctx, rule.RuleID, symbol)
	if err != nil {
		return false // never fired
	}
	return nowMs-last < rule.CooldownMs
}
