package signal

import "fantoken-intel/internal/domain"

// Default rule cooldowns.
const (
	cooldownShortMs = int64(1 * 60 * 60 * 1000)
	cooldownLongMs  = int64(6 * 60 * 60 * 1000)
)

// DefaultRules is the built-in rule set seeded on startup. Rule IDs are
// stable so operator edits to thresholds survive reseeding.
func DefaultRules() []*domain.AlertRule {
	return []*domain.AlertRule{
		{
			RuleID:     "score-critical",
			Name:       "Health score dropped below D",
			Metric:     domain.MetricOverallScore,
			Condition:  domain.ConditionLT,
			Threshold:  40,
			Severity:   domain.SeverityCritical,
			CooldownMs: cooldownLongMs,
			IsActive:   true,
		},
		{
			RuleID:     "spread-wide",
			Name:       "Cross-exchange spread above 100 bps",
			Metric:     domain.MetricSpreadBps,
			Condition:  domain.ConditionGT,
			Threshold:  100,
			Severity:   domain.SeverityWarning,
			CooldownMs: cooldownShortMs,
			IsActive:   true,
		},
		{
			RuleID:     "volume-surge",
			Name:       "24h volume tripled against the prior bucket",
			Metric:     domain.MetricVolume24h,
			Condition:  domain.ConditionChangePct,
			Threshold:  200,
			Severity:   domain.SeverityInfo,
			CooldownMs: cooldownLongMs,
			IsActive:   true,
		},
		{
			RuleID:     "price-crash",
			Name:       "Price down more than 15% in 24h",
			Metric:     domain.MetricPriceChange24h,
			Condition:  domain.ConditionLT,
			Threshold:  -15,
			Severity:   domain.SeverityCritical,
			CooldownMs: cooldownLongMs,
			IsActive:   true,
		},
		{
			RuleID:     "holder-exodus",
			Name:       "More than 100 holders lost in 24h",
			Metric:     domain.MetricHolderChange24h,
			Condition:  domain.ConditionLT,
			Threshold:  -100,
			Severity:   domain.SeverityWarning,
			CooldownMs: cooldownLongMs,
			IsActive:   true,
		},
		{
			RuleID:     "liquidity-drain",
			Name:       "1% depth halved against the prior bucket",
			Metric:     domain.MetricLiquidity1Pct,
			Condition:  domain.ConditionChangePct,
			Threshold:  -50,
			Severity:   domain.SeverityCritical,
			CooldownMs: cooldownShortMs,
			IsActive:   true,
		},
		{
			RuleID:     "venue-loss",
			Name:       "Fewer than two exchanges reporting",
			Metric:     domain.MetricActiveExchanges,
			Condition:  domain.ConditionLT,
			Threshold:  2,
			Severity:   domain.SeverityWarning,
			CooldownMs: cooldownShortMs,
			IsActive:   true,
		},
	}
}
